package echomw

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"
)

func serve(e *echo.Echo, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)
	return recorder
}

func TestRequireBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		header   string
		want     int
	}{
		{name: "valid", expected: "s3cret", header: "Bearer s3cret", want: http.StatusOK},
		{name: "scheme is case-insensitive", expected: "s3cret", header: "bearer   s3cret ", want: http.StatusOK},
		{name: "wrong token", expected: "s3cret", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "missing header", expected: "s3cret", header: "", want: http.StatusUnauthorized},
		{name: "basic scheme", expected: "s3cret", header: "Basic s3cret", want: http.StatusUnauthorized},
		{name: "not configured", expected: "", header: "Bearer ", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/api/ping", func(c echo.Context) error {
				return c.String(http.StatusOK, "pong")
			}, RequireBearerToken(tt.expected))

			request := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := serve(e, request)
			if recorder.Code != tt.want {
				t.Fatalf("status = %d, want %d", recorder.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && !strings.Contains(recorder.Header().Get("WWW-Authenticate"), "permit-report") {
				t.Errorf("missing WWW-Authenticate header")
			}
		})
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.1") {
		t.Fatal("burst requests should pass")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("third instant request should be limited")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatal("other clients keep their own bucket")
	}

	current = current.Add(time.Second)
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("bucket should refill after a second")
	}

	current = current.Add(2 * time.Minute)
	limiter.Allow("10.0.0.3")
	if len(limiter.clients) != 1 {
		t.Errorf("idle clients not evicted: %d left", len(limiter.clients))
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	e := echo.New()
	limiter := NewRateLimiter(1, 1)
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, limiter.Middleware)

	first := serve(e, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	second := serve(e, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Errorf("statuses = %d, %d", first.Code, second.Code)
	}
}

func TestBrotliEncodesWhenAccepted(t *testing.T) {
	body := strings.Repeat("Quezon City,NCR,12\n", 200)
	e := echo.New()
	e.Use(Brotli(5))
	e.GET("/table", func(c echo.Context) error {
		return c.String(http.StatusOK, body)
	})
	e.GET("/empty", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	request := httptest.NewRequest(http.MethodGet, "/table", nil)
	request.Header.Set(echo.HeaderAcceptEncoding, "gzip, br;q=0.9")
	recorder := serve(e, request)
	if recorder.Header().Get(echo.HeaderContentEncoding) != "br" {
		t.Fatalf("Content-Encoding = %q", recorder.Header().Get(echo.HeaderContentEncoding))
	}
	decoded, err := io.ReadAll(brotli.NewReader(recorder.Body))
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != body {
		t.Errorf("decoded body differs (%d bytes)", len(decoded))
	}

	plain := serve(e, httptest.NewRequest(http.MethodGet, "/table", nil))
	if plain.Header().Get(echo.HeaderContentEncoding) != "" || plain.Body.String() != body {
		t.Errorf("uncompressed response altered")
	}

	request = httptest.NewRequest(http.MethodGet, "/empty", nil)
	request.Header.Set(echo.HeaderAcceptEncoding, "br")
	empty := serve(e, request)
	if empty.Code != http.StatusNoContent || empty.Body.Len() != 0 || empty.Header().Get(echo.HeaderContentEncoding) != "" {
		t.Errorf("bodiless response was encoded: %d %q", empty.Code, empty.Header().Get(echo.HeaderContentEncoding))
	}
}

func TestAcceptsBrotli(t *testing.T) {
	tests := map[string]bool{
		"br":                true,
		"gzip, deflate, br": true,
		"BR;q=0.5":          true,
		"gzip":              false,
		"":                  false,
		"brotli":            false,
	}
	for header, want := range tests {
		if got := acceptsBrotli(header); got != want {
			t.Errorf("acceptsBrotli(%q) = %v, want %v", header, got, want)
		}
	}
}
