package echomw

import (
	"bufio"
	"net"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"
)

type brotliResponseWriter struct {
	http.ResponseWriter
	encoder     *brotli.Writer
	encode      bool
	wroteHeader bool
}

func (writer *brotliResponseWriter) WriteHeader(code int) {
	if !writer.wroteHeader {
		writer.wroteHeader = true
		header := writer.Header()
		if code != http.StatusNoContent && code != http.StatusNotModified && header.Get(echo.HeaderContentEncoding) == "" {
			writer.encode = true
			header.Set(echo.HeaderContentEncoding, "br")
			header.Del(echo.HeaderContentLength)
		}
	}
	writer.ResponseWriter.WriteHeader(code)
}

func (writer *brotliResponseWriter) Write(content []byte) (int, error) {
	if writer.Header().Get(echo.HeaderContentType) == "" {
		writer.Header().Set(echo.HeaderContentType, http.DetectContentType(content))
	}
	if !writer.wroteHeader {
		writer.WriteHeader(http.StatusOK)
	}
	if !writer.encode {
		return writer.ResponseWriter.Write(content)
	}
	return writer.encoder.Write(content)
}

func (writer *brotliResponseWriter) Flush() {
	if writer.encode {
		_ = writer.encoder.Flush()
	}
	if flusher, ok := writer.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (writer *brotliResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(writer.ResponseWriter).Hijack()
}

func (writer *brotliResponseWriter) Unwrap() http.ResponseWriter {
	return writer.ResponseWriter
}

func acceptsBrotli(acceptEncoding string) bool {
	for _, part := range strings.Split(acceptEncoding, ",") {
		coding, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(strings.TrimSpace(coding), "br") {
			return true
		}
	}
	return false
}

/*
Brotli encodes response bodies when the client sends Accept-Encoding: br.
Bodiless responses pass through untouched.
*/
func Brotli(level int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			response := c.Response()
			response.Header().Add(echo.HeaderVary, echo.HeaderAcceptEncoding)
			if c.Request().Method == http.MethodHead || !acceptsBrotli(c.Request().Header.Get(echo.HeaderAcceptEncoding)) {
				return next(c)
			}

			original := response.Writer
			writer := &brotliResponseWriter{ResponseWriter: original, encoder: brotli.NewWriterLevel(original, level)}
			response.Writer = writer
			defer func() {
				if writer.encode {
					_ = writer.encoder.Close()
				}
				response.Writer = original
			}()

			return next(c)
		}
	}
}
