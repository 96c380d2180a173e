package region

import (
	"reflect"
	"testing"
)

func TestToInternalKey(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantKey string
		wantOK  bool
	}{
		{"roman with dash", "IV-A", "region4a", true},
		{"roman lower case with space", " iv a ", "region4a", true},
		{"display code", "R13", "region13", true},
		{"internal key", "region7", "region7", true},
		{"region prefix", "Region XII", "region12", true},
		{"barmm display", "BARMM II", "BARMM2", true},
		{"barmm key", "barmm1", "BARMM1", true},
		{"ncr", "ncr", "NCR", true},
		{"unknown", "XIV", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := ToInternalKey(tt.code)
			if key != tt.wantKey || ok != tt.wantOK {
				t.Errorf("ToInternalKey(%q) = (%q, %v), want (%q, %v)", tt.code, key, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}

func TestToDisplayCode(t *testing.T) {
	tests := map[string]string{
		"region1":  "R1",
		"region13": "R13",
		"region4a": "R4A",
		"CAR":      "CAR",
		"NIR":      "NIR",
		"BARMM1":   "BARMM I",
		"BARMM2":   "BARMM II",
		"mystery":  "mystery",
	}
	for key, want := range tests {
		if got := ToDisplayCode(key); got != want {
			t.Errorf("ToDisplayCode(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestRegionsForIslands(t *testing.T) {
	got := RegionsForIslands([]string{"visayas", "Luzon", "Atlantis"})
	want := []string{"I", "II", "III", "IV-A", "IV-B", "V", "CAR", "NCR", "VI", "VII", "VIII", "NIR"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RegionsForIslands = %v, want %v", got, want)
	}

	if codes := RegionsForIslands(nil); len(codes) != 0 {
		t.Errorf("RegionsForIslands(nil) = %v, want empty", codes)
	}
}

func TestKeysForIslands(t *testing.T) {
	keys := KeysForIslands([]string{Mindanao})
	for _, want := range []string{"region9", "region10", "region11", "region12", "region13", "BARMM1", "BARMM2"} {
		if !keys[want] {
			t.Errorf("KeysForIslands(Mindanao) missing %q", want)
		}
	}
	if keys["NCR"] {
		t.Errorf("KeysForIslands(Mindanao) unexpectedly contains NCR")
	}
	if len(keys) != 7 {
		t.Errorf("KeysForIslands(Mindanao) has %d keys, want 7", len(keys))
	}
}

func TestResolverPriority(t *testing.T) {
	resolver := NewResolver(map[string]string{
		"Quezon City": "NCR",
		"Calamba":     "IV-A",
		"Nowhere":     "Narnia",
	})

	tests := []struct {
		name       string
		region     string
		regionCode string
		lgu        string
		wantKey    string
		wantOK     bool
	}{
		{"direct field wins", "region3", "IV-A", "Calamba", "region3", true},
		{"code before lookup", "", "VII", "Calamba", "region7", true},
		{"lookup by lgu", "", "", " calamba ", "region4a", true},
		{"unknown direct falls through", "???", "", "Quezon City", "NCR", true},
		{"lookup value unknown", "", "", "Nowhere", "", false},
		{"unregistered", "", "", "Atlantis", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := resolver.Resolve(tt.region, tt.regionCode, tt.lgu)
			if key != tt.wantKey || ok != tt.wantOK {
				t.Errorf("Resolve = (%q, %v), want (%q, %v)", key, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}
