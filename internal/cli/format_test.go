package cli

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 30, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"Bodega Vespucio Norte 2500", 20, "Bodega Vespucio N..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestValidateAPIKey(t *testing.T) {
	if err := validateAPIKey("pt_abc123"); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if err := validateAPIKey(""); err == nil {
		t.Error("empty key accepted")
	}
	if err := validateAPIKey("sk_abc123"); err == nil {
		t.Error("wrong prefix accepted")
	}
}
