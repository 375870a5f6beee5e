package types

import (
	"encoding/json"
	"strings"
	"testing"
)

const testHex = "0102030405060708090a0b0c0d0e0f1011121314"

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "bare hex", input: testHex},
		{name: "0x prefix", input: "0x" + testHex},
		{name: "uppercase", input: strings.ToUpper(testHex)},
		{name: "surrounding whitespace", input: "  " + testHex + "\n"},
		{name: "too short", input: testHex[:38], wantErr: true},
		{name: "too long", input: testHex + "ab", wantErr: true},
		{name: "not hex", input: strings.Repeat("zz", 20), wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAddress(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAddress(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddress(%q) error: %v", tt.input, err)
			}
			if addr.Hex() != testHex {
				t.Errorf("Hex() = %q, want %q", addr.Hex(), testHex)
			}
		})
	}
}

func TestAddress_ShortHex(t *testing.T) {
	addr, err := ParseAddress(testHex)
	if err != nil {
		t.Fatalf("ParseAddress error: %v", err)
	}
	if got := addr.ShortHex(); got != testHex[:8] {
		t.Errorf("ShortHex() = %q, want %q", got, testHex[:8])
	}
}

func TestAddress_IsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Error("zero address should report IsZero")
	}
	addr, _ := ParseAddress(testHex)
	if addr.IsZero() {
		t.Error("non-zero address should not report IsZero")
	}
}

func TestNormalizeHex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0xABCDEF", "abcdef"},
		{"abcdef", "abcdef"},
		{" 0xAb12 ", "ab12"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeHex(tt.input); got != tt.want {
			t.Errorf("NormalizeHex(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAddress_JSONRoundTrip(t *testing.T) {
	addr, err := ParseAddress(testHex)
	if err != nil {
		t.Fatalf("ParseAddress error: %v", err)
	}

	data, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"`+testHex+`"` {
		t.Errorf("marshal = %s, want %q", data, testHex)
	}

	var decoded Address
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != addr {
		t.Errorf("round trip mismatch: %v != %v", decoded, addr)
	}
}

func TestAddress_UnmarshalPrefixed(t *testing.T) {
	var addr Address
	if err := json.Unmarshal([]byte(`"0x`+testHex+`"`), &addr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if addr.Hex() != testHex {
		t.Errorf("Hex() = %q, want %q", addr.Hex(), testHex)
	}
}
