package room

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode() error = %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), CodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q, outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 150 {
		t.Fatalf("only %d distinct codes in 200 draws", len(seen))
	}
}

func TestAlphabetExcludesAmbiguousSymbols(t *testing.T) {
	if len(codeAlphabet) != 32 {
		t.Fatalf("alphabet has %d symbols, want 32", len(codeAlphabet))
	}
	for _, banned := range "0O1I" {
		if strings.ContainsRune(codeAlphabet, banned) {
			t.Errorf("alphabet contains ambiguous symbol %q", banned)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"uppercase passthrough", "ABC234", "ABC234", false},
		{"lowercase accepted", "abc234", "ABC234", false},
		{"surrounding whitespace", "  ABC234\n", "ABC234", false},
		{"too short", "ABC23", "", true},
		{"too long", "ABC2345", "", true},
		{"ambiguous symbol", "ABC230", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCode(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrBadInviteCode) {
					t.Fatalf("NormalizeCode(%q) error = %v, want ErrBadInviteCode", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeCode(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
