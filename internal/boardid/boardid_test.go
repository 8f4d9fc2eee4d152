package boardid

import (
	"strings"
	"testing"
)

func TestEncode_KnownVector(t *testing.T) {
	c := Default()
	got, err := c.Encode(1)
	if err != nil {
		t.Fatalf("Encode(1) error: %v", err)
	}
	if got != "MXsAKe" {
		t.Errorf("Encode(1) = %q, want %q", got, "MXsAKe")
	}
}

func TestRoundTrip(t *testing.T) {
	c := Default()
	ids := []int64{1, 2, 7, 42, 999, 100_000, 9_999_999}
	for _, id := range ids {
		s, err := c.Encode(id)
		if err != nil {
			t.Fatalf("Encode(%d) error: %v", id, err)
		}
		if len(s) < DefaultMinLength {
			t.Errorf("Encode(%d) = %q, shorter than min length %d", id, s, DefaultMinLength)
		}
		back, ok := c.Decode(s)
		if !ok {
			t.Fatalf("Decode(%q) not ok, want id %d", s, id)
		}
		if back != id {
			t.Errorf("Decode(Encode(%d)) = %d, want %d", id, back, id)
		}
	}
}

func TestDecode_ForeignStrings(t *testing.T) {
	c := Default()
	for _, s := range []string{
		"",
		"abc",              // below min length
		"!!!!!!",           // outside alphabet
		"MXsAK.",           // one rune outside alphabet
		"aaaaaaaaaaaaaaaa", // alphabet runes but not a codec product
	} {
		if id, ok := c.Decode(s); ok {
			t.Errorf("Decode(%q) = (%d, true), want absent", s, id)
		}
	}
}

func TestDecode_RejectsNonCanonical(t *testing.T) {
	c := Default()
	s, err := c.Encode(123)
	if err != nil {
		t.Fatalf("Encode(123) error: %v", err)
	}
	// Flip the string; the result stays inside the alphabet but is not the
	// canonical encoding of any id the codec issued.
	reversed := reverse(s)
	if reversed == s {
		t.Skip("palindromic identifier")
	}
	if id, ok := c.Decode(reversed); ok {
		if canonical, _ := c.Encode(id); canonical == reversed {
			t.Fatalf("reversed identifier %q is canonical for id %d", reversed, id)
		}
		t.Errorf("Decode(%q) = (%d, true), want absent", reversed, id)
	}
}

func TestEncode_RejectsNonPositive(t *testing.T) {
	c := Default()
	for _, id := range []int64{0, -1} {
		if _, err := c.Encode(id); err == nil {
			t.Errorf("Encode(%d) succeeded, want error", id)
		}
	}
}

func TestValidFormat(t *testing.T) {
	c := Default()
	tests := []struct {
		s    string
		want bool
	}{
		{"MXsAKe", true},
		{"hhhhhh", true}, // alphabet runes, right length; format only
		{"MXsAK", false}, // too short
		{"MXsAK!", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.ValidFormat(tt.s); got != tt.want {
			t.Errorf("ValidFormat(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	if _, err := New("abcde", 6); err == nil {
		t.Error("New with 5-symbol alphabet succeeded, want error")
	}
	if _, err := New(DefaultAlphabet, 0); err == nil {
		t.Error("New with min length 0 succeeded, want error")
	}
	// Repeated symbols collapse; distinctness is what counts.
	if _, err := New(strings.Repeat("ab", 30), 6); err == nil {
		t.Error("New with 2 distinct symbols succeeded, want error")
	}
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
