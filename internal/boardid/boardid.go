// Package boardid implements the reversible public identifier for scoreboard
// rows: a short fixed-alphabet string that encodes the integer primary key.
// The mapping is pure; nothing is stored. Changing the alphabet or minimum
// length invalidates every identifier issued under the previous settings.
package boardid

import (
	"fmt"

	"github.com/sqids/sqids-go"
)

// Defaults match the original deployment. Encode(1) under these settings is
// "MXsAKe", pinned by a regression test.
const (
	DefaultAlphabet  = "hPrUuF3oQfeEGwRZX1d9ac5MB0AkgLqlynOpTVzCWJtDjsN8I7i42xvHSK6Ymb"
	DefaultMinLength = 6
)

// minAlphabetSize is the smallest alphabet the codec accepts. Shorter
// alphabets produce identifiers that are trivially enumerable.
const minAlphabetSize = 20

// Codec encodes positive integer ids to short public strings and back.
type Codec struct {
	sqids     *sqids.Sqids
	alphabet  map[rune]struct{}
	minLength int
}

// New builds a codec from the given alphabet and minimum length. The alphabet
// must contain at least 20 distinct symbols and the minimum length must be at
// least 1; anything else is a startup error, not a condition to run under.
func New(alphabet string, minLength int) (*Codec, error) {
	if minLength < 1 {
		return nil, fmt.Errorf("boardid: min length must be at least 1, got %d", minLength)
	}

	set := make(map[rune]struct{}, len(alphabet))
	for _, r := range alphabet {
		set[r] = struct{}{}
	}
	if len(set) < minAlphabetSize {
		return nil, fmt.Errorf("boardid: alphabet has %d distinct symbols, need at least %d", len(set), minAlphabetSize)
	}

	s, err := sqids.New(sqids.Options{
		Alphabet:  alphabet,
		MinLength: uint8(minLength),
	})
	if err != nil {
		return nil, fmt.Errorf("boardid: build sqids codec: %w", err)
	}

	return &Codec{sqids: s, alphabet: set, minLength: minLength}, nil
}

// Default returns a codec with the default alphabet and minimum length.
func Default() *Codec {
	c, err := New(DefaultAlphabet, DefaultMinLength)
	if err != nil {
		// Defaults are compile-time constants; this cannot fail.
		panic(err)
	}
	return c
}

// Encode returns the public identifier for a positive id.
func (c *Codec) Encode(id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("boardid: id must be positive, got %d", id)
	}
	s, err := c.sqids.Encode([]uint64{uint64(id)})
	if err != nil {
		return "", fmt.Errorf("boardid: encode %d: %w", id, err)
	}
	return s, nil
}

// Decode recovers the id from a public identifier. The second return is false
// for foreign or malformed strings; callers treat that as not-found.
func (c *Codec) Decode(s string) (int64, bool) {
	if !c.ValidFormat(s) {
		return 0, false
	}
	nums := c.sqids.Decode(s)
	if len(nums) != 1 || nums[0] == 0 {
		return 0, false
	}
	// Sqids decode is not injective over arbitrary strings; only accept
	// strings the codec itself would have produced.
	canonical, err := c.Encode(int64(nums[0]))
	if err != nil || canonical != s {
		return 0, false
	}
	return int64(nums[0]), true
}

// ValidFormat reports whether s has the minimum length and draws only from
// the configured alphabet. It never decodes, so room joins can be vetted
// without touching the store.
func (c *Codec) ValidFormat(s string) bool {
	if len(s) < c.minLength {
		return false
	}
	for _, r := range s {
		if _, ok := c.alphabet[r]; !ok {
			return false
		}
	}
	return true
}

// Fingerprint returns a short stable description of the codec settings,
// logged at startup so operators can spot alphabet drift between deploys.
func (c *Codec) Fingerprint() string {
	return fmt.Sprintf("minlen=%d distinct=%d", c.minLength, len(c.alphabet))
}
