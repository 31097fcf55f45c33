package runner

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizer_RejectsOversizedTurns(t *testing.T) {
	s := NewSanitizer(16)

	got, err := s.Sanitize(strings.Repeat("9", 16))
	require.NoError(t, err)
	assert.Len(t, got, 16)

	_, err = s.Sanitize(strings.Repeat("9", 17))
	assert.ErrorIs(t, err, ErrInputTooLarge)
	assert.ErrorContains(t, err, "size=17 limit=16")

	// The limit counts bytes, so a multi-byte dash uses three of them.
	_, err = NewSanitizer(9).Sanitize("2026–27")
	assert.NoError(t, err)
	_, err = NewSanitizer(8).Sanitize("2026–27")
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestSanitizer_DefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultMaxInputSize, NewSanitizer(0).MaxSize())
	assert.Equal(t, DefaultMaxInputSize, NewSanitizer(-5).MaxSize())
	assert.Equal(t, DefaultMaxInputSize, Sanitizer{}.MaxSize())

	_, err := SanitizeInput(strings.Repeat("a", DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestSanitizer_StripsControlCharacters(t *testing.T) {
	cases := map[string]struct {
		in, want string
	}{
		"plain answer":     {"20_40k", "20_40k"},
		"terminal escape":  {"\x1b[2Jyes", "[2Jyes"},
		"nul in household": {"3\x00", "3"},
		"bell":             {"estimate\x07", "estimate"},
		"whitespace kept":  {"bank\tstatements\r\n", "bank\tstatements\r\n"},
		"dashes kept":      {"2026—27", "2026—27"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := SanitizeInput(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSanitizer_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("under\xff20k")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestIsInputError(t *testing.T) {
	_, tooLarge := NewSanitizer(1).Sanitize("no")
	assert.True(t, IsInputError(tooLarge))
	assert.True(t, IsInputError(fmt.Errorf("turn: %w", ErrInvalidUTF8)))
	assert.False(t, IsInputError(errors.New("store down")))
}
