package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize is 4KB (conservative default)
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer enforces a size limit, validates UTF-8 and strips control
// characters from user input before it reaches the dialogue router.
type Sanitizer struct {
	maxSize int
}

// NewSanitizer returns a sanitizer rejecting inputs longer than maxSize
// bytes. Non-positive sizes select DefaultMaxInputSize.
func NewSanitizer(maxSize int) Sanitizer {
	if maxSize <= 0 {
		maxSize = DefaultMaxInputSize
	}
	return Sanitizer{maxSize: maxSize}
}

// MaxSize returns the byte limit.
func (s Sanitizer) MaxSize() int {
	if s.maxSize <= 0 {
		return DefaultMaxInputSize
	}
	return s.maxSize
}

// Sanitize cleans user input. Oversized input is rejected rather than
// truncated so that a turn never acts on half a message.
func (s Sanitizer) Sanitize(input string) (string, error) {
	if limit := s.MaxSize(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Newline, tab and carriage return survive; ESC, NUL, BEL and the rest
	// would poison logs and terminals.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// SanitizeInput applies the default sanitizer.
func SanitizeInput(input string) (string, error) {
	return NewSanitizer(DefaultMaxInputSize).Sanitize(input)
}

// IsInputError reports whether err was produced by input sanitisation.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8)
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
