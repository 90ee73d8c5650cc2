package uniuri

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// StdLen gives ~95 bits of entropy with StdChars.
const StdLen = 16

// StdChars is the default alphabet.
var StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789") //nolint:gochecknoglobals

// ErrCharset is returned for alphabets outside 2..256 characters.
var ErrCharset = errors.New("uniuri: alphabet must hold 2 to 256 characters")

// New returns a random string of StdLen characters.
func New() (string, error) {
	return NewLen(StdLen)
}

// NewLen returns a random string of length characters from StdChars.
func NewLen(length int) (string, error) {
	return NewLenChars(length, StdChars)
}

// NewLenChars returns a random string of length characters from chars.
// Bytes that would bias the result towards the start of chars are rejected.
func NewLenChars(length int, chars []byte) (string, error) {
	n := len(chars)
	if n < 2 || n > 256 {
		return "", ErrCharset
	}

	if length <= 0 {
		return "", nil
	}

	// largest multiple of n that fits in a byte
	limit := 256 - 256%n
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+8)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("uniuri: read random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
