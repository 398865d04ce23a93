package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	CodeLength   = 6
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

type Code string

// NewCode draws CodeLength symbols from CodeAlphabet. The alphabet has 32
// symbols, so masking a random byte to 5 bits is unbiased.
func NewCode() (Code, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = CodeAlphabet[int(b)&(len(CodeAlphabet)-1)]
	}
	return Code(buf), nil
}

// ParseCode normalizes user input. Codes are case-insensitive and
// anything outside the alphabet yields ok=false.
func ParseCode(raw string) (Code, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != CodeLength {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(CodeAlphabet, s[i]) < 0 {
			return "", false
		}
	}
	return Code(s), true
}
