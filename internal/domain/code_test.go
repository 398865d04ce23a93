package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode_UsesAlphabet(t *testing.T) {
	for range 200 {
		code, err := NewCode()
		require.NoError(t, err)
		require.Len(t, string(code), CodeLength)
		for _, c := range string(code) {
			assert.True(t, strings.ContainsRune(CodeAlphabet, c), "unexpected symbol %q", c)
		}
	}
}

func TestParseCode(t *testing.T) {
	code, ok := ParseCode("  abcdef ")
	assert.True(t, ok)
	assert.Equal(t, Code("ABCDEF"), code)

	for _, bad := range []string{"", "ABCDE", "ABCDEFG", "ABCDE0", "ABCDEI"} {
		_, ok := ParseCode(bad)
		assert.False(t, ok, bad)
	}
}
