package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSixDigits(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		code, err := sixDigits()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q has non-digit", code)
		}
	}
}

func TestMask(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "138****8000", mask("13800138000"))
	assert.Equal(t, "***", mask("12345"))
	assert.Equal(t, "***", mask(""))
}
