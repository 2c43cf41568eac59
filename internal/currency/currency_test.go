package currency

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes_SortedAndUnique(t *testing.T) {
	codes := Codes()

	require.NotEmpty(t, codes)
	assert.True(t, sort.StringsAreSorted(codes), "codes must be alphabetical")

	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
		assert.Len(t, code, 3)
	}
	assert.Greater(t, len(codes), 150)
}

func TestCodes_ReturnsCopy(t *testing.T) {
	codes := Codes()
	first := codes[0]
	codes[0] = "ZZZ"

	assert.Equal(t, first, Codes()[0])
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"USD", true},
		{"EUR", true},
		{"BTC", true},
		{"usd", false},
		{"XYZ", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSupported(tt.code))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "USD", Normalize(" usd "))
	assert.Equal(t, "EUR", Normalize("EUR"))
	assert.Equal(t, "", Normalize("  "))
}

func TestDefaultsAreSupported(t *testing.T) {
	assert.True(t, IsSupported(DefaultFrom))
	assert.True(t, IsSupported(DefaultTo))
}
