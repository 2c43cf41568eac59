package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		valid    bool
	}{
		{"100", 100, true},
		{" 12.5 ", 12.5, true},
		{"-3", -3, true},
		{"1e3", 1000, true},
		{".5", 0.5, true},
		{"", 0, false},
		{"ten", 0, false},
		{"1.2.3", 0, false},
		{"NaN", 0, false},
		{"-Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			amount, err := ParseAmount(tt.input)
			if !tt.valid {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amount)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{90, "90"},
		{90.00000000000001, "90"},
		{1.0 / 3.0, "0.33333"},
		{2.0 / 3.0, "0.66667"},
		{12.5, "12.5"},
		{0.000001, "0"},
		{-0.000001, "-0"},
		{-0.000004, "-0"},
		{-4.25, "-4.25"},
		{1234567.891234, "1234567.89123"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(tt.value))
		})
	}
}

func TestResultLine(t *testing.T) {
	assert.Equal(t, "Converted Amount: 90 EUR", ResultLine(90, "EUR"))
	assert.Equal(t, "Converted Amount: 1.11111 USD", ResultLine(1/0.9, "USD"))
}
