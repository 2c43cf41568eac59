package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidAmount is returned when the amount text is not a finite number.
var ErrInvalidAmount = errors.New("invalid input")

// resultDecimals is the number of fractional digits shown to the user.
const resultDecimals = 5

// ParseAmount parses user supplied amount text.
func ParseAmount(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}

	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// FormatAmount renders v with at most five fractional digits, dropping
// trailing zeros and a dangling decimal point. Negative values that round to
// zero keep their sign and print as "-0".
func FormatAmount(v float64) string {
	formatted := strconv.FormatFloat(v, 'f', resultDecimals, 64)
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimSuffix(formatted, ".")
}

// ResultLine is the text the shells show after a successful conversion.
func ResultLine(converted float64, to string) string {
	return fmt.Sprintf("Converted Amount: %s %s", FormatAmount(converted), to)
}
