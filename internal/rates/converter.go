package rates

// Converter is the capability both shells depend on: convert an amount with
// the rates currently known and accept a whole replacement table.
type Converter interface {
	Convert(amount float64, from, to string) float64
	ReplaceAll(newRates map[string]float64)
}

// Convert returns amount expressed in the to currency.
//
// When from equals to, or when either code is missing from table, amount is
// returned unchanged. No rounding is applied.
func Convert(amount float64, from, to string, table Lookup) float64 {
	converted, _ := ConvertWithFallback(amount, from, to, table)
	return converted
}

// ConvertWithFallback is Convert that also reports whether the identity
// fallback was used because a rate was missing.
func ConvertWithFallback(amount float64, from, to string, table Lookup) (float64, bool) {
	if from == to {
		return amount, false
	}

	fromRate, fromOK := table.Get(from)
	toRate, toOK := table.Get(to)
	if !fromOK || !toOK {
		return amount, true
	}

	return amount * toRate / fromRate, false
}
