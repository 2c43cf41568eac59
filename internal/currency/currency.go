package currency

import (
	"slices"
	"strings"
)

// DefaultFrom and DefaultTo are the codes preselected by the shells.
const (
	DefaultFrom = "USD"
	DefaultTo   = "EUR"
)

// supported lists every code offered to the user, independent of which
// rates the upstream API has delivered.
var supported = []string{
	"FJD", "MXN", "STD", "LVL", "SCR", "CDF", "BBD", "GTQ", "CLP", "HNL", "UGX", "ZAR",
	"TND", "SLE", "CUC", "BSD", "SLL", "SDG", "IQD", "CUP", "GMD", "TWD", "RSD", "DOP",
	"KMF", "MYR", "FKP", "XOF", "GEL", "BTC", "UYU", "MAD", "CVE", "TOP", "AZN", "OMR",
	"PGK", "KES", "SEK", "BTN", "UAH", "GNF", "ERN", "MZN", "ARS", "QAR", "IRR", "MRO",
	"CNY", "THB", "UZS", "XPF", "BDT", "LYD", "BMD", "KWD", "PHP", "RUB", "PYG", "ISK",
	"JMD", "COP", "MKD", "USD", "DZD", "PAB", "GGP", "SGD", "ETB", "JEP", "KGS", "SOS",
	"VEF", "VUV", "LAK", "BND", "ZMK", "XAF", "LRD", "XAG", "CHF", "HRK", "ALL", "DJF",
	"VES", "ZMW", "TZS", "VND", "XAU", "AUD", "ILS", "GHS", "GYD", "KPW", "BOB", "KHR",
	"MDL", "IDR", "KYD", "AMD", "BWP", "SHP", "TRY", "LBP", "TJS", "JOD", "AED", "HKD",
	"RWF", "EUR", "LSL", "DKK", "CAD", "BGN", "MMK", "MUR", "NOK", "SYP", "IMP", "ZWL",
	"GIP", "RON", "LKR", "NGN", "CRC", "CZK", "PKR", "XCD", "ANG", "HTG", "BHD", "KZT",
	"SRD", "SZL", "LTL", "SAR", "TTD", "YER", "MVR", "AFN", "INR", "AWG", "KRW", "NPR",
	"JPY", "MNT", "AOA", "PLN", "GBP", "SBD", "BYN", "HUF", "BYR", "BIF", "MWK", "MGA",
	"XDR", "BZD", "BAM", "EGP", "MOP", "NAD", "SSP", "NIO", "PEN", "NZD", "WST", "TMT",
	"CLF", "BRL",
}

func init() {
	slices.Sort(supported)
}

// Codes returns the supported currency codes in alphabetical order.
// The returned slice is a copy and may be modified by the caller.
func Codes() []string {
	return slices.Clone(supported)
}

// IsSupported reports whether code is one of the supported codes.
func IsSupported(code string) bool {
	_, found := slices.BinarySearch(supported, code)
	return found
}

// Normalize upper-cases and trims a user supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
