package domain

import "strings"

// Regime is the categorical service dimension every metric can be filtered by.
type Regime string

const (
	RegimeNaval    Regime = "Naval"
	RegimeOffshore Regime = "Offshore"
)

var regimeCodes = map[string]Regime{
	"naval":    RegimeNaval,
	"offshore": RegimeOffshore,
}

// ParseRegime returns the canonical regime for a user-supplied value
// (trimmed, case-insensitive). Anything else reports ok=false and must be
// treated as "no filter".
func ParseRegime(raw string) (Regime, bool) {
	regime, ok := regimeCodes[strings.ToLower(strings.TrimSpace(raw))]

	return regime, ok
}

// Label is the regime followed by a space, ready for message interpolation.
func (r Regime) Label() string {
	if r == "" {
		return ""
	}
	return string(r) + " "
}
