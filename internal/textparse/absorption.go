package textparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Sales absorption like "Sold 97% (809/836 units)", "Sold out",
// "Sold 99.5% (613/616 units) in 3 weeks".
var (
	absorptionPattern = regexp.MustCompile(`(?i)Sold\s+(?:out|(\d+\.?\d*)\s*%\s*\((\d[\d,]*)\s*/\s*(\d[\d,]*)\s*units?\))`)
	soldOutPattern    = regexp.MustCompile(`(?i)Sold\s+out|100\s*%`)
)

// Absorption is a sales/absorption reading. SoldUnits and TotalUnits are
// nil for "Sold out" style mentions that carry no counts.
type Absorption struct {
	RatePct    float64
	SoldUnits  *int
	TotalUnits *int
}

// ExtractAbsorption extracts sales/absorption data from text. Returns nil
// when the text has no absorption mention at all; that is an ordinary
// structural miss, not an error.
func ExtractAbsorption(text string) *Absorption {
	m := absorptionPattern.FindStringSubmatch(text)
	if m == nil {
		if soldOutPattern.MatchString(text) {
			return &Absorption{RatePct: 100.0}
		}
		return nil
	}

	rate := 100.0
	if m[1] != "" {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rate = v
		}
	}

	result := &Absorption{RatePct: rate}
	if m[2] != "" {
		if v, err := strconv.Atoi(strings.ReplaceAll(m[2], ",", "")); err == nil {
			result.SoldUnits = &v
		}
	}
	if m[3] != "" {
		if v, err := strconv.Atoi(strings.ReplaceAll(m[3], ",", "")); err == nil {
			result.TotalUnits = &v
		}
	}
	return result
}
