package textparse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberPattern    = regexp.MustCompile(`[\d,]+\.?\d*`)
	unitCountPattern = regexp.MustCompile(`(?i)([\d,]+)\s*(?:units?|căn|can)`)
	areaPattern      = regexp.MustCompile(`(?i)([\d,.]+)\s*(?:m2|m²|sqm)`)
	pctPattern       = regexp.MustCompile(`([\d,.]+)\s*%`)

	priceVNDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([\d,.]+)\s*(?:triệu|trieu|mil|million)\s*/?\s*m2`),
		regexp.MustCompile(`(?i)([\d,.]+)\s*tr/m2`),
		regexp.MustCompile(`(?i)([\d,.]+)\s*VND\s*mil/m2`),
	}
	priceUSDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$?\s*([\d,.]+)\s*(?:USD|usd)\s*/?\s*m2`),
		regexp.MustCompile(`(?i)([\d,.]+)\s*USD/m2`),
		regexp.MustCompile(`(?i)\$([\d,.]+)/m2`),
	}

	districtPrefixPattern = regexp.MustCompile(`(?i)^(?:Q\.|Quan|Quận)\s*`)
	cityPrefixPattern     = regexp.MustCompile(`(?i)^(?:TP\.|Thanh pho|Thành phố)\s*`)

	crlfPattern      = regexp.MustCompile(`\r\n`)
	spaceRunPattern  = regexp.MustCompile(`[ \t]+`)
	blankRunsPattern = regexp.MustCompile(`\n{3,}`)
)

// ExtractNumber extracts the first number from a string, handling commas.
func ExtractNumber(text string) (float64, bool) {
	match := numberPattern.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractPriceVND extracts a VND price (in million/m2) from text.
func ExtractPriceVND(text string) (float64, bool) {
	for _, pattern := range priceVNDPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return ExtractNumber(m[1])
		}
	}
	return 0, false
}

// ExtractPriceUSD extracts a USD price per m2 from text.
func ExtractPriceUSD(text string) (float64, bool) {
	for _, pattern := range priceUSDPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return ExtractNumber(m[1])
		}
	}
	return 0, false
}

// ExtractUnitCount extracts a unit count from text like "1,200 units".
// A count of zero reads as absent.
func ExtractUnitCount(text string) (int, bool) {
	m := unitCountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, ok := ExtractNumber(m[1])
	if !ok || v == 0 {
		return 0, false
	}
	return int(v), true
}

// ExtractAreaM2 extracts an area in m2 from text.
func ExtractAreaM2(text string) (float64, bool) {
	m := areaPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return ExtractNumber(m[1])
}

// ExtractPercentage extracts a percentage value from text.
func ExtractPercentage(text string) (float64, bool) {
	m := pctPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return ExtractNumber(m[1])
}

// NormalizeDistrictName normalizes Vietnamese district names for matching.
// Handles variations like "Q.1", "Quan 1", "District 1", "TP. Thu Duc".
func NormalizeDistrictName(name string) string {
	name = strings.TrimSpace(name)
	name = districtPrefixPattern.ReplaceAllString(name, "District ")
	name = cityPrefixPattern.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// CleanText removes extra whitespace and normalizes line endings.
func CleanText(text string) string {
	text = crlfPattern.ReplaceAllString(text, "\n")
	text = spaceRunPattern.ReplaceAllString(text, " ")
	text = blankRunsPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
