package textparse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unit type with area range like "1BR: 56.6 - 61", "Studio: 49.14",
// "2.5BR: 76.8", "PH DL: 143.9 - 372.2".
var unitTypeAreaPattern = regexp.MustCompile(`(?i)([\d.]*\s*BR|Studio|Penthouse|PH(?:\s+DL)?|Officetel|Shophouse|Duplex|DL|SH|SA|Condotel)\s*[:/]?\s*([\d,.]+)\s*(?:[-–]\s*([\d,.]+))?\s*(?:m2|m²)?`)

// UnitType is one unit type with its area range in m2. A single listed
// area reads as both min and max; AreaMid is the midpoint rounded to one
// decimal.
type UnitType struct {
	Name    string
	AreaMin float64
	AreaMax float64
	AreaMid float64
}

// ExtractUnitTypes extracts unit types and area ranges from text.
// Duplicate (type, min-area) pairs keep the first occurrence.
func ExtractUnitTypes(text string) []UnitType {
	var types []UnitType
	seen := make(map[string]bool)

	for _, m := range unitTypeAreaPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		areaMin, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
		if err != nil {
			continue
		}
		areaMax := areaMin
		if m[3] != "" {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(m[3], ",", ""), 64); err == nil {
				areaMax = v
			}
		}

		key := fmt.Sprintf("%s:%v", name, areaMin)
		if seen[key] {
			continue
		}
		seen[key] = true

		types = append(types, UnitType{
			Name:    name,
			AreaMin: areaMin,
			AreaMax: areaMax,
			AreaMid: math.Round((areaMin+areaMax)/2*10) / 10,
		})
	}

	return types
}
