package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mr-pipeline/internal/textparse"
)

var priceAnalysisFiles = []string{
	"sales_price_pass1.txt",
	"sales_price_pass2.txt",
	"sales_price_pass3.txt",
}

var (
	factorIncreasedHeaderPattern = regexp.MustCompile(`(?i)FACTORS?_INCREASED\s+PRICE`)
	factorDecreasedHeaderPattern = regexp.MustCompile(`(?i)FACTORS?_DECREASED\s+PRICE`)

	// A factor section runs to the next factor table or city section
	// header, capped at 5000 bytes.
	factorSectionEndPattern = regexp.MustCompile(`FACTORS?_(?:INCREASED|DECREASED)|02\.\d{2}\s+[A-Z]`)

	citySectionPattern = regexp.MustCompile(
		`(?i)02\.0[1-6]\s+(HO\s+CHI\s+MINH\s+CITY|BINH\s+DUONG|HA\s+LONG|HAI\s+PHONG|DA\s+NANG)`)

	districtSectionPattern = regexp.MustCompile(
		`(?i)SECONDARY\s+PRICE\s+(?:INCREASE|CHANGE)\s+BY\s+DISTRICT`)

	avgIncreasePattern = regexp.MustCompile(
		`(?i)(?:Avg\.?\s+)?(?:increase|secondary\s+price\s+increase)\s+(?:rate\s+)?(?:in\s+)?(?:\d{4}-H\d)?\s*:\s*([-\d,.]+)\s*%`)

	conclusionPricePattern = regexp.MustCompile(
		`(?i)Average\s+Secondary\s+Price\s*\(USD/M2\)\s*\n\s*([\d,.]+)\s+`)

	proportionHeaderPattern  = regexp.MustCompile(`(?i)Project\s+Proportion\s+by\s+grade`)
	segmentSectionEndPattern = regexp.MustCompile(`01\.\d{2}\s+|---\s*Page\s+\d+\s*---`)
	wholePctLinePattern      = regexp.MustCompile(`^(\d+)\s*%$`)
	segmentStopPattern       = regexp.MustCompile(`^(In |HCMC|Source|01\.)`)

	secondaryPriceTablePattern = regexp.MustCompile(`(?i)Avg\.?\s*Secondary\s+Price\s*\(USD/[Mm]2\)`)
	periodHeaderPattern        = regexp.MustCompile(`(?i)(20\d{2})\s*-?\s*(H[12])`)
	districtRowPattern         = regexp.MustCompile(`^([A-Za-z\s]+(?:\d+)?)\s+([\d,.\s-]+)$`)
	numberRunPattern           = regexp.MustCompile(`[\d,]+\.?\d*`)
)

var segmentOrder = []string{"affordable", "mid-end", "high-end", "luxury"}

var segmentGradeCodes = map[string]string{
	"affordable":   "A-I",
	"mid-end":      "M-I",
	"high-end":     "H-I",
	"luxury":       "L",
	"super-luxury": "SL",
}

var segmentPriceRanges = map[string]string{
	"affordable": "~ 999 USD/m2",
	"mid-end":    "1,000 ~ 1,999 USD/m2",
	"high-end":   "2,000 ~ 3,999 USD/m2",
	"luxury":     "4,000 USD/m2 ~",
}

// Chart cell labels for city columns; checked in order, first hit wins.
var segmentCityNames = []struct {
	Key  string
	City string
}{
	{"HCMC", "Ho Chi Minh City"},
	{"HO CHI MINH", "Ho Chi Minh City"},
	{"BINH DUONG", "Binh Duong"},
	{"HA LONG", "Ha Long"},
	{"HAI PHONG", "Hai Phong"},
	{"DA NANG", "Da Nang"},
	{"HANOI", "Hanoi"},
}

// PriceAnalysis extracts price change factors, district metrics, and
// segment summaries from the sales price pass files. The passes carry
// different tables: factors and district metrics live in pass2,
// multi-period district tables in pass3, segment charts in pass1 and
// pass3. Missing source files are skipped.
type PriceAnalysis struct {
	SourceDir string
	OutputDir string
}

func NewPriceAnalysis(sourceDir, outputDir string) *PriceAnalysis {
	return &PriceAnalysis{SourceDir: sourceDir, OutputDir: outputDir}
}

func (e *PriceAnalysis) Name() string { return "price analysis" }

func (e *PriceAnalysis) Extract() (map[string]int, error) {
	factors := []FactorRecord{}
	districtMetrics := []DistrictMetricRecord{}
	segments := []SegmentRecord{}

	for _, filename := range priceAnalysisFiles {
		text, err := readSource(e.SourceDir, filename)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}

		if strings.Contains(filename, "pass2") {
			factors = append(factors, extractFactors(text, filename)...)
			districtMetrics = append(districtMetrics, extractDistrictMetrics(text, filename)...)
		}
		if strings.Contains(filename, "pass3") {
			districtMetrics = append(districtMetrics, extractMultiPeriodMetrics(text, filename)...)
		}
		if strings.Contains(filename, "pass1") || strings.Contains(filename, "pass3") {
			segments = append(segments, extractSegments(text, filename)...)
		}
	}

	results := map[string]int{}
	outputs := []struct {
		filename string
		records  interface{}
		count    int
	}{
		{"price_factors.json", factors, len(factors)},
		{"district_metrics.json", districtMetrics, len(districtMetrics)},
		{"segment_summaries.json", segments, len(segments)},
	}
	for _, out := range outputs {
		if err := writeArtifact(e.OutputDir, out.filename, out.records); err != nil {
			return nil, err
		}
		results[out.filename] = out.count
	}
	return results, nil
}

// extractFactors parses the increase/decrease factor tables. Each parsed
// row fans out into one record per checked factor column.
func extractFactors(text, filename string) []FactorRecord {
	records := []FactorRecord{}

	sections := []struct {
		header     *regexp.Regexp
		factorType string
		columns    []string
	}{
		{factorIncreasedHeaderPattern, "increase", textparse.IncreaseFactorColumns},
		{factorDecreasedHeaderPattern, "decrease", textparse.DecreaseFactorColumns},
	}

	for _, sec := range sections {
		for _, loc := range sec.header.FindAllStringIndex(text, -1) {
			rest := text[loc[1]:]
			end := len(rest)
			if next := factorSectionEndPattern.FindStringIndex(rest); next != nil {
				end = next[0]
			} else if end > 5000 {
				end = clampEnd(rest, 5000)
			}

			for _, row := range textparse.ParseFactorRows(rest[:end]) {
				for _, category := range textparse.DetectCheckedFactors(row.ChecksText, sec.columns) {
					rec := FactorRecord{
						ProjectName:    row.ProjectName,
						FactorType:     sec.factorType,
						FactorCategory: category,
						RatePct:        row.RatePct,
						Meta:           Meta{SourceFile: filename, Confidence: 0.8},
					}
					if row.Description != "" {
						desc := row.Description
						rec.Description = &desc
					}
					records = append(records, rec)
				}
			}
		}
	}
	return records
}

// extractDistrictMetrics pulls city-level average price change rates and
// average secondary prices from pass2 sections. City context comes from
// the last city section header before each hit.
func extractDistrictMetrics(text, filename string) []DistrictMetricRecord {
	metrics := []DistrictMetricRecord{}

	for _, loc := range districtSectionPattern.FindAllStringIndex(text, -1) {
		chunk := text[loc[1]:clampEnd(text, loc[1]+3000)]
		city := detectCityContext(text[:loc[1]])
		m := avgIncreasePattern.FindStringSubmatch(chunk)
		if m == nil || city == "" {
			continue
		}
		rate, ok := parseSignedNumber(m[1])
		if !ok {
			continue
		}
		metrics = append(metrics, DistrictMetricRecord{
			City:         city,
			MetricType:   "avg_price_change_pct",
			ValueNumeric: rate,
			ValueText:    "Average secondary price increase rate",
			Meta:         Meta{SourceFile: filename, Confidence: 0.9},
		})
	}

	for _, idx := range conclusionPricePattern.FindAllStringSubmatchIndex(text, -1) {
		price, ok := textparse.ExtractNumber(text[idx[2]:idx[3]])
		if !ok || price == 0 {
			continue
		}
		city := detectCityContext(text[:idx[0]])
		if city == "" {
			continue
		}
		metrics = append(metrics, DistrictMetricRecord{
			City:         city,
			MetricType:   "avg_price",
			ValueNumeric: price,
			ValueText:    "Average secondary price USD/m2",
			Meta:         Meta{SourceFile: filename, Confidence: 0.85},
		})
	}
	return metrics
}

// extractSegments parses grade-segment proportion charts. The national
// block is the run of 4 percentage lines immediately before the
// "Project Proportion by grade" header; per-city blocks follow it as
// city labels in column order, then percentage groups of 4 consumed
// positionally. A bare "-" is an explicit missing value, recorded as 0.
func extractSegments(text, filename string) []SegmentRecord {
	summaries := []SegmentRecord{}

	header := proportionHeaderPattern.FindStringIndex(text)
	if header == nil {
		return summaries
	}

	rest := text[header[1]:]
	end := len(rest)
	if next := segmentSectionEndPattern.FindStringIndex(rest); next != nil {
		end = next[0]
	} else if end > 2000 {
		end = clampEnd(rest, 2000)
	}
	sectionLines := splitNonBlank(rest[:end])

	preLines := splitNonBlank(text[clampStart(text, header[0]-500):header[0]])
	var nationalPcts []float64
	for _, line := range preLines {
		if m := wholePctLinePattern.FindStringSubmatch(line); m != nil {
			v, _ := strconv.ParseFloat(m[1], 64)
			nationalPcts = append(nationalPcts, v)
		} else if len(nationalPcts) > 0 && len(nationalPcts) < 4 {
			// Broken run before we collected a full block
			nationalPcts = nationalPcts[:0]
		}
	}
	if len(nationalPcts) >= 4 {
		for i, segment := range segmentOrder {
			summaries = append(summaries, SegmentRecord{
				City:          "National",
				GradeCode:     segmentGradeCodes[segment],
				Segment:       segment,
				ProportionPct: nationalPcts[i],
				PriceRange:    segmentPriceRanges[segment],
				Meta:          Meta{SourceFile: filename, Confidence: 0.85},
			})
		}
	}

	var cityOrder []string
	var allPcts []*float64 // nil marks a "-" cell
	pastCities := false

	for _, line := range sectionLines {
		lineUpper := strings.ToUpper(line)

		matchedCity := ""
		for _, entry := range segmentCityNames {
			if entry.Key == lineUpper ||
				(strings.Contains(lineUpper, entry.Key) &&
					utf8.RuneCountInString(lineUpper) < utf8.RuneCountInString(entry.Key)+5) {
				matchedCity = entry.City
				break
			}
		}
		if matchedCity != "" && !pastCities {
			cityOrder = append(cityOrder, matchedCity)
			continue
		}

		if m := wholePctLinePattern.FindStringSubmatch(line); m != nil {
			pastCities = true
			v, _ := strconv.ParseFloat(m[1], 64)
			allPcts = append(allPcts, &v)
			continue
		}
		if line == "-" {
			pastCities = true
			allPcts = append(allPcts, nil)
			continue
		}

		if pastCities && segmentStopPattern.MatchString(line) {
			break
		}
	}

	if len(cityOrder) > 0 && len(allPcts) > 0 {
		idx := 0
		for _, cityName := range cityOrder {
			if idx+3 > len(allPcts) {
				break
			}
			cityPcts := make([]*float64, 4)
			for j := 0; j < 4 && idx < len(allPcts); j++ {
				cityPcts[j] = allPcts[idx]
				idx++
			}
			for i, segment := range segmentOrder {
				pct := 0.0
				if cityPcts[i] != nil {
					pct = *cityPcts[i]
				}
				summaries = append(summaries, SegmentRecord{
					City:          cityName,
					GradeCode:     segmentGradeCodes[segment],
					Segment:       segment,
					ProportionPct: pct,
					PriceRange:    segmentPriceRanges[segment],
					Meta:          Meta{SourceFile: filename, Confidence: 0.75},
				})
			}
		}
	}

	return summaries
}

// extractMultiPeriodMetrics parses the pass3 "Avg. Secondary Price"
// tables: period headers in the first 500 bytes of the chunk, then one
// row per district with positional values per period.
func extractMultiPeriodMetrics(text, filename string) []DistrictMetricRecord {
	metrics := []DistrictMetricRecord{}

	type reportPeriod struct {
		Year int
		Half string
	}

	headers := secondaryPriceTablePattern.FindAllStringIndex(text, -1)
	for i, header := range headers {
		end := clampEnd(text, header[1]+5000)
		if i+1 < len(headers) && headers[i+1][0] < end {
			end = headers[i+1][0]
		}
		chunk := text[header[1]:end]

		city := detectCityContext(text[:header[1]])
		if city == "" {
			continue
		}

		var periods []reportPeriod
		for _, pm := range periodHeaderPattern.FindAllStringSubmatch(chunk[:clampEnd(chunk, 500)], -1) {
			year, _ := strconv.Atoi(pm[1])
			periods = append(periods, reportPeriod{Year: year, Half: strings.ToUpper(pm[2])})
		}
		if len(periods) == 0 {
			continue
		}

		for _, line := range strings.Split(chunk, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			row := districtRowPattern.FindStringSubmatch(line)
			if row == nil {
				continue
			}
			districtName := strings.TrimSpace(row[1])
			values := numberRunPattern.FindAllString(strings.TrimSpace(row[2]), -1)
			if len(values) == 0 {
				continue
			}

			for j, p := range periods {
				if j >= len(values) {
					break
				}
				price, ok := textparse.ExtractNumber(values[j])
				if !ok || price <= 0 {
					continue
				}
				metrics = append(metrics, DistrictMetricRecord{
					City:         city,
					DistrictName: districtName,
					PeriodYear:   p.Year,
					PeriodHalf:   p.Half,
					MetricType:   "avg_secondary_price",
					ValueNumeric: price,
					ValueText:    fmt.Sprintf("Avg secondary price USD/m2 %d-%s", p.Year, p.Half),
					Meta:         Meta{SourceFile: filename, Confidence: 0.85},
				})
			}
		}
	}
	return metrics
}

// detectCityContext resolves which city section a position falls in: the
// last city section header before it, falling back to city mentions in
// the trailing 2000 bytes.
func detectCityContext(textBefore string) string {
	matches := citySectionPattern.FindAllStringSubmatch(textBefore, -1)
	if len(matches) > 0 {
		last := strings.ToUpper(matches[len(matches)-1][1])
		switch {
		case strings.Contains(last, "HO CHI MINH") || strings.Contains(last, "HCMC"):
			return "Ho Chi Minh City"
		case strings.Contains(last, "BINH DUONG"):
			return "Binh Duong"
		case strings.Contains(last, "HA LONG"):
			return "Ha Long"
		case strings.Contains(last, "HAI PHONG"):
			return "Hai Phong"
		case strings.Contains(last, "DA NANG"):
			return "Da Nang"
		}
	}

	recent := textBefore[clampStart(textBefore, len(textBefore)-2000):]
	switch {
	case strings.Contains(recent, "HCMC") || strings.Contains(recent, "Ho Chi Minh"):
		return "Ho Chi Minh City"
	case strings.Contains(recent, "Binh Duong"):
		return "Binh Duong"
	case strings.Contains(recent, "Hanoi") || strings.Contains(recent, "Ha Noi"):
		return "Hanoi"
	}
	return ""
}

func parseSignedNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func splitNonBlank(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// clampStart clamps i into [0, len(text)] and backs up to a rune start.
func clampStart(text string, i int) int {
	if i <= 0 {
		return 0
	}
	if i > len(text) {
		return len(text)
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// clampEnd clamps i into [0, len(text)] and advances to a rune boundary.
func clampEnd(text string, i int) int {
	if i >= len(text) {
		return len(text)
	}
	if i < 0 {
		return 0
	}
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}
