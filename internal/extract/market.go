package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mr-pipeline/internal/textparse"
)

// pass2 files carry detailed per-project profile pages.
var marketPassFiles = []struct {
	Filename string
	City     string
}{
	{"hcmc_pass2.txt", "Ho Chi Minh City"},
	{"hanoi_pass2.txt", "Hanoi"},
	{"binh_duong_pass2.txt", "Binh Duong"},
}

var (
	projectNameFieldPattern = regexp.MustCompile(`(?i)Project\s+Name\s*:\s*(.+)`)

	projectHeaderLinePattern = regexp.MustCompile(
		`^(?:\d+\.?\s+)?([A-Z][A-Z0-9\s\-–&'.()]+)(?:\s*[-–].*)?$`)

	marketUnitsPattern = regexp.MustCompile(`(?i)No\.\s+of\s+Units\s*:\s*([\d,]+)`)

	// "Sale status" heads its own line; the absorption data follows on up
	// to 3 lines below it.
	saleStatusPattern = regexp.MustCompile(`(?i)Sale\s+status\s*:?\s*\n((?:.*\n?){1,3})`)
)

// Lines containing any of these are never project headers.
var marketSkipWords = []string{
	"National Housing",
	"MARKET ANALYSIS",
	"MARKET OVERVIEW",
	"CONTENTS",
	"PART ",
	"Source:",
	"CONCLUSION",
	"HCMC",
	"HANOI",
	"BINH DUONG",
	"PROJECT SUMMARY",
	"PROJECT DETAIL",
	"DEVELOPMENT PRODUCT",
	"PRODUCT DEVELOPMENT",
	"LOCATION MAP",
}

// Header-shaped lines that are section titles, not project names.
var marketSectionTitles = map[string]bool{
	"SUPPLY": true, "TRANSACTION": true, "PRICE": true, "GRADE": true,
	"ZONE": true, "SUMMARY": true, "OVERVIEW": true, "ANALYSIS": true,
	"ON SALES": true, "UPCOMING": true, "PROJECT DETAIL": true,
	"APPENDIX": true, "PROJECT SUMMARY": true, "DEVELOPMENT PRODUCT": true,
	"PRODUCT DEVELOPMENT": true, "LOCATION MAP": true, "SITE PLAN": true,
	"FLOOR PLAN": true, "UNIT MIX": true,
}

// MarketPass extracts unit types, sales statuses, and facilities from
// the per-city market analysis pass2 files. Missing source files are
// skipped, not errors.
type MarketPass struct {
	SourceDir string
	OutputDir string
}

func NewMarketPass(sourceDir, outputDir string) *MarketPass {
	return &MarketPass{SourceDir: sourceDir, OutputDir: outputDir}
}

func (e *MarketPass) Name() string { return "market passes" }

func (e *MarketPass) Extract() (map[string]int, error) {
	unitTypes := []UnitTypeRecord{}
	salesStatuses := []SalesStatusRecord{}
	facilities := []FacilityRecord{}

	for _, src := range marketPassFiles {
		text, err := readSource(e.SourceDir, src.Filename)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}

		pages := textparse.SplitPages(text)
		pageNums := make([]int, 0, len(pages))
		for n := range pages {
			pageNums = append(pageNums, n)
		}
		sort.Ints(pageNums)

		for _, pageNum := range pageNums {
			pageContent := pages[pageNum]
			projectName := detectProjectName(pageContent)
			if projectName == "" {
				continue
			}
			page := pageNum

			for _, ut := range textparse.ExtractUnitTypes(pageContent) {
				layout := fmt.Sprintf("%v-%vm2", ut.AreaMin, ut.AreaMax)
				if ut.AreaMin == ut.AreaMax {
					layout = fmt.Sprintf("%vm2", ut.AreaMin)
				}
				unitTypes = append(unitTypes, UnitTypeRecord{
					ProjectName:              projectName,
					City:                     src.City,
					TypeName:                 ut.Name,
					AreaMin:                  ut.AreaMin,
					AreaMax:                  ut.AreaMax,
					GrossAreaM2:              ut.AreaMid,
					TypicalLayoutDescription: layout,
					Meta:                     Meta{SourceFile: src.Filename, Page: &page, Confidence: 0.85},
				})
			}

			if m := saleStatusPattern.FindStringSubmatch(pageContent); m != nil {
				saleText := strings.TrimSpace(m[1])
				if a := textparse.ExtractAbsorption(saleText); a != nil {
					launched := a.TotalUnits
					if launched == nil || *launched == 0 {
						launched = extractTotalUnits(marketUnitsPattern, pageContent)
					}
					var available *int
					if a.TotalUnits != nil && *a.TotalUnits != 0 &&
						a.SoldUnits != nil && *a.SoldUnits != 0 {
						v := *a.TotalUnits - *a.SoldUnits
						available = &v
					}
					salesStatuses = append(salesStatuses, SalesStatusRecord{
						ProjectName:     projectName,
						City:            src.City,
						SalesRatePct:    a.RatePct,
						SoldUnits:       a.SoldUnits,
						LaunchedUnits:   launched,
						AvailableUnits:  available,
						SaleDescription: saleText,
						Meta:            Meta{SourceFile: src.Filename, Page: &page, Confidence: 0.85},
					})
				}
			}

			for _, fac := range textparse.ExtractFacilities(pageContent, textparse.DefaultFacilityKeywords) {
				facilities = append(facilities, FacilityRecord{
					ProjectName:  projectName,
					City:         src.City,
					FacilityType: fac.Type,
					Description:  fac.Description,
					Meta:         Meta{SourceFile: src.Filename, Page: &page, Confidence: 0.7},
				})
			}
		}
	}

	results := map[string]int{}
	outputs := []struct {
		filename string
		records  interface{}
		count    int
	}{
		{"market_unit_types.json", unitTypes, len(unitTypes)},
		{"market_sales_statuses.json", salesStatuses, len(salesStatuses)},
		{"market_facilities.json", facilities, len(facilities)},
	}
	for _, out := range outputs {
		if err := writeArtifact(e.OutputDir, out.filename, out.records); err != nil {
			return nil, err
		}
		results[out.filename] = out.count
	}
	return results, nil
}

// detectProjectName finds the project a profile page describes. It tries
// the explicit "Project Name: X" field first, then falls back to a
// header-shaped line within the first 8 non-blank lines of the page.
// Returns "" when the page has no detectable project.
func detectProjectName(pageContent string) string {
	if m := projectNameFieldPattern.FindStringSubmatch(pageContent); m != nil {
		return strings.TrimSpace(m[1])
	}

	var lines []string
	for _, line := range strings.Split(pageContent, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 8 {
		lines = lines[:8]
	}

	for _, line := range lines {
		skip := false
		for _, word := range marketSkipWords {
			if strings.Contains(line, word) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		m := projectHeaderLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(name) > 3 && !marketSectionTitles[name] {
			return name
		}
	}
	return ""
}

func extractTotalUnits(pattern *regexp.Regexp, text string) *int {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, ok := textparse.ExtractNumber(m[1])
	if !ok || v == 0 {
		return nil
	}
	n := int(v)
	return &n
}
