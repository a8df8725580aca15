package extract

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mr-pipeline/internal/textparse"
)

const caseStudySource = "mixed_use_casestudy_full.txt"

var (
	// Project header: "01 AVA CENTER", "09 HAPPY ONE MORRI – (P1) BLOCK TOCHI"
	caseStudyHeaderPattern = regexp.MustCompile(
		`(?m)^(?P<number>\d{2})\s+(?P<name>[A-Z][A-Z0-9\s&\-–'.]+?)(?:\s*[-–]\s*(?:BUILDING SECTION|APT\b).*)?\s*$`)

	caseStudyPricePattern = regexp.MustCompile(
		`(?i)Primary\s+Price\s*\n?\s*\(?USD(?:/m2)?\)?\s*\n?\s*([\d,]+)`)
)

// CaseStudy extracts blocks, facilities, sales points, and unit types
// from the mixed-use case study report.
type CaseStudy struct {
	SourceDir string
	OutputDir string
}

func NewCaseStudy(sourceDir, outputDir string) *CaseStudy {
	return &CaseStudy{SourceDir: sourceDir, OutputDir: outputDir}
}

func (e *CaseStudy) Name() string { return "case study" }

func (e *CaseStudy) Extract() (map[string]int, error) {
	text, err := readSource(e.SourceDir, caseStudySource)
	if err != nil {
		return nil, err
	}

	pages := textparse.SplitPages(text)
	projects := mergeProjectPages(pages)

	blocks := []BlockRecord{}
	facilities := []FacilityRecord{}
	salesPoints := []SalesPointRecord{}
	unitTypes := []UnitTypeRecord{}

	for _, proj := range projects {
		page := proj.Page

		for _, b := range textparse.ExtractBlocks(proj.Content) {
			blocks = append(blocks, BlockRecord{
				ProjectName:    proj.Name,
				BlockName:      b.Name,
				Floors:         b.Floors,
				FloorFunctions: b.FloorFunctions,
				Meta:           Meta{SourceFile: caseStudySource, Page: &page, Confidence: 0.85},
			})
		}

		for _, fac := range textparse.ExtractFacilities(proj.Content, textparse.DefaultFacilityKeywords) {
			facilities = append(facilities, FacilityRecord{
				ProjectName:  proj.Name,
				FacilityType: fac.Type,
				Description:  fac.Description,
				Meta:         Meta{SourceFile: caseStudySource, Page: &page, Confidence: 0.8},
			})
		}

		if access := textparse.ExtractAccessControl(proj.Content); access != nil {
			salesPoints = append(salesPoints, SalesPointRecord{
				ProjectName: proj.Name,
				Category:    "design",
				Description: fmt.Sprintf("Access: %s - %s", access.Type, access.Description),
				Meta:        Meta{SourceFile: caseStudySource, Page: &page, Confidence: 0.85},
			})
		}

		for _, ut := range textparse.ExtractUnitTypes(proj.Content) {
			unitTypes = append(unitTypes, UnitTypeRecord{
				ProjectName: proj.Name,
				TypeName:    ut.Name,
				AreaMin:     ut.AreaMin,
				AreaMax:     ut.AreaMax,
				GrossAreaM2: ut.AreaMid,
				Meta:        Meta{SourceFile: caseStudySource, Page: &page, Confidence: 0.8},
			})
		}

		if price, ok := extractPrimaryPrice(proj.Content); ok {
			salesPoints = append(salesPoints, SalesPointRecord{
				ProjectName: proj.Name,
				Category:    "pricing",
				Description: fmt.Sprintf("Primary price: $%s USD/m2", groupThousands(int64(math.Round(price)))),
				Meta:        Meta{SourceFile: caseStudySource, Page: &page, Confidence: 0.9},
			})
		}

		if a := textparse.ExtractAbsorption(proj.Content); a != nil && a.RatePct != 0 {
			desc := fmt.Sprintf("Sales rate: %g%%", a.RatePct)
			if a.SoldUnits != nil && *a.SoldUnits != 0 && a.TotalUnits != nil && *a.TotalUnits != 0 {
				desc += fmt.Sprintf(" (%d/%d units)", *a.SoldUnits, *a.TotalUnits)
			}
			salesPoints = append(salesPoints, SalesPointRecord{
				ProjectName: proj.Name,
				Category:    "pricing",
				Description: desc,
				Meta:        Meta{SourceFile: caseStudySource, Page: &page, Confidence: 0.85},
			})
		}
	}

	results := map[string]int{}
	outputs := []struct {
		filename string
		records  interface{}
		count    int
	}{
		{"casestudy_blocks.json", blocks, len(blocks)},
		{"casestudy_facilities.json", facilities, len(facilities)},
		{"casestudy_sales_points.json", salesPoints, len(salesPoints)},
		{"casestudy_unit_types.json", unitTypes, len(unitTypes)},
	}
	for _, out := range outputs {
		if err := writeArtifact(e.OutputDir, out.filename, out.records); err != nil {
			return nil, err
		}
		results[out.filename] = out.count
	}
	return results, nil
}

// projectSection is one project's merged page content.
type projectSection struct {
	Number  string
	Name    string
	Page    int
	Content string
}

// mergeProjectPages walks pages in order and merges consecutive pages
// that belong to the same project. Pages without a project header are
// continuations of the previous project; the "00"/"SUMMARY" pages and
// building-section repeats fold into the first occurrence of a name.
func mergeProjectPages(pages map[int]string) []*projectSection {
	pageNums := make([]int, 0, len(pages))
	for n := range pages {
		pageNums = append(pageNums, n)
	}
	sort.Ints(pageNums)

	nameIdx := caseStudyHeaderPattern.SubexpIndex("name")
	numberIdx := caseStudyHeaderPattern.SubexpIndex("number")

	var projects []*projectSection
	seen := make(map[string]*projectSection)

	for _, pageNum := range pageNums {
		content := pages[pageNum]
		m := caseStudyHeaderPattern.FindStringSubmatch(content)
		if m == nil {
			if len(projects) > 0 {
				last := projects[len(projects)-1]
				last.Content += "\n" + content
			}
			continue
		}

		name := strings.TrimSpace(m[nameIdx])
		if name == "SUMMARY" || m[numberIdx] == "00" {
			continue
		}

		if existing, ok := seen[name]; ok {
			existing.Content += "\n" + content
			continue
		}

		proj := &projectSection{
			Number:  m[numberIdx],
			Name:    name,
			Page:    pageNum,
			Content: content,
		}
		seen[name] = proj
		projects = append(projects, proj)
	}
	return projects
}

func extractPrimaryPrice(text string) (float64, bool) {
	m := caseStudyPricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	price, ok := textparse.ExtractNumber(m[1])
	if !ok || price == 0 {
		return 0, false
	}
	return price, true
}

// groupThousands formats n with comma thousand separators.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
