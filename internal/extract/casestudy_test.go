package extract

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const caseStudyFixture = `--- Page 1 ---
00 SUMMARY
Overview of all analyzed projects
--- Page 2 ---
01 AVA CENTER
Thuan An, Binh Duong
BLOCK A - 40F:
1F: Lobby
2-4F: Mall
Infinity pool on rooftop
Gated type with 24/7 security
1BR: 51.9 - 54.8 m2
2BR: 70.2 m2
Primary Price
(USD/m2)
3,000
Sold 97% (809/836 units)
--- Page 3 ---
More notes for the same development
Landscape garden area
--- Page 4 ---
02 SORA GARDENS SC
Thu Dau Mot, Binh Duong
Tower TOCHI: 30F
Sold out
`

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
}

func readArtifact(t *testing.T, dir, name string, out interface{}) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to read artifact %s: %v", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("failed to decode artifact %s: %v", name, err)
	}
}

func TestCaseStudyExtract(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()
	writeSourceFile(t, sourceDir, caseStudySource, caseStudyFixture)

	results, err := NewCaseStudy(sourceDir, outputDir).Extract()
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantCounts := map[string]int{
		"casestudy_blocks.json":       2,
		"casestudy_facilities.json":   5,
		"casestudy_sales_points.json": 4,
		"casestudy_unit_types.json":   2,
	}
	for filename, want := range wantCounts {
		if results[filename] != want {
			t.Errorf("Extract() results[%q] = %d, want %d", filename, results[filename], want)
		}
	}

	var blocks []BlockRecord
	readArtifact(t, outputDir, "casestudy_blocks.json", &blocks)
	if len(blocks) != 2 {
		t.Fatalf("blocks artifact has %d records, want 2", len(blocks))
	}
	if blocks[0].ProjectName != "AVA CENTER" || blocks[0].BlockName != "A" {
		t.Errorf("blocks[0] = %s/%s, want AVA CENTER/A", blocks[0].ProjectName, blocks[0].BlockName)
	}
	if blocks[0].Floors == nil || *blocks[0].Floors != 40 {
		t.Errorf("blocks[0].Floors = %v, want 40", blocks[0].Floors)
	}
	if len(blocks[0].FloorFunctions) != 2 || blocks[0].FloorFunctions[0] != "1F: Lobby" {
		t.Errorf("blocks[0].FloorFunctions = %v, want [1F: Lobby 2-4F: Mall]", blocks[0].FloorFunctions)
	}
	if blocks[0].Meta.Page == nil || *blocks[0].Meta.Page != 2 {
		t.Errorf("blocks[0].Meta.Page = %v, want 2", blocks[0].Meta.Page)
	}
	if blocks[0].Meta.Confidence != 0.85 {
		t.Errorf("blocks[0].Meta.Confidence = %v, want 0.85", blocks[0].Meta.Confidence)
	}
	if blocks[1].ProjectName != "SORA GARDENS SC" || blocks[1].BlockName != "TOCHI" {
		t.Errorf("blocks[1] = %s/%s, want SORA GARDENS SC/TOCHI", blocks[1].ProjectName, blocks[1].BlockName)
	}

	var salesPoints []SalesPointRecord
	readArtifact(t, outputDir, "casestudy_sales_points.json", &salesPoints)
	if len(salesPoints) != 4 {
		t.Fatalf("sales points artifact has %d records, want 4", len(salesPoints))
	}
	if salesPoints[0].Category != "design" || !strings.HasPrefix(salesPoints[0].Description, "Access: gated - ") {
		t.Errorf("salesPoints[0] = %s %q, want design access point", salesPoints[0].Category, salesPoints[0].Description)
	}
	if salesPoints[1].Description != "Primary price: $3,000 USD/m2" {
		t.Errorf("salesPoints[1].Description = %q", salesPoints[1].Description)
	}
	if salesPoints[2].Description != "Sales rate: 97% (809/836 units)" {
		t.Errorf("salesPoints[2].Description = %q", salesPoints[2].Description)
	}
	if salesPoints[3].ProjectName != "SORA GARDENS SC" || salesPoints[3].Description != "Sales rate: 100%" {
		t.Errorf("salesPoints[3] = %s %q, want sold-out rate", salesPoints[3].ProjectName, salesPoints[3].Description)
	}

	var unitTypes []UnitTypeRecord
	readArtifact(t, outputDir, "casestudy_unit_types.json", &unitTypes)
	if len(unitTypes) != 2 {
		t.Fatalf("unit types artifact has %d records, want 2", len(unitTypes))
	}
	if unitTypes[0].TypeName != "1BR" || unitTypes[0].AreaMin != 51.9 || unitTypes[0].AreaMax != 54.8 {
		t.Errorf("unitTypes[0] = %s %v-%v, want 1BR 51.9-54.8", unitTypes[0].TypeName, unitTypes[0].AreaMin, unitTypes[0].AreaMax)
	}
	if unitTypes[1].TypeName != "2BR" || unitTypes[1].AreaMin != 70.2 || unitTypes[1].AreaMax != 70.2 {
		t.Errorf("unitTypes[1] = %s %v-%v, want 2BR 70.2-70.2", unitTypes[1].TypeName, unitTypes[1].AreaMin, unitTypes[1].AreaMax)
	}

	var facilities []FacilityRecord
	readArtifact(t, outputDir, "casestudy_facilities.json", &facilities)
	if len(facilities) != 5 {
		t.Fatalf("facilities artifact has %d records, want 5", len(facilities))
	}
	if facilities[0].FacilityType != "pool" || facilities[0].Description != "Infinity pool on rooftop" {
		t.Errorf("facilities[0] = %s %q, want pool", facilities[0].FacilityType, facilities[0].Description)
	}
}

func TestCaseStudyExtractMissingSource(t *testing.T) {
	_, err := NewCaseStudy(t.TempDir(), t.TempDir()).Extract()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Extract() error = %v, want fs.ErrNotExist", err)
	}
}

func TestMergeProjectPages(t *testing.T) {
	pages := map[int]string{
		1: "00 SUMMARY\nIntro",
		2: "01 AVA CENTER\nFirst details",
		3: "continuation without a header",
		4: "01 AVA CENTER – BUILDING SECTION\nTower details",
		5: "02 SORA GARDENS SC\nSora details",
	}

	projects := mergeProjectPages(pages)
	if len(projects) != 2 {
		t.Fatalf("mergeProjectPages() returned %d projects, want 2", len(projects))
	}

	if projects[0].Name != "AVA CENTER" || projects[0].Page != 2 {
		t.Errorf("projects[0] = %s page %d, want AVA CENTER page 2", projects[0].Name, projects[0].Page)
	}
	for _, fragment := range []string{"First details", "continuation without a header", "Tower details"} {
		if !strings.Contains(projects[0].Content, fragment) {
			t.Errorf("projects[0].Content missing %q", fragment)
		}
	}
	if projects[1].Name != "SORA GARDENS SC" || projects[1].Page != 5 {
		t.Errorf("projects[1] = %s page %d, want SORA GARDENS SC page 5", projects[1].Name, projects[1].Page)
	}
}

func TestMergeProjectPagesNoLeadingProject(t *testing.T) {
	projects := mergeProjectPages(map[int]string{1: "prose without any header"})
	if len(projects) != 0 {
		t.Errorf("mergeProjectPages() returned %d projects, want 0", len(projects))
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{2500000, "2,500,000"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		if got := groupThousands(tt.input); got != tt.want {
			t.Errorf("groupThousands(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
