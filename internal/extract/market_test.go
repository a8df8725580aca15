package extract

import (
	"strings"
	"testing"
)

const marketPass2Fixture = `--- Page 1 ---
HCMC MARKET ANALYSIS 2025-H2
CONTENTS
--- Page 2 ---
Project Name: Eaton Park
Location: An Phu, Thu Duc
Unit Sizes (m2):
1BR: 51.9 - 54.8
2BR: 70.2 - 85.1
Sale status:
Sold 97% (809/836 units)
Good momentum across all towers
No. of Units: 836
Infinity pool and sky gym
--- Page 3 ---
3. THE EMERALD 68 - Van Phuc area
Developer: Lecco
Sale status:
Sold out
`

func TestMarketPassExtract(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()
	writeSourceFile(t, sourceDir, "hcmc_pass2.txt", marketPass2Fixture)

	results, err := NewMarketPass(sourceDir, outputDir).Extract()
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantCounts := map[string]int{
		"market_unit_types.json":     2,
		"market_sales_statuses.json": 2,
		"market_facilities.json":     3,
	}
	for filename, want := range wantCounts {
		if results[filename] != want {
			t.Errorf("Extract() results[%q] = %d, want %d", filename, results[filename], want)
		}
	}

	var unitTypes []UnitTypeRecord
	readArtifact(t, outputDir, "market_unit_types.json", &unitTypes)
	if len(unitTypes) != 2 {
		t.Fatalf("unit types artifact has %d records, want 2", len(unitTypes))
	}
	if unitTypes[0].ProjectName != "Eaton Park" || unitTypes[0].City != "Ho Chi Minh City" {
		t.Errorf("unitTypes[0] = %s/%s, want Eaton Park in Ho Chi Minh City", unitTypes[0].ProjectName, unitTypes[0].City)
	}
	if unitTypes[0].TypicalLayoutDescription != "51.9-54.8m2" {
		t.Errorf("unitTypes[0].TypicalLayoutDescription = %q, want 51.9-54.8m2", unitTypes[0].TypicalLayoutDescription)
	}

	var statuses []SalesStatusRecord
	readArtifact(t, outputDir, "market_sales_statuses.json", &statuses)
	if len(statuses) != 2 {
		t.Fatalf("sales statuses artifact has %d records, want 2", len(statuses))
	}

	first := statuses[0]
	if first.ProjectName != "Eaton Park" || first.SalesRatePct != 97 {
		t.Errorf("statuses[0] = %s %v%%, want Eaton Park 97%%", first.ProjectName, first.SalesRatePct)
	}
	if first.SoldUnits == nil || *first.SoldUnits != 809 {
		t.Errorf("statuses[0].SoldUnits = %v, want 809", first.SoldUnits)
	}
	if first.LaunchedUnits == nil || *first.LaunchedUnits != 836 {
		t.Errorf("statuses[0].LaunchedUnits = %v, want 836", first.LaunchedUnits)
	}
	if first.AvailableUnits == nil || *first.AvailableUnits != 27 {
		t.Errorf("statuses[0].AvailableUnits = %v, want 27", first.AvailableUnits)
	}
	if !strings.Contains(first.SaleDescription, "Good momentum") {
		t.Errorf("statuses[0].SaleDescription = %q, want captured follow-on lines", first.SaleDescription)
	}

	second := statuses[1]
	if second.ProjectName != "THE EMERALD 68" || second.SalesRatePct != 100 {
		t.Errorf("statuses[1] = %s %v%%, want THE EMERALD 68 100%%", second.ProjectName, second.SalesRatePct)
	}
	if second.SoldUnits != nil || second.LaunchedUnits != nil || second.AvailableUnits != nil {
		t.Errorf("statuses[1] unit counts = %v/%v/%v, want all absent for bare sold out",
			second.SoldUnits, second.LaunchedUnits, second.AvailableUnits)
	}

	// "Eaton Park" itself trips the park keyword; that noise is expected
	// and filtered later by the matcher, not here.
	var facilities []FacilityRecord
	readArtifact(t, outputDir, "market_facilities.json", &facilities)
	types := make(map[string]bool)
	for _, fac := range facilities {
		types[fac.FacilityType] = true
	}
	for _, want := range []string{"pool", "gym", "park"} {
		if !types[want] {
			t.Errorf("facilities missing %q, got %v", want, types)
		}
	}
}

func TestMarketPassExtractNoSources(t *testing.T) {
	results, err := NewMarketPass(t.TempDir(), t.TempDir()).Extract()
	if err != nil {
		t.Fatalf("Extract() error = %v, want missing files skipped", err)
	}
	if results["market_unit_types.json"] != 0 {
		t.Errorf("Extract() results = %v, want zero counts", results)
	}
}

func TestDetectProjectName(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "explicit field",
			page: "Some intro line\nProject Name: Masteri Centre Point\nDeveloper: MTD",
			want: "Masteri Centre Point",
		},
		{
			name: "numbered header with location suffix",
			page: "2. THE EMERALD 68 - Van Phuc area\nDeveloper: Lecco",
			want: "THE EMERALD 68",
		},
		{
			name: "skip words before header",
			page: "HCMC MARKET OVERVIEW\nEATON PARK\nSupply data follows",
			want: "EATON PARK",
		},
		{
			name: "section titles excluded",
			page: "PROJECT SUMMARY\nSUPPLY\nTRANSACTION",
			want: "",
		},
		{
			name: "short header rejected",
			page: "ABC\nsome prose",
			want: "",
		},
		{
			name: "no header at all",
			page: "lowercase prose only\nnothing to see",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectProjectName(tt.page); got != tt.want {
				t.Errorf("detectProjectName() = %q, want %q", got, tt.want)
			}
		})
	}
}
