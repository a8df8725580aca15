package textparse

import (
	"reflect"
	"testing"
)

const factorSectionSnippet = `
Factors
Rate HoH
(%)
Location
Supply
Shortage
Construc
-tion
Urban
Planning
Competit
-ive price
Neighbor
-hood
Others
Details
Midtown - (P2) The
Symphony
13.20%
ü
ü
Metro line 1 operation,
newly opened bridge
Eaton Park
5.50%
ü
Located near CBD
`

func TestParseFactorRows(t *testing.T) {
	rows := ParseFactorRows(factorSectionSnippet)
	if len(rows) != 2 {
		t.Fatalf("ParseFactorRows() returned %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.ProjectName != "Midtown - (P2) The Symphony" {
		t.Errorf("ParseFactorRows() first name = %q, want wrapped name joined", first.ProjectName)
	}
	if first.RatePct != 13.20 {
		t.Errorf("ParseFactorRows() first rate = %v, want 13.20", first.RatePct)
	}
	if first.ChecksText != "ü ü" {
		t.Errorf("ParseFactorRows() first checks = %q, want two marks", first.ChecksText)
	}
	if first.Description != "Metro line 1 operation, newly opened bridge" {
		t.Errorf("ParseFactorRows() first description = %q", first.Description)
	}

	second := rows[1]
	if second.ProjectName != "Eaton Park" {
		t.Errorf("ParseFactorRows() second name = %q, want %q", second.ProjectName, "Eaton Park")
	}
	if second.RatePct != 5.50 {
		t.Errorf("ParseFactorRows() second rate = %v, want 5.50", second.RatePct)
	}
}

func TestParseFactorRowsNegativeRate(t *testing.T) {
	section := "Old Town Plaza\n-5.77%\nü\nHandover 10 years ago\n"
	rows := ParseFactorRows(section)
	if len(rows) != 1 {
		t.Fatalf("ParseFactorRows() returned %d rows, want 1", len(rows))
	}
	if rows[0].RatePct != -5.77 {
		t.Errorf("ParseFactorRows() rate = %v, want -5.77", rows[0].RatePct)
	}
}

func TestParseFactorRowsDiscardsSentences(t *testing.T) {
	section := "Compared to last year the secondary market cooled significantly across all districts and zones\n4.20%\nü\n"
	rows := ParseFactorRows(section)
	if len(rows) != 0 {
		t.Errorf("ParseFactorRows() = %d rows, want 0 for sentence-like names", len(rows))
	}
}

func TestParseFactorRowsSkipsPageBreaks(t *testing.T) {
	section := "Riverdale Park\n--- Page 12 ---\n8.00%\nü\nRiverside location\n"
	rows := ParseFactorRows(section)
	if len(rows) != 1 {
		t.Fatalf("ParseFactorRows() returned %d rows, want 1", len(rows))
	}
	if rows[0].ProjectName != "Riverdale Park" {
		t.Errorf("ParseFactorRows() name = %q, want %q", rows[0].ProjectName, "Riverdale Park")
	}
}

func TestDetectCheckedFactors(t *testing.T) {
	tests := []struct {
		name    string
		checks  string
		columns []string
		want    []string
	}{
		{
			name:    "two marks map positionally",
			checks:  "ü ü",
			columns: IncreaseFactorColumns,
			want:    []string{"location", "supply_shortage"},
		},
		{
			name:    "three marks",
			checks:  "ü ü ü",
			columns: DecreaseFactorColumns,
			want:    []string{"old_project", "legal", "bank_loan"},
		},
		{
			name:    "single mark falls back to first column",
			checks:  "ü",
			columns: IncreaseFactorColumns,
			want:    []string{"location"},
		},
		{
			name:    "no marks and no keywords yields nothing",
			checks:  "N/A",
			columns: IncreaseFactorColumns,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectCheckedFactors(tt.checks, tt.columns)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectCheckedFactors(%q) = %v, want %v", tt.checks, got, tt.want)
			}
		})
	}
}

func TestInferFactorCategories(t *testing.T) {
	got := InferFactorCategories("Metro line 1 operation, newly opened bridge", IncreaseFactorColumns)
	want := []string{"location", "construction"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InferFactorCategories() = %v, want %v", got, want)
	}

	got = InferFactorCategories("handover 12 years ago, degraded facade", DecreaseFactorColumns)
	if len(got) == 0 || got[0] != "old_project" {
		t.Errorf("InferFactorCategories() = %v, want old_project first", got)
	}
}
