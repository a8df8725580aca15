package diagnose

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mr-pipeline/internal/config"
	"github.com/mr-pipeline/internal/match"
)

func writeArtifact(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeArtifact(t, dir, "casestudy_blocks.json", `[
	  {"project_name": "Eaton Park", "block_name": "A1"},
	  {"project_name": "PROJECT NAME", "block_name": "B"},
	  {"project_name": "Eaton Park", "block_name": "A2"}
	]`)
	writeArtifact(t, dir, "market_unit_types.json", `[
	  {"project_name": "The Global City", "type_name": "2BR"},
	  {"project_name": "Masteri Thao", "type_name": "1BR"},
	  {"project_name": "Unknown Riverside Gem", "type_name": "3BR"},
	  {"project_name": "", "type_name": "PH"}
	]`)
	writeArtifact(t, dir, "price_factors.json", `{"oops": true}`)
	return dir
}

func TestCollectNames(t *testing.T) {
	dir := fixtureDir(t)

	got := collectNames(dir)
	want := []string{
		"Eaton Park",
		"Masteri Thao",
		"PROJECT NAME",
		"The Global City",
		"Unknown Riverside Gem",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collectNames = %v, want %v", got, want)
	}
}

func TestRunClassification(t *testing.T) {
	dir := fixtureDir(t)

	projects := []match.Project{
		{ID: 1, Name: "Eaton Park"},
		{ID: 2, Name: "The Global City"},
		{ID: 3, Name: "Masteri Thao Dien"},
	}
	matcher, err := match.NewMatcher(projects, config.DefaultMatchRules())
	if err != nil {
		t.Fatalf("NewMatcher returned error: %v", err)
	}

	result := Run(false, matcher, dir)

	wantSummary := Summary{
		Total:     5,
		JunkCount: 1,
		RealNames: 4,
		Matched:   3,
		Unmatched: 1,
		MatchRate: 75.0,
	}
	if result.Summary != wantSummary {
		t.Errorf("summary = %+v, want %+v", result.Summary, wantSummary)
	}

	wantMatched := []MatchedName{
		{Name: "Eaton Park", ProjectID: 1, Confidence: 1.0},
		{Name: "Masteri Thao", ProjectID: 3, Confidence: 0.71},
		{Name: "The Global City", ProjectID: 2, Confidence: 1.0},
	}
	if !reflect.DeepEqual(result.Matched, wantMatched) {
		t.Errorf("matched = %+v, want %+v", result.Matched, wantMatched)
	}

	if !reflect.DeepEqual(result.Unmatched, []string{"Unknown Riverside Gem"}) {
		t.Errorf("unmatched = %v", result.Unmatched)
	}
	if !reflect.DeepEqual(result.JunkFiltered, []string{"PROJECT NAME"}) {
		t.Errorf("junk filtered = %v", result.JunkFiltered)
	}
}

func TestRunEmptyDir(t *testing.T) {
	matcher, err := match.NewMatcher(nil, config.DefaultMatchRules())
	if err != nil {
		t.Fatalf("NewMatcher returned error: %v", err)
	}

	result := Run(false, matcher, t.TempDir())

	if result.Summary.Total != 0 || result.Summary.MatchRate != 0 {
		t.Errorf("expected zero summary, got %+v", result.Summary)
	}
	if len(result.Matched) != 0 || len(result.Unmatched) != 0 || len(result.JunkFiltered) != 0 {
		t.Errorf("expected empty lists, got %+v", result)
	}
}
