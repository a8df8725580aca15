// Package diagnose measures how well extracted project names resolve
// against the canonical project index. It reads every artifact that
// carries a project_name, classifies each unique name through the
// matcher, and reports the match rate with itemized lists.
package diagnose

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/mr-pipeline/internal/debug"
	"github.com/mr-pipeline/internal/match"
)

// projectNameFiles are the artifact files that carry a project_name field
var projectNameFiles = []string{
	"casestudy_blocks.json",
	"casestudy_facilities.json",
	"casestudy_sales_points.json",
	"casestudy_unit_types.json",
	"market_sales_statuses.json",
	"market_unit_types.json",
	"market_facilities.json",
	"price_factors.json",
}

type namedRecord struct {
	ProjectName string `json:"project_name"`
}

// Run collects every unique project name across the extracted artifacts
// and classifies it as junk, matched, or unmatched.
func Run(localDebug bool, matcher *match.Matcher, artifactDir string) *Result {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	names := collectNames(artifactDir)

	result := &Result{
		Matched:      []MatchedName{},
		Unmatched:    []string{},
		JunkFiltered: []string{},
	}

	for _, name := range names {
		if matcher.IsJunkName(name) {
			result.JunkFiltered = append(result.JunkFiltered, name)
			continue
		}
		id, confidence, ok := matcher.Match(name)
		if ok && confidence >= match.MinConfidence {
			result.Matched = append(result.Matched, MatchedName{Name: name, ProjectID: id, Confidence: confidence})
		} else {
			result.Unmatched = append(result.Unmatched, name)
		}
	}

	total := len(names)
	junkCount := len(result.JunkFiltered)
	realNames := total - junkCount
	matchRate := 0.0
	if realNames > 0 {
		matchRate = float64(len(result.Matched)) / float64(realNames) * 100
	}
	result.Summary = Summary{
		Total:     total,
		JunkCount: junkCount,
		RealNames: realNames,
		Matched:   len(result.Matched),
		Unmatched: len(result.Unmatched),
		MatchRate: matchRate,
	}

	debug.DebugOutput(localDebug, "Classified %d names: %d matched, %d unmatched, %d junk",
		total, len(result.Matched), len(result.Unmatched), junkCount)
	return result
}

// collectNames gathers unique non-empty project names, sorted. Missing or
// unreadable artifacts are skipped.
func collectNames(artifactDir string) []string {
	seen := make(map[string]bool)
	for _, filename := range projectNameFiles {
		data, err := os.ReadFile(filepath.Join(artifactDir, filename))
		if err != nil {
			continue
		}
		var records []namedRecord
		if err := json.Unmarshal(data, &records); err != nil {
			continue
		}
		for _, rec := range records {
			if rec.ProjectName != "" {
				seen[rec.ProjectName] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Print renders the boxed diagnostic report to stdout. Colors are dropped
// when stdout is not a terminal.
func (r *Result) Print() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	header := color.New(color.FgCyan, color.Bold)
	matchedColor := color.New(color.FgGreen)
	unmatchedColor := color.New(color.FgRed)
	junkColor := color.New(color.FgYellow)

	line := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n", line)
	header.Println("  Project Name Matching Diagnostic")
	fmt.Println(line)
	fmt.Printf("  Total unique names:     %d\n", r.Summary.Total)
	fmt.Printf("  Junk names filtered:    %d\n", r.Summary.JunkCount)
	fmt.Printf("  Real project names:     %d\n", r.Summary.RealNames)
	fmt.Printf("  Matched:                %d\n", r.Summary.Matched)
	fmt.Printf("  Unmatched:              %d\n", r.Summary.Unmatched)
	fmt.Printf("  Match rate:             %.1f%%\n", r.Summary.MatchRate)
	fmt.Println(line)

	if len(r.Matched) > 0 {
		fmt.Printf("\n  Matched (%d):\n", len(r.Matched))
		for _, m := range r.Matched {
			matchedColor.Printf("    [%.2f] %s -> project_id=%d\n", m.Confidence, m.Name, m.ProjectID)
		}
	}
	if len(r.Unmatched) > 0 {
		fmt.Printf("\n  Unmatched (%d):\n", len(r.Unmatched))
		for _, name := range r.Unmatched {
			unmatchedColor.Printf("    - %s\n", name)
		}
	}
	if len(r.JunkFiltered) > 0 {
		fmt.Printf("\n  Junk filtered (%d):\n", len(r.JunkFiltered))
		for _, name := range r.JunkFiltered {
			junkColor.Printf("    x %s\n", name)
		}
	}
}

// Save writes the diagnostic result as indented JSON
func (r *Result) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostic results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write diagnostic results: %w", err)
	}
	return nil
}

// Data structures for match diagnostics

// MatchedName is one successfully resolved extracted name
type MatchedName struct {
	Name       string  `json:"name"`
	ProjectID  int64   `json:"project_id"`
	Confidence float64 `json:"confidence"`
}

// Summary totals one diagnostic run
type Summary struct {
	Total     int     `json:"total"`
	JunkCount int     `json:"junk_count"`
	RealNames int     `json:"real_names"`
	Matched   int     `json:"matched"`
	Unmatched int     `json:"unmatched"`
	MatchRate float64 `json:"match_rate"`
}

// Result is the full diagnostic output, printable and saveable
type Result struct {
	Summary      Summary       `json:"summary"`
	Matched      []MatchedName `json:"matched"`
	Unmatched    []string      `json:"unmatched"`
	JunkFiltered []string      `json:"junk_filtered"`
}
