package textparse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Factor table column order. Checkmarks in a row map positionally onto
// these, so order must match the source table layout.
var (
	IncreaseFactorColumns = []string{
		"location", "supply_shortage", "construction",
		"urban_planning", "competitive_price", "neighborhood", "other",
	}
	DecreaseFactorColumns = []string{
		"old_project", "legal", "bank_loan",
		"oversupply", "management", "other",
	}
)

// FactorRow is one parsed row of a price factor table: a project name, its
// half-over-half rate, the raw checkmark text, and any description lines.
type FactorRow struct {
	ProjectName string
	RatePct     float64
	ChecksText  string
	Description string
}

// Column header fragments that appear between rows; never part of a name
// or description. PDF extraction splits words like "construc-tion" across
// lines, hence the hyphenated fragments.
var factorSkipWords = map[string]bool{
	"factors": true, "rate": true, "rate hoh": true, "hoh": true, "(%)": true,
	"location": true, "supply": true, "shortage": true, "construc": true,
	"-tion": true, "urban": true, "planning": true, "competit": true,
	"-ive price": true, "neighbor": true, "-hood": true, "others": true,
	"details": true, "old project": true, "legal": true, "bank loan": true,
	"over": true, "manage": true, "-ment": true, "n/a": true,
	"market situation": true,
}

// Keywords that mark a line as description continuation rather than part
// of a two-line project name.
var factorNameStopWords = []string{
	"handover", "degrad", "delay", "legal", "supply",
	"construction", "newly", "good product", "macro",
	"whole", "new project", "limited",
}

// Keywords that keep a capitalized line classified as description instead
// of the start of the next row.
var factorDescWords = []string{
	"whole", "new project", "limited", "high rental",
	"urban", "macro", "newly", "supply", "developer",
	"handover", "degraded", "late", "legal", "construction",
	"delaying", "competitive",
}

var (
	rateLinePattern    = regexp.MustCompile(`^-?\d+\.?\d*\s*%$`)
	rateCapturePattern = regexp.MustCompile(`^(-?\d+\.?\d*)\s*%$`)
	checkOnlyPattern   = regexp.MustCompile(`^[üûö✓✔]+$`)
	checkLinePattern   = regexp.MustCompile(`^[üûö✓✔N/A]+$`)
	checkMarkPattern   = regexp.MustCompile(`[üûö✓✔]`)
	pageBreakLine      = regexp.MustCompile(`^---\s*Page\s+\d+\s*---`)
	capitalStartLine   = regexp.MustCompile(`^[A-Z0-9]`)
	upperStartLine     = regexp.MustCompile(`^[A-Z]`)
	factorNameLine     = regexp.MustCompile(`^[A-Z][A-Za-z0-9\s\-–&'.()]+$`)
	wsRunPattern       = regexp.MustCompile(`\s+`)
)

// ParseFactorRows parses the multiline rows of a price factor table.
//
// Each row spans several lines: a project name (sometimes wrapped onto two
// lines), a standalone rate line like "13.20%" or "-5.77%", one or more
// checkmark lines, then description text running up to the next row. The
// row boundaries are approximate by nature; the heuristics here are pinned
// down by fixture tests rather than derived from a grammar.
func ParseFactorRows(sectionText string) []FactorRow {
	var rows []FactorRow
	lines := strings.Split(sectionText, "\n")

	i := 0
	// Skip the column header block before the first data row
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || factorSkipWords[strings.ToLower(line)] {
			i++
			continue
		}
		if rateLinePattern.MatchString(line) {
			break
		}
		if capitalStartLine.MatchString(line) {
			break
		}
		i++
	}

	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}
		if factorSkipWords[strings.ToLower(line)] || line == "-" {
			i++
			continue
		}
		if pageBreakLine.MatchString(line) {
			i++
			continue
		}

		// Accumulate candidate name lines until the rate line. Description
		// overflow from the previous row lands in here too and is trimmed
		// back off below.
		var candidates []string
		var rate float64
		haveRate := false
		for i < len(lines) {
			line = strings.TrimSpace(lines[i])
			if line == "" || line == "-" {
				i++
				continue
			}
			if pageBreakLine.MatchString(line) {
				i++
				continue
			}
			if m := rateCapturePattern.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					rate = v
					haveRate = true
				}
				i++
				break
			}
			// Checkmarks before a rate mean we drifted into a row we
			// already consumed; bail out and rescan
			if checkOnlyPattern.MatchString(line) {
				break
			}
			if !factorSkipWords[strings.ToLower(line)] {
				candidates = append(candidates, line)
			}
			i++
		}

		// The actual name is the last candidate line, plus the one before
		// it when that looks like the first half of a wrapped name: short,
		// uppercase start, no punctuation, no description keywords.
		var nameLines []string
		if len(candidates) > 0 {
			nameStart := len(candidates) - 1
			if nameStart > 0 {
				prev := candidates[nameStart-1]
				if upperStartLine.MatchString(prev) &&
					utf8.RuneCountInString(prev) < 40 &&
					!strings.Contains(prev, ",") &&
					!strings.Contains(prev, ":") &&
					!containsAny(strings.ToLower(prev), factorNameStopWords) {
					nameStart--
				}
			}
			nameLines = candidates[nameStart:]
		}

		if len(nameLines) == 0 || !haveRate {
			i++
			continue
		}

		projectName := wsRunPattern.ReplaceAllString(strings.TrimSpace(strings.Join(nameLines, " ")), " ")

		// Intro paragraphs sometimes land where a name should be; real
		// names are short and not sentence-like
		if utf8.RuneCountInString(projectName) > 60 ||
			strings.Contains(projectName, "Compared to") ||
			strings.Contains(strings.ToLower(projectName), "secondary price") ||
			strings.Contains(projectName, "Main factors") {
			continue
		}

		// Collect checkmarks and description until the next row starts
		var checks []string
		var descLines []string
		for i < len(lines) {
			line = strings.TrimSpace(lines[i])
			if line == "" {
				i++
				continue
			}
			if pageBreakLine.MatchString(line) {
				i++
				continue
			}
			if checkLinePattern.MatchString(line) || line == "N/A" {
				checks = append(checks, line)
				i++
				continue
			}
			if rateLinePattern.MatchString(line) {
				break
			}
			// A capitalized non-description line whose next non-blank line
			// is a rate starts the next row
			if factorNameLine.MatchString(line) &&
				utf8.RuneCountInString(line) > 3 &&
				!containsAny(strings.ToLower(line), factorDescWords) {
				next := i + 1
				for next < len(lines) && strings.TrimSpace(lines[next]) == "" {
					next++
				}
				if next < len(lines) && rateLinePattern.MatchString(strings.TrimSpace(lines[next])) {
					break
				}
			}
			descLines = append(descLines, line)
			i++
		}

		rows = append(rows, FactorRow{
			ProjectName: projectName,
			RatePct:     rate,
			ChecksText:  strings.Join(checks, " "),
			Description: strings.TrimSpace(strings.Join(descLines, " ")),
		})
	}

	return rows
}

// DetectCheckedFactors maps a row's checkmarks onto factor columns. Marks
// map positionally in column order; a row with no usable marks falls back
// to keyword inference, then to the first column.
func DetectCheckedFactors(checksText string, columns []string) []string {
	marks := checkMarkPattern.FindAllString(checksText, -1)
	if len(marks) == 0 {
		return InferFactorCategories(checksText, columns)
	}

	if len(marks) == 1 {
		if inferred := InferFactorCategories(checksText, columns); len(inferred) > 0 {
			return inferred
		}
		return []string{columns[0]}
	}

	var checked []string
	for i := range marks {
		if i < len(columns) {
			checked = append(checked, columns[i])
		}
	}
	if len(checked) == 0 {
		return []string{columns[0]}
	}
	return checked
}

// Keyword patterns for inferring factor categories from free text, keyed
// by factor column.
var factorKeywords = map[string][]string{
	"location":          {"location", "metro", "cbd", "riverside", "near"},
	"supply_shortage":   {"supply shortage", "shortage", "not many", "few"},
	"construction":      {"construction", "bridge", "road", "infrastructure"},
	"urban_planning":    {"planning", "urban", "master plan"},
	"competitive_price": {"competitive", "price", "cheaper", "affordable"},
	"neighborhood":      {"neighborhood", "facilities", "amenities", "park"},
	"old_project":       {"old", "handover.*year", "degraded"},
	"legal":             {"legal", "pink book", "license"},
	"bank_loan":         {"bank", "loan", "interest"},
	"oversupply":        {"oversupply", "over supply"},
	"management":        {"management", "operation", "maintain"},
}

var factorKeywordPatterns map[string][]*regexp.Regexp

func init() {
	factorKeywordPatterns = make(map[string][]*regexp.Regexp, len(factorKeywords))
	for col, keywords := range factorKeywords {
		patterns := make([]*regexp.Regexp, 0, len(keywords))
		for _, kw := range keywords {
			patterns = append(patterns, regexp.MustCompile(kw))
		}
		factorKeywordPatterns[col] = patterns
	}
}

// InferFactorCategories infers factor categories from description text by
// keyword, preserving column order in the result.
func InferFactorCategories(text string, columns []string) []string {
	textLower := strings.ToLower(text)
	var matched []string
	for _, col := range columns {
		for _, pattern := range factorKeywordPatterns[col] {
			if pattern.MatchString(textLower) {
				matched = append(matched, col)
				break
			}
		}
	}
	return matched
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
