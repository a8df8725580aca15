// Package textparse turns page-marked report text into structured data.
//
// The input is plain text produced from PDF reports, with pages delimited
// by "--- Page N ---" marker lines. Everything in this package is a pure
// function over that text; nothing here touches the database.
package textparse

import (
	"regexp"
	"strconv"
	"strings"
)

var pagePattern = regexp.MustCompile(`(?m)^---\s*Page\s+(\d+)\s*---$`)

// SplitPages splits page-marked text into per-page bodies keyed by page
// number. Text before the first marker is dropped; a repeated page number
// keeps the last body seen.
func SplitPages(text string) map[int]string {
	pages := make(map[int]string)
	matches := pagePattern.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		num, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		pages[num] = strings.TrimSpace(text[start:end])
	}
	return pages
}

// Section is one header-delimited span of report text.
type Section struct {
	Number  string
	Name    string
	Content string
}

// SplitSections cuts text into sections at each match of the header
// pattern. The pattern must define a `name` capture group and may define a
// `number` group; each section's content runs from the end of its header to
// the start of the next one. No matches means no sections, which callers
// treat as "fall back to whole-page extraction", not as an error.
func SplitSections(text string, header *regexp.Regexp) []Section {
	nameIdx := header.SubexpIndex("name")
	numberIdx := header.SubexpIndex("number")

	matches := header.FindAllStringSubmatchIndex(text, -1)
	sections := make([]Section, 0, len(matches))
	for i, m := range matches {
		var sec Section
		if numberIdx >= 0 && m[2*numberIdx] >= 0 {
			sec.Number = text[m[2*numberIdx]:m[2*numberIdx+1]]
		}
		if nameIdx >= 0 && m[2*nameIdx] >= 0 {
			sec.Name = strings.TrimSpace(text[m[2*nameIdx]:m[2*nameIdx+1]])
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		sec.Content = text[m[1]:end]
		sections = append(sections, sec)
	}
	return sections
}
