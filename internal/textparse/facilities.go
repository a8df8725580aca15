package textparse

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// FacilityCategory maps one facility_type to the keywords that signal it.
type FacilityCategory struct {
	Category string
	Keywords []string
}

// DefaultFacilityKeywords is the built-in keyword table, in the category
// order records are emitted in. Callers may pass their own table to
// ExtractFacilities when a report family needs different vocabulary.
var DefaultFacilityKeywords = []FacilityCategory{
	{"pool", []string{"pool", "swimming", "lagoon", "infinity pool", "sky pool"}},
	{"gym", []string{"gym", "fitness", "sky gym"}},
	{"park", []string{"garden", "park", "green", "landscape", "lawn"}},
	{"commercial", []string{"mall", "retail", "shophouse", "commercial", "shop", "market",
		"café", "cafe", "restaurant", "bar", "sky bar", "skybar"}},
	{"school", []string{"school", "kindergarten", "kindergarden", "education"}},
	{"playground", []string{"playground", "kids", "children", "kid's", "game room",
		"pickleball", "pickle ball", "basketball", "sport"}},
	{"clubhouse", []string{"community room", "clubhouse", "lounge", "meeting room",
		"library", "co-working", "coworking", "event room", "salon", "spa"}},
	{"security", []string{"security", "guard", "check-point", "checkpoint", "cctv", "guard house"}},
	{"parking", []string{"parking", "basement", "ev charge"}},
}

// Facility is one facility mention, categorized by keyword.
type Facility struct {
	Type        string
	Description string
}

// ExtractFacilities extracts facility mentions by keyword matching. Each
// category fires at most once, on its first keyword present in the text;
// the description is the first line containing that keyword, or the bare
// keyword when no single line does.
func ExtractFacilities(text string, categories []FacilityCategory) []Facility {
	var facilities []Facility
	textLower := strings.ToLower(text)
	lines := strings.Split(text, "\n")

	for _, cat := range categories {
		for _, keyword := range cat.Keywords {
			kwLower := strings.ToLower(keyword)
			if !strings.Contains(textLower, kwLower) {
				continue
			}
			description := keyword
			for _, line := range lines {
				if strings.Contains(strings.ToLower(line), kwLower) {
					description = strings.TrimSpace(line)
					break
				}
			}
			facilities = append(facilities, Facility{Type: cat.Category, Description: description})
			break
		}
	}

	return facilities
}

// Access control mentions, most specific first. Order matters: "Site gated"
// must win over a bare "Gated type" appearing later in the page.
var accessControlPatterns = []struct {
	Type    string
	Pattern *regexp.Regexp
}{
	{"building_gated", regexp.MustCompile(`(?i)Building\s+gated`)},
	{"site_gated", regexp.MustCompile(`(?i)Site\s+gated`)},
	{"fence_gated", regexp.MustCompile(`(?i)Fence\s+gated`)},
	{"gated", regexp.MustCompile(`(?i)Gated\s+type`)},
	{"open", regexp.MustCompile(`(?i)Open(?:ed)?\s+type`)},
}

// AccessControl is a detected site access type with surrounding context.
type AccessControl struct {
	Type        string
	Description string
}

// ExtractAccessControl detects the access control type from text, taking a
// short context window around the first pattern that matches. Returns nil
// when nothing matches.
func ExtractAccessControl(text string) *AccessControl {
	for _, ac := range accessControlPatterns {
		loc := ac.Pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		start := loc[0] - 10
		if start < 0 {
			start = 0
		}
		for start > 0 && !utf8.RuneStart(text[start]) {
			start--
		}
		end := loc[1] + 100
		if end > len(text) {
			end = len(text)
		}
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}
		context := strings.TrimSpace(strings.ReplaceAll(text[start:end], "\n", " "))
		return &AccessControl{Type: ac.Type, Description: context}
	}
	return nil
}
