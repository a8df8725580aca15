package match

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mr-pipeline/internal/config"
)

// MinConfidence is the acceptance threshold callers apply to Match results.
// The matcher itself reports whatever the winning tier scored.
const MinConfidence = 0.5

// Project is one canonical project row from the database.
type Project struct {
	ID   int64
	Name string
}

// Matcher matches extracted project names against a snapshot of the
// canonical project table. The snapshot is taken at construction; projects
// created afterwards are not visible until a new Matcher is built.
//
// Matching tiers, in order:
//  1. junk rejection (no match, 0.0)
//  2. exact case-insensitive name equality (1.0)
//  3. alias table (0.95)
//  4. normalized form (0.9)
//  5. substring mutual containment (0.5 + 0.3 * overlap ratio)
type Matcher struct {
	projects  []Project
	nameToID  map[string]int64  // lowercased canonical name -> id
	normCache map[string]int64  // normalized name -> id (last writer wins)
	aliases   map[string]string // alias spelling -> canonical name
	aliasKeys []string          // sorted for deterministic iteration

	junkNames    map[string]bool
	junkPatterns []*regexp.Regexp
}

// NewMatcher builds a matcher over the given project snapshot using the
// junk and alias tables from rules. Rule patterns are compiled here, so a
// malformed pattern in a user-supplied rules file fails fast.
func NewMatcher(projects []Project, rules *config.MatchRules) (*Matcher, error) {
	m := &Matcher{
		projects:  projects,
		nameToID:  make(map[string]int64, len(projects)),
		normCache: make(map[string]int64, len(projects)),
		junkNames: make(map[string]bool, len(rules.JunkNames)),
		aliases:   rules.Aliases,
	}

	for _, p := range projects {
		m.nameToID[strings.ToLower(p.Name)] = p.ID
		m.normCache[Normalize(p.Name)] = p.ID
	}

	for _, name := range rules.JunkNames {
		m.junkNames[strings.ToLower(name)] = true
	}
	for _, pattern := range rules.JunkPatterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile junk pattern %q: %w", pattern, err)
		}
		m.junkPatterns = append(m.junkPatterns, re)
	}

	for alias := range m.aliases {
		m.aliasKeys = append(m.aliasKeys, alias)
	}
	sort.Strings(m.aliasKeys)

	return m, nil
}

// IsJunkName reports whether a name is a section header, column header, or
// other non-project text.
func (m *Matcher) IsJunkName(name string) bool {
	cleaned := strings.TrimSpace(name)
	if utf8.RuneCountInString(cleaned) < 3 {
		return true
	}
	if m.junkNames[strings.ToLower(cleaned)] {
		return true
	}
	for _, pattern := range m.junkPatterns {
		if pattern.MatchString(cleaned) {
			return true
		}
	}
	return false
}

// Match resolves an extracted name to a project ID and confidence.
// Junk names and names with no tier hit return ok=false with zero
// confidence. Matches below MinConfidence are still returned; thresholding
// is the caller's call.
func (m *Matcher) Match(extractedName string) (projectID int64, confidence float64, ok bool) {
	if extractedName == "" {
		return 0, 0.0, false
	}
	if m.IsJunkName(extractedName) {
		return 0, 0.0, false
	}

	lower := strings.ToLower(strings.TrimSpace(extractedName))

	// Tier 1: exact match (case-insensitive)
	if pid, found := m.nameToID[lower]; found {
		return pid, 1.0, true
	}

	// Tier 2: alias match
	if pid, found := m.tryAlias(extractedName); found {
		return pid, 0.95, true
	}

	// Tier 3: normalized match
	if pid, found := m.normCache[Normalize(extractedName)]; found {
		return pid, 0.9, true
	}

	// Tier 4: substring containment, longest overlap wins, first seen
	// keeps ties
	bestLen := 0
	var bestID int64
	var bestConf float64
	for _, p := range m.projects {
		dbLower := strings.ToLower(p.Name)
		if !strings.Contains(dbLower, lower) && !strings.Contains(lower, dbLower) {
			continue
		}
		dbLen := utf8.RuneCountInString(dbLower)
		inLen := utf8.RuneCountInString(lower)
		matchLen := dbLen
		maxLen := inLen
		if inLen < dbLen {
			matchLen = inLen
			maxLen = dbLen
		}
		if matchLen > bestLen {
			bestLen = matchLen
			bestID = p.ID
			bestConf = round2(0.5 + 0.3*float64(matchLen)/float64(maxLen))
		}
	}
	if bestLen > 0 {
		return bestID, bestConf, true
	}

	return 0, 0.0, false
}

// tryAlias matches the raw and normalized spellings against the alias
// table. An alias only resolves when its canonical name exists in the
// project snapshot.
func (m *Matcher) tryAlias(extractedName string) (int64, bool) {
	if len(m.aliases) == 0 {
		return 0, false
	}

	candidates := []string{
		strings.TrimSpace(extractedName),
		Normalize(extractedName),
	}
	for _, candidate := range candidates {
		for _, aliasKey := range m.aliasKeys {
			if !strings.EqualFold(candidate, aliasKey) &&
				Normalize(aliasKey) != Normalize(candidate) {
				continue
			}
			if pid, found := m.nameToID[strings.ToLower(m.aliases[aliasKey])]; found {
				return pid, true
			}
		}
	}
	return 0, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
