// Package match resolves extracted project names against the canonical
// project table. Matching runs in strict tiers: junk rejection, exact,
// alias, normalized, then substring containment. The tier that hits
// determines the confidence; callers apply the acceptance threshold.
package match

import (
	"regexp"
	"strings"
)

var (
	// Single-letter enumeration prefixes like "A. ", "B. " from report labeling
	letterPrefixPattern = regexp.MustCompile(`^[A-Z]\.\s+`)

	// Internal planning-code prefixes (VHOP, VHGG, VHSC)
	codePrefixPattern = regexp.MustCompile(`(?i)^(?:VHOP\s*\d*|VHGG|VHSC)\s*[-–—]\s*`)

	// Phase/block suffixes, most specific alternative first. The first two
	// alternatives also consume a trailing sub-brand after the phase marker
	// ("– (P2) SKYZEN"), but only when introduced by a dash.
	phasePattern = regexp.MustCompile(`(?i)` +
		`\s*[-–—]\s*\(?P\d+\)?\s+(?:Block|Tower)\s+\w[\w&]*` + // – (P1) Block B1&2
		`|\s*[-–—]\s*\(?P\d+\)?\s+\S+` + // – (P2) SKYZEN
		`|\s*[-–—]\s*\(?P\d+\)?` + // – (P1), - P2
		`|\s*\(P\d+\)\s*` + // (P1) standalone
		`|\s*Phase\s+\d+` + // Phase 1
		`|\s*[-–—]\s*Block\s+\w+`) // – Block A

	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	trailingDashPattern  = regexp.MustCompile(`\s*[-–—]\s*$`)
	whitespaceRunPattern = regexp.MustCompile(`\s+`)

	// Keeps letters in any script; Vietnamese project names survive intact
	punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
)

// Normalize reduces a project name to its canonical matching form. The
// steps run in a fixed order and the result is idempotent: normalizing an
// already-normalized name returns it unchanged.
func Normalize(name string) string {
	// Unify Unicode dash variants before any dash-sensitive stripping
	name = strings.ReplaceAll(name, "–", "-")
	name = strings.ReplaceAll(name, "—", "-")
	name = letterPrefixPattern.ReplaceAllString(name, "")
	name = codePrefixPattern.ReplaceAllString(name, "")
	name = phasePattern.ReplaceAllString(name, "")
	name = parentheticalPattern.ReplaceAllString(name, "")
	name = punctuationPattern.ReplaceAllString(name, "")
	name = trailingDashPattern.ReplaceAllString(name, "")
	name = strings.ToLower(strings.TrimSpace(whitespaceRunPattern.ReplaceAllString(name, " ")))
	return name
}
