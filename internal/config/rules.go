package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MatchRules holds the matcher's data-driven rule tables: names that are
// never projects, structural junk patterns, and known alias spellings.
// Rules load from a YAML file when one is given; any section left empty in
// the file keeps the built-in defaults.
type MatchRules struct {
	JunkNames    []string          `yaml:"junk_names"`
	JunkPatterns []string          `yaml:"junk_patterns"`
	Aliases      map[string]string `yaml:"aliases"`
}

// LoadMatchRules loads match rules from a YAML file, falling back to the
// built-in defaults when path is empty or the file does not exist.
func LoadMatchRules(path string) (*MatchRules, error) {
	rules := DefaultMatchRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return nil, fmt.Errorf("failed to read match rules file: %w", err)
	}

	var loaded MatchRules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse match rules file %s: %w", path, err)
	}

	if len(loaded.JunkNames) > 0 {
		rules.JunkNames = loaded.JunkNames
	}
	if len(loaded.JunkPatterns) > 0 {
		rules.JunkPatterns = loaded.JunkPatterns
	}
	if len(loaded.Aliases) > 0 {
		rules.Aliases = loaded.Aliases
	}
	return rules, nil
}

// DefaultMatchRules returns the built-in rule tables compiled from the
// report corpus: section headers, column headers, layout labels and grade
// codes that keep showing up where project names are expected.
func DefaultMatchRules() *MatchRules {
	return &MatchRules{
		JunkNames: []string{
			// Section headers
			"on-sales projects", "on sales projects", "new launch projects",
			"future launch projects", "completed projects", "zone i", "zone ii",
			"zone iii", "zone iv", "i. zone i", "ii. zone ii", "iii. zone iii",
			"ii. on-sales projects", "iii. zone i", "remarkable",
			"remarable projects", "analyzed projects",
			// Column headers
			"project name", "unit type", "location", "developer", "grade",
			"price", "status", "block", "type", "area", "items", "level",
			"description", "development", "facilities", "operation",
			"total units", "sales point", "sales status", "apartment",
			"unit finishing", "unit layout", "unit ratio", "merging",
			// City/district names used as headers
			"ho chi minh city", "hanoi", "binh duong", "hcmc", "ha noi",
			"da nang", "hai phong", "ha long", "dong anh", "tan uyen",
			// Generic labels
			"penthouse", "duplex", "shophouse", "landed house", "block b2",
			"merging information", "market situation", "n/a",
			// Layout/plan labels
			"master plan", "master plan & circulation", "typical floor",
			"typical floor plan", "typical unit layout", "project map",
			"project evaluation", "payment schedule", "public facility",
			"key characteristics", "co-operation strategy", "for customer",
			"highlighted features", "open-space concept with dual balcony",
			"section & product distribution", "section & product type distribution",
			// Grade codes
			"h-i", "h-ii", "m-i", "m-ii", "m-iii", "a-i", "a-ii", "sl", "l",
			// Other noise
			"i & ii", "hawaii", "rr2.5", "vhop1", "symlife",
			"dong nai river", "saigon river",
			// Timeline/developer company names (not projects)
			"complex development timeline (2018-2024)", "lideco",
		},
		JunkPatterns: []string{
			`^[IVX]+\.\s`,                 // Roman numeral section headers
			`^\d+\.\d+\s`,                 // Numbered section headers like "02.01"
			`^ANALYZED\s+PROJECTS\s*\(`,   // "ANALYZED PROJECTS (10)"
			`^C\s+O\s+N\s+F\s+I`,          // Spaced-out "CONFIDENTIAL"
			`TIMELINE\s*\(\d{4}`,          // "TIMELINE (2018-2024)"
			`^OVERALL\s+IN\s+\d{4}`,       // "OVERALL IN 2024-2025"
			`^HIGHLIGHTED\s+FEATURES\s+IN`, // "HIGHLIGHTED FEATURES IN ZONE X"
			`^(?:LOW|HIGH)-RISE\s*\(`,     // "LOW-RISE (H7-H10-H11)"
			`^BLOCK\s+[A-Z]\d`,            // "BLOCK T3"
			`^TOWER\s+\w+$`,               // "TOWER K8E"
			`^WONDERFUL\s+PARK$`,          // "WONDERFUL PARK" (generic label)
			`DEVELOPMENT\s+TIMELINE`,      // "COMPLEX DEVELOPMENT TIMELINE"
		},
		Aliases: map[string]string{
			"STARLAKE CITY":                  "Starlake The Prime K8",
			"IMPERIA SMART CITY":             "Vinhomes Smart City",
			"VHOP 1 – MASTERISE HOMES –":     "Masteri Centre Point",
			"VHOP1 – (P9) THE METROPOLITAN –": "Vinhomes Ocean Park",
		},
	}
}
