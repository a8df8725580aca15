package textparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Block header like "BLOCK A – 40F", "Tower 1", "BLOCK TOCHI". The trailing
// group stands in for a lookahead: the header must be followed by a colon,
// a line break, or the end of text.
var blockPattern = regexp.MustCompile(`(?i)(?:BLOCK|Tower)\s+([A-Z0-9][A-Z0-9\s]*?)(?:\s*[-–—:]\s*(\d+)F)?(?:\s*[:\n]|\z)`)

// Floor usage line like "1F: Shophouse", "2-4F: Mall + Officetel",
// "5-19F & 21-39: Apt".
var floorFunctionPattern = regexp.MustCompile(`(\d+)(?:\s*[-–]\s*(\d+))?F\s*(?:&\s*(\d+)(?:\s*[-–]\s*(\d+))?)?\s*:\s*(.+)`)

// Block is one building block or tower mentioned in a project section.
type Block struct {
	Name           string
	Floors         *int
	FloorFunctions []string
}

// ExtractBlocks extracts block/tower info from project text. Repeated block
// names keep the first occurrence. Floor-function lines are collected from
// the text between a block header and the next one (capped at 500 chars).
func ExtractBlocks(text string) []Block {
	var blocks []Block
	seen := make(map[string]bool)

	matches := blockPattern.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		name := strings.TrimSpace(text[m[2]:m[3]])
		if seen[name] {
			continue
		}
		seen[name] = true

		var floors *int
		if m[4] >= 0 {
			if v, err := strconv.Atoi(text[m[4]:m[5]]); err == nil {
				floors = &v
			}
		}

		start := m[1]
		end := start + 500
		if i+1 < len(matches) {
			end = matches[i+1][0]
		} else if end > len(text) {
			end = len(text)
		}

		var floorFuncs []string
		for _, fm := range floorFunctionPattern.FindAllStringSubmatch(text[start:end], -1) {
			from, err := strconv.Atoi(fm[1])
			if err != nil {
				continue
			}
			to := from
			if fm[2] != "" {
				if v, err := strconv.Atoi(fm[2]); err == nil {
					to = v
				}
			}
			function := strings.TrimSpace(fm[5])
			if to != from {
				floorFuncs = append(floorFuncs, fmt.Sprintf("%d-%dF: %s", from, to, function))
			} else {
				floorFuncs = append(floorFuncs, fmt.Sprintf("%dF: %s", from, function))
			}
		}

		blocks = append(blocks, Block{Name: name, Floors: floors, FloorFunctions: floorFuncs})
	}

	return blocks
}
