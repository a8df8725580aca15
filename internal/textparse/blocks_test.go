package textparse

import (
	"testing"
)

const blockSnippet = `BLOCK A:
1-3F: Mall
4: Hotel + Facilities
5-7: Hotel
9-27F: Apt
BLOCK B:
1-3F: Mall
4: Hotel + Facilities
5-7: Hotel
9-27F: Apt
`

func TestExtractBlocksHeaders(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantName   string
		wantFloors int // 0 means no floor count
	}{
		{
			name:       "block with floor count",
			input:      "BLOCK A – 40F:",
			wantName:   "A",
			wantFloors: 40,
		},
		{
			name:     "block without floor count",
			input:    "BLOCK B:",
			wantName: "B",
		},
		{
			name:     "tower keyword",
			input:    "Tower 1\n",
			wantName: "1",
		},
		{
			name:     "named block",
			input:    "BLOCK TOCHI:",
			wantName: "TOCHI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := ExtractBlocks(tt.input)
			if len(blocks) == 0 {
				t.Fatalf("ExtractBlocks(%q) found no blocks", tt.input)
			}
			if blocks[0].Name != tt.wantName {
				t.Errorf("ExtractBlocks() name = %q, want %q", blocks[0].Name, tt.wantName)
			}
			if tt.wantFloors != 0 {
				if blocks[0].Floors == nil {
					t.Fatalf("ExtractBlocks() floors = nil, want %d", tt.wantFloors)
				}
				if *blocks[0].Floors != tt.wantFloors {
					t.Errorf("ExtractBlocks() floors = %d, want %d", *blocks[0].Floors, tt.wantFloors)
				}
			} else if blocks[0].Floors != nil {
				t.Errorf("ExtractBlocks() floors = %d, want nil", *blocks[0].Floors)
			}
		})
	}
}

func TestExtractBlocksMultiple(t *testing.T) {
	blocks := ExtractBlocks(blockSnippet)

	names := make(map[string]bool)
	for _, b := range blocks {
		names[b.Name] = true
	}
	if !names["A"] || !names["B"] {
		t.Errorf("ExtractBlocks() names = %v, want A and B", names)
	}
}

func TestExtractBlocksFloorFunctions(t *testing.T) {
	blocks := ExtractBlocks("BLOCK A – 40F:\n1F: Shophouse\n2-4F: Mall")
	if len(blocks) == 0 {
		t.Fatal("ExtractBlocks() found no blocks")
	}
	b := blocks[0]
	if b.Floors == nil || *b.Floors != 40 {
		t.Errorf("ExtractBlocks() floors = %v, want 40", b.Floors)
	}
	if len(b.FloorFunctions) != 2 {
		t.Fatalf("ExtractBlocks() floor functions = %v, want 2 entries", b.FloorFunctions)
	}
	if b.FloorFunctions[0] != "1F: Shophouse" {
		t.Errorf("ExtractBlocks() first floor function = %q, want %q", b.FloorFunctions[0], "1F: Shophouse")
	}
	if b.FloorFunctions[1] != "2-4F: Mall" {
		t.Errorf("ExtractBlocks() second floor function = %q, want %q", b.FloorFunctions[1], "2-4F: Mall")
	}
}

func TestExtractBlocksFloorRangeWithAmpersand(t *testing.T) {
	blocks := ExtractBlocks("BLOCK C:\n5-19F & 21-39: Apt")
	if len(blocks) == 0 {
		t.Fatal("ExtractBlocks() found no blocks")
	}
	if len(blocks[0].FloorFunctions) != 1 {
		t.Fatalf("ExtractBlocks() floor functions = %v, want 1 entry", blocks[0].FloorFunctions)
	}
	if blocks[0].FloorFunctions[0] != "5-19F: Apt" {
		t.Errorf("ExtractBlocks() floor function = %q, want %q", blocks[0].FloorFunctions[0], "5-19F: Apt")
	}
}

func TestExtractBlocksDedup(t *testing.T) {
	blocks := ExtractBlocks("BLOCK A:\n1F: Mall\nBLOCK A:\n2F: Office")
	if len(blocks) != 1 {
		t.Errorf("ExtractBlocks() returned %d blocks, want 1 after dedup", len(blocks))
	}
}
