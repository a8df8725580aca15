package textparse

import (
	"testing"
)

const marketUnitSnippet = `Unit Sizes (m2):
  1BR: 51.9-54.8m2
  2BR: 77.5-80.5m2
  2.5BR: 76.8m2
  3BR: 98.4-110m2
  4BR: 128.5-153.3m2
  Duplex: 75.9-128.9m2
`

func TestExtractUnitTypes(t *testing.T) {
	types := ExtractUnitTypes(marketUnitSnippet)

	byName := make(map[string]UnitType)
	for _, ut := range types {
		byName[ut.Name] = ut
	}

	for _, want := range []string{"1BR", "2BR", "2.5BR", "3BR", "4BR", "Duplex"} {
		if _, ok := byName[want]; !ok {
			t.Errorf("ExtractUnitTypes() missing type %q", want)
		}
	}

	oneBR := byName["1BR"]
	if oneBR.AreaMin != 51.9 || oneBR.AreaMax != 54.8 {
		t.Errorf("ExtractUnitTypes() 1BR range = %v-%v, want 51.9-54.8", oneBR.AreaMin, oneBR.AreaMax)
	}
}

func TestExtractUnitTypesSingleArea(t *testing.T) {
	types := ExtractUnitTypes("Studio: 49.14m2")
	if len(types) == 0 {
		t.Fatal("ExtractUnitTypes() found no types")
	}
	if types[0].AreaMin != 49.14 {
		t.Errorf("ExtractUnitTypes() area min = %v, want 49.14", types[0].AreaMin)
	}
	if types[0].AreaMax != 49.14 {
		t.Errorf("ExtractUnitTypes() area max = %v, want 49.14", types[0].AreaMax)
	}
}

func TestExtractUnitTypesMidpoint(t *testing.T) {
	types := ExtractUnitTypes("1BR: 50-60m2")
	if len(types) == 0 {
		t.Fatal("ExtractUnitTypes() found no types")
	}
	if types[0].AreaMid != 55.0 {
		t.Errorf("ExtractUnitTypes() area mid = %v, want 55.0", types[0].AreaMid)
	}
}

func TestExtractUnitTypesDedup(t *testing.T) {
	types := ExtractUnitTypes("1BR: 50-60m2\n1BR: 50-60m2")
	if len(types) != 1 {
		t.Errorf("ExtractUnitTypes() returned %d types, want 1 after dedup", len(types))
	}
}

func TestExtractUnitTypesCommaArea(t *testing.T) {
	types := ExtractUnitTypes("Penthouse: 1,025.5m2")
	if len(types) == 0 {
		t.Fatal("ExtractUnitTypes() found no types")
	}
	if types[0].AreaMin != 1025.5 {
		t.Errorf("ExtractUnitTypes() area min = %v, want 1025.5", types[0].AreaMin)
	}
}
