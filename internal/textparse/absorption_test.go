package textparse

import (
	"testing"
)

func TestExtractAbsorption(t *testing.T) {
	result := ExtractAbsorption("Sale status: Sold 97% (809/836 units) in 3 weeks")
	if result == nil {
		t.Fatal("ExtractAbsorption() = nil, want result")
	}
	if result.RatePct != 97.0 {
		t.Errorf("ExtractAbsorption() rate = %v, want 97.0", result.RatePct)
	}
	if result.SoldUnits == nil || *result.SoldUnits != 809 {
		t.Errorf("ExtractAbsorption() sold = %v, want 809", result.SoldUnits)
	}
	if result.TotalUnits == nil || *result.TotalUnits != 836 {
		t.Errorf("ExtractAbsorption() total = %v, want 836", result.TotalUnits)
	}
}

func TestExtractAbsorptionSoldOut(t *testing.T) {
	result := ExtractAbsorption("Absorption: Sold out")
	if result == nil {
		t.Fatal("ExtractAbsorption() = nil, want result")
	}
	if result.RatePct != 100.0 {
		t.Errorf("ExtractAbsorption() rate = %v, want 100.0", result.RatePct)
	}
	if result.SoldUnits != nil || result.TotalUnits != nil {
		t.Errorf("ExtractAbsorption() units = %v/%v, want nil/nil", result.SoldUnits, result.TotalUnits)
	}
}

func TestExtractAbsorptionBarePercentage(t *testing.T) {
	// A bare "100%" with no "Sold" prefix still reads as sold out
	result := ExtractAbsorption("All units taken, 100% as of June")
	if result == nil {
		t.Fatal("ExtractAbsorption() = nil, want result")
	}
	if result.RatePct != 100.0 {
		t.Errorf("ExtractAbsorption() rate = %v, want 100.0", result.RatePct)
	}
}

func TestExtractAbsorptionNoMatch(t *testing.T) {
	if result := ExtractAbsorption("No sales data available"); result != nil {
		t.Errorf("ExtractAbsorption() = %+v, want nil", result)
	}
}

func TestExtractAbsorptionCommaCounts(t *testing.T) {
	result := ExtractAbsorption("Sold 85% (1,020/1,200 units)")
	if result == nil {
		t.Fatal("ExtractAbsorption() = nil, want result")
	}
	if result.SoldUnits == nil || *result.SoldUnits != 1020 {
		t.Errorf("ExtractAbsorption() sold = %v, want 1020", result.SoldUnits)
	}
	if result.TotalUnits == nil || *result.TotalUnits != 1200 {
		t.Errorf("ExtractAbsorption() total = %v, want 1200", result.TotalUnits)
	}
}
