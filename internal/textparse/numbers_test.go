package textparse

import (
	"testing"
)

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{name: "plain integer", input: "845", want: 845, wantOK: true},
		{name: "comma separated", input: "1,152", want: 1152, wantOK: true},
		{name: "decimal", input: "49.14", want: 49.14, wantOK: true},
		{name: "embedded in text", input: "about 1,502 USD", want: 1502, wantOK: true},
		{name: "no number", input: "none", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ExtractNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractPriceUSD(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{name: "usd per m2", input: "2,772 USD/m2", want: 2772, wantOK: true},
		{name: "dollar sign", input: "$1,502/m2", want: 1502, wantOK: true},
		{name: "spaced", input: "1,900 USD / m2", want: 1900, wantOK: true},
		{name: "no price", input: "price on request", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPriceUSD(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ExtractPriceUSD(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractPriceUSD(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractPriceVND(t *testing.T) {
	got, ok := ExtractPriceVND("85 triệu/m2")
	if !ok || got != 85 {
		t.Errorf("ExtractPriceVND() = %v %v, want 85 true", got, ok)
	}
	if _, ok := ExtractPriceVND("no price here"); ok {
		t.Error("ExtractPriceVND() matched text without a price")
	}
}

func TestExtractUnitCount(t *testing.T) {
	got, ok := ExtractUnitCount("1,152 units")
	if !ok || got != 1152 {
		t.Errorf("ExtractUnitCount() = %v %v, want 1152 true", got, ok)
	}
	if _, ok := ExtractUnitCount("many apartments"); ok {
		t.Error("ExtractUnitCount() matched text without a count")
	}
}

func TestExtractAreaM2(t *testing.T) {
	got, ok := ExtractAreaM2("total 128.5m2 gross")
	if !ok || got != 128.5 {
		t.Errorf("ExtractAreaM2() = %v %v, want 128.5 true", got, ok)
	}
}

func TestExtractPercentage(t *testing.T) {
	got, ok := ExtractPercentage("Sold 97% in 3 weeks")
	if !ok || got != 97 {
		t.Errorf("ExtractPercentage() = %v %v, want 97 true", got, ok)
	}
}

func TestNormalizeDistrictName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Q dot prefix", input: "Q.1", want: "District 1"},
		{name: "Quan prefix", input: "Quan 7", want: "District 7"},
		{name: "accented prefix", input: "Quận 3", want: "District 3"},
		{name: "city prefix", input: "TP. Thu Duc", want: "Thu Duc"},
		{name: "already normalized", input: "District 2", want: "District 2"},
		{name: "plain name", input: "Binh Thanh", want: "Binh Thanh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDistrictName(tt.input); got != tt.want {
				t.Errorf("NormalizeDistrictName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("a\r\nb\t\tc\n\n\n\nd")
	want := "a\nb c\n\nd"
	if got != want {
		t.Errorf("CleanText() = %q, want %q", got, want)
	}
}
