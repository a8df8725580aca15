package ingest

import "testing"

func TestLayoutFromAreaRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		want     string
	}{
		{"range", 50, 55, "50-55m2"},
		{"single value", 120, 120, "120m2"},
		{"fractional bounds", 52.5, 60.8, "52.5-60.8m2"},
		{"unparsed areas", 0, 0, "0m2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := layoutFromAreaRange(tt.min, tt.max)
			if got != tt.want {
				t.Errorf("layoutFromAreaRange(%v, %v) = %q, want %q", tt.min, tt.max, got, tt.want)
			}
		})
	}
}
