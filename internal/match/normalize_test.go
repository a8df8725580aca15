package match

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "whitespace and case",
			input: "  Vista Verde  ",
			want:  "vista verde",
		},
		{
			name:  "phase with block suffix",
			input: "Happy One Morri – (P1) Block Tochi",
			want:  "happy one morri",
		},
		{
			name:  "phase with tower suffix",
			input: "Eaton Park – (P3) Tower A4",
			want:  "eaton park",
		},
		{
			name:  "standalone phase marker",
			input: "Eaton Park – (P3)",
			want:  "eaton park",
		},
		{
			name:  "em dash block suffix",
			input: "Happy One — Block A",
			want:  "happy one",
		},
		{
			name:  "trailing en dash",
			input: "THE GLOBAL CITY –",
			want:  "the global city",
		},
		{
			name:  "trailing em dash",
			input: "THE MATRIX ONE —",
			want:  "the matrix one",
		},
		{
			name:  "letter enumeration prefix",
			input: "A. Lancaster Luminaire",
			want:  "lancaster luminaire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeStripsParentheticals(t *testing.T) {
	result := Normalize("Project (Phase 2)")
	if strings.Contains(result, "phase") {
		t.Errorf("Normalize() = %q, phase marker not stripped", result)
	}
}

func TestNormalizePhaseWithTrailingName(t *testing.T) {
	result := Normalize("PICITY SKY PARK - (P2) SKYZEN")
	if !strings.Contains(result, "picity sky park") {
		t.Errorf("Normalize() = %q, want base name kept", result)
	}
	if strings.Contains(result, "skyzen") {
		t.Errorf("Normalize() = %q, trailing sub-brand not stripped", result)
	}
}

func TestNormalizeCodePrefixes(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantContain string
		wantAbsent  string
	}{
		{
			name:        "vhop prefix",
			input:       "VHOP 1 – MASTERI HOMES –",
			wantContain: "masteri",
			wantAbsent:  "vhop",
		},
		{
			name:        "vhsc prefix without space",
			input:       "VHSC– IMPERIA SMART CITY –",
			wantContain: "imperia smart city",
			wantAbsent:  "vhsc",
		},
		{
			name:        "vhgg prefix with phase",
			input:       "VHGG – (P5) IMPERIA SIGNATURE -",
			wantContain: "imperia signature",
			wantAbsent:  "vhgg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("Normalize(%q) = %q, want %q kept", tt.input, got, tt.wantContain)
			}
			if strings.Contains(got, tt.wantAbsent) {
				t.Errorf("Normalize(%q) = %q, want %q stripped", tt.input, got, tt.wantAbsent)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Happy One Morri – (P1) Block Tochi",
		"VHOP 1 – MASTERI HOMES –",
		"The Global City (Phase 2)",
		"  Vista Verde  ",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
