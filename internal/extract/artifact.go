// Package extract turns report text files into JSON artifacts, one file
// per record family. Every record carries a _meta envelope naming the
// source file, the page it came from when resolvable, and the parse
// confidence. The seeding stage consumes these artifacts verbatim.
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Meta records where a value came from and how confident the parse is.
type Meta struct {
	SourceFile string  `json:"source_file"`
	Page       *int    `json:"page"`
	Confidence float64 `json:"confidence"`
}

// BlockRecord is one building block within a project.
type BlockRecord struct {
	ProjectName    string   `json:"project_name"`
	BlockName      string   `json:"block_name"`
	Floors         *int     `json:"floors"`
	FloorFunctions []string `json:"floor_functions"`
	Meta           Meta     `json:"_meta"`
}

// FacilityRecord is one categorized facility mention.
type FacilityRecord struct {
	ProjectName  string `json:"project_name"`
	City         string `json:"city,omitempty"`
	FacilityType string `json:"facility_type"`
	Description  string `json:"description"`
	Meta         Meta   `json:"_meta"`
}

// SalesPointRecord is one selling-point line (design, pricing, ...).
type SalesPointRecord struct {
	ProjectName string `json:"project_name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Meta        Meta   `json:"_meta"`
}

// UnitTypeRecord is one unit type with its area range.
type UnitTypeRecord struct {
	ProjectName              string  `json:"project_name"`
	City                     string  `json:"city,omitempty"`
	TypeName                 string  `json:"type_name"`
	AreaMin                  float64 `json:"area_min"`
	AreaMax                  float64 `json:"area_max"`
	GrossAreaM2              float64 `json:"gross_area_m2"`
	TypicalLayoutDescription string  `json:"typical_layout_description,omitempty"`
	Meta                     Meta    `json:"_meta"`
}

// SalesStatusRecord is one absorption snapshot for a project.
type SalesStatusRecord struct {
	ProjectName     string  `json:"project_name"`
	City            string  `json:"city"`
	SalesRatePct    float64 `json:"sales_rate_pct"`
	SoldUnits       *int    `json:"sold_units"`
	LaunchedUnits   *int    `json:"launched_units"`
	AvailableUnits  *int    `json:"available_units"`
	SaleDescription string  `json:"sale_description"`
	Meta            Meta    `json:"_meta"`
}

// FactorRecord is one price change factor attribution for a project.
type FactorRecord struct {
	ProjectName    string  `json:"project_name"`
	FactorType     string  `json:"factor_type"`
	FactorCategory string  `json:"factor_category"`
	RatePct        float64 `json:"rate_pct"`
	Description    *string `json:"description"`
	Meta           Meta    `json:"_meta"`
}

// DistrictMetricRecord is one city- or district-level price metric.
// District and period are only set for multi-period table rows.
type DistrictMetricRecord struct {
	City         string  `json:"city"`
	DistrictName string  `json:"district_name,omitempty"`
	PeriodYear   int     `json:"period_year,omitempty"`
	PeriodHalf   string  `json:"period_half,omitempty"`
	MetricType   string  `json:"metric_type"`
	ValueNumeric float64 `json:"value_numeric"`
	ValueText    string  `json:"value_text"`
	Meta         Meta    `json:"_meta"`
}

// SegmentRecord is one grade-segment share for a city (or "National").
type SegmentRecord struct {
	City          string  `json:"city"`
	GradeCode     string  `json:"grade_code"`
	Segment       string  `json:"segment"`
	ProportionPct float64 `json:"proportion_pct"`
	PriceRange    string  `json:"price_range"`
	Meta          Meta    `json:"_meta"`
}

// Extractor is one report-family extraction driver. Extract returns
// per-artifact record counts keyed by artifact filename.
type Extractor interface {
	Name() string
	Extract() (map[string]int, error)
}

// readSource reads a report text file from the source directory. A
// missing file surfaces as fs.ErrNotExist so callers can decide whether
// the file is required or optional.
func readSource(sourceDir, filename string) (string, error) {
	data, err := os.ReadFile(filepath.Join(sourceDir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to read source file %s: %w", filename, err)
	}
	return string(data), nil
}

// writeArtifact writes records as an indented JSON array in the output
// directory, creating the directory if needed.
func writeArtifact(outputDir, filename string, records interface{}) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filename, err)
	}
	path := filepath.Join(outputDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}
