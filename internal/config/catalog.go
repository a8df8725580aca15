package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceFile describes one report file the pipeline knows about: where its
// extractions came from and which city/period its contents cover. City is
// empty for reports that span cities.
type SourceFile struct {
	Filename   string `yaml:"filename"`
	ReportType string `yaml:"report_type"`
	City       string `yaml:"city,omitempty"`
	Year       int    `yaml:"year"`
	Half       string `yaml:"half"`
}

// SourceCatalog is the registry of known source report files.
type SourceCatalog struct {
	Sources []SourceFile `yaml:"sources"`
}

// LoadSourceCatalog loads the source catalogue from a YAML file, falling
// back to the built-in catalogue when path is empty or the file is missing.
func LoadSourceCatalog(path string) (*SourceCatalog, error) {
	if path == "" {
		return DefaultSourceCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSourceCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read source catalogue: %w", err)
	}

	var catalog SourceCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse source catalogue %s: %w", path, err)
	}
	if len(catalog.Sources) == 0 {
		return DefaultSourceCatalog(), nil
	}
	return &catalog, nil
}

// DefaultSourceCatalog returns the built-in registry of report files the
// extraction passes were produced from.
func DefaultSourceCatalog() *SourceCatalog {
	return &SourceCatalog{Sources: []SourceFile{
		{Filename: "mixed_use_casestudy_full.txt", ReportType: "case_study", Year: 2025, Half: "H2"},
		{Filename: "hcmc_pass1.txt", ReportType: "market_analysis", City: "Ho Chi Minh City", Year: 2025, Half: "H2"},
		{Filename: "hcmc_pass2.txt", ReportType: "market_analysis", City: "Ho Chi Minh City", Year: 2025, Half: "H2"},
		{Filename: "hcmc_pass3.txt", ReportType: "market_analysis", City: "Ho Chi Minh City", Year: 2025, Half: "H2"},
		{Filename: "hanoi_pass1.txt", ReportType: "market_analysis", City: "Hanoi", Year: 2025, Half: "H2"},
		{Filename: "hanoi_pass2.txt", ReportType: "market_analysis", City: "Hanoi", Year: 2025, Half: "H2"},
		{Filename: "hanoi_pass3.txt", ReportType: "market_analysis", City: "Hanoi", Year: 2025, Half: "H2"},
		{Filename: "binh_duong_pass1.txt", ReportType: "market_analysis", City: "Binh Duong", Year: 2025, Half: "H2"},
		{Filename: "binh_duong_pass2.txt", ReportType: "market_analysis", City: "Binh Duong", Year: 2025, Half: "H2"},
		{Filename: "binh_duong_pass3.txt", ReportType: "market_analysis", City: "Binh Duong", Year: 2025, Half: "H2"},
		{Filename: "developer_analysis_MIK_full.txt", ReportType: "developer_analysis", City: "Ho Chi Minh City", Year: 2025, Half: "H1"},
		{Filename: "sales_price_pass1.txt", ReportType: "price_analysis", Year: 2024, Half: "H1"},
		{Filename: "sales_price_pass2.txt", ReportType: "price_analysis", Year: 2024, Half: "H1"},
		{Filename: "sales_price_pass3.txt", ReportType: "price_analysis", Year: 2024, Half: "H1"},
		{Filename: "20250807_NHO-PD_HP-35ha_Proposal_full.txt", ReportType: "development_proposal", Year: 2025, Half: "H2"},
		{Filename: "20250825_NHO-PD_BD_Potential_Land_Review__Revised_full.txt", ReportType: "land_review", City: "Binh Duong", Year: 2025, Half: "H2"},
		{Filename: "20251017_Hai_Phong_3_Land_review_SWOT_full.txt", ReportType: "land_review", Year: 2025, Half: "H2"},
		{Filename: "20251017_NHO-PD_25ha_Duong_Kinh_Land_Review_issued_full.txt", ReportType: "land_review", Year: 2025, Half: "H2"},
		{Filename: "20251031_NHO-PD_240ha_Bac_Ninh_Land_Review_full.txt", ReportType: "land_review", Year: 2025, Half: "H2"},
	}}
}
