package db

import (
	"database/sql"
	"fmt"
)

// schemaStatements creates the full pipeline schema. Unique constraints
// double as the natural keys the ingestion layer upserts against, so two
// workers racing to create the same entity serialize on the constraint
// instead of duplicating rows.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS cities (
		id SERIAL PRIMARY KEY,
		name_en TEXT NOT NULL UNIQUE,
		name_vi TEXT,
		name_ko TEXT,
		region TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS districts (
		id SERIAL PRIMARY KEY,
		city_id INTEGER NOT NULL REFERENCES cities(id),
		name_en TEXT NOT NULL,
		name_vi TEXT,
		name_ko TEXT,
		district_type TEXT,
		UNIQUE (city_id, name_en)
	)`,
	`CREATE TABLE IF NOT EXISTS wards (
		id SERIAL PRIMARY KEY,
		district_id INTEGER NOT NULL REFERENCES districts(id),
		name_en TEXT NOT NULL,
		name_vi TEXT,
		UNIQUE (district_id, name_en)
	)`,
	`CREATE TABLE IF NOT EXISTS report_periods (
		id SERIAL PRIMARY KEY,
		year INTEGER NOT NULL,
		half TEXT NOT NULL,
		report_date DATE,
		report_type TEXT,
		UNIQUE (year, half)
	)`,
	`CREATE TABLE IF NOT EXISTS grade_definitions (
		id SERIAL PRIMARY KEY,
		city_id INTEGER REFERENCES cities(id),
		grade_code TEXT NOT NULL,
		min_price_usd DOUBLE PRECISION,
		max_price_usd DOUBLE PRECISION,
		segment TEXT,
		period_id INTEGER REFERENCES report_periods(id),
		UNIQUE (city_id, grade_code, period_id)
	)`,
	`CREATE TABLE IF NOT EXISTS developers (
		id SERIAL PRIMARY KEY,
		name_en TEXT NOT NULL UNIQUE,
		name_vi TEXT,
		stock_code TEXT,
		market_cap DOUBLE PRECISION,
		hq_city_id INTEGER REFERENCES cities(id),
		established_year INTEGER,
		website TEXT,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		developer_id INTEGER REFERENCES developers(id),
		district_id INTEGER REFERENCES districts(id),
		ward_id INTEGER REFERENCES wards(id),
		address TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		total_area_m2 DOUBLE PRECISION,
		total_units INTEGER,
		project_type TEXT,
		status TEXT,
		launch_date DATE,
		completion_date DATE,
		grade_primary TEXT,
		grade_secondary TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS project_blocks (
		id SERIAL PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		block_name TEXT NOT NULL,
		floors INTEGER,
		units_per_floor INTEGER,
		total_units INTEGER,
		status TEXT,
		UNIQUE (project_id, block_name)
	)`,
	`CREATE TABLE IF NOT EXISTS unit_types (
		id SERIAL PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		block_id INTEGER REFERENCES project_blocks(id),
		type_name TEXT NOT NULL,
		net_area_m2 DOUBLE PRECISION,
		gross_area_m2 DOUBLE PRECISION,
		unit_count INTEGER,
		typical_layout_description TEXT,
		UNIQUE (project_id, type_name)
	)`,
	`CREATE TABLE IF NOT EXISTS price_records (
		id SERIAL PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		unit_type_id INTEGER REFERENCES unit_types(id),
		period_id INTEGER NOT NULL REFERENCES report_periods(id),
		price_vnd_per_m2 DOUBLE PRECISION,
		price_usd_per_m2 DOUBLE PRECISION,
		price_change_pct DOUBLE PRECISION,
		price_incl_vat BOOLEAN DEFAULT TRUE,
		source_report TEXT,
		UNIQUE (project_id, period_id)
	)`,
	`CREATE TABLE IF NOT EXISTS price_change_factors (
		id SERIAL PRIMARY KEY,
		price_record_id INTEGER NOT NULL REFERENCES price_records(id),
		factor_type TEXT NOT NULL,
		factor_category TEXT NOT NULL,
		description TEXT,
		UNIQUE (price_record_id, factor_type, factor_category)
	)`,
	`CREATE TABLE IF NOT EXISTS supply_records (
		id SERIAL PRIMARY KEY,
		project_id INTEGER REFERENCES projects(id),
		district_id INTEGER REFERENCES districts(id),
		period_id INTEGER NOT NULL REFERENCES report_periods(id),
		total_inventory INTEGER,
		new_supply INTEGER,
		sold_units INTEGER,
		absorption_rate_pct DOUBLE PRECISION,
		remaining_inventory INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS sales_statuses (
		id SERIAL PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		block_id INTEGER REFERENCES project_blocks(id),
		period_id INTEGER NOT NULL REFERENCES report_periods(id),
		launched_units INTEGER,
		sold_units INTEGER,
		held_units INTEGER,
		available_units INTEGER,
		sales_rate_pct DOUBLE PRECISION,
		UNIQUE (project_id, period_id)
	)`,
	`CREATE TABLE IF NOT EXISTS project_facilities (
		id SERIAL PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		facility_type TEXT NOT NULL,
		facility_name TEXT,
		description TEXT,
		UNIQUE (project_id, facility_type)
	)`,
	`CREATE TABLE IF NOT EXISTS project_sales_points (
		id SERIAL PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		ranking INTEGER,
		UNIQUE (project_id, category, description)
	)`,
	`CREATE TABLE IF NOT EXISTS competitor_comparisons (
		id SERIAL PRIMARY KEY,
		subject_project_id INTEGER NOT NULL REFERENCES projects(id),
		competitor_project_id INTEGER NOT NULL REFERENCES projects(id),
		period_id INTEGER NOT NULL REFERENCES report_periods(id),
		dimension TEXT NOT NULL,
		subject_score DOUBLE PRECISION,
		competitor_score DOUBLE PRECISION,
		analysis_notes TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS market_segment_summaries (
		id SERIAL PRIMARY KEY,
		city_id INTEGER NOT NULL REFERENCES cities(id),
		district_id INTEGER REFERENCES districts(id),
		period_id INTEGER NOT NULL REFERENCES report_periods(id),
		grade_code TEXT NOT NULL,
		segment TEXT,
		avg_price_usd DOUBLE PRECISION,
		total_supply INTEGER,
		total_sold INTEGER,
		absorption_rate DOUBLE PRECISION,
		new_launches INTEGER,
		UNIQUE (city_id, period_id, grade_code)
	)`,
	`CREATE TABLE IF NOT EXISTS district_metrics (
		id SERIAL PRIMARY KEY,
		district_id INTEGER NOT NULL REFERENCES districts(id),
		period_id INTEGER NOT NULL REFERENCES report_periods(id),
		metric_type TEXT NOT NULL,
		value_numeric DOUBLE PRECISION,
		value_text TEXT,
		UNIQUE (district_id, period_id, metric_type)
	)`,
	`CREATE TABLE IF NOT EXISTS source_reports (
		id SERIAL PRIMARY KEY,
		filename TEXT NOT NULL UNIQUE,
		report_type TEXT,
		city_id INTEGER REFERENCES cities(id),
		period_id INTEGER REFERENCES report_periods(id),
		page_count INTEGER,
		ingested_at TIMESTAMP,
		status TEXT DEFAULT 'pending'
	)`,
	`CREATE TABLE IF NOT EXISTS data_lineage (
		id SERIAL PRIMARY KEY,
		table_name TEXT NOT NULL,
		record_id INTEGER NOT NULL,
		source_report_id INTEGER NOT NULL REFERENCES source_reports(id),
		page_number INTEGER,
		confidence_score DOUBLE PRECISION,
		extracted_at TIMESTAMP DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_data_lineage_record ON data_lineage(table_name, record_id)`,
	`CREATE INDEX IF NOT EXISTS idx_data_lineage_source ON data_lineage(source_report_id)`,
}

// EnsureSchema creates all pipeline tables if they do not exist
func EnsureSchema(database *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := database.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
