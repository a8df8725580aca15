package ingest

import (
	"database/sql"
	"fmt"

	"github.com/mr-pipeline/internal/match"
)

// Store wraps the natural-key get-or-create queries the seeding stages run.
// Every entity has an explicit natural key backed by a unique constraint, so
// re-running a stage against unchanged artifacts creates nothing new and
// racing creators serialize on the constraint instead of duplicating rows.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database connection
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// getOrCreateID is the shared get-or-create core: natural-key select first,
// insert when absent. Insert statements end in ON CONFLICT ... DO NOTHING
// RETURNING id, so a creator that loses the race gets no row back and
// re-reads the winner's.
func getOrCreateID(tx *sql.Tx, selectSQL string, selectArgs []interface{}, insertSQL string, insertArgs []interface{}) (int64, bool, error) {
	var id int64
	err := tx.QueryRow(selectSQL, selectArgs...).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, err
	}

	err = tx.QueryRow(insertSQL, insertArgs...).Scan(&id)
	if err == sql.ErrNoRows {
		if err := tx.QueryRow(selectSQL, selectArgs...).Scan(&id); err != nil {
			return 0, false, fmt.Errorf("failed to re-read row after insert conflict: %w", err)
		}
		return id, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// GetOrCreateBlock upserts a project block keyed by (project_id, block_name)
func (s *Store) GetOrCreateBlock(tx *sql.Tx, projectID int64, blockName string, floors *int) (int64, bool, error) {
	return getOrCreateID(tx,
		`SELECT id FROM project_blocks WHERE project_id = $1 AND block_name = $2`,
		[]interface{}{projectID, blockName},
		`INSERT INTO project_blocks (project_id, block_name, floors)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (project_id, block_name) DO NOTHING
		 RETURNING id`,
		[]interface{}{projectID, blockName, floors})
}

// GetOrCreateUnitType upserts a unit type keyed by (project_id, type_name)
func (s *Store) GetOrCreateUnitType(tx *sql.Tx, projectID int64, typeName string, grossAreaM2 float64, layout string) (int64, bool, error) {
	return getOrCreateID(tx,
		`SELECT id FROM unit_types WHERE project_id = $1 AND type_name = $2`,
		[]interface{}{projectID, typeName},
		`INSERT INTO unit_types (project_id, type_name, gross_area_m2, typical_layout_description)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (project_id, type_name) DO NOTHING
		 RETURNING id`,
		[]interface{}{projectID, typeName, grossAreaM2, layout})
}

// GetOrCreateFacility upserts a facility keyed by (project_id, facility_type)
func (s *Store) GetOrCreateFacility(tx *sql.Tx, projectID int64, facilityType, description string) (int64, bool, error) {
	return getOrCreateID(tx,
		`SELECT id FROM project_facilities WHERE project_id = $1 AND facility_type = $2`,
		[]interface{}{projectID, facilityType},
		`INSERT INTO project_facilities (project_id, facility_type, description)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (project_id, facility_type) DO NOTHING
		 RETURNING id`,
		[]interface{}{projectID, facilityType, description})
}

// GetOrCreateSalesPoint upserts a sales point keyed by
// (project_id, category, description)
func (s *Store) GetOrCreateSalesPoint(tx *sql.Tx, projectID int64, category, description string, ranking int) (int64, bool, error) {
	return getOrCreateID(tx,
		`SELECT id FROM project_sales_points
		 WHERE project_id = $1 AND category = $2 AND description = $3`,
		[]interface{}{projectID, category, description},
		`INSERT INTO project_sales_points (project_id, category, description, ranking)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (project_id, category, description) DO NOTHING
		 RETURNING id`,
		[]interface{}{projectID, category, description, ranking})
}

// GetOrCreateSalesStatus upserts a sales status keyed by
// (project_id, period_id)
func (s *Store) GetOrCreateSalesStatus(tx *sql.Tx, projectID, periodID int64, ratePct float64, sold, launched, available *int) (int64, bool, error) {
	return getOrCreateID(tx,
		`SELECT id FROM sales_statuses WHERE project_id = $1 AND period_id = $2`,
		[]interface{}{projectID, periodID},
		`INSERT INTO sales_statuses (project_id, period_id, sales_rate_pct, sold_units, launched_units, available_units)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (project_id, period_id) DO NOTHING
		 RETURNING id`,
		[]interface{}{projectID, periodID, ratePct, sold, launched, available})
}

// GetOrCreatePriceRecord upserts a price record keyed by
// (project_id, period_id)
func (s *Store) GetOrCreatePriceRecord(tx *sql.Tx, projectID, periodID int64, changePct *float64, sourceReport string) (int64, bool, error) {
	return getOrCreateID(tx,
		`SELECT id FROM price_records WHERE project_id = $1 AND period_id = $2`,
		[]interface{}{projectID, periodID},
		`INSERT INTO price_records (project_id, period_id, price_change_pct, source_report)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (project_id, period_id) DO NOTHING
		 RETURNING id`,
		[]interface{}{projectID, periodID, changePct, sourceReport})
}

// GetOrCreatePriceFactor upserts a price change factor keyed by
// (price_record_id, factor_type, factor_category)
func (s *Store) GetOrCreatePriceFactor(tx *sql.Tx, priceRecordID int64, factorType, factorCategory string, description *string) (int64, bool, error) {
	return getOrCreateID(tx,
		`SELECT id FROM price_change_factors
		 WHERE price_record_id = $1 AND factor_type = $2 AND factor_category = $3`,
		[]interface{}{priceRecordID, factorType, factorCategory},
		`INSERT INTO price_change_factors (price_record_id, factor_type, factor_category, description)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (price_record_id, factor_type, factor_category) DO NOTHING
		 RETURNING id`,
		[]interface{}{priceRecordID, factorType, factorCategory, description})
}

// GetOrCreateSegment upserts a segment summary keyed by
// (city_id, period_id, grade_code)
func (s *Store) GetOrCreateSegment(tx *sql.Tx, cityID, periodID int64, gradeCode, segment string) (int64, bool, error) {
	return getOrCreateID(tx,
		`SELECT id FROM market_segment_summaries
		 WHERE city_id = $1 AND period_id = $2 AND grade_code = $3`,
		[]interface{}{cityID, periodID, gradeCode},
		`INSERT INTO market_segment_summaries (city_id, period_id, grade_code, segment)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (city_id, period_id, grade_code) DO NOTHING
		 RETURNING id`,
		[]interface{}{cityID, periodID, gradeCode, segment})
}

// GetOrCreateDistrictMetric upserts a district metric keyed by
// (district_id, period_id, metric_type)
func (s *Store) GetOrCreateDistrictMetric(tx *sql.Tx, districtID, periodID int64, metricType string, valueNumeric *float64, valueText string) (int64, bool, error) {
	return getOrCreateID(tx,
		`SELECT id FROM district_metrics
		 WHERE district_id = $1 AND period_id = $2 AND metric_type = $3`,
		[]interface{}{districtID, periodID, metricType},
		`INSERT INTO district_metrics (district_id, period_id, metric_type, value_numeric, value_text)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (district_id, period_id, metric_type) DO NOTHING
		 RETURNING id`,
		[]interface{}{districtID, periodID, metricType, valueNumeric, valueText})
}

// TrackLineage writes one provenance row for a newly created record
func (s *Store) TrackLineage(tx *sql.Tx, tableName string, recordID, sourceReportID int64, page *int, confidence float64) error {
	_, err := tx.Exec(`
		INSERT INTO data_lineage (table_name, record_id, source_report_id, page_number, confidence_score, extracted_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, tableName, recordID, sourceReportID, page, confidence)
	if err != nil {
		return fmt.Errorf("failed to insert lineage for %s/%d: %w", tableName, recordID, err)
	}
	return nil
}

// ProjectsSnapshot loads the canonical project table for matcher construction
func (s *Store) ProjectsSnapshot() ([]match.Project, error) {
	rows, err := s.db.Query(`SELECT id, name FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []match.Project
	for rows.Next() {
		var p match.Project
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// PeriodID looks up a report period by year and half
func (s *Store) PeriodID(year int, half string) (int64, bool, error) {
	return s.lookupID(`SELECT id FROM report_periods WHERE year = $1 AND half = $2`, year, half)
}

// CityIDByName looks up a city by exact English name
func (s *Store) CityIDByName(name string) (int64, bool, error) {
	return s.lookupID(`SELECT id FROM cities WHERE name_en = $1`, name)
}

// CityIDByNameLike looks up a city by partial English name, for chart labels
// like "HCMC" that abbreviate the canonical spelling
func (s *Store) CityIDByNameLike(name string) (int64, bool, error) {
	return s.lookupID(`SELECT id FROM cities WHERE name_en ILIKE '%' || $1 || '%' ORDER BY id LIMIT 1`, name)
}

// DistrictIDLike looks up a district within a city by partial name
func (s *Store) DistrictIDLike(cityID int64, name string) (int64, bool, error) {
	return s.lookupID(
		`SELECT id FROM districts WHERE city_id = $1 AND name_en ILIKE '%' || $2 || '%' ORDER BY id LIMIT 1`,
		cityID, name)
}

// FirstDistrictID returns a city's first district, used to anchor city-level
// metrics that carry no district of their own
func (s *Store) FirstDistrictID(cityID int64) (int64, bool, error) {
	return s.lookupID(`SELECT id FROM districts WHERE city_id = $1 ORDER BY id LIMIT 1`, cityID)
}

// SourceReportID looks up a registered source report by filename. A missing
// filename is not an error: callers degrade to untracked creation.
func (s *Store) SourceReportID(filename string) (int64, bool, error) {
	if filename == "" {
		return 0, false, nil
	}
	return s.lookupID(`SELECT id FROM source_reports WHERE filename = $1`, filename)
}

func (s *Store) lookupID(query string, args ...interface{}) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow(query, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
