package ingest

import (
	"database/sql"
	"fmt"

	"github.com/mr-pipeline/internal/config"
	"github.com/mr-pipeline/internal/debug"
	"github.com/mr-pipeline/internal/extract"
	"github.com/mr-pipeline/internal/match"
)

// Confidence recorded when an artifact record does not carry one
const defaultConfidence = 0.8

// StageResult reports one seeding stage. Unmatched counts records dropped
// because a reference (project, city, district, period) could not be
// resolved.
type StageResult struct {
	Created   int
	Unmatched int
}

// StageOutcome pairs a stage name with its result for summary output
type StageOutcome struct {
	Name   string
	Result StageResult
	Err    error
}

// Seeder drives the artifact-to-database load. Every stage runs in its own
// transaction, so a failing stage rolls back cleanly without touching the
// others. Project names are resolved through the staged matcher; records
// whose names fall below the acceptance threshold are counted and skipped.
type Seeder struct {
	db          *sql.DB
	store       *Store
	matcher     *match.Matcher
	ArtifactDir string
	Debug       bool

	// source filename -> id, 0 caches a known-unregistered file
	srcIDs map[string]int64
}

// NewSeeder snapshots the project index and prepares the matcher. Construct
// it after reference data is seeded so the snapshot covers the catalogue.
func NewSeeder(localDebug bool, db *sql.DB, artifactDir string, rules *config.MatchRules) (*Seeder, error) {
	store := NewStore(db)
	projects, err := store.ProjectsSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot projects: %w", err)
	}
	matcher, err := match.NewMatcher(projects, rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build matcher: %w", err)
	}
	return &Seeder{
		db:          db,
		store:       store,
		matcher:     matcher,
		ArtifactDir: artifactDir,
		Debug:       localDebug,
		srcIDs:      make(map[string]int64),
	}, nil
}

func (s *Seeder) resolveProject(name string) (int64, bool) {
	id, conf, ok := s.matcher.Match(name)
	if !ok || conf < match.MinConfidence {
		return 0, false
	}
	return id, true
}

// sourceID resolves a source filename to its source_reports id, caching
// both hits and misses across stages.
func (s *Seeder) sourceID(filename string) (int64, bool) {
	if filename == "" {
		return 0, false
	}
	if id, ok := s.srcIDs[filename]; ok {
		return id, id != 0
	}
	id, found, err := s.store.SourceReportID(filename)
	if err != nil {
		debug.DebugOutput(s.Debug, "Warning: failed to look up source %s: %v", filename, err)
		return 0, false
	}
	if !found {
		s.srcIDs[filename] = 0
		return 0, false
	}
	s.srcIDs[filename] = id
	return id, true
}

// trackLineage writes a lineage row for a newly created record. Unregistered
// source files degrade to untracked creation.
func (s *Seeder) trackLineage(tx *sql.Tx, tableName string, recordID int64, meta extract.Meta) error {
	srcID, ok := s.sourceID(meta.SourceFile)
	if !ok {
		return nil
	}
	confidence := meta.Confidence
	if confidence == 0 {
		confidence = defaultConfidence
	}
	if err := s.store.TrackLineage(tx, tableName, recordID, srcID, meta.Page, confidence); err != nil {
		return fmt.Errorf("failed to track lineage for %s %d: %w", tableName, recordID, err)
	}
	return nil
}

// SeedBlocks loads casestudy_blocks.json into project_blocks
func (s *Seeder) SeedBlocks() (StageResult, error) {
	debug.DebugHeader(s.Debug)
	defer debug.DebugFooter(s.Debug)

	var res StageResult
	var records []extract.BlockRecord
	if err := loadArtifact(s.ArtifactDir, "casestudy_blocks.json", &records); err != nil {
		debug.DebugOutput(s.Debug, "Skipping blocks: %v", err)
		return res, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		projectID, ok := s.resolveProject(rec.ProjectName)
		if !ok {
			res.Unmatched++
			continue
		}
		id, created, err := s.store.GetOrCreateBlock(tx, projectID, rec.BlockName, rec.Floors)
		if err != nil {
			return res, fmt.Errorf("failed to upsert block %s: %w", rec.BlockName, err)
		}
		if created {
			res.Created++
			if err := s.trackLineage(tx, "project_blocks", id, rec.Meta); err != nil {
				return res, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit blocks: %w", err)
	}
	return res, nil
}

// SeedUnitTypes merges casestudy and market unit type artifacts into
// unit_types. Records without a layout description get one derived from
// their area range.
func (s *Seeder) SeedUnitTypes() (StageResult, error) {
	debug.DebugHeader(s.Debug)
	defer debug.DebugFooter(s.Debug)

	var res StageResult
	tx, err := s.db.Begin()
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, filename := range []string{"casestudy_unit_types.json", "market_unit_types.json"} {
		var records []extract.UnitTypeRecord
		if err := loadArtifact(s.ArtifactDir, filename, &records); err != nil {
			debug.DebugOutput(s.Debug, "Skipping %s: %v", filename, err)
			continue
		}
		for i, rec := range records {
			debug.DebugProgress(s.Debug, i+1, len(records), 25)
			projectID, ok := s.resolveProject(rec.ProjectName)
			if !ok {
				res.Unmatched++
				continue
			}
			layout := rec.TypicalLayoutDescription
			if layout == "" {
				layout = layoutFromAreaRange(rec.AreaMin, rec.AreaMax)
			}
			id, created, err := s.store.GetOrCreateUnitType(tx, projectID, rec.TypeName, rec.GrossAreaM2, layout)
			if err != nil {
				return res, fmt.Errorf("failed to upsert unit type %s: %w", rec.TypeName, err)
			}
			if created {
				res.Created++
				if err := s.trackLineage(tx, "unit_types", id, rec.Meta); err != nil {
					return res, err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit unit types: %w", err)
	}
	return res, nil
}

// layoutFromAreaRange builds the fallback layout description when the
// extraction pass did not produce one
func layoutFromAreaRange(areaMin, areaMax float64) string {
	if areaMin == areaMax {
		return fmt.Sprintf("%vm2", areaMin)
	}
	return fmt.Sprintf("%v-%vm2", areaMin, areaMax)
}

// SeedFacilities merges casestudy and market facility artifacts into
// project_facilities
func (s *Seeder) SeedFacilities() (StageResult, error) {
	debug.DebugHeader(s.Debug)
	defer debug.DebugFooter(s.Debug)

	var res StageResult
	tx, err := s.db.Begin()
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, filename := range []string{"casestudy_facilities.json", "market_facilities.json"} {
		var records []extract.FacilityRecord
		if err := loadArtifact(s.ArtifactDir, filename, &records); err != nil {
			debug.DebugOutput(s.Debug, "Skipping %s: %v", filename, err)
			continue
		}
		for _, rec := range records {
			projectID, ok := s.resolveProject(rec.ProjectName)
			if !ok {
				res.Unmatched++
				continue
			}
			id, created, err := s.store.GetOrCreateFacility(tx, projectID, rec.FacilityType, rec.Description)
			if err != nil {
				return res, fmt.Errorf("failed to upsert facility %s: %w", rec.FacilityType, err)
			}
			if created {
				res.Created++
				if err := s.trackLineage(tx, "project_facilities", id, rec.Meta); err != nil {
					return res, err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit facilities: %w", err)
	}
	return res, nil
}

// SeedSalesPoints loads casestudy_sales_points.json into
// project_sales_points. Ranking follows artifact order.
func (s *Seeder) SeedSalesPoints() (StageResult, error) {
	debug.DebugHeader(s.Debug)
	defer debug.DebugFooter(s.Debug)

	var res StageResult
	var records []extract.SalesPointRecord
	if err := loadArtifact(s.ArtifactDir, "casestudy_sales_points.json", &records); err != nil {
		debug.DebugOutput(s.Debug, "Skipping sales points: %v", err)
		return res, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, rec := range records {
		projectID, ok := s.resolveProject(rec.ProjectName)
		if !ok {
			res.Unmatched++
			continue
		}
		id, created, err := s.store.GetOrCreateSalesPoint(tx, projectID, rec.Category, rec.Description, i+1)
		if err != nil {
			return res, fmt.Errorf("failed to upsert sales point for %s: %w", rec.ProjectName, err)
		}
		if created {
			res.Created++
			if err := s.trackLineage(tx, "project_sales_points", id, rec.Meta); err != nil {
				return res, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit sales points: %w", err)
	}
	return res, nil
}

// SeedSalesStatuses loads market_sales_statuses.json into sales_statuses
// against the default report period.
func (s *Seeder) SeedSalesStatuses() (StageResult, error) {
	debug.DebugHeader(s.Debug)
	defer debug.DebugFooter(s.Debug)

	var res StageResult
	var records []extract.SalesStatusRecord
	if err := loadArtifact(s.ArtifactDir, "market_sales_statuses.json", &records); err != nil {
		debug.DebugOutput(s.Debug, "Skipping sales statuses: %v", err)
		return res, nil
	}

	periodID, found, err := s.store.PeriodID(defaultPeriodYear, defaultPeriodHalf)
	if err != nil {
		return res, fmt.Errorf("failed to look up default period: %w", err)
	}
	if !found {
		debug.DebugOutput(s.Debug, "Period %d-%s not seeded; skipping sales statuses", defaultPeriodYear, defaultPeriodHalf)
		return res, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		projectID, ok := s.resolveProject(rec.ProjectName)
		if !ok {
			res.Unmatched++
			continue
		}
		id, created, err := s.store.GetOrCreateSalesStatus(tx, projectID, periodID,
			rec.SalesRatePct, rec.SoldUnits, rec.LaunchedUnits, rec.AvailableUnits)
		if err != nil {
			return res, fmt.Errorf("failed to upsert sales status for %s: %w", rec.ProjectName, err)
		}
		if created {
			res.Created++
			if err := s.trackLineage(tx, "sales_statuses", id, rec.Meta); err != nil {
				return res, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit sales statuses: %w", err)
	}
	return res, nil
}

// SeedPriceFactors loads price_factors.json. Each factor needs a parent
// price record; one is created against the default period when the project
// has none, carrying the factor's rate as the period price change.
func (s *Seeder) SeedPriceFactors() (StageResult, error) {
	debug.DebugHeader(s.Debug)
	defer debug.DebugFooter(s.Debug)

	var res StageResult
	var records []extract.FactorRecord
	if err := loadArtifact(s.ArtifactDir, "price_factors.json", &records); err != nil {
		debug.DebugOutput(s.Debug, "Skipping price factors: %v", err)
		return res, nil
	}

	periodID, found, err := s.store.PeriodID(defaultPeriodYear, defaultPeriodHalf)
	if err != nil {
		return res, fmt.Errorf("failed to look up default period: %w", err)
	}
	if !found {
		debug.DebugOutput(s.Debug, "Period %d-%s not seeded; skipping price factors", defaultPeriodYear, defaultPeriodHalf)
		return res, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	priceRecords := 0
	for _, rec := range records {
		projectID, ok := s.resolveProject(rec.ProjectName)
		if !ok {
			res.Unmatched++
			continue
		}

		priceID, priceCreated, err := s.store.GetOrCreatePriceRecord(tx, projectID, periodID,
			&rec.RatePct, rec.Meta.SourceFile)
		if err != nil {
			return res, fmt.Errorf("failed to upsert price record for %s: %w", rec.ProjectName, err)
		}
		if priceCreated {
			priceRecords++
			if err := s.trackLineage(tx, "price_records", priceID, rec.Meta); err != nil {
				return res, err
			}
		}

		id, created, err := s.store.GetOrCreatePriceFactor(tx, priceID, rec.FactorType, rec.FactorCategory, rec.Description)
		if err != nil {
			return res, fmt.Errorf("failed to upsert price factor for %s: %w", rec.ProjectName, err)
		}
		if created {
			res.Created++
			if err := s.trackLineage(tx, "price_change_factors", id, rec.Meta); err != nil {
				return res, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit price factors: %w", err)
	}
	debug.DebugOutput(s.Debug, "Created %d price records while seeding factors", priceRecords)
	return res, nil
}

// SeedSegments loads segment_summaries.json into market_segment_summaries.
// National rows have no city to attach to and are skipped.
func (s *Seeder) SeedSegments() (StageResult, error) {
	debug.DebugHeader(s.Debug)
	defer debug.DebugFooter(s.Debug)

	var res StageResult
	var records []extract.SegmentRecord
	if err := loadArtifact(s.ArtifactDir, "segment_summaries.json", &records); err != nil {
		debug.DebugOutput(s.Debug, "Skipping segments: %v", err)
		return res, nil
	}

	periodID, found, err := s.store.PeriodID(defaultPeriodYear, defaultPeriodHalf)
	if err != nil {
		return res, fmt.Errorf("failed to look up default period: %w", err)
	}
	if !found {
		debug.DebugOutput(s.Debug, "Period %d-%s not seeded; skipping segments", defaultPeriodYear, defaultPeriodHalf)
		return res, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if rec.City == "" || rec.City == "National" {
			continue
		}
		cityID, found, err := s.store.CityIDByName(rec.City)
		if err != nil {
			return res, fmt.Errorf("failed to look up city %s: %w", rec.City, err)
		}
		if !found {
			cityID, found, err = s.store.CityIDByNameLike(rec.City)
			if err != nil {
				return res, fmt.Errorf("failed to look up city %s: %w", rec.City, err)
			}
		}
		if !found {
			res.Unmatched++
			continue
		}

		id, created, err := s.store.GetOrCreateSegment(tx, cityID, periodID, rec.GradeCode, rec.Segment)
		if err != nil {
			return res, fmt.Errorf("failed to upsert segment %s/%s: %w", rec.City, rec.GradeCode, err)
		}
		if created {
			res.Created++
			if err := s.trackLineage(tx, "market_segment_summaries", id, rec.Meta); err != nil {
				return res, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit segments: %w", err)
	}
	return res, nil
}

// SeedDistrictMetrics loads district_metrics.json, then computes aggregate
// metrics from stored price and project data for every district and period.
func (s *Seeder) SeedDistrictMetrics() (StageResult, error) {
	debug.DebugHeader(s.Debug)
	defer debug.DebugFooter(s.Debug)

	var res StageResult
	tx, err := s.db.Begin()
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var records []extract.DistrictMetricRecord
	if err := loadArtifact(s.ArtifactDir, "district_metrics.json", &records); err != nil {
		debug.DebugOutput(s.Debug, "No extracted district metrics: %v", err)
	} else {
		for _, rec := range records {
			if rec.City == "" {
				continue
			}
			cityID, found, err := s.store.CityIDByName(rec.City)
			if err != nil {
				return res, fmt.Errorf("failed to look up city %s: %w", rec.City, err)
			}
			if !found {
				res.Unmatched++
				continue
			}

			year, half := rec.PeriodYear, rec.PeriodHalf
			if year == 0 {
				year = defaultPeriodYear
			}
			if half == "" {
				half = defaultPeriodHalf
			}
			periodID, found, err := s.store.PeriodID(year, half)
			if err != nil {
				return res, fmt.Errorf("failed to look up period %d-%s: %w", year, half, err)
			}
			if !found {
				res.Unmatched++
				continue
			}

			var districtID int64
			if rec.DistrictName != "" {
				districtID, found, err = s.store.DistrictIDLike(cityID, rec.DistrictName)
			} else {
				// City-level metric: pin to the city's first district
				districtID, found, err = s.store.FirstDistrictID(cityID)
			}
			if err != nil {
				return res, fmt.Errorf("failed to look up district for %s: %w", rec.City, err)
			}
			if !found {
				res.Unmatched++
				continue
			}

			id, created, err := s.store.GetOrCreateDistrictMetric(tx, districtID, periodID,
				rec.MetricType, &rec.ValueNumeric, rec.ValueText)
			if err != nil {
				return res, fmt.Errorf("failed to upsert district metric %s: %w", rec.MetricType, err)
			}
			if created {
				res.Created++
				if err := s.trackLineage(tx, "district_metrics", id, rec.Meta); err != nil {
					return res, err
				}
			}
		}
	}

	computed, err := s.computeAggregates(tx)
	if err != nil {
		return res, err
	}
	res.Created += computed

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit district metrics: %w", err)
	}
	debug.DebugOutput(s.Debug, "Computed %d aggregate district metrics", computed)
	return res, nil
}

// computeAggregates derives avg_price and supply_count metrics per district
// and period from already-seeded rows. Computed rows carry no lineage.
func (s *Seeder) computeAggregates(tx *sql.Tx) (int, error) {
	created := 0

	result, err := tx.Exec(`
		INSERT INTO district_metrics (district_id, period_id, metric_type, value_numeric, value_text)
		SELECT p.district_id, pr.period_id, 'avg_price',
		       ROUND(AVG(pr.price_usd_per_m2)::numeric, 2), 'Computed from price_records'
		FROM price_records pr
		JOIN projects p ON p.id = pr.project_id
		WHERE pr.price_usd_per_m2 IS NOT NULL AND p.district_id IS NOT NULL
		GROUP BY p.district_id, pr.period_id
		ON CONFLICT (district_id, period_id, metric_type) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to compute average prices: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count computed average prices: %w", err)
	}
	created += int(affected)

	// Project counts are period-independent but keyed per period so every
	// period reads consistently.
	result, err = tx.Exec(`
		INSERT INTO district_metrics (district_id, period_id, metric_type, value_numeric, value_text)
		SELECT d.id, rp.id, 'supply_count',
		       COUNT(p.id)::double precision, 'Computed from projects table'
		FROM districts d
		CROSS JOIN report_periods rp
		JOIN projects p ON p.district_id = d.id
		GROUP BY d.id, rp.id
		ON CONFLICT (district_id, period_id, metric_type) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to compute supply counts: %w", err)
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count computed supply counts: %w", err)
	}
	created += int(affected)

	return created, nil
}

// RunAll runs every seeding stage in dependency order. A failing stage is
// recorded in its outcome and the remaining stages still run.
func (s *Seeder) RunAll() []StageOutcome {
	debug.DebugHeader(s.Debug)
	defer debug.DebugFooter(s.Debug)

	stages := []struct {
		name string
		run  func() (StageResult, error)
	}{
		{"blocks", s.SeedBlocks},
		{"unit_types", s.SeedUnitTypes},
		{"facilities", s.SeedFacilities},
		{"sales_points", s.SeedSalesPoints},
		{"price_factors", s.SeedPriceFactors},
		{"sales_statuses", s.SeedSalesStatuses},
		{"segments", s.SeedSegments},
		{"district_metrics", s.SeedDistrictMetrics},
	}

	outcomes := make([]StageOutcome, 0, len(stages))
	for _, stage := range stages {
		result, err := stage.run()
		if err != nil {
			debug.DebugOutput(s.Debug, "Warning: stage %s failed: %v", stage.name, err)
		}
		outcomes = append(outcomes, StageOutcome{Name: stage.name, Result: result, Err: err})
	}
	return outcomes
}
