package ingest

import (
	"database/sql"
	"fmt"

	"github.com/mr-pipeline/internal/config"
	"github.com/mr-pipeline/internal/debug"
)

type cityDef struct {
	NameEn string
	NameVi string
	Region string
}

var referenceCities = []cityDef{
	{"Ho Chi Minh City", "TP. Hồ Chí Minh", "South"},
	{"Hanoi", "Hà Nội", "North"},
	{"Binh Duong", "Bình Dương", "South"},
	{"Da Nang", "Đà Nẵng", "Central"},
	{"Hai Phong", "Hải Phòng", "North"},
	{"Ha Long", "Hạ Long", "North"},
	{"Bac Ninh", "Bắc Ninh", "North"},
}

var referenceDistricts = map[string][]string{
	"Ho Chi Minh City": {"Thu Duc", "District 1", "District 2", "District 7", "District 9", "District 12", "Binh Thanh", "Nha Be"},
	"Hanoi":            {"Tay Ho", "Nam Tu Liem", "Gia Lam", "Dong Anh", "Cau Giay", "Dong Da"},
	"Binh Duong":       {"Thuan An", "Di An", "Thu Dau Mot", "Tan Uyen", "Ben Cat"},
	"Da Nang":          {"Hai Chau", "Ngu Hanh Son", "Son Tra"},
	"Hai Phong":        {"Duong Kinh", "Le Chan", "Hong Bang"},
	"Ha Long":          {"Bai Chay", "Hon Gai"},
	"Bac Ninh":         {"Tu Son", "Que Vo"},
}

type gradeDef struct {
	Code     string
	Segment  string
	MinPrice *float64
	MaxPrice *float64
}

func usd(v float64) *float64 { return &v }

// Grade bands follow the proportion charts' price ranges in USD/m2.
var referenceGrades = []gradeDef{
	{"A-I", "affordable", nil, usd(999)},
	{"M-I", "mid-end", usd(1000), usd(1999)},
	{"H-I", "high-end", usd(2000), usd(3999)},
	{"L", "luxury", usd(4000), nil},
	{"SL", "super-luxury", nil, nil},
}

// Grade definitions are pinned to the main analysis period.
const (
	defaultPeriodYear = 2024
	defaultPeriodHalf = "H1"
)

// SeedReferenceData loads cities, districts, report periods, grade
// definitions, and the project catalogue. Every insert is get-or-create, so
// the call is idempotent and safe to run against a part-seeded database.
// Returns the number of rows created.
func SeedReferenceData(localDebug bool, db *sql.DB, catalog *config.ProjectCatalog) (int, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created := 0

	for _, c := range referenceCities {
		_, made, err := getOrCreateID(tx,
			`SELECT id FROM cities WHERE name_en = $1`,
			[]interface{}{c.NameEn},
			`INSERT INTO cities (name_en, name_vi, region)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (name_en) DO NOTHING
			 RETURNING id`,
			[]interface{}{c.NameEn, c.NameVi, c.Region})
		if err != nil {
			return 0, fmt.Errorf("failed to seed city %s: %w", c.NameEn, err)
		}
		if made {
			created++
		}
	}
	debug.DebugOutput(localDebug, "Seeded %d cities", len(referenceCities))

	for cityName, districts := range referenceDistricts {
		var cityID int64
		if err := tx.QueryRow(`SELECT id FROM cities WHERE name_en = $1`, cityName).Scan(&cityID); err != nil {
			return 0, fmt.Errorf("failed to look up city %s: %w", cityName, err)
		}
		for _, district := range districts {
			_, made, err := getOrCreateID(tx,
				`SELECT id FROM districts WHERE city_id = $1 AND name_en = $2`,
				[]interface{}{cityID, district},
				`INSERT INTO districts (city_id, name_en)
				 VALUES ($1, $2)
				 ON CONFLICT (city_id, name_en) DO NOTHING
				 RETURNING id`,
				[]interface{}{cityID, district})
			if err != nil {
				return 0, fmt.Errorf("failed to seed district %s: %w", district, err)
			}
			if made {
				created++
			}
		}
	}
	debug.DebugOutput(localDebug, "Seeded districts for %d cities", len(referenceDistricts))

	// Historical periods back to 2021 so multi-period price tables resolve
	for year := 2021; year <= 2025; year++ {
		for _, half := range []string{"H1", "H2"} {
			_, made, err := getOrCreateID(tx,
				`SELECT id FROM report_periods WHERE year = $1 AND half = $2`,
				[]interface{}{year, half},
				`INSERT INTO report_periods (year, half)
				 VALUES ($1, $2)
				 ON CONFLICT (year, half) DO NOTHING
				 RETURNING id`,
				[]interface{}{year, half})
			if err != nil {
				return 0, fmt.Errorf("failed to seed period %d-%s: %w", year, half, err)
			}
			if made {
				created++
			}
		}
	}

	var gradePeriodID int64
	if err := tx.QueryRow(`SELECT id FROM report_periods WHERE year = $1 AND half = $2`,
		defaultPeriodYear, defaultPeriodHalf).Scan(&gradePeriodID); err != nil {
		return 0, fmt.Errorf("failed to look up default period: %w", err)
	}
	for _, g := range referenceGrades {
		// Market-wide grades carry a NULL city_id, which the unique
		// constraint cannot catch; the select-first path handles reruns.
		_, made, err := getOrCreateID(tx,
			`SELECT id FROM grade_definitions
			 WHERE city_id IS NULL AND grade_code = $1 AND period_id = $2`,
			[]interface{}{g.Code, gradePeriodID},
			`INSERT INTO grade_definitions (grade_code, period_id, segment, min_price_usd, max_price_usd)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			[]interface{}{g.Code, gradePeriodID, g.Segment, g.MinPrice, g.MaxPrice})
		if err != nil {
			return 0, fmt.Errorf("failed to seed grade %s: %w", g.Code, err)
		}
		if made {
			created++
		}
	}
	debug.DebugOutput(localDebug, "Seeded %d grade definitions", len(referenceGrades))

	projectsCreated, err := seedProjects(tx, catalog)
	if err != nil {
		return 0, err
	}
	created += projectsCreated
	debug.DebugOutput(localDebug, "Seeded %d projects from catalogue", projectsCreated)

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reference data: %w", err)
	}
	return created, nil
}

func seedProjects(tx *sql.Tx, catalog *config.ProjectCatalog) (int, error) {
	created := 0
	for _, entry := range catalog.Projects {
		var districtID *int64
		if entry.City != "" && entry.District != "" {
			var id int64
			err := tx.QueryRow(`
				SELECT d.id FROM districts d
				JOIN cities c ON c.id = d.city_id
				WHERE c.name_en = $1 AND d.name_en = $2
			`, entry.City, entry.District).Scan(&id)
			if err == nil {
				districtID = &id
			} else if err != sql.ErrNoRows {
				return 0, fmt.Errorf("failed to look up district for %s: %w", entry.Name, err)
			}
		}

		var projectType *string
		if entry.ProjectType != "" {
			projectType = &entry.ProjectType
		}

		_, made, err := getOrCreateID(tx,
			`SELECT id FROM projects WHERE name = $1`,
			[]interface{}{entry.Name},
			`INSERT INTO projects (name, district_id, project_type)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO NOTHING
			 RETURNING id`,
			[]interface{}{entry.Name, districtID, projectType})
		if err != nil {
			return 0, fmt.Errorf("failed to seed project %s: %w", entry.Name, err)
		}
		if made {
			created++
		}
	}
	return created, nil
}
