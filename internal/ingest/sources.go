package ingest

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mr-pipeline/internal/config"
	"github.com/mr-pipeline/internal/debug"
)

// SeedSources registers every catalogued report file as a source_reports row.
// Files already extracted upstream go straight to 'ingested' status. City and
// period references are resolved where the catalogue names them and left NULL
// where it does not. Returns the number of rows created.
func SeedSources(localDebug bool, db *sql.DB, catalog *config.SourceCatalog) (int, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created := 0
	for _, src := range catalog.Sources {
		var cityID *int64
		if src.City != "" {
			var id int64
			err := tx.QueryRow(`SELECT id FROM cities WHERE name_en = $1`, src.City).Scan(&id)
			if err == nil {
				cityID = &id
			} else if err != sql.ErrNoRows {
				return 0, fmt.Errorf("failed to look up city %s: %w", src.City, err)
			}
		}

		var periodID *int64
		if src.Year != 0 && src.Half != "" {
			var id int64
			err := tx.QueryRow(`SELECT id FROM report_periods WHERE year = $1 AND half = $2`,
				src.Year, src.Half).Scan(&id)
			if err == nil {
				periodID = &id
			} else if err != sql.ErrNoRows {
				return 0, fmt.Errorf("failed to look up period %d-%s: %w", src.Year, src.Half, err)
			}
		}

		var reportType *string
		if src.ReportType != "" {
			reportType = &src.ReportType
		}

		_, made, err := getOrCreateID(tx,
			`SELECT id FROM source_reports WHERE filename = $1`,
			[]interface{}{src.Filename},
			`INSERT INTO source_reports (filename, report_type, city_id, period_id, status)
			 VALUES ($1, $2, $3, $4, 'ingested')
			 ON CONFLICT (filename) DO NOTHING
			 RETURNING id`,
			[]interface{}{src.Filename, reportType, cityID, periodID})
		if err != nil {
			return 0, fmt.Errorf("failed to seed source %s: %w", src.Filename, err)
		}
		if made {
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit source reports: %w", err)
	}
	debug.DebugOutput(localDebug, "Registered %d of %d catalogued sources", created, len(catalog.Sources))
	return created, nil
}

// RegisterSource records an incoming report file ahead of extraction. The row
// starts in 'pending' status until MarkIngested is called. Re-registering an
// existing filename updates its report type and returns the existing id.
func RegisterSource(db *sql.DB, filename, reportType string) (int64, error) {
	var typePtr *string
	if reportType != "" {
		typePtr = &reportType
	}

	var id int64
	err := db.QueryRow(`
		INSERT INTO source_reports (filename, report_type, status)
		VALUES ($1, $2, 'pending')
		ON CONFLICT (filename) DO UPDATE SET report_type = EXCLUDED.report_type
		RETURNING id
	`, filename, typePtr).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to register source %s: %w", filename, err)
	}
	return id, nil
}

// MarkIngested flips a source report to 'ingested' and stamps the time
func MarkIngested(db *sql.DB, filename string) error {
	result, err := db.Exec(`
		UPDATE source_reports
		SET status = 'ingested', ingested_at = NOW()
		WHERE filename = $1
	`, filename)
	if err != nil {
		return fmt.Errorf("failed to mark source %s ingested: %w", filename, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("source report not found: %s", filename)
	}
	return nil
}

// SourceInfo is a registered source report with its resolved city and period
type SourceInfo struct {
	ID         int64      `json:"id"`
	Filename   string     `json:"filename"`
	ReportType string     `json:"report_type,omitempty"`
	City       string     `json:"city,omitempty"`
	Period     string     `json:"period,omitempty"`
	Status     string     `json:"status"`
	IngestedAt *time.Time `json:"ingested_at,omitempty"`
}

// ListSources returns all registered source reports in id order
func ListSources(db *sql.DB) ([]SourceInfo, error) {
	rows, err := db.Query(`
		SELECT sr.id, sr.filename, sr.report_type, c.name_en, rp.year, rp.half, sr.status, sr.ingested_at
		FROM source_reports sr
		LEFT JOIN cities c ON c.id = sr.city_id
		LEFT JOIN report_periods rp ON rp.id = sr.period_id
		ORDER BY sr.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query source reports: %w", err)
	}
	defer rows.Close()

	sources := []SourceInfo{}
	for rows.Next() {
		var info SourceInfo
		var reportType, city, half, status sql.NullString
		var year sql.NullInt64
		var ingestedAt sql.NullTime

		if err := rows.Scan(&info.ID, &info.Filename, &reportType, &city, &year, &half, &status, &ingestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source report: %w", err)
		}

		info.ReportType = reportType.String
		info.City = city.String
		info.Status = status.String
		if year.Valid && half.Valid {
			info.Period = fmt.Sprintf("%d-%s", year.Int64, half.String)
		}
		if ingestedAt.Valid {
			t := ingestedAt.Time
			info.IngestedAt = &t
		}
		sources = append(sources, info)
	}
	return sources, nil
}
