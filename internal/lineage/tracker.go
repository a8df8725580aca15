// Package lineage tracks which source report every stored record came
// from and how confident the extraction was, and audits the health of
// that tracking.
package lineage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mr-pipeline/internal/debug"
)

// Tracker manages lineage rows and quality checks over them
type Tracker struct {
	db *sql.DB
}

// NewTracker creates a tracker over an open database connection
func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

// Track writes a lineage row attaching a stored record to its source
// report. The seeding stages write their own rows in-transaction; this
// is the standalone path for manual corrections.
func (t *Tracker) Track(localDebug bool, tableName string, recordID, sourceReportID int64, pageNumber *int, confidence float64) error {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	_, err := t.db.Exec(`
		INSERT INTO data_lineage (table_name, record_id, source_report_id, page_number, confidence_score, extracted_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, tableName, recordID, sourceReportID, pageNumber, confidence)
	if err != nil {
		return fmt.Errorf("failed to insert lineage record: %w", err)
	}

	debug.DebugOutput(localDebug, "Tracked %s record %d from source %d", tableName, recordID, sourceReportID)
	return nil
}

// UpdateConfidence replaces the confidence score on a record's lineage
// rows, typically after manual review. Returns false when the record has
// no lineage.
func (t *Tracker) UpdateConfidence(localDebug bool, tableName string, recordID int64, newConfidence float64) (bool, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	result, err := t.db.Exec(`
		UPDATE data_lineage
		SET confidence_score = $1
		WHERE table_name = $2 AND record_id = $3
	`, newConfidence, tableName, recordID)
	if err != nil {
		return false, fmt.Errorf("failed to update confidence: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check update result: %w", err)
	}

	debug.DebugOutput(localDebug, "Updated confidence for %s record %d (%d rows)", tableName, recordID, affected)
	return affected > 0, nil
}

// RecordsFromSource returns every lineage row produced by a source report,
// optionally filtered to one table.
func (t *Tracker) RecordsFromSource(localDebug bool, sourceReportID int64, tableName string) ([]Record, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	query := `
		SELECT dl.id, dl.table_name, dl.record_id, dl.source_report_id, sr.filename,
		       dl.page_number, dl.confidence_score, dl.extracted_at
		FROM data_lineage dl
		JOIN source_reports sr ON sr.id = dl.source_report_id
		WHERE dl.source_report_id = $1`
	args := []interface{}{sourceReportID}

	if tableName != "" {
		query += ` AND dl.table_name = $2`
		args = append(args, tableName)
	}
	query += ` ORDER BY dl.table_name, dl.record_id`

	rows, err := t.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lineage records: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	debug.DebugOutput(localDebug, "Retrieved %d lineage records for source %d", len(records), sourceReportID)
	return records, nil
}

// LowConfidenceRecords returns lineage rows below the confidence threshold,
// lowest first, optionally filtered to one table. These form the manual
// review queue.
func (t *Tracker) LowConfidenceRecords(localDebug bool, threshold float64, tableName string) ([]Record, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	query := `
		SELECT dl.id, dl.table_name, dl.record_id, dl.source_report_id, sr.filename,
		       dl.page_number, dl.confidence_score, dl.extracted_at
		FROM data_lineage dl
		JOIN source_reports sr ON sr.id = dl.source_report_id
		WHERE dl.confidence_score IS NOT NULL AND dl.confidence_score < $1`
	args := []interface{}{threshold}

	if tableName != "" {
		query += ` AND dl.table_name = $2`
		args = append(args, tableName)
	}
	query += ` ORDER BY dl.confidence_score`

	rows, err := t.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query low-confidence records: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	debug.DebugOutput(localDebug, "Found %d records below confidence %.2f", len(records), threshold)
	return records, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		var rec Record
		var pageNumber sql.NullInt64
		var confidence sql.NullFloat64
		var extractedAt sql.NullTime

		err := rows.Scan(&rec.ID, &rec.TableName, &rec.RecordID, &rec.SourceReportID,
			&rec.SourceFile, &pageNumber, &confidence, &extractedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lineage record: %w", err)
		}

		if pageNumber.Valid {
			page := int(pageNumber.Int64)
			rec.PageNumber = &page
		}
		if confidence.Valid {
			conf := confidence.Float64
			rec.Confidence = &conf
		}
		rec.ExtractedAt = extractedAt.Time
		records = append(records, rec)
	}
	return records, nil
}

// Statistics summarizes the lineage system
func (t *Tracker) Statistics(localDebug bool) (*Stats, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	stats := &Stats{}
	err := t.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM data_lineage),
			(SELECT COUNT(*) FROM source_reports),
			(SELECT COALESCE(AVG(confidence_score), 0) FROM data_lineage WHERE confidence_score IS NOT NULL),
			(SELECT COUNT(DISTINCT table_name) FROM data_lineage)
	`).Scan(&stats.TotalLineageRecords, &stats.TotalSourceReports, &stats.AverageConfidence, &stats.TablesTracked)
	if err != nil {
		return nil, fmt.Errorf("failed to query lineage statistics: %w", err)
	}

	debug.DebugOutput(localDebug, "Lineage stats: %d records across %d tables", stats.TotalLineageRecords, stats.TablesTracked)
	return stats, nil
}

// ValidateIntegrity runs the lineage health checks: lineage rows pointing
// at missing source reports, ingested sources that produced no records,
// and rows missing a confidence score.
func (t *Tracker) ValidateIntegrity(localDebug bool) (*ValidationResult, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	result := &ValidationResult{Issues: []string{}, ChecksPerformed: 3}

	var orphaned int64
	err := t.db.QueryRow(`
		SELECT COUNT(*) FROM data_lineage dl
		WHERE NOT EXISTS (SELECT 1 FROM source_reports sr WHERE sr.id = dl.source_report_id)
	`).Scan(&orphaned)
	if err != nil {
		return nil, fmt.Errorf("failed to check orphaned lineage: %w", err)
	}
	if orphaned > 0 {
		result.Issues = append(result.Issues,
			fmt.Sprintf("%d lineage records reference non-existent source reports", orphaned))
	}

	var unused int64
	err = t.db.QueryRow(`
		SELECT COUNT(*) FROM source_reports sr
		WHERE sr.status = 'ingested'
		  AND NOT EXISTS (SELECT 1 FROM data_lineage dl WHERE dl.source_report_id = sr.id)
	`).Scan(&unused)
	if err != nil {
		return nil, fmt.Errorf("failed to check unused sources: %w", err)
	}
	if unused > 0 {
		result.Issues = append(result.Issues,
			fmt.Sprintf("%d ingested source reports have no lineage records", unused))
	}

	var nullConfidence int64
	err = t.db.QueryRow(`
		SELECT COUNT(*) FROM data_lineage WHERE confidence_score IS NULL
	`).Scan(&nullConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to check null confidence scores: %w", err)
	}
	if nullConfidence > 0 {
		result.Issues = append(result.Issues,
			fmt.Sprintf("%d lineage records have null confidence scores", nullConfidence))
	}

	result.IsValid = len(result.Issues) == 0
	debug.DebugOutput(localDebug, "Integrity validation: %d issues found", len(result.Issues))
	return result, nil
}

// Data structures for lineage tracking

type Record struct {
	ID             int64     `json:"id"`
	TableName      string    `json:"table_name"`
	RecordID       int64     `json:"record_id"`
	SourceReportID int64     `json:"source_report_id"`
	SourceFile     string    `json:"source_file"`
	PageNumber     *int      `json:"page_number"`
	Confidence     *float64  `json:"confidence_score"`
	ExtractedAt    time.Time `json:"extracted_at"`
}

type Stats struct {
	TotalLineageRecords int64   `json:"total_lineage_records"`
	TotalSourceReports  int64   `json:"total_source_reports"`
	AverageConfidence   float64 `json:"average_confidence"`
	TablesTracked       int64   `json:"tables_tracked"`
}

type ValidationResult struct {
	IsValid         bool     `json:"is_valid"`
	Issues          []string `json:"issues"`
	ChecksPerformed int      `json:"checks_performed"`
}
