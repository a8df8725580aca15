package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// LineageHandler handles data lineage reporting endpoints
type LineageHandler struct {
	DB     *sql.DB
	Config *Config
}

// QualityResponse represents extraction confidence quality bands
type QualityResponse struct {
	TotalRecords     int `json:"total_records"`
	HighConfidence   int `json:"high_confidence"`
	MediumConfidence int `json:"medium_confidence"`
	LowConfidence    int `json:"low_confidence"`
	Unscored         int `json:"unscored"`
}

// GetQuality returns lineage records bucketed by extraction confidence.
// High is 0.8 and above, medium is 0.5 to 0.8, low is below 0.5.
func (h *LineageHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	query := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN confidence_score >= 0.8 THEN 1 END) as high,
			COUNT(CASE WHEN confidence_score >= 0.5 AND confidence_score < 0.8 THEN 1 END) as medium,
			COUNT(CASE WHEN confidence_score < 0.5 THEN 1 END) as low,
			COUNT(CASE WHEN confidence_score IS NULL THEN 1 END) as unscored
		FROM data_lineage
	`

	var quality QualityResponse
	err := h.DB.QueryRow(query).Scan(
		&quality.TotalRecords,
		&quality.HighConfidence,
		&quality.MediumConfidence,
		&quality.LowConfidence,
		&quality.Unscored,
	)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quality)
}

// TableCoverage represents lineage coverage for one tracked table
type TableCoverage struct {
	TableName     string   `json:"table_name"`
	Records       int      `json:"records"`
	AvgConfidence *float64 `json:"avg_confidence"`
	MinConfidence *float64 `json:"min_confidence"`
	MaxConfidence *float64 `json:"max_confidence"`
}

// GetCoverage returns per-table lineage coverage
func (h *LineageHandler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	query := `
		SELECT table_name, COUNT(*), AVG(confidence_score), MIN(confidence_score), MAX(confidence_score)
		FROM data_lineage
		GROUP BY table_name
		ORDER BY table_name
	`

	rows, err := h.DB.Query(query)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	coverage := []TableCoverage{}
	for rows.Next() {
		var entry TableCoverage
		if err := rows.Scan(&entry.TableName, &entry.Records, &entry.AvgConfidence,
			&entry.MinConfidence, &entry.MaxConfidence); err != nil {
			continue
		}
		coverage = append(coverage, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(coverage)
}

// SourceImpact represents how many records one source report produced
type SourceImpact struct {
	SourceID      int      `json:"source_id"`
	Filename      string   `json:"filename"`
	ReportType    *string  `json:"report_type"`
	Status        string   `json:"status"`
	Records       int      `json:"records"`
	TablesTouched int      `json:"tables_touched"`
	AvgConfidence *float64 `json:"avg_confidence"`
}

// GetSources returns every source report with its lineage impact,
// most productive sources first.
func (h *LineageHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	query := `
		SELECT
			sr.id, sr.filename, sr.report_type, sr.status,
			COUNT(dl.id) as records,
			COUNT(DISTINCT dl.table_name) as tables_touched,
			AVG(dl.confidence_score) as avg_confidence
		FROM source_reports sr
		LEFT JOIN data_lineage dl ON dl.source_report_id = sr.id
		GROUP BY sr.id, sr.filename, sr.report_type, sr.status
		ORDER BY COUNT(dl.id) DESC, sr.filename
	`

	rows, err := h.DB.Query(query)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	sources := []SourceImpact{}
	for rows.Next() {
		var impact SourceImpact
		if err := rows.Scan(&impact.SourceID, &impact.Filename, &impact.ReportType,
			&impact.Status, &impact.Records, &impact.TablesTouched, &impact.AvgConfidence); err != nil {
			continue
		}
		sources = append(sources, impact)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sources)
}

// LineageEntry represents one lineage record with its source filename
type LineageEntry struct {
	ID          int       `json:"id"`
	TableName   string    `json:"table_name"`
	RecordID    int       `json:"record_id"`
	SourceFile  string    `json:"source_file"`
	PageNumber  *int      `json:"page_number"`
	Confidence  *float64  `json:"confidence_score"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// GetRecordLineage returns the lineage trail for a single stored record
func (h *LineageHandler) GetRecordLineage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tableName := query.Get("table")
	recordID := parseIntParam(query.Get("id"), 0)

	if tableName == "" || recordID == 0 {
		http.Error(w, "table and id parameters required", http.StatusBadRequest)
		return
	}

	rows, err := h.DB.Query(`
		SELECT dl.id, dl.table_name, dl.record_id, sr.filename, dl.page_number,
			dl.confidence_score, dl.extracted_at
		FROM data_lineage dl
		JOIN source_reports sr ON dl.source_report_id = sr.id
		WHERE dl.table_name = $1 AND dl.record_id = $2
		ORDER BY dl.extracted_at
	`, tableName, recordID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	entries := []LineageEntry{}
	for rows.Next() {
		var entry LineageEntry
		if err := rows.Scan(&entry.ID, &entry.TableName, &entry.RecordID, &entry.SourceFile,
			&entry.PageNumber, &entry.Confidence, &entry.ExtractedAt); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// GetReviewQueue returns the lowest-confidence extractions for manual review
func (h *LineageHandler) GetReviewQueue(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	threshold := parseFloatParam(query.Get("threshold"), 0.5)
	tableName := query.Get("table")
	limit := parseIntParam(query.Get("limit"), 50)

	baseQuery := `
		SELECT dl.id, dl.table_name, dl.record_id, sr.filename, dl.page_number,
			dl.confidence_score, dl.extracted_at
		FROM data_lineage dl
		JOIN source_reports sr ON dl.source_report_id = sr.id
		WHERE dl.confidence_score < $1
	`

	var args []interface{}
	args = append(args, threshold)
	argIndex := 2

	if tableName != "" {
		baseQuery += " AND dl.table_name = $" + strconv.Itoa(argIndex)
		args = append(args, tableName)
		argIndex++
	}

	baseQuery += " ORDER BY dl.confidence_score LIMIT $" + strconv.Itoa(argIndex)
	args = append(args, limit)

	rows, err := h.DB.Query(baseQuery, args...)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	entries := []LineageEntry{}
	for rows.Next() {
		var entry LineageEntry
		if err := rows.Scan(&entry.ID, &entry.TableName, &entry.RecordID, &entry.SourceFile,
			&entry.PageNumber, &entry.Confidence, &entry.ExtractedAt); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// UpdateConfidence sets a reviewed confidence score on a lineage record
func (h *LineageHandler) UpdateConfidence(w http.ResponseWriter, r *http.Request) {
	if !h.Config.Features.ReviewEnabled {
		http.Error(w, "Feature disabled", http.StatusForbidden)
		return
	}

	var updateRequest struct {
		TableName  string  `json:"table_name"`
		RecordID   int     `json:"record_id"`
		Confidence float64 `json:"confidence"`
	}

	if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if updateRequest.TableName == "" || updateRequest.RecordID == 0 {
		http.Error(w, "table_name and record_id required", http.StatusBadRequest)
		return
	}
	if updateRequest.Confidence < 0 || updateRequest.Confidence > 1 {
		http.Error(w, "confidence must be between 0 and 1", http.StatusBadRequest)
		return
	}

	result, err := h.DB.Exec(`
		UPDATE data_lineage
		SET confidence_score = $1
		WHERE table_name = $2 AND record_id = $3
	`, updateRequest.Confidence, updateRequest.TableName, updateRequest.RecordID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		http.Error(w, "Lineage record not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     "updated",
		"table_name": updateRequest.TableName,
		"record_id":  updateRequest.RecordID,
		"confidence": updateRequest.Confidence,
		"timestamp":  time.Now(),
	})
}
