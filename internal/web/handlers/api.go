package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Config represents the web server configuration (simplified)
type Config struct {
	Features struct {
		ReviewEnabled bool `json:"review_enabled"`
	} `json:"features"`
}

// APIHandler handles general API endpoints
type APIHandler struct {
	DB     *sql.DB
	Config *Config
}

// StatsResponse represents overall pipeline statistics
type StatsResponse struct {
	TotalProjects   int                    `json:"total_projects"`
	LocatedProjects int                    `json:"located_projects"`
	PriceRecords    int                    `json:"price_records"`
	SalesStatuses   int                    `json:"sales_statuses"`
	LineageRecords  int                    `json:"lineage_records"`
	IngestedReports int                    `json:"ingested_reports"`
	LocationRate    float64                `json:"location_rate"`
	ByCity          map[string]CityStats   `json:"by_city"`
	ByPeriod        map[string]PeriodStats `json:"by_period"`
}

// CityStats represents per-city aggregates
type CityStats struct {
	Projects    int      `json:"projects"`
	Districts   int      `json:"districts"`
	AvgPriceUSD *float64 `json:"avg_price_usd"`
}

// PeriodStats represents per-period pricing aggregates
type PeriodStats struct {
	PriceRecords int      `json:"price_records"`
	AvgPriceUSD  *float64 `json:"avg_price_usd"`
}

// GetStats returns overall pipeline statistics
func (h *APIHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	var stats StatsResponse

	query := `
		SELECT
			(SELECT COUNT(*) FROM projects) as total_projects,
			(SELECT COUNT(*) FROM projects WHERE district_id IS NOT NULL) as located,
			(SELECT COUNT(*) FROM price_records) as price_records,
			(SELECT COUNT(*) FROM sales_statuses) as sales_statuses,
			(SELECT COUNT(*) FROM data_lineage) as lineage_records,
			(SELECT COUNT(*) FROM source_reports WHERE status = 'ingested') as ingested
	`

	err := h.DB.QueryRow(query).Scan(
		&stats.TotalProjects,
		&stats.LocatedProjects,
		&stats.PriceRecords,
		&stats.SalesStatuses,
		&stats.LineageRecords,
		&stats.IngestedReports,
	)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Calculate location rate
	if stats.TotalProjects > 0 {
		stats.LocationRate = float64(stats.LocatedProjects) / float64(stats.TotalProjects) * 100
	}

	// Get statistics by city
	stats.ByCity = make(map[string]CityStats)
	cityQuery := `
		SELECT
			c.name_en,
			COUNT(DISTINCT p.id) as projects,
			COUNT(DISTINCT d.id) as districts,
			AVG(pr.price_usd_per_m2) as avg_price
		FROM cities c
		LEFT JOIN districts d ON d.city_id = c.id
		LEFT JOIN projects p ON p.district_id = d.id
		LEFT JOIN price_records pr ON pr.project_id = p.id
		GROUP BY c.name_en
	`

	rows, err := h.DB.Query(cityQuery)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var cityName string
		var projects, districts int
		var avgPrice sql.NullFloat64
		if err := rows.Scan(&cityName, &projects, &districts, &avgPrice); err != nil {
			continue
		}

		cs := CityStats{Projects: projects, Districts: districts}
		if avgPrice.Valid {
			cs.AvgPriceUSD = &avgPrice.Float64
		}
		stats.ByCity[cityName] = cs
	}

	// Get pricing statistics by report period
	stats.ByPeriod = make(map[string]PeriodStats)
	periodQuery := `
		SELECT rp.year, rp.half, COUNT(pr.id) as price_records, AVG(pr.price_usd_per_m2) as avg_price
		FROM report_periods rp
		JOIN price_records pr ON pr.period_id = rp.id
		GROUP BY rp.year, rp.half
	`

	rows, err = h.DB.Query(periodQuery)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var year int
			var half string
			var count int
			var avgPrice sql.NullFloat64
			if err := rows.Scan(&year, &half, &count, &avgPrice); err != nil {
				continue
			}

			ps := PeriodStats{PriceRecords: count}
			if avgPrice.Valid {
				ps.AvgPriceUSD = &avgPrice.Float64
			}
			stats.ByPeriod[fmt.Sprintf("%d-%s", year, half)] = ps
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// parseIntParam parses a string as int with a default value
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// parseFloatParam parses a string as float64 with a default value
func parseFloatParam(s string, defaultVal float64) float64 {
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}
