package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// ProjectsHandler handles project-related endpoints
type ProjectsHandler struct {
	DB     *sql.DB
	Config *Config
}

// Project represents one row in the project listing
type Project struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	City         *string `json:"city"`
	District     *string `json:"district"`
	ProjectType  *string `json:"project_type"`
	GradePrimary *string `json:"grade_primary"`
	TotalUnits   *int    `json:"total_units"`
	Status       *string `json:"status"`
	PriceRecords int     `json:"price_records"`
	SalesRecords int     `json:"sales_records"`
}

// ProjectsListResponse represents a paginated list of projects
type ProjectsListResponse struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
}

// ListProjects returns a filtered and paginated list of projects
func (h *ProjectsHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Parse pagination parameters
	page := parseIntParam(query.Get("page"), 1)
	perPage := parseIntParam(query.Get("per_page"), 50)
	if perPage > 500 {
		perPage = 500 // Limit maximum page size
	}
	offset := (page - 1) * perPage

	// Parse filter parameters
	city := query.Get("city")
	district := query.Get("district")
	projectType := query.Get("project_type")
	nameSearch := query.Get("name_search")

	// Build dynamic query
	baseQuery := `
		SELECT
			p.id, p.name, c.name_en, d.name_en, p.project_type, p.grade_primary,
			p.total_units, p.status,
			(SELECT COUNT(*) FROM price_records pr WHERE pr.project_id = p.id),
			(SELECT COUNT(*) FROM sales_statuses ss WHERE ss.project_id = p.id)
		FROM projects p
		LEFT JOIN districts d ON p.district_id = d.id
		LEFT JOIN cities c ON d.city_id = c.id
		WHERE 1=1
	`

	countQuery := `
		SELECT COUNT(*)
		FROM projects p
		LEFT JOIN districts d ON p.district_id = d.id
		LEFT JOIN cities c ON d.city_id = c.id
		WHERE 1=1
	`

	var conditions []string
	var args []interface{}
	argIndex := 1

	// Add filter conditions
	if city != "" {
		conditions = append(conditions, " AND c.name_en = $"+strconv.Itoa(argIndex))
		args = append(args, city)
		argIndex++
	}
	if district != "" {
		conditions = append(conditions, " AND d.name_en = $"+strconv.Itoa(argIndex))
		args = append(args, district)
		argIndex++
	}
	if projectType != "" {
		conditions = append(conditions, " AND p.project_type = $"+strconv.Itoa(argIndex))
		args = append(args, projectType)
		argIndex++
	}
	if nameSearch != "" {
		conditions = append(conditions, " AND p.name ILIKE $"+strconv.Itoa(argIndex))
		args = append(args, "%"+nameSearch+"%")
		argIndex++
	}

	// Apply conditions to both queries
	for _, condition := range conditions {
		baseQuery += condition
		countQuery += condition
	}

	// Get total count
	var total int
	err := h.DB.QueryRow(countQuery, args...).Scan(&total)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Add ordering and pagination to main query
	baseQuery += " ORDER BY p.id LIMIT $" + strconv.Itoa(argIndex) + " OFFSET $" + strconv.Itoa(argIndex+1)
	args = append(args, perPage, offset)

	// Execute main query
	rows, err := h.DB.Query(baseQuery, args...)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var project Project
		err := rows.Scan(
			&project.ID, &project.Name, &project.City, &project.District,
			&project.ProjectType, &project.GradePrimary, &project.TotalUnits,
			&project.Status, &project.PriceRecords, &project.SalesRecords,
		)
		if err != nil {
			continue
		}
		projects = append(projects, project)
	}

	response := ProjectsListResponse{
		Projects: projects,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ProjectDetail represents a project with its extracted attributes
type ProjectDetail struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	City         *string      `json:"city"`
	District     *string      `json:"district"`
	Address      *string      `json:"address"`
	ProjectType  *string      `json:"project_type"`
	Status       *string      `json:"status"`
	TotalUnits   *int         `json:"total_units"`
	TotalAreaM2  *float64     `json:"total_area_m2"`
	GradePrimary *string      `json:"grade_primary"`
	Blocks       []Block      `json:"blocks"`
	UnitTypes    []UnitType   `json:"unit_types"`
	Facilities   []Facility   `json:"facilities"`
	SalesPoints  []SalesPoint `json:"sales_points"`
	Prices       []PriceEntry `json:"prices"`
	SalesHistory []SalesEntry `json:"sales_history"`
}

// Block represents one tower within a project
type Block struct {
	Name   string `json:"name"`
	Floors *int   `json:"floors"`
}

// UnitType represents one unit mix entry
type UnitType struct {
	TypeName    string   `json:"type_name"`
	NetAreaM2   *float64 `json:"net_area_m2"`
	GrossAreaM2 *float64 `json:"gross_area_m2"`
	Layout      *string  `json:"layout"`
}

// Facility represents one on-site amenity
type Facility struct {
	Type        string  `json:"type"`
	Description *string `json:"description"`
}

// SalesPoint represents one marketing highlight
type SalesPoint struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Ranking     *int   `json:"ranking"`
}

// PriceFactor represents one price movement driver
type PriceFactor struct {
	FactorType     string  `json:"factor_type"`
	FactorCategory string  `json:"factor_category"`
	Description    *string `json:"description"`
}

// PriceEntry represents one period's pricing for a project
type PriceEntry struct {
	Period        string        `json:"period"`
	PriceUSDPerM2 *float64      `json:"price_usd_per_m2"`
	ChangePct     *float64      `json:"change_pct"`
	SourceReport  *string       `json:"source_report"`
	Factors       []PriceFactor `json:"factors,omitempty"`
}

// SalesEntry represents one period's sales performance
type SalesEntry struct {
	Period         string   `json:"period"`
	SalesRatePct   *float64 `json:"sales_rate_pct"`
	SoldUnits      *int     `json:"sold_units"`
	LaunchedUnits  *int     `json:"launched_units"`
	AvailableUnits *int     `json:"available_units"`
}

// GetProject returns the full detail for a specific project
func (h *ProjectsHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	projectID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	query := `
		SELECT
			p.id, p.name, c.name_en, d.name_en, p.address, p.project_type,
			p.status, p.total_units, p.total_area_m2, p.grade_primary
		FROM projects p
		LEFT JOIN districts d ON p.district_id = d.id
		LEFT JOIN cities c ON d.city_id = c.id
		WHERE p.id = $1
	`

	var detail ProjectDetail
	err = h.DB.QueryRow(query, projectID).Scan(
		&detail.ID, &detail.Name, &detail.City, &detail.District,
		&detail.Address, &detail.ProjectType, &detail.Status,
		&detail.TotalUnits, &detail.TotalAreaM2, &detail.GradePrimary,
	)

	if err == sql.ErrNoRows {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	detail.Blocks = h.projectBlocks(projectID)
	detail.UnitTypes = h.projectUnitTypes(projectID)
	detail.Facilities = h.projectFacilities(projectID)
	detail.SalesPoints = h.projectSalesPoints(projectID)
	detail.Prices = h.projectPrices(projectID)
	detail.SalesHistory = h.projectSalesHistory(projectID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

func (h *ProjectsHandler) projectBlocks(projectID int) []Block {
	blocks := []Block{}

	rows, err := h.DB.Query(`
		SELECT block_name, floors
		FROM project_blocks
		WHERE project_id = $1
		ORDER BY block_name
	`, projectID)
	if err != nil {
		return blocks
	}
	defer rows.Close()

	for rows.Next() {
		var block Block
		if err := rows.Scan(&block.Name, &block.Floors); err != nil {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func (h *ProjectsHandler) projectUnitTypes(projectID int) []UnitType {
	unitTypes := []UnitType{}

	rows, err := h.DB.Query(`
		SELECT type_name, net_area_m2, gross_area_m2, typical_layout_description
		FROM unit_types
		WHERE project_id = $1
		ORDER BY type_name
	`, projectID)
	if err != nil {
		return unitTypes
	}
	defer rows.Close()

	for rows.Next() {
		var unitType UnitType
		if err := rows.Scan(&unitType.TypeName, &unitType.NetAreaM2, &unitType.GrossAreaM2, &unitType.Layout); err != nil {
			continue
		}
		unitTypes = append(unitTypes, unitType)
	}
	return unitTypes
}

func (h *ProjectsHandler) projectFacilities(projectID int) []Facility {
	facilities := []Facility{}

	rows, err := h.DB.Query(`
		SELECT facility_type, description
		FROM project_facilities
		WHERE project_id = $1
		ORDER BY facility_type
	`, projectID)
	if err != nil {
		return facilities
	}
	defer rows.Close()

	for rows.Next() {
		var facility Facility
		if err := rows.Scan(&facility.Type, &facility.Description); err != nil {
			continue
		}
		facilities = append(facilities, facility)
	}
	return facilities
}

func (h *ProjectsHandler) projectSalesPoints(projectID int) []SalesPoint {
	salesPoints := []SalesPoint{}

	rows, err := h.DB.Query(`
		SELECT category, description, ranking
		FROM project_sales_points
		WHERE project_id = $1
		ORDER BY ranking NULLS LAST, category
	`, projectID)
	if err != nil {
		return salesPoints
	}
	defer rows.Close()

	for rows.Next() {
		var salesPoint SalesPoint
		if err := rows.Scan(&salesPoint.Category, &salesPoint.Description, &salesPoint.Ranking); err != nil {
			continue
		}
		salesPoints = append(salesPoints, salesPoint)
	}
	return salesPoints
}

func (h *ProjectsHandler) projectPrices(projectID int) []PriceEntry {
	prices := []PriceEntry{}

	rows, err := h.DB.Query(`
		SELECT pr.id, rp.year, rp.half, pr.price_usd_per_m2, pr.price_change_pct, pr.source_report
		FROM price_records pr
		JOIN report_periods rp ON pr.period_id = rp.id
		WHERE pr.project_id = $1
		ORDER BY rp.year, rp.half
	`, projectID)
	if err != nil {
		return prices
	}
	defer rows.Close()

	priceIDs := []int{}
	for rows.Next() {
		var priceID, year int
		var half string
		var entry PriceEntry
		if err := rows.Scan(&priceID, &year, &half, &entry.PriceUSDPerM2, &entry.ChangePct, &entry.SourceReport); err != nil {
			continue
		}
		entry.Period = strconv.Itoa(year) + "-" + half
		prices = append(prices, entry)
		priceIDs = append(priceIDs, priceID)
	}

	// Attach price movement factors to their periods
	factorsByPrice := h.priceFactors(projectID)
	for i, priceID := range priceIDs {
		prices[i].Factors = factorsByPrice[priceID]
	}
	return prices
}

func (h *ProjectsHandler) priceFactors(projectID int) map[int][]PriceFactor {
	factors := map[int][]PriceFactor{}

	rows, err := h.DB.Query(`
		SELECT pcf.price_record_id, pcf.factor_type, pcf.factor_category, pcf.description
		FROM price_change_factors pcf
		JOIN price_records pr ON pcf.price_record_id = pr.id
		WHERE pr.project_id = $1
		ORDER BY pcf.factor_type, pcf.factor_category
	`, projectID)
	if err != nil {
		return factors
	}
	defer rows.Close()

	for rows.Next() {
		var priceID int
		var factor PriceFactor
		if err := rows.Scan(&priceID, &factor.FactorType, &factor.FactorCategory, &factor.Description); err != nil {
			continue
		}
		factors[priceID] = append(factors[priceID], factor)
	}
	return factors
}

func (h *ProjectsHandler) projectSalesHistory(projectID int) []SalesEntry {
	history := []SalesEntry{}

	rows, err := h.DB.Query(`
		SELECT rp.year, rp.half, ss.sales_rate_pct, ss.sold_units, ss.launched_units, ss.available_units
		FROM sales_statuses ss
		JOIN report_periods rp ON ss.period_id = rp.id
		WHERE ss.project_id = $1
		ORDER BY rp.year, rp.half
	`, projectID)
	if err != nil {
		return history
	}
	defer rows.Close()

	for rows.Next() {
		var year int
		var half string
		var entry SalesEntry
		if err := rows.Scan(&year, &half, &entry.SalesRatePct, &entry.SoldUnits, &entry.LaunchedUnits, &entry.AvailableUnits); err != nil {
			continue
		}
		entry.Period = strconv.Itoa(year) + "-" + half
		history = append(history, entry)
	}
	return history
}
