package dto

// RecordListFilter contains query parameters for record listing endpoints.
type RecordListFilter struct {
	Q          string
	Country    string
	Status     string
	Incomplete bool
	Page       int
	PerPage    int
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Rows     int `json:"rows"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}
