package dto

// PreviewRequest asks the engine to enrich a single business without persisting.
type PreviewRequest struct {
	CompanyName string `json:"company_name"`
	Country     string `json:"country,omitempty"`
	SICCodes    string `json:"sic_codes,omitempty"`
}

// PreviewResponse carries the engine outcome for a preview request.
type PreviewResponse struct {
	NormalizedName string  `json:"normalized_name"`
	Website        string  `json:"website,omitempty"`
	Email          string  `json:"email,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Industry       string  `json:"industry,omitempty"`
	BrandScore     float64 `json:"brand_score"`
	BrandMeasured  bool    `json:"brand_measured"`
	Status         string  `json:"status"`
}
