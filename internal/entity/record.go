package entity

import (
	"time"

	"github.com/google/uuid"
)

// Enrichment outcomes written to records.enrichment_status.
const (
	StatusNothingFound    = "No domain or contacts found"
	StatusDomainOnly      = "Domain only"
	StatusOK              = "OK"
	StatusUnverifiedBrand = "Domain only (unverified brand match)"
	StatusPartial         = "Partial"
)

// Record represents a business row in the record store.
type Record struct {
	ID               uuid.UUID  `json:"id"`
	CompanyName      string     `json:"company_name"`
	Country          *string    `json:"country,omitempty"`
	SICCodes         *string    `json:"sic_codes,omitempty"`
	Website          *string    `json:"website,omitempty"`
	Email            *string    `json:"email,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	Industry         *string    `json:"industry,omitempty"`
	EnrichmentStatus *string    `json:"enrichment_status,omitempty"`
	EnrichedAt       *time.Time `json:"enriched_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Patch carries the fields one enrichment pass writes back. Nil members leave
// the stored value untouched; the status and enrichment timestamp are written
// on every pass.
type Patch struct {
	Website  *string
	Email    *string
	Phone    *string
	Industry *string
	Status   string
}
