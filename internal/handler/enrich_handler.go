package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/oakmere-data/enricher/internal/dto"
	"github.com/oakmere-data/enricher/internal/service"
)

// EnrichHandler runs the enrichment pipeline for a single business without
// touching the record store.
type EnrichHandler struct {
	enricher service.RecordEnricher
}

// NewEnrichHandler wires a new EnrichHandler instance.
func NewEnrichHandler(enricher service.RecordEnricher) *EnrichHandler {
	return &EnrichHandler{enricher: enricher}
}

// Preview handles POST /enrich/preview requests. The request blocks while the
// pipeline runs; nothing is persisted.
func (h *EnrichHandler) Preview(c echo.Context) error {
	var req dto.PreviewRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.CompanyName == "" {
		return Error(c, http.StatusBadRequest, "company_name is required")
	}

	result := h.enricher.Enrich(c.Request().Context(), service.EnrichmentRequest{
		CompanyName: req.CompanyName,
		Country:     strings.TrimSpace(req.Country),
		SICCodes:    strings.TrimSpace(req.SICCodes),
	})

	return Success(c, http.StatusOK, "preview complete", dto.PreviewResponse{
		NormalizedName: result.NormalizedName,
		Website:        result.Website,
		Email:          result.Email,
		Phone:          result.Phone,
		Industry:       result.Industry,
		BrandScore:     result.BrandScore,
		BrandMeasured:  result.BrandMeasured,
		Status:         result.Status,
	})
}
