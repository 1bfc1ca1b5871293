package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/oakmere-data/enricher/internal/contacts"
	"github.com/oakmere-data/enricher/internal/domains"
	"github.com/oakmere-data/enricher/internal/entity"
	"github.com/oakmere-data/enricher/internal/names"
	"github.com/oakmere-data/enricher/internal/scoring"
	"github.com/oakmere-data/enricher/internal/sic"
)

// DomainSelector picks a live domain for a normalized company name.
type DomainSelector interface {
	Select(ctx context.Context, normalized, country string) (domains.Candidate, bool)
}

// ContactDiscoverer crawls a domain for contact signals.
type ContactDiscoverer interface {
	Discover(ctx context.Context, domain string) contacts.Discovery
}

// EnrichmentRequest carries one record's current view into the engine. Blank
// fields are the ones the engine tries to fill.
type EnrichmentRequest struct {
	CompanyName string
	Country     string
	SICCodes    string
	Website     string
	Email       string
	Phone       string
	Industry    string
}

// EnrichmentResult is the engine's verdict for one business. Field values are
// the merged view: pre-existing data plus anything newly resolved.
type EnrichmentResult struct {
	NormalizedName string
	Website        string
	Email          string
	Phone          string
	Industry       string
	BrandScore     float64
	BrandMeasured  bool
	Status         string
}

// Enricher runs the discovery pipeline for a single business.
type Enricher struct {
	selector   DomainSelector
	discoverer ContactDiscoverer
	weights    scoring.Weights
	log        *zap.Logger
}

// NewEnricher wires the pipeline stages together.
func NewEnricher(selector DomainSelector, discoverer ContactDiscoverer, weights scoring.Weights, log *zap.Logger) *Enricher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enricher{
		selector:   selector,
		discoverer: discoverer,
		weights:    weights,
		log:        log.With(zap.String("component", "enricher")),
	}
}

// Enrich attempts to fill the blank fields of the request. It never returns
// an error: network failures downgrade to absent values and the status
// reflects whatever could be established.
func (e *Enricher) Enrich(ctx context.Context, req EnrichmentRequest) EnrichmentResult {
	result := EnrichmentResult{
		NormalizedName: names.Normalize(req.CompanyName),
		Website:        strings.TrimSpace(req.Website),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Industry:       strings.TrimSpace(req.Industry),
	}

	if result.Industry == "" && strings.TrimSpace(req.SICCodes) != "" {
		result.Industry = sic.Classify(sic.SplitCodes(req.SICCodes))
	}

	if result.Website == "" && result.NormalizedName != "" {
		if candidate, ok := e.selector.Select(ctx, result.NormalizedName, req.Country); ok {
			result.Website = candidate.Domain
			e.log.Debug("domain resolved",
				zap.String("company", req.CompanyName),
				zap.String("domain", candidate.Domain),
				zap.Int("score", candidate.Score))
		}
	}

	host := websiteHost(result.Website)
	if host != "" && (result.Email == "" || result.Phone == "") {
		discovery := e.discoverer.Discover(ctx, host)

		if result.Email == "" {
			result.Email = contacts.BestEmail(discovery.Emails, host, e.weights)
		}
		if result.Phone == "" {
			result.Phone = contacts.BestPhone(discovery.Phones, e.weights)
		}
		if discovery.HomeText != "" {
			result.BrandScore = scoring.Brand(req.CompanyName, discovery.HomeText)
			result.BrandMeasured = true
		}
	}

	result.Status = deriveStatus(result, e.weights.BrandThreshold)
	return result
}

// deriveStatus classifies the merged view. A weak brand match downgrades the
// status but never discards contacts.
func deriveStatus(result EnrichmentResult, threshold float64) string {
	hasDomain := result.Website != ""
	hasContact := result.Email != "" || result.Phone != ""

	switch {
	case !hasDomain && !hasContact:
		return entity.StatusNothingFound
	case hasDomain && !hasContact:
		return entity.StatusDomainOnly
	case hasDomain && hasContact:
		if result.BrandMeasured && result.BrandScore < threshold {
			return entity.StatusUnverifiedBrand
		}
		return entity.StatusOK
	default:
		return entity.StatusPartial
	}
}

// websiteHost reduces a stored website value to a crawlable host name.
func websiteHost(website string) string {
	host := strings.TrimSpace(strings.ToLower(website))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}
