package domains

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oakmere-data/enricher/internal/scoring"
)

// DomainVerifier is the probe dependency of the Selector.
type DomainVerifier interface {
	Verify(ctx context.Context, domain string) Result
}

// Selector orchestrates candidate generation and verification in paced,
// scored batches.
type Selector struct {
	verifier  DomainVerifier
	weights   scoring.Weights
	cap       int
	batchSize int
	pause     time.Duration
	log       *zap.Logger
}

// SelectorOption customizes a Selector.
type SelectorOption func(*Selector)

// WithWeights overrides the scoring weights.
func WithWeights(w scoring.Weights) SelectorOption {
	return func(s *Selector) { s.weights = w }
}

// WithCandidateCap bounds how many candidates are ever probed per name.
func WithCandidateCap(n int) SelectorOption {
	return func(s *Selector) {
		if n > 0 {
			s.cap = n
		}
	}
}

// WithBatchSize sets how many candidates are verified concurrently.
func WithBatchSize(n int) SelectorOption {
	return func(s *Selector) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithBatchPause sets the delay between verification batches. The pause
// keeps probe traffic under third-party rate-limit thresholds and must not
// be removed in the name of speed.
func WithBatchPause(d time.Duration) SelectorOption {
	return func(s *Selector) { s.pause = d }
}

// NewSelector returns a Selector with the tuned defaults: top 40 candidates,
// batches of 5, 200ms between batches.
func NewSelector(verifier DomainVerifier, log *zap.Logger, opts ...SelectorOption) *Selector {
	s := &Selector{
		verifier:  verifier,
		weights:   scoring.DefaultWeights(),
		cap:       40,
		batchSize: 5,
		pause:     200 * time.Millisecond,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns the best verified-alive domain for a normalized company
// name. Candidates are probed in score order, a batch at a time; a live
// .co.uk or .com hit ends the search early and the best-scored live
// candidate seen across all processed batches wins. The boolean is false
// when nothing verified alive.
func (s *Selector) Select(ctx context.Context, normalized, country string) (Candidate, bool) {
	candidates := Generate(normalized, country, s.weights)
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	if len(candidates) > s.cap {
		candidates = candidates[:s.cap]
	}

	var best Candidate
	var haveBest bool
	consider := func(c Candidate) {
		if !haveBest || c.Score > best.Score {
			best, haveBest = c, true
		}
	}

	for start := 0; start < len(candidates); start += s.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + s.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		results := make([]Result, len(batch))
		var wg sync.WaitGroup
		for i, c := range batch {
			wg.Add(1)
			go func(i int, domain string) {
				defer wg.Done()
				results[i] = s.verifier.Verify(ctx, domain)
			}(i, c.Domain)
		}
		wg.Wait()

		strongHit := false
		aliveInBatch := 0
		for i, r := range results {
			if !r.OK {
				continue
			}
			aliveInBatch++
			consider(batch[i])
			if strings.HasSuffix(r.Domain, ".co.uk") || strings.HasSuffix(r.Domain, ".com") {
				strongHit = true
			}
		}
		s.log.Debug("domain batch verified",
			zap.String("name", normalized),
			zap.Int("batch_start", start),
			zap.Int("alive", aliveInBatch),
			zap.Bool("strong_hit", strongHit))

		if strongHit {
			break
		}
		if end < len(candidates) {
			select {
			case <-ctx.Done():
			case <-time.After(s.pause):
			}
		}
	}

	if !haveBest {
		return Candidate{}, false
	}
	return best, true
}
