package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"

	"github.com/oakmere-data/enricher/internal/entity"
	"github.com/oakmere-data/enricher/internal/repository"
)

// ErrRunActive is returned when a run is triggered while one is in progress.
var ErrRunActive = errors.New("an enrichment run is already active")

// RecordEnricher produces an enrichment verdict for one business.
type RecordEnricher interface {
	Enrich(ctx context.Context, req EnrichmentRequest) EnrichmentResult
}

// Runner drives batch enrichment passes over the record store. Records are
// processed strictly one at a time; at most one run exists at any moment.
type Runner struct {
	records   repository.RecordsRepository
	runs      repository.RunsRepository
	enricher  RecordEnricher
	batchSize int
	dayWindow int
	region    string
	log       *zap.Logger

	mu     sync.Mutex
	active bool
}

// NewRunner constructs a batch runner. region is the fallback phone region
// used when a record carries no usable country.
func NewRunner(records repository.RecordsRepository, runs repository.RunsRepository, enricher RecordEnricher, batchSize, dayWindow int, region string, log *zap.Logger) *Runner {
	if batchSize <= 0 {
		batchSize = 20
	}
	if region == "" {
		region = "GB"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		records:   records,
		runs:      runs,
		enricher:  enricher,
		batchSize: batchSize,
		dayWindow: dayWindow,
		region:    region,
		log:       log.With(zap.String("component", "runner")),
	}
}

// Trigger starts a run in the background and returns its row immediately.
func (r *Runner) Trigger(ctx context.Context, trigger string) (*entity.Run, error) {
	run, err := r.begin(ctx, trigger)
	if err != nil {
		return nil, err
	}
	go r.process(context.WithoutCancel(ctx), *run)
	return run, nil
}

// RunOnce executes a full pass synchronously and returns the finished run.
func (r *Runner) RunOnce(ctx context.Context, trigger string) (*entity.Run, error) {
	run, err := r.begin(ctx, trigger)
	if err != nil {
		return nil, err
	}
	finished := r.process(ctx, *run)
	return &finished, nil
}

func (r *Runner) begin(ctx context.Context, trigger string) (*entity.Run, error) {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil, ErrRunActive
	}
	r.active = true
	r.mu.Unlock()

	run, err := r.runs.Create(ctx, trigger)
	if err != nil {
		r.release()
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

func (r *Runner) release() {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()
}

func (r *Runner) process(ctx context.Context, run entity.Run) entity.Run {
	defer r.release()

	log := r.log.With(zap.String("run_id", run.ID.String()), zap.String("trigger", run.Trigger))

	records, err := r.records.SelectForEnrichment(ctx, r.batchSize, r.dayWindow)
	if err != nil {
		log.Error("record selection failed", zap.Error(err))
		msg := err.Error()
		r.finish(ctx, &run, entity.RunFailed, &msg)
		return run
	}

	run.Selected = len(records)
	log.Info("enrichment run started", zap.Int("records", run.Selected))

	for i := range records {
		if ctx.Err() != nil {
			log.Warn("run cancelled", zap.Int("processed", i))
			break
		}

		rec := records[i]
		if err := r.processRecord(ctx, rec); err != nil {
			run.Failed++
			log.Error("record enrichment failed",
				zap.String("record_id", rec.ID.String()),
				zap.String("company", rec.CompanyName),
				zap.Error(err))
			continue
		}
		run.Patched++
	}

	status := entity.RunCompleted
	var msg *string
	if ctx.Err() != nil {
		status = entity.RunFailed
		m := "run cancelled before completion"
		msg = &m
	}
	r.finish(ctx, &run, status, msg)

	log.Info("enrichment run finished",
		zap.String("status", run.Status),
		zap.Int("selected", run.Selected),
		zap.Int("patched", run.Patched),
		zap.Int("failed", run.Failed))
	return run
}

// processRecord enriches one record and applies its patch. Panics from the
// pipeline are converted to errors so a poisoned record cannot sink the run.
func (r *Runner) processRecord(ctx context.Context, rec entity.Record) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic while enriching record %s: %v", rec.ID, v)
		}
	}()

	req := EnrichmentRequest{
		CompanyName: rec.CompanyName,
		Country:     deref(rec.Country),
		SICCodes:    deref(rec.SICCodes),
		Website:     deref(rec.Website),
		Email:       deref(rec.Email),
		Phone:       deref(rec.Phone),
		Industry:    deref(rec.Industry),
	}

	result := r.enricher.Enrich(ctx, req)
	patch := buildPatch(req, result, r.region)
	return r.records.ApplyPatch(ctx, rec.ID, patch)
}

func (r *Runner) finish(ctx context.Context, run *entity.Run, status string, msg *string) {
	run.Status = status
	run.Error = msg
	// The row update must survive a cancelled run context.
	ctx = context.WithoutCancel(ctx)
	if err := r.runs.Finish(ctx, run.ID, status, run.Selected, run.Patched, run.Failed, msg); err != nil {
		r.log.Error("finalize run row", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}

// buildPatch keeps only newly resolved values; existing data is never
// overwritten. The status and timestamp are written on every pass.
func buildPatch(req EnrichmentRequest, result EnrichmentResult, region string) entity.Patch {
	patch := entity.Patch{Status: result.Status}

	if req.Website == "" && result.Website != "" {
		website := result.Website
		patch.Website = &website
	}
	if req.Email == "" && result.Email != "" {
		email := result.Email
		patch.Email = &email
	}
	if req.Phone == "" && result.Phone != "" {
		phone := canonicalPhone(result.Phone, req.Country, region)
		patch.Phone = &phone
	}
	if req.Industry == "" && result.Industry != "" {
		industry := result.Industry
		patch.Industry = &industry
	}
	return patch
}

// canonicalPhone renders the ranked phone in E.164 when it parses as a
// possible number for the record's region; otherwise the ranked string is
// stored unchanged.
func canonicalPhone(phone, country, defaultRegion string) string {
	parsed, err := phonenumbers.Parse(phone, phoneRegion(country, defaultRegion))
	if err != nil || !phonenumbers.IsPossibleNumber(parsed) {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func phoneRegion(country, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "uk", "gb", "great britain", "united kingdom", "england", "scotland", "wales", "northern ireland":
		return "GB"
	case "":
		return fallback
	}
	if len(country) == 2 {
		return strings.ToUpper(country)
	}
	return fallback
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
