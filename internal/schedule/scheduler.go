package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/oakmere-data/enricher/internal/entity"
	"github.com/oakmere-data/enricher/internal/service"
)

// Runner starts one synchronous enrichment pass. Satisfied by *service.Runner.
type Runner interface {
	RunOnce(ctx context.Context, trigger string) (*entity.Run, error)
}

// Scheduler fires periodic enrichment runs on a cron spec. Ticks that land
// while a run is still in progress are skipped, not queued.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a scheduler around the given runner. The cron expression uses
// the standard 5-field format (minute hour day month weekday).
func New(runner Runner, spec string, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return &Scheduler{
		cron:   c,
		runner: runner,
		spec:   spec,
		log:    log.With(zap.String("component", "schedule")),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the job and begins ticking.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("cron", s.spec))
	return nil
}

// Stop halts ticking and waits for an in-flight tick to return.
func (s *Scheduler) Stop() {
	s.cancel()
	drained := s.cron.Stop()
	<-drained.Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) tick() {
	run, err := s.runner.RunOnce(s.ctx, entity.TriggerSchedule)
	switch {
	case errors.Is(err, service.ErrRunActive):
		s.log.Info("previous run still active, skipping tick")
	case err != nil:
		s.log.Error("scheduled run failed to start", zap.Error(err))
	default:
		s.log.Info("scheduled run finished",
			zap.String("run_id", run.ID.String()),
			zap.String("status", run.Status),
			zap.Int("patched", run.Patched),
			zap.Int("failed", run.Failed))
	}
}
