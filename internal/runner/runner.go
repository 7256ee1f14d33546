package runner

import (
	"context"
	"cvewatch/internal/models"
	"cvewatch/internal/providers"
	"cvewatch/internal/services"
	"cvewatch/internal/structures"
	"cvewatch/internal/subscriptions/interfaces"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"
)

type RunnerInterface interface {
	Init(ctx context.Context)
	Stop()
	Restore() error
	Persist() error
	Trigger(ctx context.Context) (*models.CycleSummary, bool)
	Start() bool
	Running() bool
}

// Runner starts a cycle every schedule interval. At most one cycle runs at a time;
// a tick that finds one in progress is skipped.
type Runner struct {
	config  *structures.Config
	logger  providers.Logger
	service services.CycleServiceInterface
	store   interfaces.StoreInterface
	cron    *gron.Cron
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func (r *Runner) Init(ctx context.Context) {
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.cron = gron.New()
	r.cron.AddFunc(gron.Every(r.config.Schedule.Interval), func() {
		r.tick(r.ctx)
	})
	r.cron.Start()
	r.logger.Infof(providers.TypeApp, "Cycle runner started, interval %s", r.config.Schedule.Interval)

	if r.config.Schedule.RunOnStart {
		go r.tick(r.ctx)
	}
}

func (r *Runner) tick(ctx context.Context) {
	if _, ok := r.Trigger(ctx); !ok {
		r.logger.Warnf(providers.TypeApp, "Previous cycle still running, skipping this one")
	}
}

// Trigger runs a cycle now. It reports false without running when a cycle is in progress.
func (r *Runner) Trigger(ctx context.Context) (*models.CycleSummary, bool) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, false
	}
	defer r.running.Store(false)
	return r.service.RunCycle(ctx), true
}

// Start runs a cycle in the background under the runner's context.
func (r *Runner) Start() bool {
	if !r.running.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer r.running.Store(false)
		r.service.RunCycle(r.ctx)
	}()
	return true
}

func (r *Runner) Running() bool {
	return r.running.Load()
}

func (r *Runner) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runner) Restore() error {
	return r.store.Restore()
}

func (r *Runner) Persist() error {
	r.logger.Infof(providers.TypeApp, "Persisting watermarks to %s...", r.config.Watermark.FilePath)
	err := r.store.Persist()
	if err != nil {
		r.logger.Errorf(providers.TypeApp, "Error while persisting watermarks: %s", err)
		return err
	}
	return nil
}

func NewRunner(config *structures.Config, logger providers.Logger, service services.CycleServiceInterface, store interfaces.StoreInterface) RunnerInterface {
	return &Runner{
		config:  config,
		logger:  logger,
		service: service,
		store:   store,
		ctx:     context.Background(),
	}
}
