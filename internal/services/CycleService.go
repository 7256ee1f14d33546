package services

import (
	"context"
	"cvewatch/internal/models"
	"cvewatch/internal/notify"
	"cvewatch/internal/providers"
	"cvewatch/internal/relevance"
	"cvewatch/internal/scheduler"
	"cvewatch/internal/subscriptions/interfaces"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type FetcherInterface interface {
	FetchAll(ctx context.Context, batches []models.Batch, now time.Time) []models.BatchResult
}

type NotifierInterface interface {
	Deliver(ctx context.Context, digests []models.Digest) []notify.Delivery
}

type CycleServiceInterface interface {
	RunCycle(ctx context.Context) *models.CycleSummary
	LastSummary() *models.CycleSummary
}

// CycleService runs one poll cycle at a time: load due subscriptions, fetch,
// filter, notify and then move the watermarks of the sources that are done.
type CycleService struct {
	store    interfaces.StoreInterface
	fetcher  FetcherInterface
	notifier NotifierInterface
	cache    providers.CacheProviderInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	now      func() time.Time

	mu   sync.Mutex
	last *models.CycleSummary
}

func NewCycleService(store interfaces.StoreInterface, fetcher FetcherInterface, notifier NotifierInterface, cache providers.CacheProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) CycleServiceInterface {
	return &CycleService{
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		cache:    cache,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (cs *CycleService) RunCycle(ctx context.Context) *models.CycleSummary {
	start := cs.now()
	summary := &models.CycleSummary{ID: uuid.NewString(), StartedAt: start}
	runAt := models.TruncateToMinute(start)
	cs.logger.Infof(providers.TypeApp, "Cycle %s started", summary.ID)

	subs, loadErrs := cs.store.LoadDue(start)
	for _, err := range loadErrs {
		summary.AddFailure(models.FailureSource, []string{failedSource(err)}, err)
		cs.logger.Warnf(providers.TypeApp, "Cycle %s: %v", summary.ID, err)
	}
	summary.Due = len(subs)
	cs.metrics.SetSubscriptionsDue(len(subs))

	if len(subs) > 0 {
		matches := cs.fetchAndFilter(ctx, summary, subs, start)
		cs.deliver(ctx, summary, matches, runAt)
	}

	summary.AdvancedSources = cs.store.Commit()
	if err := cs.store.Persist(); err != nil {
		summary.AddFailure(models.FailurePersist, summary.AdvancedSources, err)
		cs.logger.Errorf(providers.TypeApp, "Cycle %s: saving watermarks failed: %v", summary.ID, err)
	}
	cs.cache.Invalidate(providers.CacheKeySummary, providers.CacheKeyWatermarks)

	summary.FinishedAt = cs.now()
	outcome := summary.Decide()
	cs.metrics.ObserveCycle(string(outcome), summary.FinishedAt.Sub(start))
	if outcome == models.OutcomeFailure {
		cs.logger.Errorf(providers.TypeApp, "Cycle %s: %s", summary.ID, summary)
	} else {
		cs.logger.Infof(providers.TypeApp, "Cycle %s: %s", summary.ID, summary)
	}

	cs.mu.Lock()
	cs.last = summary
	cs.mu.Unlock()
	return summary
}

func (cs *CycleService) fetchAndFilter(ctx context.Context, summary *models.CycleSummary, subs []*models.Subscription, start time.Time) []models.Match {
	runAt := models.TruncateToMinute(start)
	batches := scheduler.GroupBySignature(subs)
	summary.Batches = len(batches)

	var matches []models.Match
	for _, res := range cs.fetcher.FetchAll(ctx, batches, start) {
		if res.Failed() {
			summary.FailedBatches++
			summary.AddFailure(models.FailureBatch, res.Batch.Sources(), res.Err)
			for _, source := range res.Batch.Sources() {
				cs.store.Hold(source)
			}
			continue
		}
		summary.NewRecords += len(res.New)
		summary.UpdatedRecords += len(res.Updated)

		found, empty := relevance.Apply(res)
		for _, sub := range empty {
			cs.store.Advance(sub.SourceFile, runAt)
		}
		matches = append(matches, found...)
	}
	return matches
}

func (cs *CycleService) deliver(ctx context.Context, summary *models.CycleSummary, matches []models.Match, runAt time.Time) {
	digests := notify.GroupByRecipient(matches)
	summary.Digests = len(digests)
	if len(digests) == 0 {
		return
	}

	for _, d := range cs.notifier.Deliver(ctx, digests) {
		sources := d.Digest.Sources()
		if d.Err != nil {
			summary.AddFailure(models.FailureRecipient, []string{d.Digest.Recipient}, d.Err)
			for _, source := range sources {
				cs.store.Hold(source)
			}
			continue
		}
		summary.Delivered++
		for _, source := range sources {
			cs.store.Advance(source, runAt)
		}
	}
}

func (cs *CycleService) LastSummary() *models.CycleSummary {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.last
}

func failedSource(err error) string {
	var loadErr *models.ConfigLoadError
	if errors.As(err, &loadErr) {
		return loadErr.Source
	}
	return ""
}
