package fetch

import (
	"context"
	"cvewatch/internal/models"
	"cvewatch/internal/providers"
	"cvewatch/internal/resolver"
	"cvewatch/internal/structures"
	"fmt"
	"net/url"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Orchestrator fetches every batch of a cycle. Batches run concurrently up to
// the configured limit and fail independently of each other.
type Orchestrator struct {
	fetcher     PageFetcher
	schema      *models.Schema
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	records     *lru.Cache[string, *models.Record]
	perPage     int
	concurrency int
}

func NewOrchestrator(conf *structures.Config, fetcher PageFetcher, schema *models.Schema, logger providers.Logger, metrics providers.MetricsProviderInterface) (*Orchestrator, error) {
	o := &Orchestrator{
		fetcher:     fetcher,
		schema:      schema,
		logger:      logger,
		metrics:     metrics,
		perPage:     conf.Api.ResultsPerPage,
		concurrency: conf.Api.Concurrency,
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	if conf.Api.RecordCacheSize > 0 {
		cache, err := lru.New[string, *models.Record](conf.Api.RecordCacheSize)
		if err != nil {
			return nil, fmt.Errorf("record cache: %w", err)
		}
		o.records = cache
	}
	return o, nil
}

// FetchAll returns one result per batch, in batch order.
func (o *Orchestrator) FetchAll(ctx context.Context, batches []models.Batch, now time.Time) []models.BatchResult {
	results := make([]models.BatchResult, len(batches))
	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch models.Batch) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = models.BatchResult{Batch: batch, Err: &models.BatchError{Sources: batch.Sources(), Err: ctx.Err()}}
				return
			}
			results[i] = o.FetchBatch(ctx, batch, now)
		}(i, batch)
	}
	wg.Wait()

	for _, r := range results {
		if r.Failed() {
			o.metrics.IncBatches("failed")
			o.logger.Errorf(providers.TypeFetch, "%v", r.Err)
			continue
		}
		o.metrics.IncBatches("ok")
		o.metrics.AddRecords("new", len(r.New))
		o.metrics.AddRecords("updated", len(r.Updated))
	}
	return results
}

// FetchBatch runs the new and, when wanted, the updated query of one batch.
func (o *Orchestrator) FetchBatch(ctx context.Context, batch models.Batch, now time.Time) models.BatchResult {
	result := models.BatchResult{Batch: batch}
	rep := batch.Representative()
	if rep == nil {
		return result
	}
	newParams, updatedParams := BuildParams(o.schema, rep, now, o.perPage)

	var (
		wg                sync.WaitGroup
		newErr, updateErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		result.New, newErr = o.collect(ctx, newParams)
	}()
	if batch.WantsUpdates() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result.Updated, updateErr = o.collect(ctx, updatedParams)
		}()
	}
	wg.Wait()

	switch {
	case updateErr != nil:
		result.Err = &models.BatchError{Sources: batch.Sources(), Err: fmt.Errorf("updated records could not be retrieved: %w", updateErr)}
	case newErr != nil:
		result.Err = &models.BatchError{Sources: batch.Sources(), Err: fmt.Errorf("new records could not be retrieved: %w", newErr)}
	}
	if result.Err != nil {
		result.New, result.Updated = nil, nil
	}
	return result
}

func (o *Orchestrator) collect(ctx context.Context, params url.Values) ([]*models.Record, error) {
	var records []*models.Record
	pages := NewPageIterator(o.fetcher, params)
	for {
		page, err := pages.Next(ctx)
		if err != nil {
			return nil, err
		}
		if page == nil {
			return records, nil
		}
		for _, item := range page.Items {
			rec, err := o.record(item)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}
}

func (o *Orchestrator) record(doc resolver.Node) (*models.Record, error) {
	key := models.RecordKey(doc, o.schema)
	if o.records != nil && key != "" {
		if rec, ok := o.records.Get(key); ok {
			o.metrics.IncRecordCacheHits()
			return rec, nil
		}
	}
	rec, err := models.NewRecord(doc, o.schema)
	if err != nil {
		return nil, err
	}
	if o.records != nil && key != "" {
		o.records.Add(key, rec)
	}
	return rec, nil
}
