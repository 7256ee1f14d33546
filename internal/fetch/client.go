package fetch

import (
	"context"
	"cvewatch/internal/models"
	"cvewatch/internal/providers"
	"cvewatch/internal/resolver"
	"cvewatch/internal/retry"
	"cvewatch/internal/structures"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const apiKeyHeader = "apiKey"

// HttpPageFetcher requests pages from the upstream API and retries transient failures.
type HttpPageFetcher struct {
	client  *http.Client
	baseURL string
	apiKey  string
	schema  *models.Schema
	policy  retry.Policy
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

// NewSchemaProvider selects the document layout named by api.schema.
func NewSchemaProvider(conf *structures.Config) (*models.Schema, error) {
	return models.SchemaByName(conf.Api.Schema)
}

func NewHttpPageFetcher(conf *structures.Config, client *http.Client, schema *models.Schema, logger providers.Logger, metrics providers.MetricsProviderInterface) *HttpPageFetcher {
	f := &HttpPageFetcher{
		client:  client,
		baseURL: conf.Api.Url,
		apiKey:  conf.Api.Key,
		schema:  schema,
		logger:  logger,
		metrics: metrics,
	}
	f.policy = retry.Policy{
		Attempts:     conf.Api.Retries,
		InitialDelay: conf.Api.RetryDelay,
		Multiplier:   conf.Api.RetryBackoff,
		Retryable:    isTransient,
		Wrap: func(attempts int, err error) error {
			return &models.FetchError{Attempts: attempts, Err: err}
		},
		Notify: func(attempt int, err error, next time.Duration) {
			logger.Warnf(providers.TypeFetch, "Attempt %d failed: %v, retrying in %s", attempt, err, next)
		},
	}
	return f
}

func (f *HttpPageFetcher) FetchPage(ctx context.Context, params url.Values) (*Page, error) {
	var page *Page
	err := f.policy.Do(ctx, func(ctx context.Context) error {
		start := time.Now()
		p, err := f.request(ctx, params)
		f.metrics.ObservePageDuration(time.Since(start))
		if err != nil {
			f.metrics.IncPageFetches("error")
			return err
		}
		f.metrics.IncPageFetches("ok")
		page = p
		return nil
	})
	if err != nil {
		f.logger.Errorf(providers.TypeFetch, "Page request %s failed: %v", params.Encode(), err)
		return nil, err
	}
	f.logger.Debugf(providers.TypeFetch, "Fetched page at %d of %d", page.StartIndex, page.TotalResults)
	return page, nil
}

func (f *HttpPageFetcher) request(ctx context.Context, params url.Values) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")
	if f.apiKey != "" {
		req.Header.Set(apiKeyHeader, f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &models.TransientFetchError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.TransientFetchError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &models.TransientFetchError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	return ParsePage(body, f.schema)
}

// errorMessage pulls the upstream message out of an error body.
func errorMessage(body []byte) string {
	doc, err := resolver.Parse(body)
	if err != nil {
		return "No error message retrieved"
	}
	if msg, ok := resolver.Resolve(doc, "message").First().AsString(); ok && msg != "" {
		return msg
	}
	return "No error message retrieved"
}

func isTransient(err error) bool {
	var transient *models.TransientFetchError
	return errors.As(err, &transient)
}
