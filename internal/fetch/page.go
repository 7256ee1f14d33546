package fetch

import (
	"context"
	"cvewatch/internal/models"
	"cvewatch/internal/resolver"
	"fmt"
	"net/url"
	"strconv"
)

// Page is one response of the paged upstream API.
type Page struct {
	ResultsPerPage int
	StartIndex     int
	TotalResults   int
	Items          []resolver.Node
}

// NextIndex returns the start index of the following page, if there is one.
// A page that cannot move the start index forward has no successor.
func (p *Page) NextIndex() (int, bool) {
	if p.ResultsPerPage <= 0 {
		return 0, false
	}
	if p.TotalResults-p.ResultsPerPage > p.StartIndex+1 {
		return p.StartIndex + p.ResultsPerPage, true
	}
	return 0, false
}

// stalled reports a page that announces more results but pages by zero.
func (p *Page) stalled() bool {
	return p.ResultsPerPage <= 0 && p.TotalResults > p.StartIndex+len(p.Items)
}

// ParsePage decodes a page body. A body without the paging counters is a DataFormatError.
func ParsePage(body []byte, schema *models.Schema) (*Page, error) {
	doc, err := resolver.Parse(body)
	if err != nil {
		return nil, &models.DataFormatError{Field: "page", Value: truncate(string(body), 64), Err: err}
	}

	page := &Page{}
	for _, counter := range []struct {
		key string
		dst *int
	}{
		{"resultsPerPage", &page.ResultsPerPage},
		{"startIndex", &page.StartIndex},
		{"totalResults", &page.TotalResults},
	} {
		v, ok := resolver.Resolve(doc, counter.key).First().AsFloat()
		if !ok {
			return nil, &models.DataFormatError{Field: counter.key, Value: "<missing>"}
		}
		*counter.dst = int(v)
	}

	items := resolver.Resolve(doc, schema.Items...)
	if items.Kind() == resolver.Seq {
		page.Items = items.Items()
	} else if !items.IsNull() {
		page.Items = []resolver.Node{items}
	}
	return page, nil
}

// PageFetcher requests a single page of the upstream API.
type PageFetcher interface {
	FetchPage(ctx context.Context, params url.Values) (*Page, error)
}

// PageIterator walks the pages of one query. It is lazy and cannot be restarted.
type PageIterator struct {
	fetcher PageFetcher
	params  url.Values
	done    bool
}

func NewPageIterator(fetcher PageFetcher, params url.Values) *PageIterator {
	return &PageIterator{fetcher: fetcher, params: cloneParams(params)}
}

// Next fetches the following page. It returns nil with a nil error once the
// query is exhausted. After an error the iterator stays exhausted.
func (it *PageIterator) Next(ctx context.Context) (*Page, error) {
	if it.done {
		return nil, nil
	}
	page, err := it.fetcher.FetchPage(ctx, it.params)
	if err != nil {
		it.done = true
		return nil, err
	}
	if page.stalled() {
		it.done = true
		return nil, &models.DataFormatError{Field: "resultsPerPage", Value: strconv.Itoa(page.ResultsPerPage),
			Err: fmt.Errorf("%d of %d results left unpaged", page.TotalResults-page.StartIndex, page.TotalResults)}
	}
	if next, ok := page.NextIndex(); ok {
		it.params.Set(paramStartIndex, strconv.Itoa(next))
	} else {
		it.done = true
	}
	return page, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
