package fetch

import (
	"cvewatch/internal/models"
	"net/url"
	"strconv"
	"time"
)

const (
	paramResultsPerPage = "resultsPerPage"
	paramStartIndex     = "startIndex"
)

// BuildParams returns the query for new and for updated records of the batch led by sub.
// Both cover LastRun up to now; extra params naming a window bound only replace the
// bound of their own query.
func BuildParams(schema *models.Schema, sub *models.Subscription, now time.Time, perPage int) (url.Values, url.Values) {
	start := formatParamTime(schema, sub.LastRun)
	end := formatParamTime(schema, now)
	rpp := strconv.Itoa(perPage)

	newParams := url.Values{}
	newParams.Set(schema.PubStartParam, start)
	newParams.Set(schema.PubEndParam, end)
	newParams.Set(paramResultsPerPage, rpp)

	updatedParams := url.Values{}
	updatedParams.Set(schema.ModStartParam, start)
	updatedParams.Set(schema.ModEndParam, end)
	updatedParams.Set(paramResultsPerPage, rpp)

	for key, value := range sub.ExtraParams {
		window, updated := schema.IsWindowParam(key)
		switch {
		case window && updated:
			updatedParams.Set(key, value)
		case window:
			newParams.Set(key, value)
		default:
			newParams.Set(key, value)
			updatedParams.Set(key, value)
		}
	}
	return newParams, updatedParams
}

func formatParamTime(schema *models.Schema, t time.Time) string {
	return t.UTC().Format(schema.TimeLayout)
}

func cloneParams(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	return out
}
