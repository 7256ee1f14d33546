package models

import (
	"fmt"
	"strings"
)

// TransientFetchError is a page request failure worth retrying: network errors,
// timeouts and non-200 responses.
type TransientFetchError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransientFetchError) Error() string {
	if e.StatusCode != 0 {
		if e.Message != "" {
			return fmt.Sprintf("request not successful: status code %d: %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("request not successful: status code %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// FetchError is raised once every attempt of a page request failed.
type FetchError struct {
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DataFormatError reports a document part with an unexpected shape. It is never retried.
type DataFormatError struct {
	Field string
	Value string
	Err   error
}

func (e *DataFormatError) Error() string {
	msg := fmt.Sprintf("formatting %s failed for %q", e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataFormatError) Unwrap() error { return e.Err }

type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ConfigLoadError marks a subscription source that could not be loaded; only that source is skipped.
type ConfigLoadError struct {
	Source string
	Err    error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Source, e.Err)
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// BatchError wraps the failure of one query batch with the sources it served.
type BatchError struct {
	Sources []string
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("jobs in the following files failed: %s: %v", strings.Join(e.Sources, ", "), e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
