package interfaces

import (
	"cvewatch/internal/models"
	"time"
)

// StoreInterface owns the subscription definitions and the watermark of every source.
type StoreInterface interface {
	Restore() error
	LoadDue(now time.Time) ([]*models.Subscription, []error)
	Advance(source string, ts time.Time)
	Hold(source string)
	Commit() []string
	Persist() error
	Snapshot() map[string]string
}
