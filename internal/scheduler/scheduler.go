// Package scheduler decides which subscriptions are due and merges them into query batches.
package scheduler

import (
	"cvewatch/internal/models"
	"sort"
	"time"
)

// RoundedHour returns the hour of now, rounded up from half past. 23:30 and later yield 24.
func RoundedHour(now time.Time) int {
	hour := now.Hour()
	if now.Minute() >= 30 {
		hour++
	}
	return hour
}

// IsDue reports whether sub runs in the cycle started at now.
func IsDue(sub *models.Subscription, now time.Time) bool {
	if sub.IntervalHours <= 0 {
		return false
	}
	diff := (RoundedHour(now) - sub.StartOffset) % sub.IntervalHours
	if diff < 0 {
		diff += sub.IntervalHours
	}
	return diff == 0
}

func FilterDue(subs []*models.Subscription, now time.Time) []*models.Subscription {
	due := make([]*models.Subscription, 0, len(subs))
	for _, s := range subs {
		if IsDue(s, now) {
			due = append(due, s)
		}
	}
	return due
}

// GroupBySignature partitions subs into batches of equal query signature. Every
// subscription lands in exactly one batch; batches come out in signature order.
func GroupBySignature(subs []*models.Subscription) []models.Batch {
	type keyed struct {
		sig models.Signature
		sub *models.Subscription
	}
	entries := make([]keyed, len(subs))
	for i, s := range subs {
		entries[i] = keyed{sig: s.Signature(), sub: s}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].sig.Compare(entries[j].sig) < 0
	})

	var batches []models.Batch
	for _, e := range entries {
		if n := len(batches); n > 0 && batches[n-1].Signature.Equal(e.sig) {
			batches[n-1].Subscriptions = append(batches[n-1].Subscriptions, e.sub)
			continue
		}
		batches = append(batches, models.Batch{Signature: e.sig, Subscriptions: []*models.Subscription{e.sub}})
	}
	return batches
}
