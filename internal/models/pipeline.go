package models

import (
	"sort"
	"strings"
)

// Batch holds subscriptions that share one query signature. One fetch serves all of them.
type Batch struct {
	Signature     Signature
	Subscriptions []*Subscription
}

// Representative returns the subscription whose window and params drive the batch query.
func (b Batch) Representative() *Subscription {
	if len(b.Subscriptions) == 0 {
		return nil
	}
	return b.Subscriptions[0]
}

// WantsUpdates reports whether any subscription in the batch asked for updated records.
func (b Batch) WantsUpdates() bool {
	for _, s := range b.Subscriptions {
		if s.FetchUpdates {
			return true
		}
	}
	return false
}

func (b Batch) Sources() []string {
	return uniqueSources(b.Subscriptions)
}

type BatchResult struct {
	Batch   Batch
	New     []*Record
	Updated []*Record
	Err     error
}

func (r BatchResult) Failed() bool {
	return r.Err != nil
}

// Match is the filtered outcome for one subscription.
type Match struct {
	Subscription *Subscription
	New          []*Record
	Updated      []*Record
}

func (m Match) Empty() bool {
	return len(m.New) == 0 && len(m.Updated) == 0
}

// Digest is everything one recipient receives in a cycle.
type Digest struct {
	Recipient string
	Matches   []Match
}

func (d Digest) HasNew() bool {
	for _, m := range d.Matches {
		if len(m.New) > 0 {
			return true
		}
	}
	return false
}

func (d Digest) HasUpdated() bool {
	for _, m := range d.Matches {
		if len(m.Updated) > 0 {
			return true
		}
	}
	return false
}

func (d Digest) Sources() []string {
	subs := make([]*Subscription, len(d.Matches))
	for i, m := range d.Matches {
		subs[i] = m.Subscription
	}
	return uniqueSources(subs)
}

// Vendors lists the vendors of the digest in match order, capitalized, without repeats.
func (d Digest) Vendors() []string {
	seen := make(map[string]struct{}, len(d.Matches))
	vendors := make([]string, 0, len(d.Matches))
	for _, m := range d.Matches {
		v := Capitalize(m.Subscription.Vendor)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		vendors = append(vendors, v)
	}
	return vendors
}

func uniqueSources(subs []*Subscription) []string {
	seen := make(map[string]struct{}, len(subs))
	sources := make([]string, 0, len(subs))
	for _, s := range subs {
		if _, ok := seen[s.SourceFile]; ok {
			continue
		}
		seen[s.SourceFile] = struct{}{}
		sources = append(sources, s.SourceFile)
	}
	sort.Strings(sources)
	return sources
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
