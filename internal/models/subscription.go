package models

import (
	"sort"
	"time"
)

// Subscription is one watch request: a vendor/product pair delivered to one recipient.
// It is built fresh every cycle and never mutated afterwards.
type Subscription struct {
	StartOffset   int
	IntervalHours int
	FetchUpdates  bool
	Recipient     string
	Vendor        string
	Products      []string
	SourceFile    string
	ExtraParams   map[string]string
	LastRun       time.Time
}

type Param struct {
	Key   string
	Value string
}

// Signature identifies the upstream query a subscription needs. Subscriptions with
// equal signatures are served by one fetch.
type Signature struct {
	LastRun       time.Time
	IntervalHours int
	Params        []Param
}

func TruncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func (s *Subscription) Signature() Signature {
	params := make([]Param, 0, len(s.ExtraParams))
	for k, v := range s.ExtraParams {
		params = append(params, Param{Key: k, Value: v})
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i].Key != params[j].Key {
			return params[i].Key < params[j].Key
		}
		return params[i].Value < params[j].Value
	})
	return Signature{
		LastRun:       TruncateToMinute(s.LastRun),
		IntervalHours: s.IntervalHours,
		Params:        params,
	}
}

// Compare orders signatures by last run, interval and then parameters.
func (a Signature) Compare(b Signature) int {
	if c := a.LastRun.Compare(b.LastRun); c != 0 {
		return c
	}
	if a.IntervalHours != b.IntervalHours {
		if a.IntervalHours < b.IntervalHours {
			return -1
		}
		return 1
	}
	for i := 0; i < len(a.Params) && i < len(b.Params); i++ {
		if c := compareStrings(a.Params[i].Key, b.Params[i].Key); c != 0 {
			return c
		}
		if c := compareStrings(a.Params[i].Value, b.Params[i].Value); c != 0 {
			return c
		}
	}
	switch {
	case len(a.Params) < len(b.Params):
		return -1
	case len(a.Params) > len(b.Params):
		return 1
	}
	return 0
}

func (a Signature) Equal(b Signature) bool {
	return a.Compare(b) == 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
