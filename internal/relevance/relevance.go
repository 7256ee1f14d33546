// Package relevance decides which fetched records concern which subscription.
package relevance

import (
	"cvewatch/internal/models"
	"sort"
	"strings"
)

// ExpandProducts lower-cases the product names and adds the underscore or space
// spelling of every name that uses the other one.
func ExpandProducts(products []string) []string {
	seen := make(map[string]struct{}, len(products)*2)
	out := make([]string, 0, len(products)*2)
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range products {
		p = strings.ToLower(p)
		add(p)
		switch {
		case strings.Contains(p, " "):
			add(strings.ReplaceAll(p, " ", "_"))
		case strings.Contains(p, "_"):
			add(strings.ReplaceAll(p, "_", " "))
		}
	}
	return out
}

// Matches reports whether rec concerns the vendor and at least one of the products.
func Matches(rec *models.Record, vendor string, products []string) bool {
	text := rec.MatchText()
	if !containsAny(text, strings.ToLower(vendor)) {
		return false
	}
	for _, p := range products {
		if containsAny(text, p) {
			return true
		}
	}
	return false
}

func containsAny(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}

// Filter keeps the records relevant for sub, in their original order.
func Filter(records []*models.Record, sub *models.Subscription) []*models.Record {
	products := ExpandProducts(sub.Products)
	var out []*models.Record
	for _, rec := range records {
		if Matches(rec, sub.Vendor, products) {
			out = append(out, rec)
		}
	}
	return out
}

// Reconcile drops from updated every record already reported as new.
func Reconcile(newRecords, updated []*models.Record) []*models.Record {
	if len(newRecords) == 0 || len(updated) == 0 {
		return updated
	}
	ids := make(map[string]struct{}, len(newRecords))
	for _, rec := range newRecords {
		ids[rec.ID] = struct{}{}
	}
	out := make([]*models.Record, 0, len(updated))
	for _, rec := range updated {
		if _, dup := ids[rec.ID]; !dup {
			out = append(out, rec)
		}
	}
	return out
}

// Rank returns the records ordered by base score, highest first. Ties keep their order.
func Rank(records []*models.Record) []*models.Record {
	out := append([]*models.Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.BaseScore > out[j].Score.BaseScore
	})
	return out
}

// Apply filters the records of a successful batch for each of its subscriptions.
// Subscriptions without any result come back in empty; they need no notification.
func Apply(result models.BatchResult) (matches []models.Match, empty []*models.Subscription) {
	for _, sub := range result.Batch.Subscriptions {
		m := models.Match{
			Subscription: sub,
			New:          Rank(Filter(result.New, sub)),
		}
		if sub.FetchUpdates {
			m.Updated = Rank(Reconcile(m.New, Filter(result.Updated, sub)))
		}
		if m.Empty() {
			empty = append(empty, sub)
			continue
		}
		matches = append(matches, m)
	}
	return matches, empty
}
