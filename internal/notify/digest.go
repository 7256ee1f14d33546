// Package notify turns matches into one digest per recipient and delivers them by mail.
package notify

import (
	"cvewatch/internal/models"
	"sort"
	"strings"
)

// GroupByRecipient partitions matches into digests, one per recipient, ordered by
// recipient. Matches keep their relative order inside a digest.
func GroupByRecipient(matches []models.Match) []models.Digest {
	sorted := append([]models.Match(nil), matches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Subscription.Recipient < sorted[j].Subscription.Recipient
	})

	var digests []models.Digest
	for _, m := range sorted {
		n := len(digests)
		if n > 0 && digests[n-1].Recipient == m.Subscription.Recipient {
			digests[n-1].Matches = append(digests[n-1].Matches, m)
			continue
		}
		digests = append(digests, models.Digest{
			Recipient: m.Subscription.Recipient,
			Matches:   []models.Match{m},
		})
	}
	return digests
}

// Title names the kind of records in the digest.
func Title(d models.Digest) string {
	prefix := "Updated"
	switch newRecords, updated := d.HasNew(), d.HasUpdated(); {
	case newRecords && updated:
		prefix = "New and updated"
	case newRecords:
		prefix = "New"
	}
	return prefix + " CVEs"
}

func Subject(d models.Digest) string {
	return Title(d) + " for your products from " + strings.Join(d.Vendors(), ", ")
}
