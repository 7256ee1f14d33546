package notify

import (
	"cvewatch/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string, score float64) *models.Record {
	return &models.Record{
		ID:           id,
		URLs:         []string{"https://nvd.example/" + id},
		Descriptions: []string{"Issue in " + id},
		Score:        models.Score{BaseScore: score, BaseSeverity: models.SeverityRating(score), AttackVector: "NETWORK"},
		Affected:     []models.AffectedRange{{Vulnerable: true, MatchString: "acme widget_pro 2.0", VersionEnd: "excl. 2.1"}},
	}
}

func match(recipient, vendor, source string, newRecords, updated []*models.Record) models.Match {
	return models.Match{
		Subscription: &models.Subscription{Recipient: recipient, Vendor: vendor, Products: []string{"widget pro"}, SourceFile: source},
		New:          newRecords,
		Updated:      updated,
	}
}

func TestGroupByRecipient(t *testing.T) {
	matches := []models.Match{
		match("bob@example.com", "acme", "a.yaml", []*models.Record{rec("CVE-1", 5)}, nil),
		match("alice@example.com", "globex", "b.yaml", []*models.Record{rec("CVE-2", 5)}, nil),
		match("bob@example.com", "initech", "c.yaml", nil, []*models.Record{rec("CVE-3", 5)}),
		match("alice@example.com", "acme", "a.yaml", []*models.Record{rec("CVE-1", 5)}, nil),
	}

	digests := GroupByRecipient(matches)

	require.Len(t, digests, 2)
	assert.Equal(t, "alice@example.com", digests[0].Recipient)
	assert.Equal(t, []string{"Globex", "Acme"}, digests[0].Vendors())
	assert.Equal(t, "bob@example.com", digests[1].Recipient)
	assert.Equal(t, []string{"Acme", "Initech"}, digests[1].Vendors())
	assert.Equal(t, []string{"a.yaml", "c.yaml"}, digests[1].Sources())

	total := 0
	for _, d := range digests {
		total += len(d.Matches)
		for _, m := range d.Matches {
			assert.Equal(t, d.Recipient, m.Subscription.Recipient)
		}
	}
	assert.Equal(t, len(matches), total)
}

func TestGroupByRecipient_Empty(t *testing.T) {
	assert.Empty(t, GroupByRecipient(nil))
}

func TestSubject(t *testing.T) {
	newOnly := models.Digest{Matches: []models.Match{match("x", "acme", "a", []*models.Record{rec("CVE-1", 1)}, nil)}}
	updatedOnly := models.Digest{Matches: []models.Match{match("x", "acme", "a", nil, []*models.Record{rec("CVE-1", 1)})}}
	both := models.Digest{Matches: []models.Match{
		match("x", "acme", "a", []*models.Record{rec("CVE-1", 1)}, nil),
		match("x", "GLOBEX", "b", nil, []*models.Record{rec("CVE-2", 1)}),
	}}

	assert.Equal(t, "New CVEs", Title(newOnly))
	assert.Equal(t, "Updated CVEs", Title(updatedOnly))
	assert.Equal(t, "New and updated CVEs", Title(both))
	assert.Equal(t, "New CVEs for your products from Acme", Subject(newOnly))
	assert.Equal(t, "New and updated CVEs for your products from Acme, Globex", Subject(both))
}
