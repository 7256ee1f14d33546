package relevance

import (
	"cvewatch/internal/models"
	"cvewatch/internal/resolver"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T, id, description, cpe string, score float64) *models.Record {
	t.Helper()
	schema, err := models.SchemaByName(models.SchemaCurrent)
	require.NoError(t, err)
	cve := map[string]any{
		"id":               id,
		"sourceIdentifier": "cve@mitre.org",
		"descriptions":     []any{map[string]any{"lang": "en", "value": description}},
		"metrics": map[string]any{
			"cvssMetricV31": []any{map[string]any{"cvssData": map[string]any{"baseScore": score}}},
		},
	}
	if cpe != "" {
		cve["configurations"] = []any{map[string]any{
			"nodes": []any{map[string]any{
				"cpeMatch": []any{map[string]any{"vulnerable": true, "criteria": cpe}},
			}},
		}}
	}
	rec, err := models.NewRecord(resolver.FromValue(map[string]any{"cve": cve}), schema)
	require.NoError(t, err)
	return rec
}

func fixtureRecords(t *testing.T) map[string]*models.Record {
	t.Helper()
	schema, err := models.SchemaByName(models.SchemaCurrent)
	require.NoError(t, err)
	body, err := os.ReadFile("../models/testdata/nvd_v2_page.json")
	require.NoError(t, err)
	doc, err := resolver.Parse(body)
	require.NoError(t, err)

	out := map[string]*models.Record{}
	for _, item := range resolver.Resolve(doc, schema.Items...).Items() {
		rec, err := models.NewRecord(item, schema)
		require.NoError(t, err)
		out[rec.ID] = rec
	}
	require.Len(t, out, 3)
	return out
}

func idsOf(records []*models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestExpandProducts(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"Cisco IOS"}, []string{"cisco ios", "cisco_ios"}},
		{[]string{"cisco_ios"}, []string{"cisco_ios", "cisco ios"}},
		{[]string{"Portal"}, []string{"portal"}},
		{[]string{"Widget Pro", "widget_pro"}, []string{"widget pro", "widget_pro"}},
		{nil, []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandProducts(tt.in), "%v", tt.in)
	}
}

func TestMatches_SpaceAndUnderscoreSpellings(t *testing.T) {
	spaced := newRecord(t, "CVE-1", "A flaw in Cisco IOS Software allows a reload.", "", 5)
	underscored := newRecord(t, "CVE-2", "Denial of service.", "cpe:2.3:o:cisco:cisco_ios:15.2:*:*:*:*:*:*:*", 5)

	for _, product := range []string{"Cisco IOS", "cisco_ios"} {
		products := ExpandProducts([]string{product})
		assert.True(t, Matches(spaced, "Cisco", products), product)
		assert.True(t, Matches(underscored, "cisco", products), product)
	}
}

func TestMatches_VendorRequired(t *testing.T) {
	rec := newRecord(t, "CVE-1", "Overflow in portal login.", "", 5)
	assert.False(t, Matches(rec, "globex", ExpandProducts([]string{"portal"})))
}

func TestMatches_ProductRequired(t *testing.T) {
	rec := newRecord(t, "CVE-1", "Overflow in the Globex portal login.", "", 5)
	assert.False(t, Matches(rec, "globex", ExpandProducts([]string{"billing"})))
	assert.True(t, Matches(rec, "GLOBEX", ExpandProducts([]string{"Portal"})))
}

func TestMatches_AssignerCounts(t *testing.T) {
	rec := newRecord(t, "CVE-1", "Overflow in portal login.", "", 5)
	assert.True(t, Matches(rec, "mitre", ExpandProducts([]string{"portal"})))
}

func TestFilter_AcmeWidgetPro(t *testing.T) {
	records := fixtureRecords(t)
	all := []*models.Record{records["CVE-2024-0001"], records["CVE-2024-0002"], records["CVE-2024-0003"]}
	sub := &models.Subscription{Vendor: "acme", Products: []string{"widget pro"}}

	assert.Equal(t, []string{"CVE-2024-0001"}, idsOf(Filter(all, sub)))

	sub.Products = []string{"widget pro", "gadget"}
	assert.Equal(t, []string{"CVE-2024-0001", "CVE-2024-0003"}, idsOf(Filter(all, sub)))
}

func TestReconcile(t *testing.T) {
	a := newRecord(t, "CVE-A", "x", "", 1)
	b := newRecord(t, "CVE-B", "x", "", 1)
	c := newRecord(t, "CVE-C", "x", "", 1)

	assert.Equal(t, []string{"CVE-C"}, idsOf(Reconcile([]*models.Record{a, b}, []*models.Record{b, c, a})))
	assert.Equal(t, []string{"CVE-B"}, idsOf(Reconcile(nil, []*models.Record{b})))
	assert.Empty(t, Reconcile([]*models.Record{a}, nil))
}

func TestRank_NonIncreasingAndStable(t *testing.T) {
	low := newRecord(t, "CVE-LOW", "x", "", 3.1)
	first := newRecord(t, "CVE-FIRST", "x", "", 7.5)
	high := newRecord(t, "CVE-HIGH", "x", "", 9.8)
	second := newRecord(t, "CVE-SECOND", "x", "", 7.5)
	input := []*models.Record{low, first, high, second}

	ranked := Rank(input)

	assert.Equal(t, []string{"CVE-HIGH", "CVE-FIRST", "CVE-SECOND", "CVE-LOW"}, idsOf(ranked))
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score.BaseScore, ranked[i].Score.BaseScore)
	}
	assert.Equal(t, "CVE-LOW", input[0].ID, "input must stay untouched")
}

func TestApply(t *testing.T) {
	records := fixtureRecords(t)
	widget := &models.Subscription{Vendor: "acme", Products: []string{"Widget Pro"}, FetchUpdates: true, SourceFile: "acme.yaml"}
	gadget := &models.Subscription{Vendor: "acme", Products: []string{"gadget"}, SourceFile: "acme.yaml"}
	portal := &models.Subscription{Vendor: "initech", Products: []string{"portal"}, SourceFile: "initech.yaml"}

	result := models.BatchResult{
		Batch: models.Batch{Subscriptions: []*models.Subscription{widget, gadget, portal}},
		New:   []*models.Record{records["CVE-2024-0003"], records["CVE-2024-0001"]},
		Updated: []*models.Record{
			records["CVE-2024-0001"],
			records["CVE-2024-0003"],
		},
	}

	matches, empty := Apply(result)

	require.Len(t, matches, 2)
	assert.Same(t, widget, matches[0].Subscription)
	assert.Equal(t, []string{"CVE-2024-0001"}, idsOf(matches[0].New))
	assert.Empty(t, matches[0].Updated, "a record reported as new is not also updated")

	assert.Same(t, gadget, matches[1].Subscription)
	assert.Equal(t, []string{"CVE-2024-0003"}, idsOf(matches[1].New))
	assert.Empty(t, matches[1].Updated, "updates were not requested")

	assert.Equal(t, []*models.Subscription{portal}, empty)
}

func TestApply_UpdatedOnly(t *testing.T) {
	records := fixtureRecords(t)
	sub := &models.Subscription{Vendor: "globex", Products: []string{"portal"}, FetchUpdates: true}

	matches, empty := Apply(models.BatchResult{
		Batch:   models.Batch{Subscriptions: []*models.Subscription{sub}},
		Updated: []*models.Record{records["CVE-2024-0002"]},
	})

	assert.Empty(t, empty)
	require.Len(t, matches, 1)
	assert.Empty(t, matches[0].New)
	assert.Equal(t, []string{"CVE-2024-0002"}, idsOf(matches[0].Updated))
}
