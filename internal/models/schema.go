package models

import "fmt"

const (
	SchemaLegacy  = "1.0"
	SchemaCurrent = "2.0"
)

// Schema lists where each record field lives in one version of the upstream documents.
// Record parsing only varies these paths; it never branches on the version itself.
type Schema struct {
	Name string

	// Items is the path from a page document to its record documents.
	Items []string

	ID           []string
	Assigner     []string
	URLs         []string
	Sources      []string
	Descriptions []string
	Published    []string
	Modified     []string

	// Affected leads to the affected-range maps; the remaining affected paths are
	// relative to one of those maps.
	Affected              []string
	CPE                   []string
	Vulnerable            []string
	VersionStartIncluding []string
	VersionStartExcluding []string
	VersionEndIncluding   []string
	VersionEndExcluding   []string

	// Metrics lists candidate score blocks in order of preference; the score paths
	// below are relative to the chosen block and also tried in order.
	Metrics             [][]string
	AttackVector        [][]string
	BaseScore           [][]string
	BaseSeverity        [][]string
	Vector              [][]string
	ExploitabilityScore [][]string
	ImpactScore         [][]string

	PubStartParam string
	PubEndParam   string
	ModStartParam string
	ModEndParam   string
	TimeLayout    string
}

var legacySchema = Schema{
	Name:         SchemaLegacy,
	Items:        []string{"result", "CVE_Items"},
	ID:           []string{"cve", "CVE_data_meta", "ID"},
	Assigner:     []string{"cve", "CVE_data_meta", "ASSIGNER"},
	URLs:         []string{"cve", "references", "reference_data", "url"},
	Sources:      []string{"cve", "references", "reference_data", "refsource"},
	Descriptions: []string{"cve", "description", "description_data", "value"},
	Published:    []string{"publishedDate"},
	Modified:     []string{"lastModifiedDate"},

	Affected:              []string{"configurations", "nodes", "cpe_match"},
	CPE:                   []string{"cpe23Uri"},
	Vulnerable:            []string{"vulnerable"},
	VersionStartIncluding: []string{"versionStartIncluding"},
	VersionStartExcluding: []string{"versionStartExcluding"},
	VersionEndIncluding:   []string{"versionEndIncluding"},
	VersionEndExcluding:   []string{"versionEndExcluding"},

	Metrics:             [][]string{{"impact", "baseMetricV3"}, {"impact", "baseMetricV2"}},
	AttackVector:        [][]string{{"cvssV3", "attackVector"}, {"cvssV2", "accessVector"}},
	BaseScore:           [][]string{{"cvssV3", "baseScore"}, {"cvssV2", "baseScore"}},
	BaseSeverity:        [][]string{{"cvssV3", "baseSeverity"}, {"severity"}},
	Vector:              [][]string{{"cvssV3", "vectorString"}, {"cvssV2", "vectorString"}},
	ExploitabilityScore: [][]string{{"exploitabilityScore"}},
	ImpactScore:         [][]string{{"impactScore"}},

	PubStartParam: "pubStartDate",
	PubEndParam:   "pubEndDate",
	ModStartParam: "modStartDate",
	ModEndParam:   "modEndDate",
	TimeLayout:    "2006-01-02T15:04:05:000 UTC-07:00",
}

var currentSchema = Schema{
	Name:         SchemaCurrent,
	Items:        []string{"vulnerabilities"},
	ID:           []string{"cve", "id"},
	Assigner:     []string{"cve", "sourceIdentifier"},
	URLs:         []string{"cve", "references", "url"},
	Sources:      []string{"cve", "references", "source"},
	Descriptions: []string{"cve", "descriptions", "value"},
	Published:    []string{"cve", "published"},
	Modified:     []string{"cve", "lastModified"},

	Affected:              []string{"cve", "configurations", "nodes", "cpeMatch"},
	CPE:                   []string{"criteria"},
	Vulnerable:            []string{"vulnerable"},
	VersionStartIncluding: []string{"versionStartIncluding"},
	VersionStartExcluding: []string{"versionStartExcluding"},
	VersionEndIncluding:   []string{"versionEndIncluding"},
	VersionEndExcluding:   []string{"versionEndExcluding"},

	Metrics: [][]string{
		{"cve", "metrics", "cvssMetricV31"},
		{"cve", "metrics", "cvssMetricV30"},
		{"cve", "metrics", "cvssMetricV2"},
	},
	AttackVector:        [][]string{{"cvssData", "attackVector"}, {"cvssData", "accessVector"}},
	BaseScore:           [][]string{{"cvssData", "baseScore"}},
	BaseSeverity:        [][]string{{"cvssData", "baseSeverity"}, {"baseSeverity"}},
	Vector:              [][]string{{"cvssData", "vectorString"}},
	ExploitabilityScore: [][]string{{"exploitabilityScore"}},
	ImpactScore:         [][]string{{"impactScore"}},

	PubStartParam: "pubStartDate",
	PubEndParam:   "pubEndDate",
	ModStartParam: "lastModStartDate",
	ModEndParam:   "lastModEndDate",
	TimeLayout:    "2006-01-02T15:04:05.000-07:00",
}

// SchemaByName returns the schema registered for an API version.
func SchemaByName(name string) (*Schema, error) {
	switch name {
	case SchemaLegacy:
		s := legacySchema
		return &s, nil
	case SchemaCurrent, "":
		s := currentSchema
		return &s, nil
	}
	return nil, fmt.Errorf("unknown api schema %q", name)
}

// IsWindowParam reports whether key names one of the query window bounds and,
// if so, whether it belongs to the updated-records query.
func (s *Schema) IsWindowParam(key string) (window bool, updated bool) {
	switch key {
	case s.PubStartParam, s.PubEndParam:
		return true, false
	case s.ModStartParam, s.ModEndParam:
		return true, true
	}
	return false, false
}
