package models

import (
	"cvewatch/internal/resolver"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var documentDateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z",
	time.RFC3339Nano,
	DateLayout,
}

type AffectedRange struct {
	Vulnerable   bool
	MatchString  string
	VersionStart string
	VersionEnd   string
}

type Score struct {
	AttackVector        string
	BaseScore           float64
	BaseSeverity        string
	ExploitabilityScore float64
	ImpactScore         float64
}

// Record is one parsed advisory. Published and Modified are zero when the
// document did not carry them.
type Record struct {
	ID           string
	Assigner     string
	URLs         []string
	Sources      []string
	Descriptions []string
	Published    time.Time
	Modified     time.Time
	Affected     []AffectedRange
	Score        Score

	matchText []string
}

// MatchText returns the lower-cased fields a subscription is matched against.
func (r *Record) MatchText() []string {
	return r.matchText
}

func (r *Record) PublishedDate() string {
	return formatDate(r.Published)
}

func (r *Record) ModifiedDate() string {
	return formatDate(r.Modified)
}

// RecordKey identifies a record document by id and modification stamp without
// parsing the rest of it. Documents lacking either have no key.
func RecordKey(doc resolver.Node, schema *Schema) string {
	id, _ := resolver.Resolve(doc, schema.ID...).First().AsString()
	modified, _ := resolver.Resolve(doc, schema.Modified...).First().AsString()
	if id == "" || modified == "" {
		return ""
	}
	return id + "@" + modified
}

// NewRecord builds a Record from one upstream document.
func NewRecord(doc resolver.Node, schema *Schema) (*Record, error) {
	id, ok := resolver.Resolve(doc, schema.ID...).First().AsString()
	if !ok || id == "" {
		return nil, &DataFormatError{Field: "id", Value: "<missing>"}
	}

	published, err := parseDate("published", resolver.Resolve(doc, schema.Published...))
	if err != nil {
		return nil, err
	}
	modified, err := parseDate("modified", resolver.Resolve(doc, schema.Modified...))
	if err != nil {
		return nil, err
	}

	affected, err := parseAffected(doc, schema)
	if err != nil {
		return nil, err
	}

	assigner, _ := resolver.Resolve(doc, schema.Assigner...).First().AsString()
	rec := &Record{
		ID:           id,
		Assigner:     assigner,
		URLs:         resolver.Resolve(doc, schema.URLs...).Strings(),
		Sources:      resolver.Resolve(doc, schema.Sources...).Strings(),
		Descriptions: resolver.Resolve(doc, schema.Descriptions...).Strings(),
		Published:    published,
		Modified:     modified,
		Affected:     affected,
		Score:        parseScore(doc, schema),
	}
	rec.matchText = buildMatchText(rec)
	return rec, nil
}

func buildMatchText(r *Record) []string {
	text := make([]string, 0, 1+len(r.Sources)+len(r.Descriptions)+len(r.Affected))
	seen := make(map[string]struct{}, cap(text))
	add := func(s string) {
		s = strings.ToLower(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		text = append(text, s)
	}
	add(r.Assigner)
	for _, s := range r.Sources {
		add(s)
	}
	for _, d := range r.Descriptions {
		add(d)
	}
	for _, a := range r.Affected {
		add(a.MatchString)
	}
	return text
}

func parseAffected(doc resolver.Node, schema *Schema) ([]AffectedRange, error) {
	var ranges []AffectedRange
	for _, match := range resolver.Resolve(doc, schema.Affected...).Flatten() {
		if match.Kind() != resolver.Map {
			continue
		}
		matchString, err := formatMatchNode(resolver.Resolve(match, schema.CPE...))
		if err != nil {
			return nil, err
		}
		vulnerable, _ := resolver.Resolve(match, schema.Vulnerable...).First().AsBool()
		ranges = append(ranges, AffectedRange{
			Vulnerable:   vulnerable,
			MatchString:  matchString,
			VersionStart: versionBound(match, schema.VersionStartIncluding, schema.VersionStartExcluding),
			VersionEnd:   versionBound(match, schema.VersionEndIncluding, schema.VersionEndExcluding),
		})
	}
	return ranges, nil
}

func formatMatchNode(n resolver.Node) (string, error) {
	if n.IsNull() {
		return "", nil
	}
	cpe, ok := n.First().AsString()
	if !ok {
		return "", &DataFormatError{Field: "cpe match", Value: n.Kind().String()}
	}
	return FormatCPEMatch(cpe), nil
}

// FormatCPEMatch turns a CPE URI into "vendor product version".
func FormatCPEMatch(cpe string) string {
	parts := strings.Split(cpe, ":")
	if len(parts) <= 3 {
		return ""
	}
	end := min(len(parts), 6)
	return strings.ToLower(strings.TrimRight(strings.Join(parts[3:end], " "), "- "))
}

func versionBound(match resolver.Node, including, excluding []string) string {
	if v := scalarString(resolver.Resolve(match, including...)); v != "" {
		return "incl. " + v
	}
	if v := scalarString(resolver.Resolve(match, excluding...)); v != "" {
		return "excl. " + v
	}
	return ""
}

func scalarString(n resolver.Node) string {
	s, _ := n.First().AsString()
	return s
}

func parseDate(field string, n resolver.Node) (time.Time, error) {
	if n.IsNull() {
		return time.Time{}, nil
	}
	raw, ok := n.First().AsString()
	if !ok {
		return time.Time{}, &DataFormatError{Field: field, Value: n.Kind().String()}
	}
	var lastErr error
	for _, layout := range documentDateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &DataFormatError{Field: field, Value: raw, Err: lastErr}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
