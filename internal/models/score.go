package models

import (
	"cvewatch/internal/resolver"
	"strings"

	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
)

func parseScore(doc resolver.Node, schema *Schema) Score {
	var metric resolver.Node
	for _, path := range schema.Metrics {
		if found := resolver.Resolve(doc, path...); !found.IsNull() {
			metric = found.First()
			break
		}
	}
	if metric.IsNull() {
		return Score{}
	}

	score := Score{
		AttackVector:        firstString(metric, schema.AttackVector),
		BaseSeverity:        firstString(metric, schema.BaseSeverity),
		ExploitabilityScore: firstFloat(metric, schema.ExploitabilityScore),
		ImpactScore:         firstFloat(metric, schema.ImpactScore),
	}
	if base, ok := resolver.ResolveFirst(metric, schema.BaseScore...).First().AsFloat(); ok {
		score.BaseScore = base
	} else {
		score.BaseScore = CalculateCVSSScore(firstString(metric, schema.Vector))
	}
	if score.BaseSeverity == "" && score.BaseScore > 0 {
		score.BaseSeverity = SeverityRating(score.BaseScore)
	}
	return score
}

func firstString(n resolver.Node, paths [][]string) string {
	s, _ := resolver.ResolveFirst(n, paths...).First().AsString()
	return s
}

func firstFloat(n resolver.Node, paths [][]string) float64 {
	f, _ := resolver.ResolveFirst(n, paths...).First().AsFloat()
	return f
}

// CalculateCVSSScore calculates the CVSS base score from a vector string.
// Unknown or malformed vectors score 0.
func CalculateCVSSScore(vector string) float64 {
	switch {
	case vector == "":
		return 0
	case strings.HasPrefix(vector, "CVSS:3.1/"):
		if cvss, err := gocvss31.ParseVector(vector); err == nil {
			return cvss.BaseScore()
		}
	case strings.HasPrefix(vector, "CVSS:3.0/"):
		if cvss, err := gocvss30.ParseVector(vector); err == nil {
			return cvss.BaseScore()
		}
	case !strings.HasPrefix(vector, "CVSS:"):
		if cvss, err := gocvss20.ParseVector(vector); err == nil {
			return cvss.BaseScore()
		}
	}
	return 0
}

// SeverityRating returns the qualitative rating for a CVSS score.
func SeverityRating(score float64) string {
	switch {
	case score == 0:
		return "NONE"
	case score < 4.0:
		return "LOW"
	case score < 7.0:
		return "MEDIUM"
	case score < 9.0:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}
