package aggregator

import (
	"fmt"
	"sort"

	"github.com/ppiankov/levovulns/internal/models"
)

// cweGroup accumulates the vulnerabilities that share a CWE code
type cweGroup struct {
	cwe       string
	title     string
	risk      string
	count     int
	endpoints map[string]bool
	solution  string
	reference string
	category  string
}

// RecommendationGenerator creates one remediation item per CWE
type RecommendationGenerator struct{}

// NewRecommendationGenerator creates a new recommendation generator
func NewRecommendationGenerator() *RecommendationGenerator {
	return &RecommendationGenerator{}
}

// GenerateRecommendations groups vulnerabilities by CWE and orders the result
// by highest risk, then count.
func (r *RecommendationGenerator) GenerateRecommendations(vulns []models.Vulnerability) []models.Recommendation {
	groups := make(map[string]*cweGroup)

	for _, v := range vulns {
		key := v.GroupKey()
		g, exists := groups[key]
		if !exists {
			g = &cweGroup{cwe: key, endpoints: make(map[string]bool)}
			groups[key] = g
		}

		g.count++
		g.endpoints[v.Endpoint] = true
		if g.risk == "" || models.RiskPriority(v.Risk) < models.RiskPriority(g.risk) {
			g.risk = v.Risk
		}
		if g.title == "" {
			g.title = v.CWESummary()
		}
		if g.solution == "" {
			g.solution = v.Solution
		}
		if g.reference == "" {
			g.reference = v.Reference
		}
		if g.category == "" {
			g.category = v.TestCaseCategory
		}
	}

	recommendations := make([]models.Recommendation, 0, len(groups))
	for _, g := range groups {
		endpoints := make([]string, 0, len(g.endpoints))
		for e := range g.endpoints {
			endpoints = append(endpoints, e)
		}
		sort.Strings(endpoints)

		recommendations = append(recommendations, models.Recommendation{
			CWE:       g.cwe,
			Title:     r.generateTitle(g),
			Risk:      g.risk,
			Count:     g.count,
			Endpoints: endpoints,
			Solution:  g.solution,
			Reference: g.reference,
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		pi, pj := models.RiskPriority(recommendations[i].Risk), models.RiskPriority(recommendations[j].Risk)
		if pi != pj {
			return pi < pj
		}
		if recommendations[i].Count != recommendations[j].Count {
			return recommendations[i].Count > recommendations[j].Count
		}
		return recommendations[i].CWE < recommendations[j].CWE
	})

	return recommendations
}

// generateTitle prefers the CWE summary, then the test case category
func (r *RecommendationGenerator) generateTitle(g *cweGroup) string {
	endpoints := len(g.endpoints)
	noun := "endpoint"
	if endpoints != 1 {
		noun = "endpoints"
	}

	switch {
	case g.title != "":
		return fmt.Sprintf("Fix %s on %d %s", g.title, endpoints, noun)
	case g.category != "":
		return fmt.Sprintf("Address %d %s finding(s) on %d %s", g.count, g.category, endpoints, noun)
	default:
		return fmt.Sprintf("Review %d unclassified finding(s) on %d %s", g.count, endpoints, noun)
	}
}

// GetTopRecommendations returns the top N recommendations
func (r *RecommendationGenerator) GetTopRecommendations(recommendations []models.Recommendation, n int) []models.Recommendation {
	if n >= len(recommendations) {
		return recommendations
	}
	return recommendations[:n]
}
