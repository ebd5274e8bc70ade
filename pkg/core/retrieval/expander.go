// Package retrieval answers evidence queries against a published index
// snapshot: facet-based query expansion, cosine similarity with a hard
// threshold, and recency-weighted final ranking.
package retrieval

import (
	"fmt"
	"strings"
)

// Facet names one financial angle a query is widened into.
type Facet string

const (
	FacetPerformance Facet = "performance"
	FacetRisk        Facet = "risk"
	FacetOutlook     Facet = "outlook"
	FacetStrategy    Facet = "strategy"
	FacetCapital     Facet = "capital_allocation"
	FacetCompetition Facet = "competitive_position"
)

// facetTemplates widen recall: each template restates the query from one
// financial angle. %s receives the ticker (or subject) scope.
var facetTemplates = map[Facet]string{
	FacetPerformance: "%s financial performance revenue earnings and margin trends",
	FacetRisk:        "%s risk factors headwinds and uncertainties",
	FacetOutlook:     "%s guidance outlook and forward projections",
	FacetStrategy:    "%s business strategy priorities and initiatives",
	FacetCapital:     "%s capital allocation dividends buybacks and investment",
	FacetCompetition: "%s competitive position market share and moat",
}

// Expand turns one user query into the set of sub-queries actually searched:
// the original plus one per facet. Order is fixed so expansion is
// deterministic.
func Expand(query, ticker string) []string {
	scope := strings.TrimSpace(ticker)
	if scope == "" {
		scope = query
	}
	out := []string{query}
	for _, f := range []Facet{FacetPerformance, FacetRisk, FacetOutlook, FacetStrategy, FacetCapital, FacetCompetition} {
		out = append(out, fmt.Sprintf(facetTemplates[f], scope))
	}
	return out
}
