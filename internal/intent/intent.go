// Package intent maps a free-text question to the kind of answer it needs.
//
// Classification is an ordered list of rules folded first-match-wins. Keyword
// sets overlap ("report" vs "presentation", "trend" in a deck request), so the
// order of Rules is part of the contract: presentation requests win over
// chart requests, which win over insight requests. Matching is by substring,
// so chart kinds that are common word fragments ("pie" in "copies") are only
// recognised as a phrase.
package intent

import (
	"strings"

	"askdata/internal/types"
)

// Rule pairs a predicate over the lower-cased query with the intent it selects.
type Rule struct {
	Name   string
	Intent types.Intent
	Match  func(q string) bool
}

var (
	presentationWords = []string{"presentation", "slide", "ppt", "powerpoint", "slideshow"}
	deckTargets       = []string{"presentation", "slide"}
	createVerbs       = []string{"create", "make", "generate"}

	visualizationWords = []string{
		"chart", "graph", "visualiz", "visualis", "plot", "dashboard",
		"histogram", "heatmap", "heat map", "scatter", "pie chart",
	}
	showMeTargets = []string{"data", "visual"}

	insightWords = []string{
		"insight", "summary", "summarize", "summarise", "overview", "analysis", "analyze", "analyse",
		"trend", "pattern", "findings", "correlation", "relationship", "statistics", "key metrics",
	}
)

var rules = []Rule{
	{Name: "presentation-keyword", Intent: types.IntentPresentation, Match: containsAny(presentationWords...)},
	{Name: "presentation-create", Intent: types.IntentPresentation, Match: both(createVerbs, deckTargets)},
	{Name: "presentation-export", Intent: types.IntentPresentation, Match: both([]string{"export"}, deckTargets)},
	{Name: "visualization-keyword", Intent: types.IntentVisualization, Match: containsAny(visualizationWords...)},
	{Name: "visualization-show-me", Intent: types.IntentVisualization, Match: both([]string{"show me"}, showMeTargets)},
	{Name: "insights-keyword", Intent: types.IntentInsights, Match: containsAny(insightWords...)},
	{Name: "insights-report", Intent: types.IntentInsights, Match: func(q string) bool {
		return strings.Contains(q, "report") && !strings.Contains(q, "presentation")
	}},
}

// Rules returns a copy of the built-in rule list in evaluation order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Classify returns the intent for query. It never fails; anything no rule
// claims is General.
func Classify(query string) types.Intent {
	return ClassifyWith(rules, query)
}

// ClassifyWith folds rules over query and returns the first match.
func ClassifyWith(rs []Rule, query string) types.Intent {
	q := strings.ToLower(query)
	for _, r := range rs {
		if r.Match != nil && r.Match(q) {
			return r.Intent
		}
	}
	return types.IntentGeneral
}

// Explain reports which rule claimed query, or "" when the default applied.
func Explain(query string) string {
	q := strings.ToLower(query)
	for _, r := range rules {
		if r.Match(q) {
			return r.Name
		}
	}
	return ""
}

func containsAny(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
}

func both(a, b []string) func(string) bool {
	left, right := containsAny(a...), containsAny(b...)
	return func(q string) bool { return left(q) && right(q) }
}
