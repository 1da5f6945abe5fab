// Package extract mines structured artifacts from free model text. Every
// pass is independent and total: no match means an empty slice.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"askdata/internal/types"
)

const (
	MaxInsights        = 8
	MaxRecommendations = 6
	MaxKeyMetrics      = 6
	MaxKeyPoints       = 5

	minSentenceLen = 30
	maxSentenceLen = 200
	minRecLen      = 20
	maxRecLen      = 200
)

var indicatorWords = []string{
	"shows", "indicates", "reveals", "demonstrates", "suggests",
	"highest", "lowest", "increased", "decreased", "significant", "trend", "pattern",
}

var reBanned = regexp.MustCompile(`(?i)\b(?:analysis|ai)\b`)

// reRecTrigger matches one trigger phrase together with its trailing
// separator. A clause is the text between periods or newlines.
var (
	reRecTrigger = regexp.MustCompile(`(?i)(?:recommendation\s*\d*\s*:\s*|\b(?:recommend|suggest|propose|advise)(?:s|ed)?\b(?:\s+that)?\s+|\bshould\s+|\bconsider(?:ing)?\s+)`)
	reClause     = regexp.MustCompile(`[^.\n]+`)
)

var metricKeywords = []string{"%", "average", "total", "mean", "median", "max", "min"}

// Extract runs every pass over raw and returns the combined artifacts.
func Extract(raw string, profile *types.DatasetProfile) types.Artifacts {
	cleaned := Clean(raw)
	return types.Artifacts{
		Insights:             Insights(cleaned),
		Recommendations:      Recommendations(cleaned),
		ChartSuggestions:     ChartSuggestions(raw),
		KeyMetrics:           KeyMetrics(raw, profile),
		PresentationSections: Sections(cleaned),
		KeyPoints:            KeyPoints(cleaned),
	}
}

// Insights collects bullet items, then numbered items, then indicator
// sentences, deduplicated in discovery order and capped.
func Insights(cleaned string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, ln := range lines(cleaned) {
		if m := reBullet.FindStringSubmatch(ln); m != nil {
			out = appendUnique(out, seen, m[1])
		}
	}
	for _, ln := range lines(cleaned) {
		if m := reNumbered.FindStringSubmatch(ln); m != nil {
			out = appendUnique(out, seen, m[1])
		}
	}
	for _, s := range sentences(prose(cleaned)) {
		if isInsightSentence(s) {
			out = appendUnique(out, seen, s)
		}
	}
	if len(out) > MaxInsights {
		out = out[:MaxInsights]
	}
	return out
}

func isInsightSentence(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < minSentenceLen || n >= maxSentenceLen {
		return false
	}
	if reBanned.MatchString(s) {
		return false
	}
	return containsAny(strings.ToLower(s), indicatorWords)
}

// Recommendations yields at most one entry per clause: the text after the
// clause's last trigger phrase, so stacked triggers ("recommend that you
// should consider") are all stripped.
func Recommendations(cleaned string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, clause := range reClause.FindAllString(cleaned, -1) {
		rec, ok := recommendation(clause)
		if !ok {
			continue
		}
		out = appendUnique(out, seen, rec)
		if len(out) == MaxRecommendations {
			return out
		}
	}
	return out
}

func recommendation(clause string) (string, bool) {
	locs := reRecTrigger.FindAllStringIndex(clause, -1)
	if len(locs) == 0 {
		return "", false
	}
	rec := strings.TrimSpace(clause[locs[len(locs)-1][1]:])
	n := utf8.RuneCountInString(rec)
	return rec, n >= minRecLen && n < maxRecLen
}

// ChartSuggestions returns the vocabulary kinds mentioned as "<kind> chart"
// or "<kind> graph", in vocabulary order.
func ChartSuggestions(raw string) []string {
	lower := strings.ToLower(raw)
	out := []string{}
	for _, kind := range types.ChartKinds {
		if strings.Contains(lower, kind+" chart") || strings.Contains(lower, kind+" graph") {
			out = append(out, kind)
		}
	}
	return out
}

// KeyMetrics quotes statistical lines from the model, then appends the
// profile's numeric aggregates.
func KeyMetrics(raw string, profile *types.DatasetProfile) []types.KeyMetric {
	out := []types.KeyMetric{}
	for _, ln := range lines(raw) {
		text := strings.TrimSpace(reEmphasis.ReplaceAllString(ln, ""))
		if item, ok := listItem(text); ok {
			text = item
		}
		if text == "" || !containsAny(strings.ToLower(text), metricKeywords) {
			continue
		}
		out = append(out, types.KeyMetric{Text: text, Source: types.MetricFromModel})
		if len(out) == MaxKeyMetrics {
			return out
		}
	}
	for _, col := range profile.NumericColumns() {
		st := profile.Statistics[col].Numeric
		out = append(out, types.KeyMetric{
			Column: col,
			Mean:   st.Mean,
			Max:    st.Max,
			Min:    st.Min,
			Source: types.MetricFromProfile,
		})
		if len(out) == MaxKeyMetrics {
			break
		}
	}
	return out
}

// Sections returns markdown header titles in order.
func Sections(cleaned string) []string {
	out := []string{}
	for _, ln := range lines(cleaned) {
		if m := reHeader.FindStringSubmatch(ln); m != nil {
			if title := strings.TrimSpace(m[1]); title != "" {
				out = append(out, title)
			}
		}
	}
	return out
}

// KeyPoints returns bullet items as written, capped.
func KeyPoints(cleaned string) []string {
	out := []string{}
	for _, ln := range lines(cleaned) {
		if m := reBullet.FindStringSubmatch(ln); m != nil {
			out = append(out, strings.TrimSpace(m[1]))
			if len(out) == MaxKeyPoints {
				break
			}
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
