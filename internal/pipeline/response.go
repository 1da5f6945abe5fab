package pipeline

import (
	"askdata/internal/deck"
	"askdata/internal/types"
)

// MaxSurfacedRecommendations caps recommendations echoed in actionData.
const MaxSurfacedRecommendations = 5

// Response is the payload returned to the caller.
type Response struct {
	Message      string       `json:"message"`
	Timestamp    int64        `json:"timestamp"`
	ResponseType types.Intent `json:"responseType"`
	Title        string       `json:"title"`
	ActionData   any          `json:"actionData,omitempty"`
	Presentation *deck.Deck   `json:"presentation,omitempty"`
}

type VisualizationData struct {
	SuggestedCharts []string `json:"suggestedCharts"`
	DataColumns     []string `json:"dataColumns"`
}

type InsightsData struct {
	KeyMetrics      []types.KeyMetric `json:"keyMetrics"`
	Recommendations []string          `json:"recommendations"`
}

type PresentationData struct {
	Sections  []string `json:"sections"`
	KeyPoints []string `json:"keyPoints"`
}

func buildResponse(text string, ts int64, in types.Intent, art types.Artifacts, profile *types.DatasetProfile, d *deck.Deck) Response {
	r := Response{
		Message:      text,
		Timestamp:    ts,
		ResponseType: in,
		Title:        responseTitle(in, d),
		Presentation: d,
	}
	switch in {
	case types.IntentVisualization:
		r.ActionData = VisualizationData{SuggestedCharts: art.ChartSuggestions, DataColumns: dataColumns(profile)}
	case types.IntentInsights:
		recs := art.Recommendations
		if len(recs) > MaxSurfacedRecommendations {
			recs = recs[:MaxSurfacedRecommendations]
		}
		r.ActionData = InsightsData{KeyMetrics: art.KeyMetrics, Recommendations: recs}
	case types.IntentPresentation:
		r.ActionData = PresentationData{Sections: art.PresentationSections, KeyPoints: art.KeyPoints}
	}
	return r
}

func responseTitle(in types.Intent, d *deck.Deck) string {
	switch in {
	case types.IntentVisualization:
		return "Visualization Recommendations"
	case types.IntentInsights:
		return "Data Insights"
	case types.IntentPresentation:
		if d != nil && d.Title != "" {
			return d.Title
		}
		return "Presentation"
	default:
		return "Analysis Result"
	}
}

func dataColumns(p *types.DatasetProfile) []string {
	if p == nil {
		return []string{}
	}
	if len(p.Overview.Columns) > 0 {
		return append([]string(nil), p.Overview.Columns...)
	}
	if cols := p.StatColumns(); cols != nil {
		return cols
	}
	return []string{}
}
