// Package deck turns mined artifacts into an ordered presentation deck.
package deck

import "askdata/internal/types"

type SlideType string

const (
	SlideTitle      SlideType = "title"
	SlideContent    SlideType = "content"
	SlideChart      SlideType = "chart"
	SlideMetrics    SlideType = "metrics"
	SlideTwoColumn  SlideType = "two-column"
	SlideConclusion SlideType = "conclusion"
	SlideAgenda     SlideType = "agenda"
)

// Layout selects the rendering template for a slide.
type Layout string

const (
	LayoutCentered    Layout = "centered"
	LayoutBullets     Layout = "bullets"
	LayoutSingleChart Layout = "single-chart"
	LayoutDoubleChart Layout = "double-chart"
	LayoutMetricsGrid Layout = "metrics-grid"
	LayoutTwoColumn   Layout = "two-column"
	LayoutConclusion  Layout = "conclusion"
)

type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Slide struct {
	ID          string            `json:"id"`
	Type        SlideType         `json:"type"`
	Title       string            `json:"title"`
	Subtitle    string            `json:"subtitle,omitempty"`
	Content     string            `json:"content,omitempty"`
	Bullets     []string          `json:"bullets,omitempty"`
	LeftColumn  []string          `json:"leftColumn,omitempty"`
	RightColumn []string          `json:"rightColumn,omitempty"`
	Charts      []types.ChartSpec `json:"charts,omitempty"`
	Metrics     []Metric          `json:"metrics,omitempty"`
	Layout      Layout            `json:"layout"`
}

type Deck struct {
	Title       string  `json:"title"`
	Slides      []Slide `json:"slides"`
	Fallback    bool    `json:"fallback"`
	GeneratedAt int64   `json:"generatedAt"`
}

// Types lists the slide types in deck order.
func (d Deck) Types() []SlideType {
	out := make([]SlideType, len(d.Slides))
	for i, s := range d.Slides {
		out[i] = s.Type
	}
	return out
}
