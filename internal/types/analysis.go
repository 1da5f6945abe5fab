package types

// Intent ------------------------------------------------------------------------

type Intent string

const (
	IntentGeneral       Intent = "general"
	IntentVisualization Intent = "visualization"
	IntentInsights      Intent = "insights"
	IntentPresentation  Intent = "presentation"
)

func (i Intent) String() string { return string(i) }

// Charts ------------------------------------------------------------------------

// ChartKinds is the fixed chart vocabulary recognised in model text, in
// reporting order.
var ChartKinds = []string{"bar", "line", "pie", "scatter", "histogram", "heatmap", "area"}

type ChartSpec struct {
	Type    string   `json:"type"`
	Title   string   `json:"title,omitempty"`
	XAxis   string   `json:"xAxis,omitempty"`
	YAxis   string   `json:"yAxis,omitempty"`
	Columns []string `json:"columns,omitempty"`
}

// Extracted artifacts -------------------------------------------------------------

type MetricSource string

const (
	MetricFromModel   MetricSource = "model"
	MetricFromProfile MetricSource = "profile"
)

// KeyMetric is either a textual metric line quoted from the model (Text) or
// a column aggregate taken from the profile (Column with Mean/Min/Max).
type KeyMetric struct {
	Column string       `json:"column,omitempty"`
	Text   string       `json:"text,omitempty"`
	Mean   *float64     `json:"mean,omitempty"`
	Min    *float64     `json:"min,omitempty"`
	Max    *float64     `json:"max,omitempty"`
	Source MetricSource `json:"source"`
}

// Artifacts holds everything mined from one model answer. Slices are never
// nil so they serialise as [] rather than null.
type Artifacts struct {
	Insights             []string    `json:"insights"`
	Recommendations      []string    `json:"recommendations"`
	ChartSuggestions     []string    `json:"chartSuggestions"`
	KeyMetrics           []KeyMetric `json:"keyMetrics"`
	PresentationSections []string    `json:"presentationSections"`
	KeyPoints            []string    `json:"keyPoints"`
}

func EmptyArtifacts() Artifacts {
	return Artifacts{
		Insights:             []string{},
		Recommendations:      []string{},
		ChartSuggestions:     []string{},
		KeyMetrics:           []KeyMetric{},
		PresentationSections: []string{},
		KeyPoints:            []string{},
	}
}
