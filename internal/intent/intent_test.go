package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"askdata/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  types.Intent
	}{
		{name: "presentation beats chart", query: "Create a presentation with a bar chart", want: types.IntentPresentation},
		{name: "presentation beats trend", query: "Create a presentation about trends", want: types.IntentPresentation},
		{name: "slides", query: "Turn this into SLIDES please", want: types.IntentPresentation},
		{name: "powerpoint", query: "I need a PowerPoint for Monday", want: types.IntentPresentation},
		{name: "bar chart", query: "Show me a bar chart of sales by category", want: types.IntentVisualization},
		{name: "visualize", query: "Can you visualize revenue?", want: types.IntentVisualization},
		{name: "show me data", query: "show me the data", want: types.IntentVisualization},
		{name: "dashboard", query: "Build a dashboard", want: types.IntentVisualization},
		{name: "summary", query: "Give me a summary", want: types.IntentInsights},
		{name: "correlation", query: "Is there a correlation between price and units?", want: types.IntentInsights},
		{name: "report", query: "Write a report on churn", want: types.IntentInsights},
		{name: "general", query: "How many rows are there?", want: types.IntentGeneral},
		{name: "pie inside words", query: "How many copies of each species are there?", want: types.IntentGeneral},
		{name: "pie chart", query: "Draw a pie chart of market share", want: types.IntentVisualization},
		{name: "empty", query: "", want: types.IntentGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestClassifyIsStable(t *testing.T) {
	queries := []string{"trend report", "plot it", "what is this", "export slides"}
	for _, q := range queries {
		first := Classify(q)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Classify(q), q)
		}
	}
}

func TestRulesArePrecedenceOrdered(t *testing.T) {
	rs := Rules()
	var order []types.Intent
	for _, r := range rs {
		if len(order) == 0 || order[len(order)-1] != r.Intent {
			order = append(order, r.Intent)
		}
	}
	assert.Equal(t, []types.Intent{types.IntentPresentation, types.IntentVisualization, types.IntentInsights}, order)
}

func TestClassifyWithCustomRules(t *testing.T) {
	rs := []Rule{{Name: "only-charts", Intent: types.IntentVisualization, Match: containsAny("chart")}}
	assert.Equal(t, types.IntentVisualization, ClassifyWith(rs, "a chart about slides"))
	assert.Equal(t, types.IntentGeneral, ClassifyWith(rs, "slides"))
	assert.Equal(t, types.IntentGeneral, ClassifyWith(nil, "anything"))
}

func TestExplain(t *testing.T) {
	assert.Equal(t, "presentation-keyword", Explain("make a slide"))
	assert.Equal(t, "insights-report", Explain("quarterly report"))
	assert.Equal(t, "", Explain("hello"))
}
