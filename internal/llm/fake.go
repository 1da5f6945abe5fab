package llm

import (
	"context"
	"strings"
	"sync"
)

// FakeClient returns canned text chosen from the response outline embedded in
// the prompt. It makes the pipeline runnable offline and in tests.
type FakeClient struct {
	mu    sync.Mutex
	text  *string
	err   error
	calls []string
}

type FakeOption func(*FakeClient)

// FakeText forces every call to return text.
func FakeText(text string) FakeOption {
	return func(f *FakeClient) { f.text = &text }
}

// FakeError forces every call to fail with err.
func FakeError(err error) FakeOption {
	return func(f *FakeClient) { f.err = err }
}

func NewFakeClient(opts ...FakeOption) *FakeClient {
	f := &FakeClient{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FakeClient) Name() string { return "FakeClient" }
func (f *FakeClient) Close() error { return nil }

// Prompts returns the prompts received so far.
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewGenerationError(Generic, "request cancelled", err)
	}
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	if f.text != nil {
		return *f.text, nil
	}
	switch {
	case strings.Contains(prompt, "exactly these six sections"):
		return fakePresentation, nil
	case strings.Contains(prompt, "Produce an insight report"):
		return fakeInsights, nil
	case strings.Contains(prompt, "Recommend the best ways to visualize"):
		return fakeVisualization, nil
	default:
		return fakeGeneral, nil
	}
}

const fakeGeneral = `The dataset shows a steady distribution across its main numeric fields.
- The average value sits close to the median, which indicates a balanced spread.
- The highest values are concentrated in a small number of records.
You should review the top records to confirm they are not data entry errors.`

const fakeVisualization = `1. Recommended chart types: a bar chart compares totals across categories, and a line chart shows change over time.
2. Axis bindings: put the category column on the X axis and the numeric total on the Y axis.
- The bar chart reveals which categories contribute the highest share of the total.
- The line chart shows whether the trend increased or decreased across the period.
- Sort bars in descending order and label each axis clearly.`

const fakeInsights = `## Summary
The data shows a clear concentration of value in a few groups.
## Key Findings
- The top category accounts for 42% of the total volume.
- The average order value is noticeably higher than the median.
- Missing values are limited to a single column.
## Patterns and Trends
- Volume increased steadily across the observed period.
## Recommendations
Recommendation 1: Focus retention campaigns on the top category customers.
Recommendation 2: Backfill the missing values before the next reporting cycle.
## Next Steps
- Collect another quarter of records to confirm the trend.`

const fakePresentation = `## Title
Quarterly Performance Review
## Executive Summary
Revenue shows a significant increase across the quarter, led by the strongest region.
## Key Findings
- Total revenue increased 18% compared with the previous quarter.
- The highest performing region contributed 35% of sales.
- Average order value reached 120 units per order.
- The lowest performing segment declined by 4%.
- Repeat customers generated 60% of total revenue.
## Data Insights
- Every record includes a region and an order date.
- Order values show a long tail with a few very large orders.
## Recommendations
Recommendation 1: Expand inventory for the highest performing region.
Recommendation 2: Launch a win-back campaign for the declining segment.
## Conclusion
The quarter closed strongly and the growth pattern looks durable. Next steps focus on the weakest segment.`
