package prompt

import "askdata/internal/types"

const generalInstructions = `Answer the question directly and concisely.
- Lead with a one or two sentence answer.
- Support it with specific numbers from the statistics above.
- Use "-" bullet points for supporting facts.
- Close with one practical recommendation if it is relevant.
Do not describe yourself or the analysis process.`

const visualizationInstructions = `Recommend the best ways to visualize this data.
Structure your answer as:
1. Recommended chart types: name each one explicitly (for example "bar chart", "line chart", "scatter chart") and say why it fits.
2. Axis bindings: for each chart, state which column goes on the X axis and which on the Y axis, and any grouping or color column.
3. What each chart will reveal: one bullet per chart describing the expected pattern or comparison.
4. Design tips: short bullets on sorting, labeling and scales.
Use "-" bullet points and reference real column names from the dataset.`

const insightsInstructions = `Produce an insight report with these sections, each introduced by a "## " header:
## Summary
Two or three sentences on what the data shows overall.
## Key Findings
"-" bullets, each a specific finding that cites numbers (averages, totals, percentages, highest and lowest values).
## Patterns and Trends
"-" bullets describing relationships, trends or anomalies between columns.
## Recommendations
Numbered recommendations, each starting with "Recommendation N:" and describing a concrete action.
## Next Steps
"-" bullets with follow-up questions or data to collect.`

const presentationInstructions = `Write the content for a business presentation with exactly these six sections, each introduced by a "## " header:
## Title
A short, specific presentation title on one line.
## Executive Summary
Two or three sentences summarizing the most important result.
## Key Findings
Four to six "-" bullets, each a specific finding that cites numbers.
## Data Insights
"-" bullets on data volume, coverage, distributions and notable statistics.
## Recommendations
Numbered recommendations, each starting with "Recommendation N:" and describing a concrete action.
## Conclusion
Two sentences on impact and next steps.
Keep bullets under 25 words and avoid filler.`

// Instructions returns the fixed response outline for intent. Unknown intents
// get the general outline.
func Instructions(intent types.Intent) string {
	switch intent {
	case types.IntentVisualization:
		return visualizationInstructions
	case types.IntentInsights:
		return insightsInstructions
	case types.IntentPresentation:
		return presentationInstructions
	default:
		return generalInstructions
	}
}
