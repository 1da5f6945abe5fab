package deck

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const (
	minExcerptLen = 20
	maxExcerptLen = 500
)

var reMarkers = regexp.MustCompile(`(?m)^\s*(?:#{1,6}|[-*•]|\d+\.)\s+`)

// fallbackSlides is the minimal deck: title, a profile overview, an excerpt
// of the response and any charts.
func fallbackSlides(in *input) []Slide {
	out := titleStage(in)
	if p := in.profile; p != nil {
		out = append(out, Slide{
			Type:  SlideMetrics,
			Title: "Dataset Overview",
			Metrics: []Metric{
				{Label: "Records", Value: humanize.Comma(int64(p.Overview.TotalRows))},
				{Label: "Fields", Value: strconv.Itoa(p.ColumnCount())},
			},
			Bullets: []string{
				"Each record is one row of the uploaded dataset.",
				"Column statistics were profiled before the question was answered.",
			},
			Layout: LayoutMetricsGrid,
		})
	}
	if ex := excerpt(in.cleaned); utf8.RuneCountInString(ex) >= minExcerptLen {
		out = append(out, Slide{Type: SlideContent, Title: "Response Summary", Content: ex, Layout: LayoutBullets})
	}
	return append(out, chartsStage(in)...)
}

// excerpt flattens list and header markers and truncates on a word boundary.
func excerpt(cleaned string) string {
	s := normalizeSpace(reMarkers.ReplaceAllString(cleaned, ""))
	if utf8.RuneCountInString(s) <= maxExcerptLen {
		return s
	}
	rs := []rune(s)[:maxExcerptLen]
	cut := string(rs)
	if i := strings.LastIndexByte(cut, ' '); i > maxExcerptLen/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
