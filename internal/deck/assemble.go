package deck

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"askdata/internal/extract"
	"askdata/internal/types"
)

const (
	minCleanedLen      = 50
	minPrimarySlides   = 3
	findingsSplitAbove = 4
	maxSummaryInsights = 3
	maxDeckRecs        = 5
	maxFieldStats      = 3
	maxModelStatements = 3
	chartsPerSlide     = 2
)

const (
	genericSummary = "The dataset was reviewed for notable patterns and opportunities."
	nextSteps      = "Next steps: validate these findings with stakeholders and track the recommended actions over time."
)

// input is the read-only state every stage sees.
type input struct {
	raw      string
	cleaned  string
	art      types.Artifacts
	profile  *types.DatasetProfile
	intent   types.Intent
	title    string
	issuedAt time.Time
}

type stage struct {
	name string
	run  func(*input) []Slide
}

// Primary stages in deck order. Each returns zero or more slides.
var stages = []stage{
	{"title", titleStage},
	{"agenda", agendaStage},
	{"executive-summary", summaryStage},
	{"key-findings", findingsStage},
	{"data-insights", dataInsightsStage},
	{"charts", chartsStage},
	{"recommendations", recommendationsStage},
	{"conclusion", conclusionStage},
}

// Assemble builds a deck from model text and its mined artifacts. ts is the
// response timestamp in Unix milliseconds. It never fails: thin input yields
// a fallback deck that still starts with a title slide.
func Assemble(raw string, art types.Artifacts, profile *types.DatasetProfile, intent types.Intent, ts int64) Deck {
	cleaned := extract.Clean(raw)
	in := &input{
		raw:      raw,
		cleaned:  cleaned,
		art:      art,
		profile:  profile,
		intent:   intent,
		title:    deckTitle(raw, cleaned, profile),
		issuedAt: time.UnixMilli(ts).UTC(),
	}

	if utf8.RuneCountInString(cleaned) >= minCleanedLen {
		var slides []Slide
		for _, st := range stages {
			slides = append(slides, st.run(in)...)
		}
		if len(slides) >= minPrimarySlides {
			return Deck{Title: in.title, Slides: number(slides), GeneratedAt: ts}
		}
	}
	return Deck{Title: in.title, Slides: number(fallbackSlides(in)), Fallback: true, GeneratedAt: ts}
}

func number(slides []Slide) []Slide {
	for i := range slides {
		slides[i].ID = "slide-" + strconv.Itoa(i+1)
	}
	return slides
}

func titleStage(in *input) []Slide {
	sub := "Generated from your data"
	if p := in.profile; p != nil && p.Overview.TotalRows > 0 {
		sub = fmt.Sprintf("Based on %s records across %d fields",
			humanize.Comma(int64(p.Overview.TotalRows)), p.ColumnCount())
	}
	return []Slide{{
		Type:     SlideTitle,
		Title:    in.title,
		Subtitle: sub,
		Content:  in.issuedAt.Format("January 2, 2006"),
		Layout:   LayoutCentered,
	}}
}

// agendaStage lists the model's own section headers for presentation
// requests.
func agendaStage(in *input) []Slide {
	if in.intent != types.IntentPresentation {
		return nil
	}
	var items []string
	for _, s := range in.art.PresentationSections {
		if !strings.EqualFold(s, "title") {
			items = append(items, s)
		}
	}
	if len(items) < 2 {
		return nil
	}
	return []Slide{{Type: SlideAgenda, Title: "Agenda", Bullets: items, Layout: LayoutBullets}}
}

func summaryStage(in *input) []Slide {
	var bullets []string
	if n := len(in.art.Insights); n > 0 {
		bullets = append(bullets, in.art.Insights[:min(n, maxSummaryInsights)]...)
	} else if s := extract.SummarySentence(in.cleaned); s != "" {
		bullets = []string{s}
	} else {
		bullets = []string{genericSummary}
	}
	return []Slide{{
		Type:    SlideContent,
		Title:   "Executive Summary",
		Content: overviewSentence(in.profile),
		Bullets: bullets,
		Layout:  LayoutBullets,
	}}
}

func overviewSentence(p *types.DatasetProfile) string {
	if p == nil || p.Overview.TotalRows <= 0 {
		return ""
	}
	return fmt.Sprintf("This dataset contains %s records across %d fields.",
		humanize.Comma(int64(p.Overview.TotalRows)), p.ColumnCount())
}

// findingsStage splits at the midpoint only when there are more than four
// insights, so no trailing slide carries just one or two items.
func findingsStage(in *input) []Slide {
	ins := in.art.Insights
	if len(ins) == 0 {
		return nil
	}
	if len(ins) <= findingsSplitAbove {
		return []Slide{findingsSlide("Key Findings", ins)}
	}
	mid := (len(ins) + 1) / 2
	return []Slide{
		findingsSlide("Key Findings", ins[:mid]),
		findingsSlide("Key Findings (continued)", ins[mid:]),
	}
}

func findingsSlide(title string, items []string) Slide {
	return Slide{Type: SlideContent, Title: title, Bullets: append([]string(nil), items...), Layout: LayoutBullets}
}

func dataInsightsStage(in *input) []Slide {
	var left []string
	var metrics []Metric
	if p := in.profile; p != nil {
		if p.Overview.TotalRows > 0 {
			left = append(left, fmt.Sprintf("Dataset volume: %s records", humanize.Comma(int64(p.Overview.TotalRows))))
			metrics = append(metrics, Metric{Label: "Records", Value: humanize.Comma(int64(p.Overview.TotalRows))})
		}
		if c := p.ColumnCount(); c > 0 {
			left = append(left, fmt.Sprintf("Field coverage: %d fields with %s missing values", c, humanize.Comma(int64(p.TotalMissing()))))
			metrics = append(metrics, Metric{Label: "Fields", Value: strconv.Itoa(c)})
		}
		for i, col := range p.NumericColumns() {
			if i == maxFieldStats {
				break
			}
			left = append(left, fieldStatement(col, p.Statistics[col].Numeric))
		}
	}
	right := extract.NumericStatements(in.raw, maxModelStatements)
	if len(left) == 0 && len(right) == 0 {
		return nil
	}
	s := Slide{Type: SlideContent, Title: "Data Insights", Metrics: metrics, Layout: LayoutBullets}
	switch {
	case len(left) > 0 && len(right) > 0:
		s.Type, s.Layout = SlideTwoColumn, LayoutTwoColumn
		s.LeftColumn, s.RightColumn = left, right
	case len(left) > 0:
		s.Bullets = left
	default:
		s.Bullets = right
	}
	return []Slide{s}
}

func fieldStatement(col string, st *types.NumericStat) string {
	out := col + ":"
	if st.Mean != nil {
		out += " mean " + fixed2(*st.Mean)
	}
	if st.Min != nil && st.Max != nil {
		if st.Mean != nil {
			out += ","
		}
		out += " range " + fixed2(*st.Min) + " to " + fixed2(*st.Max)
	}
	if out == col+":" {
		out += " no summary statistics"
	}
	return out
}

func fixed2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func chartsStage(in *input) []Slide {
	if in.profile == nil || len(in.profile.Charts) == 0 {
		return nil
	}
	charts := in.profile.Charts
	groups := (len(charts) + chartsPerSlide - 1) / chartsPerSlide
	out := make([]Slide, 0, groups)
	for g := 0; g < groups; g++ {
		part := charts[g*chartsPerSlide : min((g+1)*chartsPerSlide, len(charts))]
		s := Slide{Type: SlideChart, Charts: append([]types.ChartSpec(nil), part...), Layout: LayoutDoubleChart}
		if len(part) == 1 {
			s.Layout = LayoutSingleChart
		}
		switch {
		case len(part) == 1 && part[0].Title != "":
			s.Title = part[0].Title
		case groups == 1:
			s.Title = "Data Visualizations"
		default:
			s.Title = fmt.Sprintf("Data Visualizations (%d of %d)", g+1, groups)
		}
		out = append(out, s)
	}
	return out
}

func recommendationsStage(in *input) []Slide {
	recs := in.art.Recommendations
	if len(recs) == 0 {
		return nil
	}
	recs = recs[:min(len(recs), maxDeckRecs)]
	items := make([]string, len(recs))
	for i, r := range recs {
		items[i] = Sentence(r)
	}
	return []Slide{{Type: SlideContent, Title: "Recommendations", Bullets: items, Layout: LayoutBullets}}
}

func conclusionStage(in *input) []Slide {
	bullets := []string{}
	if len(in.art.Insights) > 0 {
		bullets = append(bullets, "Primary discovery: "+Sentence(in.art.Insights[0]))
	}
	bullets = append(bullets, nextSteps)
	if p := in.profile; p != nil && p.Overview.TotalRows > 0 {
		bullets = append(bullets, fmt.Sprintf("Impact: these conclusions draw on %s records.",
			humanize.Comma(int64(p.Overview.TotalRows))))
	}
	return []Slide{{
		Type:    SlideConclusion,
		Title:   "Conclusion",
		Content: fmt.Sprintf("This review surfaced %d key insights and %d recommendations.", len(in.art.Insights), len(in.art.Recommendations)),
		Bullets: bullets,
		Layout:  LayoutConclusion,
	}}
}

// Sentence capitalizes s and terminates it with a period unless it already
// ends in sentence punctuation.
func Sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if last, _ := utf8.DecodeLastRuneInString(s); last != '.' && last != '!' && last != '?' {
		s += "."
	}
	return s
}
