package deck

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"askdata/internal/types"
)

type domainTitle struct {
	re    *regexp.Regexp
	title string
}

// Checked in order against the lower-cased model text.
var domainTitles = []domainTitle{
	{regexp.MustCompile(`\b(?:sales|revenue)`), "Sales Performance Analysis"},
	{regexp.MustCompile(`\b(?:customer|user)`), "Customer Analytics Report"},
	{regexp.MustCompile(`\b(?:marketing|campaign)`), "Marketing Performance Review"},
	{regexp.MustCompile(`\b(?:financ|profit|budget|expense)`), "Financial Performance Overview"},
	{regexp.MustCompile(`\b(?:inventory|product|stock)`), "Product and Inventory Analysis"},
	{regexp.MustCompile(`\b(?:employee|staff|hr)\b`), "Workforce Analytics Report"},
}

var genericHeaders = map[string]bool{
	"title": true, "executive summary": true, "summary": true, "key findings": true,
	"data insights": true, "insights": true, "recommendations": true, "conclusion": true,
	"next steps": true, "patterns and trends": true, "overview": true, "introduction": true,
}

var reHeaderLine = regexp.MustCompile(`^\s*#{1,6}\s+(.+?)\s*#*\s*$`)

// deckTitle picks the first available of: file name, table name, business
// domain keyword, model-provided title, row-count default.
func deckTitle(raw, cleaned string, profile *types.DatasetProfile) string {
	if profile != nil {
		if t := humanizeName(strings.TrimSuffix(profile.FileName, filepath.Ext(profile.FileName))); t != "" {
			return t + " Analysis"
		}
		if t := humanizeName(profile.TableName); t != "" {
			return t + " Analysis"
		}
	}
	lower := strings.ToLower(raw)
	for _, d := range domainTitles {
		if d.re.MatchString(lower) {
			return d.title
		}
	}
	if t := modelTitle(cleaned); t != "" {
		return t
	}
	if profile != nil && profile.Overview.TotalRows > 0 {
		return fmt.Sprintf("Analysis of %s Records", humanize.Comma(int64(profile.Overview.TotalRows)))
	}
	return "Data Analysis Report"
}

// humanizeName turns "q3_sales-report" into "Q3 Sales Report".
func humanizeName(name string) string {
	name = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(name)
	words := strings.Fields(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// modelTitle returns the line under a "Title" header, or the first header
// that is not a stock section name.
func modelTitle(cleaned string) string {
	ls := strings.Split(cleaned, "\n")
	for i, ln := range ls {
		m := reHeaderLine.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		h := strings.TrimSpace(m[1])
		if strings.EqualFold(h, "title") {
			for _, next := range ls[i+1:] {
				if next = strings.TrimSpace(next); next != "" {
					if reHeaderLine.MatchString(next) {
						break
					}
					if meaningful(next) {
						return next
					}
					break
				}
			}
			continue
		}
		if !genericHeaders[strings.ToLower(h)] && meaningful(h) {
			return h
		}
	}
	return ""
}

func meaningful(t string) bool {
	n := utf8.RuneCountInString(t)
	return n >= 5 && n <= 80 && !genericHeaders[strings.ToLower(t)]
}
