package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var summaryWords = []string{
	"overall", "in summary", "in general", "shows", "indicates", "reveals", "highlights",
}

var reNumber = regexp.MustCompile(`\d`)

// SummarySentence returns the first prose sentence of cleaned text that reads
// like a summary, or "" when there is none.
func SummarySentence(cleaned string) string {
	for _, s := range sentences(prose(cleaned)) {
		n := utf8.RuneCountInString(s)
		if n < minSentenceLen || n >= maxSentenceLen || reBanned.MatchString(s) {
			continue
		}
		if containsAny(strings.ToLower(s), summaryWords) {
			return s
		}
	}
	return ""
}

// NumericStatements returns up to n statements from raw text that cite a
// number alongside a statistical keyword.
func NumericStatements(raw string, n int) []string {
	if n <= 0 {
		return nil
	}
	cleaned := Clean(raw)
	var candidates []string
	for _, ln := range lines(cleaned) {
		if item, ok := listItem(ln); ok {
			candidates = append(candidates, item)
		}
	}
	candidates = append(candidates, sentences(prose(cleaned))...)

	out := []string{}
	seen := map[string]bool{}
	for _, c := range candidates {
		l := utf8.RuneCountInString(c)
		if l < minRecLen || l >= maxSentenceLen || !reNumber.MatchString(c) {
			continue
		}
		if !containsAny(strings.ToLower(c), metricKeywords) {
			continue
		}
		out = appendUnique(out, seen, c)
		if len(out) == n {
			break
		}
	}
	return out
}
