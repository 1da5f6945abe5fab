package extract

import (
	"regexp"
	"strings"
)

var (
	// Meta-commentary the model tends to open a line with. The clause runs up
	// to the first full stop, colon or comma.
	reMetaLead = regexp.MustCompile(`(?im)^[ \t]*(?:I'll|I will|Let me|Based on|Here's|Here is|Sure|Certainly|Of course)\b[^.:,\n]*[.:,][ \t]*`)
	reBracket  = regexp.MustCompile(`\[[^\]\n]*\]`)
	reEmphasis = regexp.MustCompile("\\*\\*|__|`")
	reBlankRun = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	reSpaces   = regexp.MustCompile(`\s+`)

	reBullet   = regexp.MustCompile(`^\s*[-*•]\s+(.+)$`)
	reNumbered = regexp.MustCompile(`^\s*\d+\.\s+(.+)$`)
	reHeader   = regexp.MustCompile(`^\s*#{1,6}\s+(.+?)\s*#*\s*$`)
)

// Clean strips model boilerplate: leading meta clauses, bracketed notes,
// markdown emphasis markers and redundant blank lines.
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = reMetaLead.ReplaceAllString(s, "")
	s = reBracket.ReplaceAllString(s, "")
	s = reEmphasis.ReplaceAllString(s, "")
	s = reBlankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func normalize(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func lines(s string) []string {
	return strings.Split(s, "\n")
}

// listItem reports the text of a bullet or numbered line.
func listItem(line string) (string, bool) {
	if m := reBullet.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := reNumbered.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// prose returns the non-list, non-header lines of cleaned text joined into
// one paragraph stream.
func prose(cleaned string) string {
	var b strings.Builder
	for _, ln := range lines(cleaned) {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		if _, ok := listItem(ln); ok {
			continue
		}
		if reHeader.MatchString(ln) {
			continue
		}
		b.WriteString(strings.TrimSpace(ln))
		b.WriteByte(' ')
	}
	return b.String()
}

// sentences splits text after '.', '!' or '?' when followed by whitespace.
func sentences(text string) []string {
	var out []string
	rs := []rune(text)
	start := 0
	for i, r := range rs {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(rs) && !isSpace(rs[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(rs[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(rs[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// appendUnique appends s unless its normalized form is already present.
func appendUnique(out []string, seen map[string]bool, s string) []string {
	key := normalize(s)
	if key == "" || seen[key] {
		return out
	}
	seen[key] = true
	return append(out, key)
}
