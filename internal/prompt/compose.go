// Package prompt builds the instruction payload sent to the generation
// service. Composition never fails: malformed or missing profile fields are
// rendered as "Unknown".
package prompt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"askdata/internal/types"
	"askdata/internal/util/jsonutil"
)

const (
	unknown        = "Unknown"
	maxSampleRows  = 3
	maxTopValues   = 3
	maxListColumns = 20
)

// Compose renders the full prompt for query against profile.
func Compose(query string, profile *types.DatasetProfile, intent types.Intent) string {
	var b strings.Builder
	b.WriteString("You are an experienced data analyst. Answer the user's question using only the dataset described below.\n\n")

	writeOverview(&b, profile)
	writeStatistics(&b, profile)
	writeQuality(&b, profile)
	writeSample(&b, profile)

	b.WriteString("[USER QUESTION]\n")
	q := strings.TrimSpace(query)
	if q == "" {
		q = unknown
	}
	b.WriteString(q)
	b.WriteString("\n\n")

	b.WriteString("[RESPONSE FORMAT]\n")
	b.WriteString(Instructions(intent))
	return b.String()
}

func writeOverview(b *strings.Builder, p *types.DatasetProfile) {
	b.WriteString("[DATASET OVERVIEW]\n")
	if p == nil {
		fmt.Fprintf(b, "- File: %s\n- Rows: %s\n- Columns: %s\n\n", unknown, unknown, unknown)
		return
	}
	name := p.FileName
	if name == "" {
		name = unknown
	}
	if p.FileSize > 0 {
		name = fmt.Sprintf("%s (%s)", name, humanize.Bytes(uint64(p.FileSize)))
	}
	fmt.Fprintf(b, "- File: %s\n", name)
	if p.TableName != "" {
		fmt.Fprintf(b, "- Table: %s\n", p.TableName)
	}
	rows := unknown
	if p.Overview.TotalRows > 0 {
		rows = humanize.Comma(int64(p.Overview.TotalRows))
	}
	fmt.Fprintf(b, "- Rows: %s\n", rows)

	cols := unknown
	if n := p.ColumnCount(); n > 0 {
		cols = strconv.Itoa(n)
	}
	if len(p.Overview.Columns) > 0 {
		names := p.Overview.Columns
		more := ""
		if len(names) > maxListColumns {
			more = fmt.Sprintf(", +%d more", len(names)-maxListColumns)
			names = names[:maxListColumns]
		}
		cols = fmt.Sprintf("%s (%s%s)", cols, strings.Join(names, ", "), more)
	}
	fmt.Fprintf(b, "- Columns: %s\n\n", cols)
}

func writeStatistics(b *strings.Builder, p *types.DatasetProfile) {
	b.WriteString("[COLUMN STATISTICS]\n")
	cols := p.StatColumns()
	if len(cols) == 0 {
		b.WriteString("- No column statistics available\n\n")
		return
	}
	for _, c := range cols {
		fmt.Fprintf(b, "- %s\n", FormatColumn(c, p.Statistics[c]))
	}
	b.WriteString("\n")
}

// FormatColumn renders one column statistic line.
func FormatColumn(name string, st types.ColumnStat) string {
	switch {
	case st.Kind == types.ColumnNumeric && st.Numeric != nil:
		n := st.Numeric
		return fmt.Sprintf("%s (numeric): mean=%s, min=%s, max=%s, stdDev=%s",
			name, fixed2(n.Mean), plain(n.Min), plain(n.Max), fixed2(n.StdDev))
	case st.Kind == types.ColumnCategorical && st.Categorical != nil:
		c := st.Categorical
		unique := unknown
		if c.UniqueCount != nil {
			unique = strconv.Itoa(*c.UniqueCount)
		}
		top := c.TopValues
		if len(top) > maxTopValues {
			top = top[:maxTopValues]
		}
		parts := make([]string, 0, len(top))
		for _, v := range top {
			if v.HasCount {
				parts = append(parts, fmt.Sprintf("%s (%d)", v.Value, v.Count))
			} else {
				parts = append(parts, v.Value)
			}
		}
		topText := unknown
		if len(parts) > 0 {
			topText = strings.Join(parts, ", ")
		}
		return fmt.Sprintf("%s (categorical): %s unique values; top values: %s", name, unique, topText)
	case st.Kind == types.ColumnDate && st.Date != nil:
		d := st.Date
		from, to := d.Min, d.Max
		if from == "" {
			from = unknown
		}
		if to == "" {
			to = unknown
		}
		return fmt.Sprintf("%s (date): count=%s, range %s to %s", name, count(d.Count), from, to)
	default:
		var c *int
		if st.Other != nil {
			c = st.Other.Count
		}
		return fmt.Sprintf("%s: count=%s", name, count(c))
	}
}

func writeQuality(b *strings.Builder, p *types.DatasetProfile) {
	b.WriteString("[DATA QUALITY]\n")
	if p == nil {
		fmt.Fprintf(b, "- Missing values: %s\n- Duplicate rows: %s\n\n", unknown, unknown)
		return
	}
	var missing []string
	for _, c := range missingOrder(p) {
		if n := p.DataQuality.MissingValues[c]; n > 0 {
			missing = append(missing, fmt.Sprintf("%s (%d)", c, n))
		}
	}
	if len(missing) == 0 {
		b.WriteString("- Missing values: none reported\n")
	} else {
		fmt.Fprintf(b, "- Missing values: %s\n", strings.Join(missing, ", "))
	}
	fmt.Fprintf(b, "- Duplicate rows: %d\n\n", p.DataQuality.Duplicates)
}

func missingOrder(p *types.DatasetProfile) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range append(append([]string(nil), p.Overview.Columns...), p.StatColumns()...) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	var rest []string
	for c := range p.DataQuality.MissingValues {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func writeSample(b *strings.Builder, p *types.DatasetProfile) {
	fmt.Fprintf(b, "[SAMPLE ROWS] (first %d)\n", maxSampleRows)
	if p == nil || len(p.Sample) == 0 {
		b.WriteString("- No sample rows available\n\n")
		return
	}
	rows := p.Sample
	if len(rows) > maxSampleRows {
		rows = rows[:maxSampleRows]
	}
	for _, r := range rows {
		raw, err := jsonutil.MarshalNoEscape(r)
		if err != nil {
			b.WriteString(unknown + "\n")
			continue
		}
		b.Write(raw)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func fixed2(v *float64) string {
	if v == nil {
		return unknown
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func plain(v *float64) string {
	if v == nil {
		return unknown
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func count(v *int) string {
	if v == nil {
		return unknown
	}
	return strconv.Itoa(*v)
}
