// Package dataset turns the loosely typed analysis payload sent by clients
// into a validated types.DatasetProfile. Every shape check happens here so
// later stages never branch on untyped data.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"askdata/internal/types"
)

// Decode parses raw JSON into a profile. It returns nil when the payload is
// empty, null or not an object. Notes lists every field that had to be
// replaced with a default.
func Decode(raw []byte) (*types.DatasetProfile, []string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, []string{fmt.Sprintf("analysisData: invalid JSON: %v", err)}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, []string{fmt.Sprintf("analysisData: expected object, got %s", kindOf(v))}
	}
	return FromMap(m)
}

// FromMap validates an already decoded payload.
func FromMap(m map[string]any) (*types.DatasetProfile, []string) {
	if m == nil {
		return nil, nil
	}
	var notes []string
	note := func(format string, args ...any) {
		notes = append(notes, fmt.Sprintf(format, args...))
	}

	p := &types.DatasetProfile{
		Statistics:  map[string]types.ColumnStat{},
		DataQuality: types.DataQuality{MissingValues: map[string]int{}},
		Sample:      []map[string]any{},
	}

	if ov, ok := asMap(m["overview"]); ok {
		p.Overview.TotalRows, _ = asInt(ov["totalRows"])
		p.Overview.TotalColumns, _ = asInt(ov["totalColumns"])
		p.Overview.Columns = asStrings(ov["columns"])
	} else if m["overview"] != nil {
		note("overview: expected object, got %s", kindOf(m["overview"]))
	}

	switch stats := m["statistics"].(type) {
	case nil:
	case map[string]any:
		for col, rawStat := range stats {
			p.Statistics[col] = decodeColumnStat(rawStat)
		}
	default:
		note("statistics: expected object, got %s; using empty map", kindOf(stats))
	}

	if dq, ok := asMap(m["dataQuality"]); ok {
		switch mv := dq["missingValues"].(type) {
		case nil:
		case map[string]any:
			for col, n := range mv {
				if v, ok := asInt(n); ok {
					p.DataQuality.MissingValues[col] = v
				}
			}
		default:
			note("dataQuality.missingValues: expected object, got %s; using empty map", kindOf(mv))
		}
		p.DataQuality.Duplicates, _ = asInt(dq["duplicates"])
	}

	if rows, ok := m["sample"].([]any); ok {
		for _, r := range rows {
			if row, ok := r.(map[string]any); ok {
				p.Sample = append(p.Sample, normalizeRow(row))
			}
		}
	} else if m["sample"] != nil {
		note("sample: expected array, got %s", kindOf(m["sample"]))
	}

	p.FileName = asString(m["fileName"])
	if size, ok := asFloat(m["fileSize"]); ok && size > 0 {
		p.FileSize = int64(size)
	}
	p.TableName = firstString(m, "tableName", "table")

	if charts, ok := m["charts"].([]any); ok {
		for _, c := range charts {
			if spec, ok := decodeChart(c); ok {
				p.Charts = append(p.Charts, spec)
			}
		}
	}

	if p.Overview.TotalColumns == 0 && len(p.Overview.Columns) > 0 {
		p.Overview.TotalColumns = len(p.Overview.Columns)
	}
	return p, notes
}

func decodeColumnStat(v any) types.ColumnStat {
	m, ok := asMap(v)
	if !ok {
		return types.ColumnStat{Kind: types.ColumnOther, Other: &types.OtherStat{}}
	}
	switch columnKind(asString(m["type"])) {
	case types.ColumnNumeric:
		return types.ColumnStat{Kind: types.ColumnNumeric, Numeric: &types.NumericStat{
			Mean:   optFloat(m["mean"]),
			Min:    optFloat(m["min"]),
			Max:    optFloat(m["max"]),
			StdDev: optFloat(firstPresent(m, "stdDev", "std")),
		}}
	case types.ColumnCategorical:
		st := &types.CategoricalStat{UniqueCount: optInt(firstPresent(m, "uniqueCount", "unique"))}
		if top, ok := m["topValues"].([]any); ok {
			for _, item := range top {
				st.TopValues = append(st.TopValues, decodeValueCount(item))
			}
		}
		return types.ColumnStat{Kind: types.ColumnCategorical, Categorical: st}
	case types.ColumnDate:
		return types.ColumnStat{Kind: types.ColumnDate, Date: &types.DateStat{
			Count: optInt(m["count"]),
			Min:   scalarString(m["min"]),
			Max:   scalarString(m["max"]),
		}}
	default:
		return types.ColumnStat{Kind: types.ColumnOther, Other: &types.OtherStat{Count: optInt(m["count"])}}
	}
}

func columnKind(t string) types.ColumnKind {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "numeric", "number", "integer", "float":
		return types.ColumnNumeric
	case "categorical", "string", "text", "category":
		return types.ColumnCategorical
	case "date", "datetime", "timestamp":
		return types.ColumnDate
	default:
		return types.ColumnOther
	}
}

// decodeValueCount accepts [value, count] tuples and {value, count} records.
func decodeValueCount(v any) types.ValueCount {
	switch x := v.(type) {
	case []any:
		if len(x) == 2 {
			if n, ok := asInt(x[1]); ok {
				return types.ValueCount{Value: scalarString(x[0]), Count: n, HasCount: true}
			}
		}
	case map[string]any:
		if val, ok := x["value"]; ok {
			if n, ok := asInt(x["count"]); ok {
				return types.ValueCount{Value: scalarString(val), Count: n, HasCount: true}
			}
		}
	}
	return types.ValueCount{Value: stringify(v)}
}

func decodeChart(v any) (types.ChartSpec, bool) {
	m, ok := asMap(v)
	if !ok {
		return types.ChartSpec{}, false
	}
	spec := types.ChartSpec{
		Type:    strings.ToLower(firstString(m, "type", "chartType")),
		Title:   asString(m["title"]),
		XAxis:   firstString(m, "xAxis", "x"),
		YAxis:   firstString(m, "yAxis", "y"),
		Columns: asStrings(m["columns"]),
	}
	if spec.Type == "" {
		spec.Type = "bar"
	}
	return spec, true
}

// normalizeRow converts json.Number cells back into plain numbers so rows
// serialise the way they arrived.
func normalizeRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				out[k] = f
				continue
			}
		}
		out[k] = v
	}
	return out
}

// scalar helpers ------------------------------------------------------------------

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := scalarString(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

func optFloat(v any) *float64 {
	if f, ok := asFloat(v); ok {
		return &f
	}
	return nil
}

func optInt(v any) *int {
	if n, ok := asInt(v); ok {
		return &n
	}
	return nil
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return stringify(v)
	}
}

func stringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
