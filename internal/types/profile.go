package types

import "sort"

// Dataset profile ------------------------------------------------------------------

type ColumnKind string

const (
	ColumnNumeric     ColumnKind = "numeric"
	ColumnCategorical ColumnKind = "categorical"
	ColumnDate        ColumnKind = "date"
	ColumnOther       ColumnKind = "other"
)

type NumericStat struct {
	Mean   *float64 `json:"mean,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	StdDev *float64 `json:"stdDev,omitempty"`
}

// ValueCount is one entry of a categorical top-values list. Entries that did
// not arrive as a (value, count) pair keep their stringified form in Value and
// leave HasCount unset.
type ValueCount struct {
	Value    string `json:"value"`
	Count    int    `json:"count,omitempty"`
	HasCount bool   `json:"-"`
}

type CategoricalStat struct {
	UniqueCount *int         `json:"uniqueCount,omitempty"`
	TopValues   []ValueCount `json:"topValues,omitempty"`
}

type DateStat struct {
	Count *int   `json:"count,omitempty"`
	Min   string `json:"min,omitempty"`
	Max   string `json:"max,omitempty"`
}

type OtherStat struct {
	Count *int `json:"count,omitempty"`
}

// ColumnStat is a tagged variant: exactly one of the per-kind pointers
// matching Kind is set.
type ColumnStat struct {
	Kind        ColumnKind       `json:"type"`
	Numeric     *NumericStat     `json:"numeric,omitempty"`
	Categorical *CategoricalStat `json:"categorical,omitempty"`
	Date        *DateStat        `json:"date,omitempty"`
	Other       *OtherStat       `json:"other,omitempty"`
}

type Overview struct {
	TotalRows    int      `json:"totalRows"`
	TotalColumns int      `json:"totalColumns"`
	Columns      []string `json:"columns"`
}

type DataQuality struct {
	MissingValues map[string]int `json:"missingValues"`
	Duplicates    int            `json:"duplicates"`
}

// DatasetProfile is the validated summary of an uploaded dataset. Values of
// this type only come out of the dataset package, so Statistics and
// MissingValues are always non-nil maps.
type DatasetProfile struct {
	Overview    Overview              `json:"overview"`
	Statistics  map[string]ColumnStat `json:"statistics"`
	DataQuality DataQuality           `json:"dataQuality"`
	Sample      []map[string]any      `json:"sample"`
	FileName    string                `json:"fileName,omitempty"`
	FileSize    int64                 `json:"fileSize,omitempty"`
	TableName   string                `json:"tableName,omitempty"`
	Charts      []ChartSpec           `json:"charts,omitempty"`
}

// StatColumns returns the columns that carry statistics, in overview order
// first and then by name for anything the overview did not list.
func (p *DatasetProfile) StatColumns() []string {
	if p == nil || len(p.Statistics) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.Statistics))
	seen := make(map[string]bool, len(p.Statistics))
	for _, c := range p.Overview.Columns {
		if _, ok := p.Statistics[c]; ok && !seen[c] {
			out = append(out, c)
			seen[c] = true
		}
	}
	rest := make([]string, 0)
	for c := range p.Statistics {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// NumericColumns returns StatColumns filtered to numeric statistics.
func (p *DatasetProfile) NumericColumns() []string {
	var out []string
	for _, c := range p.StatColumns() {
		if st := p.Statistics[c]; st.Kind == ColumnNumeric && st.Numeric != nil {
			out = append(out, c)
		}
	}
	return out
}

// TotalMissing sums the per-column missing value counts.
func (p *DatasetProfile) TotalMissing() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, n := range p.DataQuality.MissingValues {
		total += n
	}
	return total
}

// ColumnCount prefers the declared column total and falls back to the
// column list length.
func (p *DatasetProfile) ColumnCount() int {
	if p == nil {
		return 0
	}
	if p.Overview.TotalColumns > 0 {
		return p.Overview.TotalColumns
	}
	return len(p.Overview.Columns)
}
