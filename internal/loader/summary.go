package loader

import (
	"github.com/rocketlaunchr/dataframe-go"
)

// ColumnSummary describes one loaded column.
type ColumnSummary struct {
	Name    string `json:"name" yaml:"name"`
	DType   string `json:"dtype" yaml:"dtype"`
	Missing int    `json:"missing" yaml:"missing"`
}

// Summary is a display-oriented description of a loaded table.
type Summary struct {
	Sheet   string          `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Rows    int             `json:"rows" yaml:"rows"`
	Columns []ColumnSummary `json:"columns" yaml:"columns"`

	// Preview holds the first rows; missing cells are nil.
	Preview [][]any `json:"preview" yaml:"preview"`
}

// Summarize describes df and renders up to previewRows rows as strings.
func Summarize(sheet string, df *dataframe.DataFrame, previewRows int) Summary {
	nrows := df.NRows()
	sum := Summary{
		Sheet:   sheet,
		Rows:    nrows,
		Columns: make([]ColumnSummary, len(df.Series)),
	}

	for j, s := range df.Series {
		missing := 0
		for i := 0; i < nrows; i++ {
			if s.Value(i) == nil {
				missing++
			}
		}
		sum.Columns[j] = ColumnSummary{Name: s.Name(), DType: SeriesDType(s), Missing: missing}
	}

	if previewRows < 0 || previewRows > nrows {
		previewRows = nrows
	}
	sum.Preview = make([][]any, previewRows)
	for i := 0; i < previewRows; i++ {
		row := make([]any, len(df.Series))
		for j, s := range df.Series {
			if s.Value(i) == nil {
				continue
			}
			row[j] = s.ValueString(i)
		}
		sum.Preview[i] = row
	}
	return sum
}

// Summaries describes every loaded table.
func (l *Loader) Summaries(previewRows int) []Summary {
	out := make([]Summary, len(l.Sheets))
	for i, t := range l.Sheets {
		out[i] = Summarize(t.Name, t.Data, previewRows)
	}
	return out
}

// SeriesDType names the dtype of a loaded column.
func SeriesDType(s dataframe.Series) string {
	switch s.(type) {
	case *dataframe.SeriesString:
		return string(DTypeString)
	case *dataframe.SeriesInt64:
		return string(DTypeInt64)
	case *dataframe.SeriesFloat64:
		return string(DTypeFloat64)
	case *dataframe.SeriesTime:
		return string(DTypeDatetime)
	default:
		return s.Type()
	}
}
