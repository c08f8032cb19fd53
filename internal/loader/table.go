package loader

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rocketlaunchr/dataframe-go"
)

// tableShape controls how row widths are interpreted.
type tableShape int

const (
	// shapeStrict takes the column count from the first row; longer rows
	// are an error. Delimited text uses this.
	shapeStrict tableShape = iota

	// shapeRagged takes the column count from the widest row. Spreadsheet
	// engines trim trailing empty cells, so rows are naturally ragged.
	shapeRagged
)

// buildTable converts raw records into a DataFrame using the header, name,
// NA, and dtype settings in p.
func buildTable(records [][]string, p ResolvedParameters, shape tableShape) (*dataframe.DataFrame, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	ncols := len(records[0])
	if shape == shapeRagged {
		for _, rec := range records {
			if len(rec) > ncols {
				ncols = len(rec)
			}
		}
	}
	if ncols == 0 {
		return nil, ErrEmptyFile
	}

	var header []string
	data := records
	if p.HeaderExist {
		header = records[0]
		data = records[1:]
	}

	for i, rec := range data {
		if len(rec) > ncols {
			line := i + 1
			if p.HeaderExist {
				line++
			}
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", ncols, line, len(rec))
		}
	}

	names, err := columnNames(header, p.HeaderNames, ncols)
	if err != nil {
		return nil, err
	}

	na := newNASet(p.NAValues, p.KeepDefaultNA)
	series := make([]dataframe.Series, ncols)
	for j, name := range names {
		cells := make([]cell, len(data))
		for i, rec := range data {
			if j >= len(rec) {
				cells[i] = cell{missing: true}
				continue
			}
			v := rec[j]
			cells[i] = cell{value: v, missing: na.isNA(name, v)}
		}

		s, err := buildSeries(name, cells, p.DType[name])
		if err != nil {
			return nil, err
		}
		series[j] = s
	}

	return dataframe.NewDataFrame(series...), nil
}

// columnNames picks the final column names: explicit names win, then the
// parsed header, then positional names. Blank header cells become
// "Unnamed: i" and duplicates get a ".n" suffix.
func columnNames(header, explicit []string, ncols int) ([]string, error) {
	names := make([]string, ncols)
	switch {
	case len(explicit) > 0:
		if len(explicit) != ncols {
			return nil, fmt.Errorf("%w: %d names given for %d columns", ErrHeaderNamesMismatch, len(explicit), ncols)
		}
		copy(names, explicit)
	case header != nil:
		for i := range names {
			if i < len(header) && header[i] != "" {
				names[i] = header[i]
			} else {
				names[i] = "Unnamed: " + strconv.Itoa(i)
			}
		}
	default:
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
	}
	return dedupeNames(names), nil
}

func dedupeNames(names []string) []string {
	seen := make(map[string]int, len(names))
	for _, n := range names {
		seen[n] = 0
	}
	counts := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		c := counts[n]
		counts[n] = c + 1
		if c == 0 {
			out[i] = n
			continue
		}
		candidate := n + "." + strconv.Itoa(c)
		for {
			if _, taken := seen[candidate]; !taken {
				break
			}
			c++
			candidate = n + "." + strconv.Itoa(c)
		}
		counts[n] = c + 1
		seen[candidate] = 0
		out[i] = candidate
	}
	return out
}

type cell struct {
	value   string
	missing bool
}

// buildSeries coerces cells to dt, or infers a type when dt is empty.
func buildSeries(name string, cells []cell, dt DType) (dataframe.Series, error) {
	if dt == "" {
		dt = inferDType(cells)
	}

	vals := make([]interface{}, len(cells))
	for i, c := range cells {
		if c.missing {
			vals[i] = nil
			continue
		}
		switch dt {
		case DTypeString:
			vals[i] = c.value
		case DTypeInt64:
			v, ok := parseInt(c.value)
			if !ok {
				return nil, &ConversionError{Column: name, Row: i, Value: c.value, DType: dt, Err: strconv.ErrSyntax}
			}
			vals[i] = v
		case DTypeFloat64:
			v, ok := parseFloat(c.value)
			if !ok {
				return nil, &ConversionError{Column: name, Row: i, Value: c.value, DType: dt, Err: strconv.ErrSyntax}
			}
			vals[i] = v
		case DTypeDatetime:
			v, ok := parseTime(c.value)
			if !ok {
				return nil, &ConversionError{Column: name, Row: i, Value: c.value, DType: dt, Err: errBadTime}
			}
			vals[i] = v
		default:
			return nil, fmt.Errorf("column %q: unknown dtype %q", name, dt)
		}
	}

	si := &dataframe.SeriesInit{Capacity: len(vals)}
	switch dt {
	case DTypeInt64:
		return dataframe.NewSeriesInt64(name, si, vals...), nil
	case DTypeFloat64:
		return dataframe.NewSeriesFloat64(name, si, vals...), nil
	case DTypeDatetime:
		return dataframe.NewSeriesTime(name, si, vals...), nil
	default:
		return dataframe.NewSeriesString(name, si, vals...), nil
	}
}

var errBadTime = fmt.Errorf("unrecognised datetime layout (want e.g. %s)", time.DateOnly)

// inferDType chooses int64 when every value is an integer and none are
// missing, float64 when every present value is numeric (or all are
// missing), and string otherwise.
func inferDType(cells []cell) DType {
	if len(cells) == 0 {
		return DTypeString
	}

	allInt, allFloat, anyMissing, anyPresent := true, true, false, false
	for _, c := range cells {
		if c.missing {
			anyMissing = true
			continue
		}
		anyPresent = true
		if allInt {
			if _, ok := parseInt(c.value); !ok {
				allInt = false
			}
		}
		if _, ok := parseFloat(c.value); !ok {
			allFloat = false
			break
		}
	}

	switch {
	case !anyPresent:
		return DTypeFloat64
	case allInt && !anyMissing:
		return DTypeInt64
	case allFloat:
		return DTypeFloat64
	default:
		return DTypeString
	}
}
