package loader

// convert.go turns raw cell text into typed column values.
//
// Numbers follow Go's strconv grammar after trimming surrounding
// whitespace. Datetimes accept ISO layouts first, then the day/month
// layouts commonly produced by spreadsheet exports; two-digit years are
// resolved against TwoDigitYearPivot.

import (
	"strconv"
	"strings"
	"time"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are
// moved to the previous century.
var TwoDigitYearPivot = 20

// defaultNAValues are recognised as missing unless KeepDefaultNA is false.
var defaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"1/2/2006 15:04:05", "1/2/2006 15:04",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

func parseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return i, err == nil
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivot := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivot {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// naSet reports whether a cell is missing for a given column.
type naSet struct {
	global    map[string]struct{}
	perColumn map[string]map[string]struct{}
}

func newNASet(na NAValues, keepDefault bool) naSet {
	s := naSet{
		global:    make(map[string]struct{}),
		perColumn: make(map[string]map[string]struct{}, len(na.PerColumn)),
	}
	if keepDefault {
		for _, v := range defaultNAValues {
			s.global[v] = struct{}{}
		}
	}
	for _, v := range na.Global {
		s.global[v] = struct{}{}
	}
	for col, values := range na.PerColumn {
		m := make(map[string]struct{}, len(values))
		for _, v := range values {
			m[v] = struct{}{}
		}
		s.perColumn[col] = m
	}
	return s
}

func (s naSet) isNA(column, value string) bool {
	if _, ok := s.global[value]; ok {
		return true
	}
	if m, ok := s.perColumn[column]; ok {
		_, hit := m[value]
		return hit
	}
	return false
}
