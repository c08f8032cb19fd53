package loader

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DType is the type a column is coerced to on load.
type DType string

const (
	DTypeString   DType = "string"
	DTypeInt64    DType = "int64"
	DTypeFloat64  DType = "float64"
	DTypeDatetime DType = "datetime"
)

// ParseDType accepts the canonical dtype names plus common aliases.
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str", "object", "text", "category":
		return DTypeString, nil
	case "int64", "int", "integer", "int32":
		return DTypeInt64, nil
	case "float64", "float", "double", "number", "float32":
		return DTypeFloat64, nil
	case "datetime", "datetime64", "date", "time", "timestamp":
		return DTypeDatetime, nil
	default:
		return "", fmt.Errorf("unknown dtype %q", s)
	}
}

// ParseDTypeMap parses "column=dtype" pairs, as given on the command line
// or in a form field, into a dtype mapping.
func ParseDTypeMap(pairs []string) (map[string]DType, error) {
	out := make(map[string]DType, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		col, typ, ok := strings.Cut(pair, "=")
		if !ok {
			col, typ, ok = strings.Cut(pair, ":")
		}
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("dtype %q: want column=type", pair)
		}
		dt, err := ParseDType(typ)
		if err != nil {
			return nil, fmt.Errorf("dtype for %q: %w", col, err)
		}
		out[col] = dt
	}
	return out, nil
}

// SheetSelector identifies which worksheet(s) to read from a workbook.
// The zero value selects the first sheet.
type SheetSelector struct {
	name  string
	index int
	all   bool
}

// SheetIndex selects a sheet by zero-based position.
func SheetIndex(i int) SheetSelector { return SheetSelector{index: i} }

// SheetName selects a sheet by name.
func SheetName(name string) SheetSelector { return SheetSelector{name: name} }

// AllSheets selects every sheet in the workbook.
func AllSheets() SheetSelector { return SheetSelector{all: true} }

// ParseSheetSelector interprets "all"/"*" as every sheet, an integer as a
// position, and anything else as a sheet name.
func ParseSheetSelector(s string) SheetSelector {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "0":
		return SheetIndex(0)
	case "all", "*", "none":
		return AllSheets()
	}
	if i, err := strconv.Atoi(s); err == nil && i >= 0 {
		return SheetIndex(i)
	}
	return SheetName(s)
}

func (s SheetSelector) IsAll() bool { return s.all }

// Name returns the selected sheet name and whether the selector is by name.
func (s SheetSelector) Name() (string, bool) { return s.name, s.name != "" }

// Index returns the selected position. Only meaningful when the selector is
// neither by name nor all sheets.
func (s SheetSelector) Index() int { return s.index }

func (s SheetSelector) String() string {
	switch {
	case s.all:
		return "all"
	case s.name != "":
		return strconv.Quote(s.name)
	default:
		return strconv.Itoa(s.index)
	}
}

// NAValues holds extra missing-value markers: either a global list, a
// per-column mapping, or both.
type NAValues struct {
	Global    []string
	PerColumn map[string][]string
}

// NAString marks a single extra string as missing in every column.
func NAString(s string) NAValues { return NAValues{Global: []string{s}} }

// NAList marks each of values as missing in every column.
func NAList(values ...string) NAValues { return NAValues{Global: values} }

// NAPerColumn marks values as missing only in the named columns.
func NAPerColumn(m map[string][]string) NAValues { return NAValues{PerColumn: m} }

func (n NAValues) IsZero() bool {
	return len(n.Global) == 0 && len(n.PerColumn) == 0
}

// Options are the loading options accepted by New.
type Options struct {
	HeaderExist      bool
	HeaderNames      []string
	Sep              string
	Sheet            SheetSelector
	ColnamesDiscrete []string
	ColnamesDatetime []string
	DType            map[string]DType
	NAValues         NAValues

	// KeepDefaultNA keeps the standard marker list (NA, NaN, NULL, ...)
	// active in addition to NAValues.
	KeepDefaultNA bool

	Logger *slog.Logger
}

// DefaultOptions returns the defaults: header row present, comma
// delimiter, first sheet, default NA markers.
func DefaultOptions() Options {
	return Options{
		HeaderExist:   true,
		Sep:           ",",
		Sheet:         SheetIndex(0),
		KeepDefaultNA: true,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithOptions replaces the whole option set. Options applied after it still
// take effect.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// WithoutHeader treats the first row as data.
func WithoutHeader() Option {
	return func(o *Options) { o.HeaderExist = false }
}

// WithHeader sets whether the first row is a header.
func WithHeader(exist bool) Option {
	return func(o *Options) { o.HeaderExist = exist }
}

// WithHeaderNames replaces the header (or supplies one when absent).
func WithHeaderNames(names ...string) Option {
	return func(o *Options) { o.HeaderNames = names }
}

func WithSep(sep string) Option {
	return func(o *Options) { o.Sep = sep }
}

func WithSheet(s SheetSelector) Option {
	return func(o *Options) { o.Sheet = s }
}

// WithDiscrete forces the named columns to load as strings.
func WithDiscrete(cols ...string) Option {
	return func(o *Options) { o.ColnamesDiscrete = append(o.ColnamesDiscrete, cols...) }
}

// WithDatetime forces the named columns to load as strings; conversion to
// time values is left to the caller.
func WithDatetime(cols ...string) Option {
	return func(o *Options) { o.ColnamesDatetime = append(o.ColnamesDatetime, cols...) }
}

// WithDType sets explicit per-column types.
func WithDType(m map[string]DType) Option {
	return func(o *Options) {
		merged := make(map[string]DType, len(o.DType)+len(m))
		for k, v := range o.DType {
			merged[k] = v
		}
		for k, v := range m {
			merged[k] = v
		}
		o.DType = merged
	}
}

func WithNAValues(na NAValues) Option {
	return func(o *Options) { o.NAValues = na }
}

func WithKeepDefaultNA(keep bool) Option {
	return func(o *Options) { o.KeepDefaultNA = keep }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// ParseDelimiter converts sep into the single rune the CSV reader needs.
func ParseDelimiter(sep string) (rune, error) {
	switch sep {
	case "":
		return ',', nil
	case `\t`, "tab", "TAB":
		return '\t', nil
	}
	if utf8.RuneCountInString(sep) != 1 {
		return 0, fmt.Errorf("%w: %q must be a single character", ErrInvalidDelimiter, sep)
	}
	r, _ := utf8.DecodeRuneInString(sep)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: %q cannot be used as a delimiter", ErrInvalidDelimiter, sep)
	}
	return r, nil
}

// sortedKeys returns the keys of a dtype map in a stable order for logging.
func sortedKeys(m map[string]DType) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
