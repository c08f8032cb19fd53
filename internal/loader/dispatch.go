package loader

import (
	"context"
	"fmt"
	"sort"
)

// readerFunc reads the file described by p into one or more named tables.
type readerFunc func(ctx context.Context, p ResolvedParameters) (*result, error)

// readers is the closed extension → reader strategy table.
var readers = map[string]readerFunc{
	"csv":  readDelimited,
	"xls":  readSpreadsheet,
	"xlsx": readSpreadsheet,
	"xlsm": readSpreadsheet,
	"xlsb": readSpreadsheet,
	"odf":  readSpreadsheet,
	"ods":  readSpreadsheet,
	"odt":  readSpreadsheet,
}

// Format describes a supported extension.
type Format struct {
	Ext    string `json:"ext" yaml:"ext"`
	Reader string `json:"reader" yaml:"reader"`
	Engine string `json:"engine" yaml:"engine"`
}

// Formats lists the supported extensions sorted by name.
func Formats() []Format {
	out := make([]Format, 0, len(readers))
	for ext := range readers {
		f := Format{Ext: ext, Reader: "spreadsheet", Engine: spreadsheetEngineName(ext)}
		if ext == "csv" {
			f.Reader = "delimited"
			f.Engine = "encoding/csv"
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ext < out[j].Ext })
	return out
}

// Supported reports whether ext (without dot, any case) has a reader.
func Supported(ext string) bool {
	_, ok := readers[fileExt("x."+ext)]
	return ok
}

func dispatch(ctx context.Context, p ResolvedParameters) (*result, error) {
	read, ok := readers[p.FileExt]
	if !ok {
		return nil, &UnsupportedFileTypeError{Ext: p.FileExt}
	}
	res, err := read(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.Filepath, err)
	}
	return res, nil
}
