package loader

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rocketlaunchr/dataframe-go"

	"github.com/JonMunkholm/pex/internal/logging"
)

// NamedTable is one loaded worksheet.
type NamedTable struct {
	Name string
	Data *dataframe.DataFrame
}

type result struct {
	tables []NamedTable
	all    bool
}

// Loader holds the table read from a single file.
type Loader struct {
	// LoadID correlates log entries for this load.
	LoadID string

	// Data is the loaded table. It is nil when every sheet of a workbook
	// was requested; use Sheets instead.
	Data *dataframe.DataFrame

	// Sheets holds every loaded table in workbook order. For CSV and
	// single-sheet loads it has exactly one entry.
	Sheets []NamedTable
}

// New loads path with the given options using a background context.
func New(path string, opts ...Option) (*Loader, error) {
	return Load(context.Background(), path, opts...)
}

// Load validates path, resolves opts, and dispatches to the reader for the
// file's extension. ctx is checked between rows and supplies the logger
// fields (request ID) when no logger option is given.
func Load(ctx context.Context, path string, opts ...Option) (*Loader, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	loadID := uuid.NewString()
	if o.Logger == nil {
		o.Logger = logging.WithFields(ctx, "load_id", loadID)
	} else {
		o.Logger = o.Logger.With("load_id", loadID)
	}

	start := time.Now()

	params, err := resolve(path, o)
	if err != nil {
		return nil, err
	}

	o.Logger.Debug("resolved load parameters",
		"path", params.Filepath,
		"ext", params.FileExt,
		"header_exist", params.HeaderExist,
		"sep", params.Sep,
		"sheet", params.Sheet.String(),
		"dtype_columns", sortedKeys(params.DType),
	)

	res, err := dispatch(ctx, params)
	if err != nil {
		return nil, err
	}

	l := &Loader{LoadID: loadID, Sheets: res.tables}
	if !res.all && len(res.tables) > 0 {
		l.Data = res.tables[0].Data
	}

	rows, cols := 0, 0
	for _, t := range res.tables {
		rows += t.Data.NRows()
		cols += len(t.Data.Series)
	}
	o.Logger.Info("table loaded",
		"path", params.Filepath,
		"ext", params.FileExt,
		"sheets", len(res.tables),
		"rows", rows,
		"cols", cols,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return l, nil
}

// Sheet returns the table loaded for the named sheet.
func (l *Loader) Sheet(name string) (*dataframe.DataFrame, bool) {
	for _, t := range l.Sheets {
		if t.Name == name {
			return t.Data, true
		}
	}
	return nil, false
}

// SheetNames lists the loaded sheet names in workbook order.
func (l *Loader) SheetNames() []string {
	names := make([]string, len(l.Sheets))
	for i, t := range l.Sheets {
		names[i] = t.Name
	}
	return names
}
