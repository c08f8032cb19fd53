package loader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const (
	// maxSheetRows and maxSheetColumns match the largest grid Excel and
	// LibreOffice Calc write.
	maxSheetRows    = 1 << 20
	maxSheetColumns = 1 << 14

	// maxSheetCells bounds the cells expanded from repeated runs in one
	// document.
	maxSheetCells = 1 << 23

	// maxUnzipSize bounds the unpacked size of a workbook archive.
	maxUnzipSize = 1 << 30
)

// workbook is the view of a spreadsheet file the reader needs: sheet names
// in workbook order and the cell text of one sheet.
type workbook interface {
	SheetNames() []string
	Rows(sheet string) ([][]string, error)
	Close() error
}

type spreadsheetEngine struct {
	name string
	open func(path string) (workbook, error)
}

// spreadsheetEngines maps each spreadsheet extension to its engine. A nil
// open function means the format is recognised but cannot be read.
var spreadsheetEngines = map[string]spreadsheetEngine{
	"xlsx": {name: "excelize", open: openExcelize},
	"xlsm": {name: "excelize", open: openExcelize},
	"xls":  {name: "xls", open: openXLS},
	"ods":  {name: "odf", open: openODF},
	"odt":  {name: "odf", open: openODF},
	"odf":  {name: "odf", open: openODF},
	"xlsb": {name: "none"},
}

func spreadsheetEngineName(ext string) string {
	return spreadsheetEngines[ext].name
}

// readSpreadsheet reads the selected sheet(s). A missing sheet is logged
// as a diagnostic and returned as *SheetNotFoundError.
func readSpreadsheet(ctx context.Context, p ResolvedParameters) (*result, error) {
	engine, ok := spreadsheetEngines[p.FileExt]
	if !ok || engine.open == nil {
		return nil, fmt.Errorf("%w for .%s files", ErrEngineUnavailable, p.FileExt)
	}

	wb, err := engine.open(p.Filepath)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	available := wb.SheetNames()
	names, err := selectSheets(available, p.Sheet)
	if err != nil {
		if errors.Is(err, ErrSheetNotFound) {
			p.log().Warn("sheet does not exist",
				"sheet", p.Sheet.String(),
				"available", available,
				"path", p.Filepath,
			)
		}
		return nil, err
	}

	res := &result{all: p.Sheet.IsAll()}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := wb.Rows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		df, err := buildTable(trimBlankRows(rows), p, shapeRagged)
		if errors.Is(err, ErrEmptyFile) && res.all {
			p.log().Debug("skipping empty sheet", "sheet", name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		res.tables = append(res.tables, NamedTable{Name: name, Data: df})
	}

	if len(res.tables) == 0 {
		return nil, ErrEmptyFile
	}
	return res, nil
}

// selectSheets resolves a selector against the workbook's sheet names.
func selectSheets(available []string, sel SheetSelector) ([]string, error) {
	notFound := &SheetNotFoundError{Sheet: sel, Available: available}

	if sel.IsAll() {
		if len(available) == 0 {
			return nil, ErrEmptyFile
		}
		return available, nil
	}
	if name, ok := sel.Name(); ok {
		for _, n := range available {
			if n == name {
				return []string{n}, nil
			}
		}
		return nil, notFound
	}
	if i := sel.Index(); i >= 0 && i < len(available) {
		return []string{available[i]}, nil
	}
	return nil, notFound
}

// SheetNamesOf lists the worksheet names of a spreadsheet file without
// loading any cells.
func SheetNamesOf(path string) ([]string, error) {
	if err := checkFilepathExist(path); err != nil {
		return nil, err
	}
	ext := fileExt(path)
	engine, ok := spreadsheetEngines[ext]
	if !ok {
		return nil, &UnsupportedFileTypeError{Ext: ext}
	}
	if engine.open == nil {
		return nil, fmt.Errorf("%w for .%s files", ErrEngineUnavailable, ext)
	}
	wb, err := engine.open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()
	return wb.SheetNames(), nil
}

// trimBlankRows drops leading and trailing rows whose cells are all empty.
func trimBlankRows(rows [][]string) [][]string {
	start, end := 0, len(rows)
	for start < end && isBlankRow(rows[start]) {
		start++
	}
	for end > start && isBlankRow(rows[end-1]) {
		end--
	}
	return rows[start:end]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

// trimTrailingEmpty drops empty cells at the end of a row.
func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}

type excelizeWorkbook struct {
	f *excelize.File
}

func openExcelize(path string) (workbook, error) {
	f, err := excelize.OpenFile(path, excelize.Options{UnzipSizeLimit: maxUnzipSize})
	if err != nil {
		return nil, err
	}
	return &excelizeWorkbook{f: f}, nil
}

func (w *excelizeWorkbook) SheetNames() []string { return w.f.GetSheetList() }

func (w *excelizeWorkbook) Rows(sheet string) ([][]string, error) {
	return w.f.GetRows(sheet)
}

func (w *excelizeWorkbook) Close() error { return w.f.Close() }

type xlsWorkbook struct {
	f  *os.File
	wb *xls.WorkBook
}

func openXLS(path string) (workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	wb, err := xls.OpenReader(f, "utf-8")
	if err == nil && wb == nil {
		err = errors.New("no Workbook stream in file")
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return &xlsWorkbook{f: f, wb: wb}, nil
}

func (w *xlsWorkbook) SheetNames() []string {
	names := make([]string, 0, w.wb.NumSheets())
	for i := 0; i < w.wb.NumSheets(); i++ {
		if ws := w.wb.GetSheet(i); ws != nil {
			names = append(names, ws.Name)
		}
	}
	return names
}

func (w *xlsWorkbook) Rows(sheet string) ([][]string, error) {
	for i := 0; i < w.wb.NumSheets(); i++ {
		ws := w.wb.GetSheet(i)
		if ws == nil || ws.Name != sheet {
			continue
		}

		rows := make([][]string, 0, int(ws.MaxRow)+1)
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := xlsRow(ws, r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			rec := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				rec = append(rec, row.Col(c))
			}
			rows = append(rows, trimTrailingEmpty(rec))
		}
		return rows, nil
	}
	return nil, fmt.Errorf("worksheet %q missing from workbook", sheet)
}

// xlsRow returns row r of ws, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences the missing row instead of reporting it.
func xlsRow(ws *xls.WorkSheet, r int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(r)
}

func (w *xlsWorkbook) Close() error { return w.f.Close() }
