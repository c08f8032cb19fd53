package loader

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves an xlsx file whose sheets hold the given rows, in
// order. The first sheet replaces excelize's default "Sheet1".
func writeWorkbook(t *testing.T, name string, sheets []string, rows map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet %s: %v", sheet, err)
		}

		for r, row := range rows[sheet] {
			cellRef, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			vals := row
			if err := f.SetSheetRow(sheet, cellRef, &vals); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func salesWorkbook(t *testing.T) string {
	return writeWorkbook(t, "sales.xlsx", []string{"Summary", "Orders", "Blank"}, map[string][][]any{
		"Summary": {
			{"region", "total"},
			{"north", 10},
			{"south", 12.5},
		},
		"Orders": {
			{"id", "zip", "placed"},
			{1, "02134", "2024-01-02"},
			{2, "90210", "2024-02-03"},
		},
	})
}

func TestNew_XLSXFirstSheetByDefault(t *testing.T) {
	l, err := New(salesWorkbook(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if l.Data == nil {
		t.Fatal("Data is nil")
	}
	if got := l.SheetNames(); !reflect.DeepEqual(got, []string{"Summary"}) {
		t.Errorf("SheetNames() = %q, want [Summary]", got)
	}
	if got := column(t, l.Data, "region").Value(0); got != "north" {
		t.Errorf("region[0] = %#v, want north", got)
	}
	if got := SeriesDType(column(t, l.Data, "total")); got != "float64" {
		t.Errorf("total dtype = %s, want float64", got)
	}
}

func TestNew_XLSXSelectors(t *testing.T) {
	path := salesWorkbook(t)

	tests := []struct {
		name  string
		sheet SheetSelector
		want  string
	}{
		{"by name", SheetName("Orders"), "Orders"},
		{"by index", SheetIndex(1), "Orders"},
		{"parsed name", ParseSheetSelector("Summary"), "Summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(path, WithSheet(tt.sheet), WithDiscrete("zip"))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := l.SheetNames(); len(got) != 1 || got[0] != tt.want {
				t.Errorf("SheetNames() = %q, want [%s]", got, tt.want)
			}
		})
	}

	l, err := New(path, WithSheet(SheetName("Orders")), WithDiscrete("zip"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := column(t, l.Data, "zip").Value(0); got != "02134" {
		t.Errorf("zip[0] = %#v, want 02134", got)
	}
	if got := column(t, l.Data, "id").Value(1); got != int64(2) {
		t.Errorf("id[1] = %#v, want int64(2)", got)
	}
}

func TestNew_XLSXSheetNotFound(t *testing.T) {
	path := salesWorkbook(t)

	tests := []struct {
		name  string
		sheet SheetSelector
	}{
		{"missing name", SheetName("Q3")},
		{"index out of range", SheetIndex(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(path, WithSheet(tt.sheet), WithLogger(bufferLogger(&buf)))

			if !errors.Is(err, ErrSheetNotFound) {
				t.Fatalf("error = %v, want ErrSheetNotFound", err)
			}
			if l != nil {
				t.Error("loader should be nil when the sheet is missing")
			}

			var notFound *SheetNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("errors.As failed for %v", err)
			}
			if !reflect.DeepEqual(notFound.Available, []string{"Summary", "Orders", "Blank"}) {
				t.Errorf("Available = %q", notFound.Available)
			}
			if !strings.Contains(buf.String(), "sheet does not exist") {
				t.Errorf("missing warning in log:\n%s", buf.String())
			}
		})
	}
}

func TestNew_XLSXAllSheets(t *testing.T) {
	l, err := New(salesWorkbook(t), WithSheet(AllSheets()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if l.Data != nil {
		t.Error("Data should be nil when every sheet is loaded")
	}
	// The empty sheet is skipped.
	if got := l.SheetNames(); !reflect.DeepEqual(got, []string{"Summary", "Orders"}) {
		t.Errorf("SheetNames() = %q", got)
	}
	orders, ok := l.Sheet("Orders")
	if !ok || orders.NRows() != 2 {
		t.Errorf("Sheet(Orders) = %v, %v", orders, ok)
	}
	if _, ok := l.Sheet("Blank"); ok {
		t.Error("Sheet(Blank) should be absent")
	}
}

func TestNew_XLSXEmptySheetSelected(t *testing.T) {
	_, err := New(salesWorkbook(t), WithSheet(SheetName("Blank")))
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("error = %v, want ErrEmptyFile", err)
	}
}

func TestNew_XLSXRaggedRows(t *testing.T) {
	path := writeWorkbook(t, "ragged.xlsx", []string{"S"}, map[string][][]any{
		"S": {
			{nil, nil},
			{"a", "b"},
			{1},
			{2, 3, "extra"},
		},
	})

	l, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := l.Data.Names(); !reflect.DeepEqual(got, []string{"a", "b", "Unnamed: 2"}) {
		t.Errorf("Names() = %q", got)
	}
	if l.Data.NRows() != 2 {
		t.Errorf("NRows = %d, want leading blank row trimmed", l.Data.NRows())
	}
	if got := column(t, l.Data, "b").Value(0); got != nil {
		t.Errorf("b[0] = %#v, want nil", got)
	}
}

func TestNew_XLSB(t *testing.T) {
	path := writeTemp(t, "book.xlsb", "not really a workbook")

	_, err := New(path)
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("error = %v, want ErrEngineUnavailable", err)
	}
}

func TestNew_CorruptXLSX(t *testing.T) {
	_, err := New(writeTemp(t, "broken.xlsx", "plain text"))
	if err == nil || !strings.Contains(err.Error(), "open workbook") {
		t.Fatalf("error = %v, want open workbook failure", err)
	}
	if MapError(err).Code != "LOAD005" {
		t.Errorf("MapError code = %s, want LOAD005", MapError(err).Code)
	}
}

func TestSheetNamesOf(t *testing.T) {
	got, err := SheetNamesOf(salesWorkbook(t))
	if err != nil {
		t.Fatalf("SheetNamesOf() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Summary", "Orders", "Blank"}) {
		t.Errorf("SheetNamesOf() = %q", got)
	}

	if _, err := SheetNamesOf(writeTemp(t, "a.csv", "a\n")); !errors.Is(err, ErrUnsupportedFileType) {
		t.Errorf("csv error = %v, want ErrUnsupportedFileType", err)
	}
}

func TestSelectSheets(t *testing.T) {
	available := []string{"A", "B"}

	tests := []struct {
		name    string
		sel     SheetSelector
		want    []string
		wantErr error
	}{
		{"first", SheetIndex(0), []string{"A"}, nil},
		{"second", SheetIndex(1), []string{"B"}, nil},
		{"name", SheetName("B"), []string{"B"}, nil},
		{"all", AllSheets(), []string{"A", "B"}, nil},
		{"missing name", SheetName("C"), nil, ErrSheetNotFound},
		{"out of range", SheetIndex(2), nil, ErrSheetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectSheets(available, tt.sel)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("selectSheets() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := selectSheets(nil, AllSheets()); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty workbook error = %v, want ErrEmptyFile", err)
	}
}

func TestTrimBlankRows(t *testing.T) {
	rows := [][]string{{}, {"", ""}, {"a"}, {""}, {"b"}, {}, {""}}
	got := trimBlankRows(rows)
	want := [][]string{{"a"}, {""}, {"b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("trimBlankRows() = %q, want %q", got, want)
	}

	if got := trimBlankRows([][]string{{""}}); len(got) != 0 {
		t.Errorf("all-blank rows = %q, want none", got)
	}
}

func TestTrimTrailingEmpty(t *testing.T) {
	if got := trimTrailingEmpty([]string{"a", "", "b", "", ""}); !reflect.DeepEqual(got, []string{"a", "", "b"}) {
		t.Errorf("trimTrailingEmpty() = %q", got)
	}
}

// testdata/orders.xls is a BIFF8 workbook with two sheets:
//
//	Orders: id, amount, note / 1, 9.5, first / 2, 3
//	Notes:  key, value / a, 1
const xlsFixture = "testdata/orders.xls"

func TestNew_XLS(t *testing.T) {
	l, err := New(xlsFixture)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := l.SheetNames(); !reflect.DeepEqual(got, []string{"Orders"}) {
		t.Errorf("SheetNames() = %q, want [Orders]", got)
	}
	if got := l.Data.Names(); !reflect.DeepEqual(got, []string{"id", "amount", "note"}) {
		t.Errorf("Names() = %q", got)
	}
	if l.Data.NRows() != 2 {
		t.Fatalf("NRows = %d, want 2", l.Data.NRows())
	}
	if got := column(t, l.Data, "id").Value(1); got != int64(2) {
		t.Errorf("id[1] = %#v, want int64(2)", got)
	}
	if got := column(t, l.Data, "amount").Value(0); got != 9.5 {
		t.Errorf("amount[0] = %#v, want 9.5", got)
	}
	note := column(t, l.Data, "note")
	if got := note.Value(0); got != "first" {
		t.Errorf("note[0] = %#v, want first", got)
	}
	if got := note.Value(1); got != nil {
		t.Errorf("note[1] = %#v, want nil for the short row", got)
	}
}

func TestNew_XLSSheetByName(t *testing.T) {
	l, err := New(xlsFixture, WithSheet(SheetName("Notes")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := l.SheetNames(); !reflect.DeepEqual(got, []string{"Notes"}) {
		t.Errorf("SheetNames() = %q, want [Notes]", got)
	}
	if got := column(t, l.Data, "key").Value(0); got != "a" {
		t.Errorf("key[0] = %#v, want a", got)
	}
	if got := SeriesDType(column(t, l.Data, "value")); got != "int64" {
		t.Errorf("value dtype = %s, want int64", got)
	}
}

func TestNew_XLSSheetNotFound(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(xlsFixture, WithSheet(SheetName("Missing")), WithLogger(bufferLogger(&buf)))

	if !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("error = %v, want ErrSheetNotFound", err)
	}
	if l != nil {
		t.Error("loader should be nil when the sheet is missing")
	}
	var notFound *SheetNotFoundError
	if !errors.As(err, &notFound) || !reflect.DeepEqual(notFound.Available, []string{"Orders", "Notes"}) {
		t.Errorf("error = %#v, want available [Orders Notes]", err)
	}
}

func TestSheetNamesOf_XLS(t *testing.T) {
	got, err := SheetNamesOf(xlsFixture)
	if err != nil {
		t.Fatalf("SheetNamesOf() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Orders", "Notes"}) {
		t.Errorf("SheetNamesOf() = %q", got)
	}
}

func TestNew_CorruptXLS(t *testing.T) {
	_, err := New(writeTemp(t, "broken.xls", strings.Repeat("not a compound file ", 40)))
	if err == nil || !strings.Contains(err.Error(), "open workbook") {
		t.Errorf("error = %v, want open workbook failure", err)
	}
}
