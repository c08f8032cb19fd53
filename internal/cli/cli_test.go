package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/pex/internal/loader"
)

// runCLI executes a fresh command tree and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("Orders"); err != nil {
		t.Fatal(err)
	}
	sheets := map[string][][]any{
		"Summary": {{"metric", "value"}, {"total", 12.5}},
		"Orders":  {{"id", "sku"}, {1, "A-1"}, {2, "B-2"}},
	}
	for sheet, rows := range sheets {
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

const salesCSV = "id,amount,region\n1,9.5,north\n2,NA,south\n3,4,\n"

func TestLoadCmd_Table(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)
	out, err := runCLI(t, "load", path)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}

	for _, want := range []string{
		"sales.csv: 3 rows x 3 columns",
		"COLUMN", "id", "int64",
		"amount", "float64",
		"region", "string",
		"north", "NaN",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLoadCmd_RowsLimit(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)
	out, err := runCLI(t, "load", "-n", "1", path)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if !strings.Contains(out, "... 2 more rows") {
		t.Errorf("output missing truncation note:\n%s", out)
	}
	if strings.Contains(out, "south") {
		t.Errorf("output shows rows past the limit:\n%s", out)
	}
}

func TestLoadCmd_JSON(t *testing.T) {
	path := writeFile(t, "semi.csv", "a;b\n1;-\n2;y\n")
	out, err := runCLI(t, "load", "--sep", ";", "--dtype", "a=float64", "--na", "-", "-o", "json", path)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}

	var report loadReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if report.File != "semi.csv" || report.LoadID == "" || len(report.Sheets) != 1 {
		t.Fatalf("report = %+v", report)
	}
	cols := report.Sheets[0].Columns
	if cols[0].DType != "float64" || cols[1].Missing != 1 {
		t.Errorf("columns = %+v", cols)
	}
}

func TestLoadCmd_NoHeaderWithNames(t *testing.T) {
	path := writeFile(t, "raw.csv", "1,x\n2,y\n")
	out, err := runCLI(t, "load", "--no-header", "--names", "id,label", "-o", "yaml", path)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}

	var report loadReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	sum := report.Sheets[0]
	if sum.Rows != 2 || sum.Columns[0].Name != "id" || sum.Columns[1].Name != "label" {
		t.Errorf("summary = %+v", sum)
	}
}

func TestLoadCmd_Discrete(t *testing.T) {
	path := writeFile(t, "zips.csv", "zip,n\n02134,1\n10001,2\n")
	out, err := runCLI(t, "load", "--discrete", "zip", "-o", "json", path)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	var report loadReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatal(err)
	}
	sum := report.Sheets[0]
	if sum.Columns[0].DType != "string" || sum.Preview[0][0] != "02134" {
		t.Errorf("zip column = %+v, first = %v", sum.Columns[0], sum.Preview[0][0])
	}
}

func TestLoadCmd_Profile(t *testing.T) {
	path := writeFile(t, "pipe.csv", "a|b\n1|x\n")
	profile := writeFile(t, "profile.yaml", "sep: '|'\ndtype:\n  a: float\n")
	out, err := runCLI(t, "load", "--profile", profile, "-o", "json", path)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	var report loadReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatal(err)
	}
	if cols := report.Sheets[0].Columns; len(cols) != 2 || cols[0].DType != "float64" {
		t.Errorf("columns = %+v", cols)
	}
}

func TestLoadCmd_Workbook(t *testing.T) {
	path := writeWorkbook(t)

	out, err := runCLI(t, "load", "--sheet", "Orders", path)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if !strings.Contains(out, "book.xlsx [Orders]: 2 rows x 2 columns") {
		t.Errorf("output:\n%s", out)
	}

	out, err = runCLI(t, "load", "--all-sheets", path)
	if err != nil {
		t.Fatalf("load --all-sheets error = %v", err)
	}
	if !strings.Contains(out, "[Summary]") || !strings.Contains(out, "[Orders]") {
		t.Errorf("all sheets output:\n%s", out)
	}
}

func TestLoadCmd_Errors(t *testing.T) {
	book := writeWorkbook(t)
	csv := writeFile(t, "sales.csv", salesCSV)
	txt := writeFile(t, "notes.txt", "hello")

	tests := []struct {
		name     string
		args     []string
		wantExit int
		wantCode string
	}{
		{"missing argument", []string{"load"}, ExitUsageError, ""},
		{"unknown flag", []string{"load", "--bogus", csv}, ExitUsageError, ""},
		{"bad output", []string{"load", "-o", "xml", csv}, ExitUsageError, ""},
		{"sheet and all-sheets", []string{"load", "--sheet", "1", "--all-sheets", book}, ExitUsageError, ""},
		{"file not found", []string{"load", filepath.Join(t.TempDir(), "nope.csv")}, ExitLoadError, "FILE001"},
		{"unsupported", []string{"load", txt}, ExitLoadError, "FILE002"},
		{"sheet not found", []string{"load", "--sheet", "Missing", book}, ExitLoadError, "SHEET001"},
		{"conversion", []string{"load", "--dtype", "region=int64", csv}, ExitLoadError, "TYPE001"},
		{"bad delimiter", []string{"load", "--sep", ";;", csv}, ExitLoadError, "LOAD002"},
		{"bad dtype flag", []string{"load", "--dtype", "region", csv}, ExitGeneralError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := ExitCodeForError(err); got != tt.wantExit {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", err, got, tt.wantExit)
			}
			if tt.wantCode != "" {
				if got := loader.MapError(err).Code; got != tt.wantCode {
					t.Errorf("code = %q, want %q (err %v)", got, tt.wantCode, err)
				}
			}
		})
	}
}

func TestResolveCmd(t *testing.T) {
	path := writeFile(t, "sales.csv", salesCSV)
	out, err := runCLI(t, "resolve", "--sep", "tab", "--discrete", "id", "--dtype", "id=float64", path)
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got["file_ext"] != "csv" || got["sep"] != "tab" {
		t.Errorf("resolved = %v", got)
	}
	dtype, _ := got["dtype"].(map[string]any)
	if dtype["id"] != "string" {
		t.Errorf("dtype = %v, want discrete to win", got["dtype"])
	}
}

func TestSheetsCmd(t *testing.T) {
	out, err := runCLI(t, "sheets", writeWorkbook(t))
	if err != nil {
		t.Fatalf("sheets error = %v", err)
	}
	if out != "Summary\nOrders\n" {
		t.Errorf("sheets output = %q", out)
	}

	_, err = runCLI(t, "sheets", writeFile(t, "sales.csv", salesCSV))
	if !errors.Is(err, loader.ErrUnsupportedFileType) {
		t.Errorf("sheets on csv error = %v, want ErrUnsupportedFileType", err)
	}
}

func TestFormatsCmd(t *testing.T) {
	out, err := runCLI(t, "formats")
	if err != nil {
		t.Fatalf("formats error = %v", err)
	}
	for _, want := range []string{"EXT", "csv", "delimited", "xlsx", "excelize", "ods"} {
		if !strings.Contains(out, want) {
			t.Errorf("formats output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	t.Setenv("PEX_SERVER_PORT", "0")
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "pexload dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("PEX_SERVER_PORT", "70000")
	_, err := runCLI(t, "formats")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
	if got := ExitCodeForError(err); got != ExitConfigError {
		t.Errorf("exit code = %d, want %d", got, ExitConfigError)
	}
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unknown flag", errors.New("unknown flag: --foo"), ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), ExitUsageError},
		{"config", ErrInvalidConfig, ExitConfigError},
		{"load", loader.ErrEmptyFile, ExitLoadError},
		{"general", errors.New("something went wrong"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	got := describe(loader.ErrEmptyFile)
	if !strings.Contains(got, "FILE005") || !strings.Contains(got, "detail: empty file") {
		t.Errorf("describe() = %q", got)
	}
	if got := describe(errors.New("plain")); got != "plain" {
		t.Errorf("describe(plain) = %q", got)
	}
}
