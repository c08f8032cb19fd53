package loader

// ods.go reads tables from OpenDocument files (.ods, .odt, .odf). The
// document is a zip archive; every <table:table> element in content.xml
// becomes one sheet.
//
// Repeated rows and columns (number-rows-repeated, number-columns-repeated)
// are expanded only when real content follows them, so the trailing
// million-row padding LibreOffice writes never materialises. Everything that
// is expanded counts against maxSheetRows, maxSheetColumns and
// maxSheetCells.

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	nsOffice = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
	nsTable  = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
	nsText   = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
)

type odfWorkbook struct {
	names  []string
	sheets map[string][][]string
}

func openODF(path string) (workbook, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "content.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		if f.UncompressedSize64 > maxUnzipSize {
			return nil, fmt.Errorf("%w: content.xml unpacks to %d bytes, limit is %d",
				ErrSheetTooLarge, f.UncompressedSize64, int64(maxUnzipSize))
		}
		return parseODFContent(io.LimitReader(rc, maxUnzipSize))
	}
	return nil, errors.New("content.xml missing from OpenDocument archive")
}

func (w *odfWorkbook) SheetNames() []string { return w.names }

func (w *odfWorkbook) Rows(sheet string) ([][]string, error) {
	rows, ok := w.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("table %q missing from document", sheet)
	}
	return rows, nil
}

func (w *odfWorkbook) Close() error { return nil }

// odfParser accumulates the state of one pass over content.xml.
type odfParser struct {
	wb *odfWorkbook

	sheet       string
	rows        [][]string
	pendingRows int

	row          []string
	rowRepeat    int
	pendingCells int

	// cells counts the cells materialised across the whole document.
	cells int

	inCell     bool
	cellRepeat int
	cellValue  string
	hasValue   bool
	text       strings.Builder
	paragraphs int
	pDepth     int
}

func parseODFContent(r io.Reader) (*odfWorkbook, error) {
	p := &odfParser{wb: &odfWorkbook{sheets: make(map[string][][]string)}}
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.start(t)
		case xml.EndElement:
			if err := p.end(t); err != nil {
				return nil, err
			}
		case xml.CharData:
			if p.inCell && p.pDepth > 0 {
				p.text.Write(t)
			}
		}
	}
	return p.wb, nil
}

func (p *odfParser) start(t xml.StartElement) {
	switch t.Name.Space {
	case nsTable:
		switch t.Name.Local {
		case "table":
			p.sheet = attr(t, nsTable, "name")
			if p.sheet == "" {
				p.sheet = "Table" + strconv.Itoa(len(p.wb.names)+1)
			}
			p.rows = nil
			p.pendingRows = 0
		case "table-row":
			p.row = nil
			p.pendingCells = 0
			p.rowRepeat = repeatAttr(t, "number-rows-repeated")
		case "table-cell", "covered-table-cell":
			p.inCell = true
			p.cellRepeat = repeatAttr(t, "number-columns-repeated")
			p.cellValue, p.hasValue = cellValueAttr(t)
			p.text.Reset()
			p.paragraphs = 0
		}
	case nsText:
		if !p.inCell {
			return
		}
		switch t.Name.Local {
		case "p", "h":
			if p.paragraphs > 0 {
				p.text.WriteByte('\n')
			}
			p.paragraphs++
			p.pDepth++
		case "s":
			n, err := strconv.Atoi(attr(t, nsText, "c"))
			if err != nil || n < 1 {
				n = 1
			}
			p.text.WriteString(strings.Repeat(" ", n))
		case "tab":
			p.text.WriteByte('\t')
		case "line-break":
			p.text.WriteByte('\n')
		}
	}
}

func (p *odfParser) end(t xml.EndElement) error {
	switch t.Name.Space {
	case nsTable:
		switch t.Name.Local {
		case "table-cell", "covered-table-cell":
			return p.endCell()
		case "table-row":
			return p.endRow()
		case "table":
			p.wb.names = append(p.wb.names, p.sheet)
			p.wb.sheets[p.sheet] = p.rows
			p.rows = nil
		}
	case nsText:
		if p.inCell && (t.Name.Local == "p" || t.Name.Local == "h") && p.pDepth > 0 {
			p.pDepth--
		}
	}
	return nil
}

func (p *odfParser) endCell() error {
	v := p.cellValue
	if !p.hasValue {
		v = p.text.String()
	}
	p.inCell = false

	if v == "" {
		p.pendingCells += p.cellRepeat
		return nil
	}
	if width := len(p.row) + p.pendingCells + p.cellRepeat; width > maxSheetColumns {
		return fmt.Errorf("%w: table %q is wider than %d columns", ErrSheetTooLarge, p.sheet, maxSheetColumns)
	}
	for ; p.pendingCells > 0; p.pendingCells-- {
		p.row = append(p.row, "")
	}
	for i := 0; i < p.cellRepeat; i++ {
		p.row = append(p.row, v)
	}
	return nil
}

func (p *odfParser) endRow() error {
	if len(p.row) == 0 {
		p.pendingRows += p.rowRepeat
		return nil
	}
	if n := len(p.rows) + p.pendingRows + p.rowRepeat; n > maxSheetRows {
		return fmt.Errorf("%w: table %q has more than %d rows", ErrSheetTooLarge, p.sheet, maxSheetRows)
	}
	p.cells += p.rowRepeat * len(p.row)
	if p.cells > maxSheetCells {
		return fmt.Errorf("%w: document holds more than %d cells", ErrSheetTooLarge, maxSheetCells)
	}
	for ; p.pendingRows > 0; p.pendingRows-- {
		p.rows = append(p.rows, nil)
	}
	for i := 0; i < p.rowRepeat; i++ {
		rec := make([]string, len(p.row))
		copy(rec, p.row)
		p.rows = append(p.rows, rec)
	}
	return nil
}

// cellValueAttr returns the typed value attribute of a cell, if any. Cells
// without one (strings) fall back to their paragraph text.
func cellValueAttr(t xml.StartElement) (string, bool) {
	switch attr(t, nsOffice, "value-type") {
	case "float", "percentage", "currency":
		return attr(t, nsOffice, "value"), true
	case "date":
		return attr(t, nsOffice, "date-value"), true
	case "time":
		return attr(t, nsOffice, "time-value"), true
	case "boolean":
		return attr(t, nsOffice, "boolean-value"), true
	default:
		return "", false
	}
}

// repeatAttr reads a repeat count. Counts past maxSheetRows are clamped,
// which still trips every limit if the run is expanded, and keeps the
// pending sums from overflowing.
func repeatAttr(t xml.StartElement, local string) int {
	n, err := strconv.Atoi(attr(t, nsTable, local))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, maxSheetRows+1)
}

func attr(t xml.StartElement, space, local string) string {
	for _, a := range t.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
