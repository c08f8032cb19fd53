// Package loader reads tabular files (CSV and spreadsheets) into
// dataframe-go DataFrames.
//
// The package is a thin translation layer: loading options are normalized
// into [ResolvedParameters], a reader is picked from a closed table keyed by
// file extension, and the reader hands raw cells to a shared table builder.
//
// # Loading
//
//	l, err := loader.New("orders.csv",
//	    loader.WithSep(";"),
//	    loader.WithDiscrete("zip", "account_id"),
//	    loader.WithNAValues(loader.NAList("-")),
//	)
//	if err != nil {
//	    return err
//	}
//	df := l.Data
//
// Spreadsheets take a sheet selector:
//
//	l, err := loader.New("report.xlsx", loader.WithSheet(loader.SheetName("Q3")))
//	l, err := loader.New("report.xlsx", loader.WithSheet(loader.AllSheets()))
//	for _, t := range l.Sheets { ... }
//
// # Readers
//
//	csv                      encoding/csv (BOM skipped, invalid UTF-8 replaced)
//	xlsx, xlsm               excelize
//	xls                      extrame/xls
//	ods, odt, odf            OpenDocument content.xml tables
//	xlsb                     recognised, no engine (ErrEngineUnavailable)
//
// Any other extension fails with *UnsupportedFileTypeError.
//
// # Column types
//
// Columns named in ColnamesDiscrete or ColnamesDatetime always load as
// strings. Explicit DType entries apply to the remaining columns; when a
// column appears in both, the forced-string entry wins. Columns with no
// dtype are inferred: int64 when every value is an integer and none are
// missing, float64 when every present value is numeric, string otherwise.
//
// # Errors
//
// Both reader paths return their errors. A missing sheet is additionally
// logged as a warning before *SheetNotFoundError is returned. [MapError]
// turns any load error into a [UserMessage] with a support code.
package loader
