package loader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileNotFound is returned when the source path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFileType is matched by every *UnsupportedFileTypeError.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrSheetNotFound is matched by every *SheetNotFoundError.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrEngineUnavailable is returned for spreadsheet formats that are
	// recognised but have no Go reader (xlsb).
	ErrEngineUnavailable = errors.New("no reader engine available")

	// ErrSheetTooLarge is returned when a sheet expands past the row,
	// column, or cell limits.
	ErrSheetTooLarge = errors.New("sheet exceeds size limit")

	// ErrEmptyFile is returned when the source has no columns to parse.
	ErrEmptyFile = errors.New("empty file: no columns to parse")

	// ErrInvalidDelimiter is returned when sep is not a single character.
	ErrInvalidDelimiter = errors.New("invalid delimiter")

	// ErrHeaderNamesMismatch is returned when header names do not cover
	// every parsed column.
	ErrHeaderNamesMismatch = errors.New("header names mismatch")
)

// UnsupportedFileTypeError names an extension that has no reader.
type UnsupportedFileTypeError struct {
	Ext string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type, now is %s", e.Ext)
}

func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType
}

// SheetNotFoundError is returned when a sheet selector does not match any
// worksheet in the workbook.
type SheetNotFoundError struct {
	Sheet     SheetSelector
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet not found: %s (available: %s)", e.Sheet, strings.Join(e.Available, ", "))
}

func (e *SheetNotFoundError) Is(target error) bool {
	return target == ErrSheetNotFound
}

// ConversionError reports a cell that could not be coerced to the dtype
// requested for its column.
type ConversionError struct {
	Column string
	Row    int // zero-based data row
	Value  string
	DType  DType
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("invalid %s value %q in column %q at row %d", e.DType, e.Value, e.Column, e.Row)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
