package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnsupportedFileType is returned by Open for file types other than
// .csv, .xlsx and .xls. It fails the whole import before any row is
// processed.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Row is one spreadsheet row keyed by header name. Number is the
// 1-based position within the original file, header included, so the
// first data row is row 2.
type Row struct {
	Number int
	Fields map[string]string
}

// Field returns the trimmed value for a column, or "" when the column
// is absent.
func (r Row) Field(name string) string {
	return strings.TrimSpace(r.Fields[name])
}

// RowReader yields data rows in file order, header row excluded.
// Read returns io.EOF after the last row.
type RowReader interface {
	Read() (Row, error)
	Close() error
}

// Open returns a RowReader for the uploaded file. fileType is the
// declared extension (".csv", ".xlsx" or ".xls"); legacy .xls files go
// through the xlsx reader, matching the upload filter which accepts the
// extension but only the OOXML container.
func Open(path, fileType string) (RowReader, error) {
	switch strings.ToLower(fileType) {
	case ".csv":
		return openCSV(path)
	case ".xlsx", ".xls":
		return openXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileType)
	}
}

// ReadAll drains a reader opened on path into an ordered slice. Any
// mid-stream error fails the whole read; no partial result is returned.
func ReadAll(path, fileType string) ([]Row, error) {
	r, err := Open(path, fileType)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var rows []Row
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
