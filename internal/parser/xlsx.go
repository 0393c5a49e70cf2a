package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx/v3"
)

// xlsxReader iterates the first worksheet of a workbook. The first row
// provides header names; data cells are mapped to them by column
// position. A row with no cells is still yielded so that downstream
// validation can reject it for missing fields.
type xlsxReader struct {
	sheet   *xlsx.Sheet
	headers []string
	row     int
}

func openXLSX(path string) (*xlsxReader, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("workbook has no worksheets")
	}
	sheet := wb.Sheets[0]

	var headers []string
	if sheet.MaxRow > 0 {
		headers = make([]string, sheet.MaxCol)
		for c := 0; c < sheet.MaxCol; c++ {
			cell, err := sheet.Cell(0, c)
			if err != nil {
				continue
			}
			headers[c] = strings.TrimSpace(cell.String())
		}
	}

	return &xlsxReader{
		sheet:   sheet,
		headers: headers,
		row:     1, // first data row index; row 0 holds the headers
	}, nil
}

func (r *xlsxReader) Read() (Row, error) {
	if r.row >= r.sheet.MaxRow {
		return Row{}, io.EOF
	}

	fields := make(map[string]string, len(r.headers))
	for c, h := range r.headers {
		if h == "" {
			continue
		}
		cell, err := r.sheet.Cell(r.row, c)
		if err != nil {
			fields[h] = ""
			continue
		}
		fields[h] = cell.String()
	}

	row := Row{Number: r.row + 1, Fields: fields}
	r.row++
	return row, nil
}

func (r *xlsxReader) Close() error {
	return nil
}
