package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// csvReader streams rows from a CSV file using the first line as
// header keys.
type csvReader struct {
	file    *os.File
	reader  *csv.Reader
	headers []string
	line    int
}

func openCSV(path string) (*csvReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are validated downstream

	header, err := reader.Read()
	if err == io.EOF {
		// Headerless empty file: nothing to yield.
		return &csvReader{file: file, reader: reader, line: 1}, nil
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	return &csvReader{
		file:    file,
		reader:  reader,
		headers: headers,
		line:    1,
	}, nil
}

func (r *csvReader) Read() (Row, error) {
	if r.headers == nil {
		return Row{}, io.EOF
	}

	record, err := r.reader.Read()
	if err == io.EOF {
		return Row{}, io.EOF
	}
	if err != nil {
		return Row{}, fmt.Errorf("reading csv row: %w", err)
	}
	r.line++

	fields := make(map[string]string, len(r.headers))
	for i, h := range r.headers {
		if h == "" {
			continue
		}
		if i < len(record) {
			fields[h] = record[i]
		} else {
			fields[h] = ""
		}
	}

	return Row{Number: r.line, Fields: fields}, nil
}

func (r *csvReader) Close() error {
	return r.file.Close()
}
