// Package compliance implements the read-side core of the evidence
// service: parsing the ML pipeline's CSV results file, normalizing it into
// a ComplianceSummary, and projecting that summary into the shapes the
// dashboard, gap-analysis view, and PDF reports consume. The package is
// pure logic; fetching bytes from storage lives in pkg/storage.
package compliance

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/heighterses/cenaris/pkg/apperrors"
)

// Row is one CSV data line keyed by trimmed header name. Cells absent from
// a ragged row are simply missing from the map.
type Row map[string]string

// Table is the parsed form of a results file: the header in file order plus
// one Row per data line.
type Table struct {
	Headers []string
	Rows    []Row
}

// HasHeader reports whether the table's header contains the given column
// name (after trimming).
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// ParseCSV turns raw file bytes into a Table. The input must be UTF-8 with
// a header line; anything else fails with apperrors.ErrMalformedInput.
// Ragged data rows are tolerated: the results file is machine-generated by
// an external pipeline, so a row with fewer cells than the header produces
// missing values instead of aborting the parse.
func ParseCSV(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", apperrors.ErrMalformedInput)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: input has no header line", apperrors.ErrMalformedInput)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header line: %v", apperrors.ErrMalformedInput, err)
	}

	table := &Table{Headers: make([]string, len(header))}
	for i, h := range header {
		table.Headers[i] = strings.TrimSpace(h)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read data line: %v", apperrors.ErrMalformedInput, err)
		}

		row := make(Row, len(table.Headers))
		for i, h := range table.Headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
