package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// formulaPrefixes are leading characters spreadsheets evaluate as a formula.
const formulaPrefixes = "=+-@\t\r"

// CSVExporter writes datasets as RFC 4180 CSV. Cells are free text entered by
// staff, so any cell a spreadsheet would evaluate is prefixed with a quote.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render encodes data with a header row; missing cells are written empty.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, safeRecord(data.Headers, func(h string) string { return h }))
	for _, row := range data.Rows {
		row := row
		records = append(records, safeRecord(data.Headers, func(h string) string { return row[h] }))
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write caseload csv: %w", err)
	}
	return buf.Bytes(), nil
}

func safeRecord(headers []string, value func(header string) string) []string {
	record := make([]string, len(headers))
	for i, h := range headers {
		record[i] = neutralizeFormula(value(h))
	}
	return record
}

func neutralizeFormula(cell string) string {
	if cell != "" && strings.ContainsRune(formulaPrefixes, rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
