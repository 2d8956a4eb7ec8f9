package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"golift/domain/core"
	"golift/ports"
)

// Expected column order in result exports
var expectedHeader = []string{"variant_id", "samples", "conversions", "revenue"}

// ResultsReader reads per-variant result exports from xlsx or CSV files.
// This is the external import step that populates experiment results; the
// statistical engines never touch files.
type ResultsReader struct{}

// NewResultsReader creates a reader for both Excel and CSV exports
func NewResultsReader() *ResultsReader {
	return &ResultsReader{}
}

// Import reads raw variant rows from the export at path
func (r *ResultsReader) Import(path string) ([]ports.ResultRow, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("results file not found: %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return r.importCSV(path)
	case ".xlsx":
		return r.importExcel(path)
	default:
		return nil, fmt.Errorf("unsupported results file type: %s", filepath.Ext(path))
	}
}

func (r *ResultsReader) importCSV(path string) ([]ports.ResultRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return parseRows(records)
}

func (r *ResultsReader) importExcel(path string) ([]ports.ResultRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return parseRows(records)
}

// parseRows converts header + data records into result rows
func parseRows(records [][]string) ([]ports.ResultRow, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("results export needs a header and at least one data row")
	}
	if err := validateHeader(records[0]); err != nil {
		return nil, err
	}

	rows := make([]ports.ResultRow, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < len(expectedHeader) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		samples, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid samples %q", i+2, record[1])
		}
		conversions, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid conversions %q", i+2, record[2])
		}
		revenue, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid revenue %q", i+2, record[3])
		}

		variantID, err := core.ParseVariantID(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, ports.ResultRow{
			VariantID:   variantID,
			SampleSize:  samples,
			Conversions: conversions,
			Revenue:     revenue,
		})
	}
	return rows, nil
}

func validateHeader(header []string) error {
	if len(header) < len(expectedHeader) {
		return fmt.Errorf("header must contain columns %v", expectedHeader)
	}
	for i, want := range expectedHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("header column %d: expected %q, got %q", i+1, want, header[i])
		}
	}
	return nil
}

var _ ports.ResultImporter = (*ResultsReader)(nil)
