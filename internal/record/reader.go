package record

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = errors.New("missing required columns")

const utf8BOM = "\ufeff"

// ReadFile reads all data rows from a history export. Files ending in .xlsx
// are read as Excel workbooks (first sheet); everything else is parsed as CSV.
func ReadFile(path string) ([]Row, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		return ReadExcel(content)
	}
	return ReadCSV(bytes.NewReader(content))
}

// ReadCSV parses a CSV export with a header row.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return fromTable(records)
}

// ReadExcel parses the first sheet of an .xlsx workbook with a header row.
func ReadExcel(content []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	return fromTable(rows)
}

func fromTable(table [][]string) ([]Row, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrMissingColumns)
	}
	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[i] = strings.TrimSpace(h)
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	rows := make([]Row, 0, len(table)-1)
	for i, rec := range table[1:] {
		if isBlank(rec) {
			continue
		}
		fields := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(rec) {
				fields[col] = rec[j]
			} else {
				fields[col] = ""
			}
		}
		rows = append(rows, Row{Num: i + 1, Fields: fields})
	}
	return rows, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
