package e2e

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/rekishi/internal/models"
	"github.com/hyperjump/rekishi/internal/record"
)

func recordFields(r models.Record) []string {
	return []string{
		r.ID, r.Title, r.URL, r.Date, r.Time,
		strconv.Itoa(r.VisitCount), strconv.Itoa(r.TypedCount), r.Transition,
	}
}

// WriteCSV writes records as a history export with the standard header.
func WriteCSV(path string, records []models.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(record.RequiredColumns); err != nil {
		f.Close()
		return err
	}
	for _, r := range records {
		if err := w.Write(recordFields(r)); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteXLSX writes records to the first sheet of a new workbook.
func WriteXLSX(path string, records []models.Record) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	write := func(row int, values []string) error {
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write(1, record.RequiredColumns); err != nil {
		return err
	}
	for i, r := range records {
		if err := write(i+2, recordFields(r)); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return f.SaveAs(path)
}
