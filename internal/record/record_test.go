package record

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/rekishi/internal/models"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `id,title,url,date,time,visitCount,typedCount,transition
1,Go Docs,https://go.dev/doc,01/01/2024,10:00:00,5,1,typed
2,News,https://news.example.com,02/01/2024,09:00:00,abc,0,link
3,Blog,https://blog.example.com/post,01/15/2024,12:00:00,2,0,link
`

func TestDocumentText(t *testing.T) {
	if got := DocumentText("A", "http://b"); got != "A - http://b" {
		t.Errorf("DocumentText = %q, want %q", got, "A - http://b")
	}
	if DocumentText("A", "http://b") != DocumentText("A", "http://b") {
		t.Error("DocumentText should be deterministic")
	}
}

func TestNormalize(t *testing.T) {
	row := Row{Num: 1, Fields: map[string]string{
		ColID: "42", ColTitle: "Go Docs", ColURL: "https://go.dev", ColDate: "01/01/2024",
		ColTime: "10:00:00", ColVisitCount: " 7 ", ColTypedCount: "2", ColTransition: "typed",
	}}
	doc, err := Normalize(row)
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID != "42" || doc.Text != "Go Docs - https://go.dev" {
		t.Errorf("unexpected doc: %+v", doc)
	}
	want := models.Metadata{
		Title: "Go Docs", URL: "https://go.dev", Date: "01/01/2024", Time: "10:00:00",
		VisitCount: 7, TypedCount: 2, Transition: "typed",
	}
	if doc.Metadata != want {
		t.Errorf("metadata = %+v, want %+v", doc.Metadata, want)
	}
}

func TestNormalize_malformed(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"non-numeric visit count", ColVisitCount, "abc"},
		{"non-numeric typed count", ColTypedCount, "1.5"},
		{"negative visit count", ColVisitCount, "-1"},
		{"empty typed count", ColTypedCount, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]string{ColID: "x", ColVisitCount: "1", ColTypedCount: "0"}
			fields[tt.field] = tt.value
			_, err := Normalize(Row{Num: 3, Fields: fields})
			var mre *models.MalformedRecordError
			if !errors.As(err, &mre) {
				t.Fatalf("expected MalformedRecordError, got %v", err)
			}
			if mre.Row != 3 || mre.ID != "x" || mre.Field != tt.field {
				t.Errorf("unexpected error fields: %+v", mre)
			}
		})
	}
}

func TestNormalize_missingID(t *testing.T) {
	_, err := Normalize(Row{Num: 1, Fields: map[string]string{ColVisitCount: "1", ColTypedCount: "1"}})
	var mre *models.MalformedRecordError
	if !errors.As(err, &mre) || mre.Field != ColID {
		t.Fatalf("expected id MalformedRecordError, got %v", err)
	}
}

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Num != 1 || rows[0].ID() != "1" || rows[0].Fields[ColTitle] != "Go Docs" {
		t.Errorf("row 0: %+v", rows[0])
	}
	if rows[1].Fields[ColVisitCount] != "abc" {
		t.Error("raw rows should not be normalized")
	}
}

func TestReadCSV_bomAndBlankLines(t *testing.T) {
	in := "\ufeff" + strings.Replace(sampleCSV, "\n2,", "\n,,,,,,,\n2,", 1)
	rows, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].ID() != "1" {
		t.Errorf("BOM should be stripped from header: %+v", rows[0].Fields)
	}
}

func TestReadCSV_missingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("id,title,url\n1,a,b\n"))
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
	if !strings.Contains(err.Error(), ColVisitCount) {
		t.Errorf("error should name missing columns: %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrMissingColumns) {
		t.Errorf("empty input: expected ErrMissingColumns, got %v", err)
	}
}

func TestReadFile_csvAndExcel(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "history.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0600); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("csv: expected 3 rows, got %d", len(rows))
	}

	xlsxPath := filepath.Join(dir, "history.xlsx")
	f := excelize.NewFile()
	for i, col := range RequiredColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Sheet1", cell, col)
	}
	values := []string{"9", "Excel Row", "https://sheet.example.com", "03/03/2024", "08:30:00", "4", "1", "typed"}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue("Sheet1", cell, v)
	}
	if err := f.SaveAs(xlsxPath); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	rows, err = ReadFile(xlsxPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("xlsx: expected 1 row, got %d", len(rows))
	}
	doc, err := Normalize(rows[0])
	if err != nil {
		t.Fatal(err)
	}
	if doc.Text != "Excel Row - https://sheet.example.com" || doc.Metadata.VisitCount != 4 {
		t.Errorf("unexpected doc from xlsx: %+v", doc)
	}
}

func TestReadFile_missing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFromRecord(t *testing.T) {
	row := FromRecord(4, models.Record{ID: "r", Title: "T", URL: "u", VisitCount: 3, TypedCount: 0, Transition: "link"})
	doc, err := Normalize(row)
	if err != nil {
		t.Fatal(err)
	}
	if row.Num != 4 || doc.ID != "r" || doc.Metadata.VisitCount != 3 || doc.Text != "T - u" {
		t.Errorf("unexpected: row=%+v doc=%+v", row, doc)
	}
}
