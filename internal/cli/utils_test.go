package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/rekishi/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query: "go docs",
		Results: []*models.ResultItem{
			{ID: "1", Document: "Go Docs - https://go.dev/doc", Distance: 0.2, Relevance: 1,
				Metadata: models.Metadata{Title: "Go Docs", URL: "https://go.dev/doc", Date: "01/01/2024", Time: "10:00:00"}},
			{ID: "3", Document: "Blog - https://blog.example.com", Distance: 0.4, Relevance: 0,
				Metadata: models.Metadata{Title: "Blog", URL: "https://blog.example.com"}},
		},
		Candidates: 5,
		Total:      2,
		QueryTime:  3,
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"1.", "Go Docs", "   URL: ", "https://go.dev/doc", "   Relevance: 1.00",
		"2.", "Blog", "   Relevance: 0.00", "2 of 5 candidates",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Go Docs") > strings.Index(out, "Blog") {
		t.Error("results should keep response order")
	}
}

func TestWriteSearchResults_textNoResults(t *testing.T) {
	var buf bytes.Buffer
	resp := &models.SearchResponse{Query: "nothing", Results: []*models.ResultItem{}}
	if err := WriteSearchResults(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), NoResultsMessage) {
		t.Errorf("expected no-results message, got %q", buf.String())
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "go docs" || len(decoded.Results) != 2 || decoded.Results[0].ID != "1" {
		t.Errorf("decoded: %+v", decoded)
	}
	if decoded.Results[0].Metadata.URL != "https://go.dev/doc" {
		t.Errorf("metadata not encoded: %+v", decoded.Results[0].Metadata)
	}
}

func TestWriteSearchResults_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	resp := &models.SearchResponse{Query: "q", Results: []*models.ResultItem{}}
	if err := WriteSearchResults(&buf, resp, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"results": []`) {
		t.Errorf("empty results should encode as [], got %s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchOutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) should wrap ErrUnknownFormat", tt.in)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteReport(t *testing.T) {
	report := &models.IngestionReport{Source: "history.csv", Duration: 1500 * time.Millisecond}
	report.Add(models.IngestOutcome{Row: 1, ID: "1", Status: models.StatusInserted})
	report.Add(models.IngestOutcome{Row: 2, ID: "2", Status: models.StatusFailed, Err: errors.New("bad visitCount")})
	report.Add(models.IngestOutcome{Row: 3, ID: "3", Status: models.StatusSkipped})
	report.Add(models.IngestOutcome{Row: 4, Status: models.StatusFailed, Err: errors.New("missing id")})

	var buf bytes.Buffer
	if err := WriteReport(&buf, report, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"4 records from history.csv", "Inserted: 1", "Skipped:  1", "Failed:   2",
		"row 2, id 2: bad visitCount", "row 4, id (no id): missing id",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteReport(&buf, report, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.IngestionReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Failed != 2 || len(decoded.Failures) != 2 {
		t.Errorf("decoded report: %+v", decoded)
	}
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf)
	bar.Update(0, 0)
	if buf.Len() != 0 {
		t.Error("zero total should draw nothing")
	}
	for i := 1; i <= 4; i++ {
		bar.Update(i, 4)
	}
	out := buf.String()
	if !strings.Contains(out, "4/4 records") || !strings.HasSuffix(out, "\n") {
		t.Errorf("unexpected progress output: %q", out)
	}
	if strings.Count(out, "\r") != 4 {
		t.Errorf("expected 4 redraws, got %d", strings.Count(out, "\r"))
	}
}
