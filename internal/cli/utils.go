// Package cli renders search results, ingestion reports and progress for the terminal.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hyperjump/rekishi/internal/models"
	"github.com/hyperjump/rekishi/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// UsageHint is shown when neither or both of --embed and a query are given.
const UsageHint = "Please provide either --embed CSV_FILE or a search query."

// NoResultsMessage is printed when nothing survived retrieval and filtering.
const NoResultsMessage = "No results found."

const maxTitleLen = 120

// ParseFormat validates an --output value.
func ParseFormat(s string) (SearchOutputFormat, error) {
	switch SearchOutputFormat(s) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if response.NoResults() {
		fmt.Fprintln(w, hintStyle.Render(NoResultsMessage))
		return
	}
	for i, item := range response.Results {
		title := item.Metadata.Title
		if title == "" {
			title = item.Document
		}
		fmt.Fprintf(w, "%s %s\n", rankStyle.Render(fmt.Sprintf("%d.", i+1)), titleStyle.Render(utils.Truncate(title, maxTitleLen)))
		fmt.Fprintf(w, "   URL: %s\n", urlStyle.Render(item.Metadata.URL))
		if item.Metadata.Date != "" {
			fmt.Fprintf(w, "   Visited: %s %s\n", item.Metadata.Date, item.Metadata.Time)
		}
		fmt.Fprintf(w, "   Relevance: %.2f\n\n", item.Relevance)
	}
	order := "by relevance"
	if response.SortedByRecency {
		order = "newest first"
	}
	fmt.Fprintln(w, hintStyle.Render(fmt.Sprintf("%d of %d candidates in %dms, %s",
		response.Total, response.Candidates, response.QueryTime, order)))
}

// WriteReport writes an ingestion summary. Every failed record is listed with its reason.
func WriteReport(w io.Writer, report *models.IngestionReport, format SearchOutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "%s %d records from %s in %s\n",
		successStyle.Render("Processed"), report.Total(), report.Source, report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Inserted: %d\n", report.Inserted)
	fmt.Fprintf(w, "  Skipped:  %d\n", report.Skipped)
	if report.Failed == 0 {
		fmt.Fprintf(w, "  Failed:   0\n")
		return nil
	}
	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("  Failed:   %d", report.Failed)))
	for _, f := range report.Failures {
		id := f.ID
		if id == "" {
			id = "(no id)"
		}
		fmt.Fprintf(w, "    row %d, id %s: %s\n", f.Row, id, f.Reason)
	}
	return nil
}

// WriteError prints a single query or command failure.
func WriteError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
