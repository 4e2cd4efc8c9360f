// Package record reads browsing-history exports and normalizes rows into indexable documents.
package record

import (
	"errors"
	"strconv"
	"strings"

	"github.com/hyperjump/rekishi/internal/models"
)

// Separator joins title and URL in the embedded document text.
const Separator = " - "

// Column names expected in the export header.
const (
	ColID         = "id"
	ColTitle      = "title"
	ColURL        = "url"
	ColDate       = "date"
	ColTime       = "time"
	ColVisitCount = "visitCount"
	ColTypedCount = "typedCount"
	ColTransition = "transition"
)

// RequiredColumns lists the header columns every export must contain.
var RequiredColumns = []string{ColID, ColTitle, ColURL, ColDate, ColTime, ColVisitCount, ColTypedCount, ColTransition}

var (
	errMissingID = errors.New("id is empty")
	errNegative  = errors.New("must be non-negative")
)

// Row is one raw data row keyed by header column. Num is the 1-based data row
// number (the header is not counted).
type Row struct {
	Num    int
	Fields map[string]string
}

// ID returns the raw id field of the row.
func (r Row) ID() string {
	return r.Fields[ColID]
}

// DocumentText returns the text that gets embedded for a title and URL.
func DocumentText(title, url string) string {
	return title + Separator + url
}

// Normalize converts a raw row into its id, document text and metadata.
// Count columns must be non-negative integers; everything else passes through.
func Normalize(row Row) (*models.Document, error) {
	id := row.Fields[ColID]
	if id == "" {
		return nil, &models.MalformedRecordError{Row: row.Num, Field: ColID, Err: errMissingID}
	}
	visits, err := parseCount(row, ColVisitCount)
	if err != nil {
		return nil, err
	}
	typed, err := parseCount(row, ColTypedCount)
	if err != nil {
		return nil, err
	}
	title := row.Fields[ColTitle]
	url := row.Fields[ColURL]
	return &models.Document{
		ID:   id,
		Text: DocumentText(title, url),
		Metadata: models.Metadata{
			Title:      title,
			URL:        url,
			Date:       row.Fields[ColDate],
			Time:       row.Fields[ColTime],
			VisitCount: visits,
			TypedCount: typed,
			Transition: row.Fields[ColTransition],
		},
	}, nil
}

func parseCount(row Row, field string) (int, error) {
	raw := row.Fields[field]
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &models.MalformedRecordError{Row: row.Num, ID: row.ID(), Field: field, Value: raw, Err: err}
	}
	if n < 0 {
		return 0, &models.MalformedRecordError{Row: row.Num, ID: row.ID(), Field: field, Value: raw, Err: errNegative}
	}
	return n, nil
}

// FromRecord builds a row from an already-typed record (e.g. a JSON request body).
func FromRecord(num int, r models.Record) Row {
	return Row{
		Num: num,
		Fields: map[string]string{
			ColID:         r.ID,
			ColTitle:      r.Title,
			ColURL:        r.URL,
			ColDate:       r.Date,
			ColTime:       r.Time,
			ColVisitCount: strconv.Itoa(r.VisitCount),
			ColTypedCount: strconv.Itoa(r.TypedCount),
			ColTransition: r.Transition,
		},
	}
}
