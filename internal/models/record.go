// Package models defines core data structures for history records, queries, and search results.
package models

// Record is one browsing-history row as read from the export file.
type Record struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	VisitCount int    `json:"visitCount"`
	TypedCount int    `json:"typedCount"`
	Transition string `json:"transition"`
}

// Metadata is the record as stored next to its embedding: everything except
// the id and the embedded document text. Counts stay integers so that the
// threshold filters compare numbers, not strings.
type Metadata struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	VisitCount int    `json:"visitCount"`
	TypedCount int    `json:"typedCount"`
	Transition string `json:"transition"`
}

// Metadata returns the stored metadata for r.
func (r *Record) Metadata() Metadata {
	return Metadata{
		Title:      r.Title,
		URL:        r.URL,
		Date:       r.Date,
		Time:       r.Time,
		VisitCount: r.VisitCount,
		TypedCount: r.TypedCount,
		Transition: r.Transition,
	}
}

// Document is an indexed entry: id, embedded text and metadata.
type Document struct {
	ID       string   `json:"id"`
	Text     string   `json:"document"`
	Metadata Metadata `json:"metadata"`
}
