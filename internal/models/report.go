package models

import "time"

// IngestStatus is the result kind of one ingested row.
type IngestStatus string

const (
	StatusInserted IngestStatus = "inserted"
	StatusSkipped  IngestStatus = "skipped"
	StatusFailed   IngestStatus = "failed"
)

// IngestOutcome is the per-row result of an ingestion run. Err is set only
// when Status is StatusFailed.
type IngestOutcome struct {
	Row    int
	ID     string
	Status IngestStatus
	Err    error
}

// IngestFailure is a failed record as reported to the user.
type IngestFailure struct {
	Row    int    `json:"row"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// IngestionReport aggregates the outcomes of one ingestion run.
type IngestionReport struct {
	RunID    string          `json:"run_id"`
	Source   string          `json:"source,omitempty"`
	Inserted int             `json:"inserted"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
	Failures []IngestFailure `json:"failures,omitempty"`
	Duration time.Duration   `json:"duration_ns"`
}

// Add accumulates one outcome into the report.
func (r *IngestionReport) Add(o IngestOutcome) {
	switch o.Status {
	case StatusInserted:
		r.Inserted++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
		reason := "unknown error"
		if o.Err != nil {
			reason = o.Err.Error()
		}
		r.Failures = append(r.Failures, IngestFailure{Row: o.Row, ID: o.ID, Reason: reason})
	}
}

// Total returns the number of rows processed.
func (r *IngestionReport) Total() int {
	return r.Inserted + r.Skipped + r.Failed
}
