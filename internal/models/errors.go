package models

import "fmt"

// MalformedRecordError is returned when a row cannot be normalized, most
// often because a count column is not an integer.
type MalformedRecordError struct {
	Row   int
	ID    string
	Field string
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed record at row %d (id %q): %v", e.Row, e.ID, e.Err)
	}
	return fmt.Sprintf("malformed record at row %d (id %q): field %s=%q: %v", e.Row, e.ID, e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// IndexOperationError is returned when the vector index rejects an operation.
type IndexOperationError struct {
	Op  string
	ID  string
	Err error
}

func (e *IndexOperationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("index %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("index %s failed for %q: %v", e.Op, e.ID, e.Err)
}

func (e *IndexOperationError) Unwrap() error { return e.Err }

// MalformedTimestampError is returned when a result's date and time cannot be
// parsed for recency ordering.
type MalformedTimestampError struct {
	ID    string
	Value string
	Err   error
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp %q for %q: %v", e.Value, e.ID, e.Err)
}

func (e *MalformedTimestampError) Unwrap() error { return e.Err }

// UsageError reports an invalid command-line invocation.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }
