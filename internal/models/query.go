package models

import "errors"

// ErrEmptyQuery is returned by Validate for an empty query string.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Filters are the optional metadata filters applied after similarity retrieval.
// A nil field means the filter is not configured.
type Filters struct {
	Domain        *string `json:"domain,omitempty"`
	VisitCountMax *int    `json:"visit_count_max,omitempty"`
	TypedCountMax *int    `json:"typed_count_max,omitempty"`
	Transition    *string `json:"transition,omitempty"`
}

// IsZero reports whether no filter is configured.
func (f Filters) IsZero() bool {
	return f.Domain == nil && f.VisitCountMax == nil && f.TypedCountMax == nil && f.Transition == nil
}

// SearchQuery represents a search request.
type SearchQuery struct {
	Query         string  `json:"query"`
	Limit         int     `json:"limit,omitempty"`
	Filters       Filters `json:"filters"`
	SortByRecency bool    `json:"sort_by_recency,omitempty"`
}

// Validate ensures the query is non-empty and clamps Limit to (0, maxLimit],
// using defaultLimit when unset.
func (q *SearchQuery) Validate(defaultLimit, maxLimit int) error {
	if q.Query == "" {
		return ErrEmptyQuery
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return nil
}
