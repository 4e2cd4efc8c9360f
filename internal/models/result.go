package models

// ResultItem is a single nearest-neighbor match. Distance comes from the index
// (lower = more similar); Relevance is filled in by the query executor.
type ResultItem struct {
	ID        string   `json:"id"`
	Document  string   `json:"document"`
	Metadata  Metadata `json:"metadata"`
	Distance  float64  `json:"distance"`
	Relevance float64  `json:"relevance"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query   string        `json:"query"`
	Results []*ResultItem `json:"results"`
	// Candidates is the number of neighbors returned by the index before filtering.
	Candidates      int   `json:"candidates"`
	Total           int   `json:"total"`
	SortedByRecency bool  `json:"sorted_by_recency"`
	QueryTime       int64 `json:"query_time_ms"`
}

// NoResults reports whether nothing survived retrieval and filtering.
func (r *SearchResponse) NoResults() bool {
	return len(r.Results) == 0
}
