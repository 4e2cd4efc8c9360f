package search

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/rekishi/internal/config"
	"github.com/hyperjump/rekishi/internal/embedding"
	"github.com/hyperjump/rekishi/internal/models"
	"github.com/hyperjump/rekishi/internal/vector"
)

type stubIndex struct {
	items []*models.ResultItem
	err   error
	gotK  int
}

func (s *stubIndex) NearestNeighbors(_ context.Context, _ string, k int) ([]*models.ResultItem, error) {
	s.gotK = k
	if s.err != nil {
		return nil, s.err
	}
	if k < len(s.items) {
		return s.items[:k], nil
	}
	return s.items, nil
}

var searchCfg = &config.SearchConfig{DefaultLimit: 10, MaxLimit: 100}

func historyItems() []*models.ResultItem {
	return []*models.ResultItem{
		{ID: "1", Distance: 0.1, Metadata: models.Metadata{Title: "Go Docs", URL: "https://go.dev/doc", Date: "01/01/2024", Time: "10:00:00", VisitCount: 5, Transition: "typed"}},
		{ID: "2", Distance: 0.4, Metadata: models.Metadata{Title: "Go Blog", URL: "https://go.dev/blog", Date: "02/01/2024", Time: "09:00:00", VisitCount: 1, Transition: "link"}},
		{ID: "3", Distance: 0.8, Metadata: models.Metadata{Title: "Rust", URL: "https://rust-lang.org", Date: "01/15/2024", Time: "12:00:00", VisitCount: 9, Transition: "link"}},
	}
}

func TestEngine_Query_orderAndRelevance(t *testing.T) {
	idx := &stubIndex{items: historyItems()}
	e := NewEngine(idx, searchCfg)
	resp, err := e.Query(context.Background(), &models.SearchQuery{Query: "  golang  "})
	if err != nil {
		t.Fatal(err)
	}
	if idx.gotK != 10 {
		t.Errorf("default k = %d, want 10", idx.gotK)
	}
	if resp.Query != "golang" || resp.Candidates != 3 || resp.Total != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if got := ids(resp.Results); got[0] != "1" || got[1] != "2" || got[2] != "3" {
		t.Errorf("order = %v, want ascending distance", got)
	}
	if resp.Results[2].Relevance != 0 || resp.Results[0].Relevance <= resp.Results[1].Relevance {
		t.Errorf("unexpected relevance: %f %f %f", resp.Results[0].Relevance, resp.Results[1].Relevance, resp.Results[2].Relevance)
	}
}

func TestEngine_Query_filtersThenRelevanceOverSurvivors(t *testing.T) {
	e := NewEngine(&stubIndex{items: historyItems()}, searchCfg)
	resp, err := e.Query(context.Background(), &models.SearchQuery{
		Query:   "go",
		Filters: models.Filters{Domain: strPtr("go.dev")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || resp.Candidates != 3 {
		t.Fatalf("total=%d candidates=%d", resp.Total, resp.Candidates)
	}
	// maxDistance is 0.4 among survivors.
	if r := resp.Results[0].Relevance; r < 0.7499 || r > 0.7501 {
		t.Errorf("relevance = %f, want 0.75", r)
	}
}

func TestEngine_Query_recency(t *testing.T) {
	e := NewEngine(&stubIndex{items: historyItems()}, searchCfg)
	resp, err := e.Query(context.Background(), &models.SearchQuery{Query: "x", SortByRecency: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(resp.Results); got[0] != "2" || got[1] != "3" || got[2] != "1" {
		t.Errorf("order = %v, want [2 3 1]", got)
	}
	if !resp.SortedByRecency {
		t.Error("SortedByRecency should be set")
	}
	// Relevance still derives from distance.
	if resp.Results[1].Relevance != 0 {
		t.Errorf("farthest item relevance = %f", resp.Results[1].Relevance)
	}
}

func TestEngine_Query_noResults(t *testing.T) {
	e := NewEngine(&stubIndex{items: historyItems()}, searchCfg)
	resp, err := e.Query(context.Background(), &models.SearchQuery{Query: "x", Filters: models.Filters{Transition: strPtr("reload")}})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.NoResults() || resp.Results == nil {
		t.Errorf("expected empty non-nil results, got %+v", resp.Results)
	}

	empty := NewEngine(&stubIndex{}, searchCfg)
	resp, err = empty.Query(context.Background(), &models.SearchQuery{Query: "x"})
	if err != nil || !resp.NoResults() {
		t.Errorf("empty index: %+v, %v", resp, err)
	}
}

func TestEngine_Query_noTopUp(t *testing.T) {
	idx := &stubIndex{items: historyItems()}
	e := NewEngine(idx, searchCfg)
	resp, err := e.Query(context.Background(), &models.SearchQuery{Query: "x", Limit: 1, Filters: models.Filters{Domain: strPtr("rust")}})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.NoResults() || idx.gotK != 1 {
		t.Errorf("filter must not re-query: results=%d k=%d", resp.Total, idx.gotK)
	}
}

func TestEngine_Query_errors(t *testing.T) {
	indexErr := &models.IndexOperationError{Op: "query", Err: errors.New("unreachable")}
	e := NewEngine(&stubIndex{err: indexErr}, searchCfg)
	_, err := e.Query(context.Background(), &models.SearchQuery{Query: "x"})
	var ioe *models.IndexOperationError
	if !errors.As(err, &ioe) {
		t.Errorf("expected IndexOperationError, got %v", err)
	}

	_, err = e.Query(context.Background(), &models.SearchQuery{Query: "   "})
	if !errors.Is(err, models.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}

	bad := historyItems()
	bad[1].Metadata.Date = "yesterday"
	e = NewEngine(&stubIndex{items: bad}, searchCfg)
	_, err = e.Query(context.Background(), &models.SearchQuery{Query: "x", SortByRecency: true})
	var mte *models.MalformedTimestampError
	if !errors.As(err, &mte) {
		t.Errorf("expected MalformedTimestampError, got %v", err)
	}
}

func TestEngine_Query_limitCapped(t *testing.T) {
	idx := &stubIndex{}
	e := NewEngine(idx, searchCfg)
	if _, err := e.Query(context.Background(), &models.SearchQuery{Query: "x", Limit: 1000}); err != nil {
		t.Fatal(err)
	}
	if idx.gotK != 100 {
		t.Errorf("k = %d, want 100", idx.gotK)
	}
}

func TestEngine_withCollection(t *testing.T) {
	ctx := context.Background()
	emb := embedding.NewMockEmbedder(384)
	store, err := vector.NewMemoryStore(emb.Dimensions(), "")
	if err != nil {
		t.Fatal(err)
	}
	coll := vector.NewCollection("browser_history", store, emb)
	defer coll.Close()

	docs := []struct {
		id, text string
		meta     models.Metadata
	}{
		{"1", "Go Tutorial - https://go.dev/tour", models.Metadata{URL: "https://go.dev/tour", VisitCount: 3}},
		{"2", "Pasta Carbonara - https://food.example.org/carbonara", models.Metadata{URL: "https://food.example.org/carbonara", VisitCount: 1}},
		{"3", "Go Blog - https://go.dev/blog", models.Metadata{URL: "https://go.dev/blog", VisitCount: 8}},
	}
	for _, d := range docs {
		if err := coll.Insert(ctx, d.id, d.text, d.meta); err != nil {
			t.Fatal(err)
		}
	}

	e := NewEngine(coll, searchCfg)
	resp, err := e.Query(ctx, &models.SearchQuery{Query: "go tutorial", Limit: 3, Filters: models.Filters{Domain: strPtr("go.dev")}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || resp.Results[0].ID != "1" {
		t.Errorf("unexpected results: %v", ids(resp.Results))
	}
}
