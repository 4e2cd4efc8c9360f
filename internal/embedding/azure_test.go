package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestNewAzureEmbedder_validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  AzureConfig
	}{
		{"missing endpoint", AzureConfig{APIKey: "k", Deployment: "d"}},
		{"missing key", AzureConfig{Endpoint: "https://x", Deployment: "d"}},
		{"missing deployment", AzureConfig{Endpoint: "https://x", APIKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAzureEmbedder(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAzureEmbedder_EmbedBatch(t *testing.T) {
	var hits atomic.Int32
	var gotKey, gotVersion, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotKey = r.Header.Get("Api-Key")
		gotVersion = r.URL.Query().Get("api-version")
		gotPath = r.URL.Path
		var body struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		// Answer in reverse order to check reordering by index.
		data := make([]item, 0, len(body.Input))
		for i := len(body.Input) - 1; i >= 0; i-- {
			data = append(data, item{Object: "embedding", Index: i, Embedding: []float64{float64(i), 0.5}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-3-small",
			"usage":  map[string]int{"prompt_tokens": 2, "total_tokens": 2},
		})
	}))
	defer srv.Close()

	e, err := NewAzureEmbedder(AzureConfig{
		Endpoint:   srv.URL,
		APIVersion: "2024-02-01",
		APIKey:     "secret",
		Deployment: "text-embedding-3-small",
		Dimensions: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	vecs, err := e.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 || vecs[0][0] != 0 || vecs[1][0] != 1 || vecs[1][1] != 0.5 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
	if hits.Load() != 1 {
		t.Errorf("expected one request, got %d", hits.Load())
	}
	if gotKey != "secret" || gotVersion != "2024-02-01" {
		t.Errorf("key=%q version=%q", gotKey, gotVersion)
	}
	if !strings.HasSuffix(gotPath, "/embeddings") {
		t.Errorf("path = %s", gotPath)
	}
}

func TestAzureEmbedder_serverErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	e, err := NewAzureEmbedder(AzureConfig{Endpoint: srv.URL, APIKey: "k", Deployment: "d"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", hits.Load())
	}
}
