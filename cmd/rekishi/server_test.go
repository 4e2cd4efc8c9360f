package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hyperjump/rekishi/internal/config"
	"github.com/hyperjump/rekishi/internal/embedding"
	"github.com/hyperjump/rekishi/internal/indexer"
	"github.com/hyperjump/rekishi/internal/models"
	"github.com/hyperjump/rekishi/internal/search"
	"github.com/hyperjump/rekishi/internal/server"
	"github.com/hyperjump/rekishi/internal/vector"
)

type slowEmbedder struct {
	*embedding.MockEmbedder
	delay time.Duration
}

func (e slowEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	time.Sleep(e.delay)
	return e.MockEmbedder.Embed(ctx, text)
}

func TestServerIngestAndWatcherSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(path, []byte(historyCSV), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{Storage: config.StorageConfig{Type: config.StoreMemory}}
	config.ApplyDefaults(cfg)
	emb := slowEmbedder{MockEmbedder: embedding.NewMockEmbedder(32), delay: 30 * time.Millisecond}
	store, err := vector.NewMemoryStore(emb.Dimensions(), "")
	if err != nil {
		t.Fatal(err)
	}
	coll := vector.NewCollection(cfg.Storage.Collection, store, emb)
	defer coll.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	idx := indexer.NewIndexer(coll, indexer.WithLogger(logger))
	srv := server.NewServer(search.NewEngine(coll, &cfg.Search), idx, coll, cfg, logger)
	w := newExportWatcher([]string{path}, idx, logger)

	var httpReport models.IngestionReport
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.SyncExistingFiles()
	}()
	go func() {
		defer wg.Done()
		body, _ := json.Marshal(map[string]string{"path": path})
		r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Errorf("ingest status %d: %s", rec.Code, rec.Body.String())
			return
		}
		if err := json.NewDecoder(rec.Body).Decode(&httpReport); err != nil {
			t.Error(err)
		}
	}()
	wg.Wait()

	finished := logs.FilterMessage("watch ingest finished").All()
	if len(finished) != 1 {
		t.Fatalf("watcher runs logged: %d", len(finished))
	}
	fields := finished[0].ContextMap()
	inserted := int(fields["inserted"].(int64)) + httpReport.Inserted
	skipped := int(fields["skipped"].(int64)) + httpReport.Skipped
	if fields["failed"].(int64) != 1 || httpReport.Failed != 1 {
		t.Errorf("only the malformed row may fail: watcher %v, api %d", fields["failed"], httpReport.Failed)
	}
	if inserted != 3 || skipped != 3 {
		t.Errorf("inserted %d skipped %d, want 3 and 3", inserted, skipped)
	}
	if n, _ := coll.Count(context.Background()); n != 3 {
		t.Errorf("index holds %d documents, want 3", n)
	}
}
