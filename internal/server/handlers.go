package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/rekishi/internal/models"
	"github.com/hyperjump/rekishi/internal/record"
	"github.com/hyperjump/rekishi/internal/storage"
	"github.com/hyperjump/rekishi/pkg/utils"
)

// ingestRequest carries either inline records or a path readable by the server.
type ingestRequest struct {
	Records []models.Record `json:"records,omitempty"`
	Path    string          `json:"path,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", utils.Truncate(query.Query, 80)), zap.Int("limit", query.Limit))
	response, err := s.engine.Query(r.Context(), &query)
	if err != nil {
		status := http.StatusInternalServerError
		var mte *models.MalformedTimestampError
		switch {
		case errors.Is(err, models.ErrEmptyQuery):
			status = http.StatusBadRequest
		case errors.As(err, &mte):
			status = http.StatusUnprocessableEntity
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, status, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if (req.Path == "") == (len(req.Records) == 0) {
		s.respondError(w, http.StatusBadRequest, "provide either records or path")
		return
	}

	// Rows keep going after the client gives up; the run is recorded in the log.
	ctx := context.WithoutCancel(r.Context())

	var report *models.IngestionReport
	if req.Path != "" {
		s.logger.Debug("ingest file request", zap.String("path", req.Path))
		var err error
		report, err = s.indexer.IngestFile(ctx, req.Path)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, record.ErrMissingColumns) {
				status = http.StatusBadRequest
			}
			s.logger.Error("ingestion failed", zap.Error(err))
			s.respondError(w, status, err.Error())
			return
		}
	} else {
		s.logger.Debug("ingest records request", zap.Int("records", len(req.Records)))
		rows := make([]record.Row, len(req.Records))
		for i, rec := range req.Records {
			rows[i] = record.FromRecord(i+1, rec)
		}
		report = s.indexer.Ingest(ctx, "api", rows)
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := storage.Status(r.Context(), s.collection, s.config)
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
