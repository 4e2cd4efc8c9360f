package search

import (
	"strings"

	"github.com/hyperjump/rekishi/internal/config"
	"github.com/hyperjump/rekishi/internal/models"
)

// ProcessQuery trims the query text and applies the configured limit defaults.
func ProcessQuery(query *models.SearchQuery, cfg *config.SearchConfig) error {
	query.Query = strings.TrimSpace(query.Query)
	return query.Validate(cfg.DefaultLimit, cfg.MaxLimit)
}
