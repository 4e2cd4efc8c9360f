package search

import "github.com/hyperjump/rekishi/internal/models"

// Normalize sets Relevance = 1 - distance/maxDistance on every item, where
// maxDistance is taken over items. Scores are relative to this result set only.
// The farthest item always scores 0, so a single item scores 0; when every
// distance is 0 all items score 0.
func Normalize(items []*models.ResultItem) {
	var maxDistance float64
	for _, item := range items {
		if item.Distance > maxDistance {
			maxDistance = item.Distance
		}
	}
	for _, item := range items {
		if maxDistance == 0 {
			item.Relevance = 0
			continue
		}
		item.Relevance = 1 - item.Distance/maxDistance
	}
}
