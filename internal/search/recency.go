package search

import (
	"sort"
	"time"

	"github.com/hyperjump/rekishi/internal/models"
)

// TimestampLayout parses "date time" values such as "01/15/2024 12:00:00".
// Leading zeros are optional.
const TimestampLayout = "1/2/2006 15:04:05"

// Timestamp parses the visit time of m.
func Timestamp(m models.Metadata) (time.Time, error) {
	return time.Parse(TimestampLayout, m.Date+" "+m.Time)
}

// SortByRecency orders items newest first. Items with equal timestamps keep
// their existing (distance) order. Any unparsable timestamp fails the whole sort
// and leaves items untouched.
func SortByRecency(items []*models.ResultItem) error {
	stamps := make(map[*models.ResultItem]time.Time, len(items))
	for _, item := range items {
		ts, err := Timestamp(item.Metadata)
		if err != nil {
			return &models.MalformedTimestampError{ID: item.ID, Value: item.Metadata.Date + " " + item.Metadata.Time, Err: err}
		}
		stamps[item] = ts
	}
	sort.SliceStable(items, func(i, j int) bool {
		return stamps[items[i]].After(stamps[items[j]])
	})
	return nil
}
