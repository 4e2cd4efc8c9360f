package search

import (
	"strings"

	"github.com/hyperjump/rekishi/internal/models"
)

// Predicate decides whether a result's metadata passes one filter.
type Predicate func(models.Metadata) bool

// DomainContains passes metadata whose URL contains domain (case-sensitive substring).
func DomainContains(domain string) Predicate {
	return func(m models.Metadata) bool { return strings.Contains(m.URL, domain) }
}

// VisitCountAtMost passes metadata with visitCount <= max.
func VisitCountAtMost(max int) Predicate {
	return func(m models.Metadata) bool { return m.VisitCount <= max }
}

// TypedCountAtMost passes metadata with typedCount <= max.
func TypedCountAtMost(max int) Predicate {
	return func(m models.Metadata) bool { return m.TypedCount <= max }
}

// TransitionIs passes metadata whose transition equals transition exactly.
func TransitionIs(transition string) Predicate {
	return func(m models.Metadata) bool { return m.Transition == transition }
}

// Predicates returns the configured filters as a chain, in a fixed order:
// domain, visit count, typed count, transition.
func Predicates(f models.Filters) []Predicate {
	var chain []Predicate
	if f.Domain != nil {
		chain = append(chain, DomainContains(*f.Domain))
	}
	if f.VisitCountMax != nil {
		chain = append(chain, VisitCountAtMost(*f.VisitCountMax))
	}
	if f.TypedCountMax != nil {
		chain = append(chain, TypedCountAtMost(*f.TypedCountMax))
	}
	if f.Transition != nil {
		chain = append(chain, TransitionIs(*f.Transition))
	}
	return chain
}

// Match reports whether m passes every predicate, stopping at the first failure.
// An empty chain passes everything.
func Match(chain []Predicate, m models.Metadata) bool {
	for _, p := range chain {
		if !p(m) {
			return false
		}
	}
	return true
}

// Filter keeps the items that pass chain, preserving their order.
func Filter(items []*models.ResultItem, chain []Predicate) []*models.ResultItem {
	if len(chain) == 0 {
		return items
	}
	kept := make([]*models.ResultItem, 0, len(items))
	for _, item := range items {
		if Match(chain, item.Metadata) {
			kept = append(kept, item)
		}
	}
	return kept
}
