// Package jobquery turns raw list parameters into a canonical query
// descriptor. Parsing is lenient: malformed input falls back to defaults
// and never produces an error.
package jobquery

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50

	// StatusAll disables status filtering
	StatusAll = "all"
)

// SortField is the single key a list is ordered by
type SortField string

const (
	SortDateApplied SortField = "dateApplied"
	SortCompany     SortField = "company"
	SortStatus      SortField = "status"
)

// Sort describes the ordering of a list query
type Sort struct {
	Field      SortField
	Descending bool
}

// Params are the raw, unvalidated list parameters as they arrive from a
// query string or CLI flags.
type Params struct {
	Status string
	Search string
	SortBy string
	Page   string
	Limit  string
}

// Query is the canonical query descriptor. OwnerID is always set; an
// empty StatusFilter or SearchFilter means no filter.
type Query struct {
	OwnerID      string
	StatusFilter string
	SearchFilter string
	Sort         Sort
	Page         int
	Limit        int
	Skip         int
}

// Build resolves params for ownerID
func Build(ownerID string, p Params) Query {
	q := Query{
		OwnerID: ownerID,
		Sort:    parseSort(p.SortBy),
		Page:    parsePositive(p.Page, DefaultPage),
		Limit:   parsePositive(p.Limit, DefaultLimit),
	}

	if p.Status != "" && p.Status != StatusAll {
		q.StatusFilter = p.Status
	}
	if p.Search != "" {
		q.SearchFilter = p.Search
	}

	// a page whose offset does not fit in an int is malformed
	if q.Page-1 > math.MaxInt/q.Limit {
		q.Page = DefaultPage
	}
	q.Skip = (q.Page - 1) * q.Limit
	return q
}

// Pages returns how many pages of size limit are needed to hold total records
func Pages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func parseSort(sortBy string) Sort {
	switch sortBy {
	case "oldest":
		return Sort{Field: SortDateApplied}
	case "company":
		return Sort{Field: SortCompany}
	case "status":
		return Sort{Field: SortStatus}
	default:
		return Sort{Field: SortDateApplied, Descending: true}
	}
}

func parsePositive(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}
