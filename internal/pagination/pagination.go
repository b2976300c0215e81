// Package pagination implements the list query contract shared by every
// storage backend: which records make up a page, and the metadata that
// describes where that page sits in the full result set.
//
// THE WINDOW:
//
//	page=1 limit=10  →  records [0, 10)
//	page=3 limit=10  →  records [20, 30)
//
// Backends are responsible for filtering and ordering (newest first).
// This package only decides the window and the numbers around it, so the
// same arithmetic is used whether the records live in memory, SQLite,
// PostgreSQL or MongoDB.
package pagination

import (
	"math"
	"strings"
)

// Defaults and bounds for the list endpoint.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxOffset bounds how deep a window may start. It fits every
	// backend's OFFSET/skip type.
	MaxOffset = math.MaxInt32
)

// Params is a validated page request. Page >= 1 and 1 <= Limit <= MaxLimit
// are guaranteed by the validation layer before a Params reaches a store.
type Params struct {
	Page  int
	Limit int
}

// Defaults returns the params used when the client sends neither value.
func Defaults() Params {
	return Params{Page: DefaultPage, Limit: DefaultLimit}
}

// InRange reports whether the window starts at or before MaxOffset.
func (p Params) InRange() bool {
	if p.Page < 1 || p.Limit < 1 {
		return false
	}
	return p.Page-1 <= MaxOffset/p.Limit
}

// Offset is the index of the first record in the window. It saturates at
// MaxOffset instead of overflowing.
func (p Params) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if !p.InRange() {
		return MaxOffset
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination block returned next to the data array.
//
// TotalStudents carries the same number as TotalMatches; the SPA reads the
// former.
type Meta struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalMatches  int64 `json:"totalMatches"`
	TotalStudents int64 `json:"totalStudents"`
	HasNext       bool  `json:"hasNext"`
	HasPrev       bool  `json:"hasPrev"`
}

// NewMeta computes the metadata for a page given the size of the
// (already filtered) result set.
func NewMeta(p Params, total int64) Meta {
	totalPages := 0
	if total > 0 && p.Limit > 0 {
		// integer ceil(total / limit)
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}

	return Meta{
		CurrentPage:   p.Page,
		TotalPages:    totalPages,
		TotalMatches:  total,
		TotalStudents: total,
		HasNext:       p.Page < totalPages,
		HasPrev:       p.Page > 1,
	}
}

// Window returns the slice of items that belongs to page p.
// items must already be filtered and ordered. A page past the end yields
// an empty (non-nil) slice.
func Window[T any](items []T, p Params) []T {
	start := p.Offset()
	if start < 0 || start >= len(items) {
		return make([]T, 0)
	}

	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}

// MatchCourse reports whether course contains filter, ignoring case.
// An empty filter matches everything.
func MatchCourse(course, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(course), strings.ToLower(filter))
}
