package models

import "time"

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Pagination carries normalized page parameters for history and alert reads.
type Pagination struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

// Normalize clamps the parameters into their documented ranges: page >= 1,
// limit in [1,100], defaulting the limit when unset.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

// Skip returns the offset equivalent of the page parameters.
func (p Pagination) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// HistoryQuery pages through an item's audit trail. When the cursor fields
// are set the store paginates on the strictly monotonic (occurred_at, id)
// pair, which stays stable while entries are appended concurrently; page
// numbers are the offset fallback.
type HistoryQuery struct {
	Pagination
	Before   *time.Time `form:"before" time_format:"2006-01-02T15:04:05Z07:00" json:"before,omitempty"`
	BeforeID string     `form:"before_id" json:"before_id,omitempty"`
}

// Normalize clamps the embedded page parameters.
func (q HistoryQuery) Normalize() HistoryQuery {
	q.Pagination = q.Pagination.Normalize()
	return q
}
