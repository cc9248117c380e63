package models

import (
	"fmt"
	"strings"
	"time"
)

// Unanswered queue sort orders.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortMostViewed = "most_viewed"
	SortMostVoted  = "most_voted"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// UnansweredFilter selects and orders the unanswered question queue.
type UnansweredFilter struct {
	CategoryID uint       `json:"category_id,omitempty"`
	Tag        string     `json:"tag,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	Sort       string     `json:"sort"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

// Normalize fills defaults and canonicalizes values so equivalent filters share a cache key.
func (f UnansweredFilter) Normalize() (UnansweredFilter, error) {
	f.Tag = strings.ToLower(strings.TrimSpace(f.Tag))
	f.Sort = strings.ToLower(strings.TrimSpace(f.Sort))
	switch f.Sort {
	case "":
		f.Sort = SortNewest
	case SortNewest, SortOldest, SortMostViewed, SortMostVoted:
	default:
		return f, NewValidationError(fmt.Sprintf("sort must be one of %s, %s, %s, %s", SortNewest, SortOldest, SortMostViewed, SortMostVoted))
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.From != nil {
		from := f.From.UTC()
		f.From = &from
	}
	if f.To != nil {
		to := f.To.UTC()
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, NewValidationError("to must not be before from")
	}
	return f, nil
}

// Offset returns the row offset of the current page.
func (f UnansweredFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Signature is the deterministic cache signature of a normalized filter.
func (f UnansweredFilter) Signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cat=%d|tag=%s|from=%s|to=%s|sort=%s|page=%d|limit=%d",
		f.CategoryID, f.Tag, formatBound(f.From), formatBound(f.To), f.Sort, f.Page, f.Limit)
	return b.String()
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// UnansweredPage is one page of the unanswered queue as stored in the cache.
type UnansweredPage struct {
	Items []Topic `json:"items"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}
