package store

import (
	"fmt"
	"time"
)

// SortKey enumerates the task list orderings. A leading dash means
// descending, mirroring the API's ordering parameter.
type SortKey string

const (
	SortCategoryAsc   SortKey = "category"
	SortCategoryDesc  SortKey = "-category"
	SortDateAsc       SortKey = "date"
	SortDateDesc      SortKey = "-date"
	SortCompletedAsc  SortKey = "is_completed"
	SortCompletedDesc SortKey = "-is_completed"
)

// DefaultSort orders tasks by category slug ascending.
const DefaultSort = SortCategoryAsc

// ParseSortKey validates an ordering parameter. Empty input selects the
// default ordering.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return DefaultSort, nil
	}
	switch k := SortKey(s); k {
	case SortCategoryAsc, SortCategoryDesc, SortDateAsc, SortDateDesc, SortCompletedAsc, SortCompletedDesc:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Pagination parameters for task listing.
const (
	DefaultPageSize = 10
	MaxPageSize     = 20
)

// Page is a 1-based pagination window. A Size of 0 disables pagination;
// only internal callers (the grouped home view) use that.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page window to valid values. A non-positive page
// number becomes 1; a requested size is capped at MaxPageSize, and a
// negative size falls back to the default.
func (p *Page) Normalize() {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
}

// Offset returns the row offset for the window.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TaskCriteria is the criteria bag for task list queries. Every field is
// optional; absent fields do not constrain the result. All predicates
// are ANDed together on top of the mandatory owner scope.
type TaskCriteria struct {
	// CategorySlugs restricts to tasks whose category slug is in the
	// list (exact membership, supports multi-category views).
	CategorySlugs []string

	// TagNames restricts to tasks carrying at least one of the named
	// tags. Matching through the join table can produce duplicate rows;
	// the store de-duplicates the result.
	TagNames []string

	// Date filters: exact match, inclusive lower bound, inclusive upper
	// bound. After and Before combine into a closed range.
	Date       *time.Time
	DateAfter  *time.Time
	DateBefore *time.Time

	// IsCompleted filters on completion state when set.
	IsCompleted *bool

	// Search is a case-insensitive substring match against name OR
	// description.
	Search string

	// Sort selects the ordering; zero value means DefaultSort.
	Sort SortKey

	// Page is the pagination window; zero Size returns everything.
	Page Page
}
