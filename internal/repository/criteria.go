package repository

import "gorm.io/gorm"

// Pagination bounds
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListCriteria is the generic filter/sort/paginate specification accepted by
// the list operations.
type ListCriteria struct {
	// Filters maps column name to an exact-match value.
	Filters  map[string]any
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}

// sortableColumns whitelists what may appear in an ORDER BY. SortBy comes
// straight from query parameters and must never reach SQL unchecked.
var sortableColumns = map[string]struct{}{
	"id":         {},
	"identifier": {},
	"type":       {},
	"status":     {},
	"created_at": {},
	"updated_at": {},
}

// Normalize applies pagination defaults, caps the page size, and drops any
// sort column outside the whitelist.
func (c ListCriteria) Normalize() ListCriteria {
	if c.Page < 1 {
		c.Page = DefaultPage
	}
	if c.Limit < 1 {
		c.Limit = DefaultLimit
	}
	if c.Limit > MaxLimit {
		c.Limit = MaxLimit
	}
	if _, ok := sortableColumns[c.SortBy]; !ok {
		c.SortBy = ""
	}
	return c
}

// Offset returns the row offset for the normalized criteria.
func (c ListCriteria) Offset() int {
	return (c.Page - 1) * c.Limit
}

// OrderClause returns the ORDER BY expression, defaulting to id.
func (c ListCriteria) OrderClause() string {
	column := c.SortBy
	if column == "" {
		column = "id"
	}
	if c.SortDesc {
		return column + " DESC"
	}
	return column + " ASC"
}

// applyFilters adds exact-match WHERE clauses for every filter entry.
func applyFilters(db *gorm.DB, c ListCriteria) *gorm.DB {
	for column, value := range c.Filters {
		db = db.Where(column+" = ?", value)
	}
	return db
}
