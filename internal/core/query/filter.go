// Package query holds the read request shared by every sales read:
// the predicate (Filter), the ordering (Sort) and the page window (Page).
package query

import (
	"strings"
	"time"

	v1 "github.com/salesview-lab/salesview/internal/api/v1"
)

// SortField names one of the fixed sortable columns.
type SortField string

const (
	SortByDate         SortField = "date"
	SortByQuantity     SortField = "quantity"
	SortByCustomerName SortField = "customerName"
)

// Filter is the predicate applied uniformly to fetch, count and summary.
// Empty slices and nil bounds mean "no constraint".
type Filter struct {
	// Search matches customerName OR phoneNumber as a case-insensitive substring.
	Search string

	CustomerRegions   []string
	Genders           []string
	ProductCategories []string
	PaymentMethods    []string

	// Tags matches when the record shares at least one tag with the set.
	Tags []string

	// Inclusive bounds.
	AgeMin   *int
	AgeMax   *int
	DateFrom *time.Time
	DateTo   *time.Time
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return f.Search == "" &&
		len(f.CustomerRegions) == 0 &&
		len(f.Genders) == 0 &&
		len(f.ProductCategories) == 0 &&
		len(f.PaymentMethods) == 0 &&
		len(f.Tags) == 0 &&
		f.AgeMin == nil && f.AgeMax == nil &&
		f.DateFrom == nil && f.DateTo == nil
}

// Matches evaluates the predicate against one sale in process.
// Stores that cannot push the predicate down use this; it is also the
// reference the SQL translation is tested against.
func (f Filter) Matches(s *v1.Sale) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(s.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(s.PhoneNumber), needle) {
			return false
		}
	}

	if !memberOf(f.CustomerRegions, s.CustomerRegion) ||
		!memberOf(f.Genders, s.Gender) ||
		!memberOf(f.ProductCategories, s.ProductCategory) ||
		!memberOf(f.PaymentMethods, s.PaymentMethod) {
		return false
	}

	if len(f.Tags) > 0 && !intersects(f.Tags, s.Tags) {
		return false
	}

	if f.AgeMin != nil && s.Age < *f.AgeMin {
		return false
	}
	if f.AgeMax != nil && s.Age > *f.AgeMax {
		return false
	}

	if f.DateFrom != nil && s.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && s.Date.After(*f.DateTo) {
		return false
	}

	return true
}

func memberOf(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, candidate := range set {
		if candidate == v {
			return true
		}
	}
	return false
}

func intersects(set, values []string) bool {
	for _, v := range values {
		for _, candidate := range set {
			if candidate == v {
				return true
			}
		}
	}
	return false
}

// Sort is the single-key ordering of a page.
type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort is newest first.
var DefaultSort = Sort{Field: SortByDate, Desc: true}

// Page is a 1-based page window.
type Page struct {
	Number int
	Limit  int
}

// Offset is the number of matching records skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages is ceil(total/limit).
func (p Page) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// Spec is a complete read: predicate, ordering and window.
type Spec struct {
	Filter Filter
	Sort   Sort
	Page   Page
}
