package projection

import (
	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	"github.com/salesview-lab/salesview/internal/core/aggregation"
)

// Pagination describes the page window of a sales query.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// SalesQueryResponse is the body of GET /sales. Sales, Pagination and
// Summary are all computed from the same filter.
type SalesQueryResponse struct {
	Sales      []v1.Sale           `json:"sales"`
	Pagination Pagination          `json:"pagination"`
	Summary    aggregation.Summary `json:"summary"`
}

// FiltersResponse is the body of GET /sales/filters. Every list is sorted and
// never null.
type FiltersResponse struct {
	CustomerRegions   []string             `json:"customerRegions"`
	Genders           []string             `json:"genders"`
	ProductCategories []string             `json:"productCategories"`
	Tags              []string             `json:"tags"`
	PaymentMethods    []string             `json:"paymentMethods"`
	AgeRange          aggregation.AgeRange `json:"ageRange"`
}
