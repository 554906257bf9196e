package storage

import (
	"context"
	"errors"

	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	"github.com/salesview-lab/salesview/internal/core/aggregation"
	"github.com/salesview-lab/salesview/internal/core/query"
)

// ErrDuplicate is returned when a sale with the same id already exists.
var ErrDuplicate = errors.New("sale already exists")

// FacetField names a categorical column whose distinct values populate filter controls.
type FacetField string

const (
	FacetCustomerRegion  FacetField = "customerRegion"
	FacetGender          FacetField = "gender"
	FacetProductCategory FacetField = "productCategory"
	FacetPaymentMethod   FacetField = "paymentMethod"
	FacetTags            FacetField = "tags"
)

// FacetFields lists every facet in response order.
var FacetFields = []FacetField{
	FacetCustomerRegion,
	FacetGender,
	FacetProductCategory,
	FacetTags,
	FacetPaymentMethod,
}

// SalesReader serves filtered reads. Every method takes the same predicate
// so fetch, count and summary stay consistent with each other.
type SalesReader interface {
	// FindSales returns one page of matching sales in the requested order.
	FindSales(ctx context.Context, spec query.Spec) ([]v1.Sale, error)

	// CountSales returns the number of sales matching the filter.
	CountSales(ctx context.Context, filter query.Filter) (int64, error)

	// SummarizeSales computes the totals over the matching set in one pass,
	// without materializing it. An empty set yields the zero Summary.
	SummarizeSales(ctx context.Context, filter query.Filter) (aggregation.Summary, error)

	// DistinctValues returns the distinct values of a facet across all sales,
	// unsorted. For FacetTags the values are flattened across records.
	DistinctValues(ctx context.Context, field FacetField) ([]string, error)

	// AgeRange returns the global min/max age; ok is false when no sales exist.
	AgeRange(ctx context.Context) (r aggregation.AgeRange, ok bool, err error)
}

// SalesWriter persists sales.
type SalesWriter interface {
	// InsertSales stores one batch. The batch is all-or-nothing: on error
	// nothing from it is stored and the caller decides whether to continue.
	// IDs and CreatedAt are assigned when empty. The slice belongs to the
	// caller; implementations must copy what they keep.
	InsertSales(ctx context.Context, sales []v1.Sale) (int64, error)
}

// SalesStore is the full store capability.
type SalesStore interface {
	SalesReader
	SalesWriter
}

// BatchResult is the outcome of one bulk insert during ingestion.
type BatchResult struct {
	Number   int    `json:"number"`
	Size     int    `json:"size"`
	Inserted int64  `json:"inserted"`
	Failed   bool   `json:"failed"`
	Error    string `json:"error,omitempty"`
}
