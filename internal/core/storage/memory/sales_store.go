// Package memory is an in-process SalesStore. It backs `database.type: memory`
// for local runs and serves as the reference store in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	"github.com/salesview-lab/salesview/internal/core/aggregation"
	"github.com/salesview-lab/salesview/internal/core/query"
	"github.com/salesview-lab/salesview/internal/core/storage"
)

// SalesStore keeps sales in insertion order behind a RWMutex.
type SalesStore struct {
	mu    sync.RWMutex
	sales []v1.Sale
	ids   map[string]struct{}
	nowFn func() time.Time
}

// NewSalesStore creates an empty store.
func NewSalesStore() *SalesStore {
	return &SalesStore{
		ids: make(map[string]struct{}),
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// InsertSales stores the batch atomically. A duplicate id rejects the whole batch.
func (s *SalesStore) InsertSales(ctx context.Context, sales []v1.Sale) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]v1.Sale, len(sales))
	seen := make(map[string]struct{}, len(sales))
	now := s.nowFn()
	for i, sale := range sales {
		if err := sale.Validate(); err != nil {
			return 0, fmt.Errorf("sale %d: %w", i, err)
		}
		if sale.ID == "" {
			sale.ID = uuid.NewString()
		}
		if _, exists := s.ids[sale.ID]; exists {
			return 0, fmt.Errorf("sale %s: %w", sale.ID, storage.ErrDuplicate)
		}
		if _, exists := seen[sale.ID]; exists {
			return 0, fmt.Errorf("sale %s: %w", sale.ID, storage.ErrDuplicate)
		}
		seen[sale.ID] = struct{}{}
		if sale.CreatedAt.IsZero() {
			sale.CreatedAt = now
		}
		sale.Tags = append([]string(nil), sale.Tags...)
		batch[i] = sale
	}

	for _, sale := range batch {
		s.ids[sale.ID] = struct{}{}
	}
	s.sales = append(s.sales, batch...)
	return int64(len(batch)), nil
}

// FindSales filters, sorts and pages. Ties are broken by id so pages are stable.
func (s *SalesStore) FindSales(ctx context.Context, spec query.Spec) ([]v1.Sale, error) {
	s.mu.RLock()
	var matched []v1.Sale
	for i := range s.sales {
		if spec.Filter.Matches(&s.sales[i]) {
			matched = append(matched, s.sales[i])
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return less(&matched[i], &matched[j], spec.Sort)
	})

	offset := spec.Page.Offset()
	if offset < 0 || offset >= len(matched) {
		return []v1.Sale{}, nil
	}
	end := len(matched)
	if spec.Page.Limit > 0 && offset+spec.Page.Limit < end {
		end = offset + spec.Page.Limit
	}

	page := make([]v1.Sale, end-offset)
	copy(page, matched[offset:end])
	return page, nil
}

func (s *SalesStore) CountSales(ctx context.Context, filter query.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for i := range s.sales {
		if filter.Matches(&s.sales[i]) {
			n++
		}
	}
	return n, nil
}

// SummarizeSales folds matching sales straight into the accumulator.
func (s *SalesStore) SummarizeSales(ctx context.Context, filter query.Filter) (aggregation.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc := aggregation.NewSummaryAccumulator()
	for i := range s.sales {
		if filter.Matches(&s.sales[i]) {
			acc.Add(&s.sales[i])
		}
	}
	return acc.Summary(), nil
}

func (s *SalesStore) DistinctValues(ctx context.Context, field storage.FacetField) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[string]struct{})
	for i := range s.sales {
		sale := &s.sales[i]
		switch field {
		case storage.FacetCustomerRegion:
			set[sale.CustomerRegion] = struct{}{}
		case storage.FacetGender:
			set[sale.Gender] = struct{}{}
		case storage.FacetProductCategory:
			set[sale.ProductCategory] = struct{}{}
		case storage.FacetPaymentMethod:
			set[sale.PaymentMethod] = struct{}{}
		case storage.FacetTags:
			for _, tag := range sale.Tags {
				set[tag] = struct{}{}
			}
		default:
			return nil, fmt.Errorf("unknown facet field %q", field)
		}
	}

	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	return values, nil
}

func (s *SalesStore) AgeRange(ctx context.Context) (aggregation.AgeRange, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.sales) == 0 {
		return aggregation.DefaultAgeRange, false, nil
	}
	acc := aggregation.NewAgeRangeAccumulator()
	for i := range s.sales {
		acc.Add(s.sales[i].Age)
	}
	return acc.Range(), true, nil
}

// Len returns the number of stored sales.
func (s *SalesStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sales)
}

func less(a, b *v1.Sale, order query.Sort) bool {
	var cmp int
	switch order.Field {
	case query.SortByQuantity:
		cmp = compareInt(a.Quantity, b.Quantity)
	case query.SortByCustomerName:
		cmp = compareString(a.CustomerName, b.CustomerName)
	default:
		cmp = a.Date.Compare(b.Date)
	}
	if cmp == 0 {
		return a.ID < b.ID
	}
	if order.Desc {
		return cmp > 0
	}
	return cmp < 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
