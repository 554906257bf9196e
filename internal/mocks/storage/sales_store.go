package storagemocks

import (
	"context"

	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	"github.com/salesview-lab/salesview/internal/core/aggregation"
	"github.com/salesview-lab/salesview/internal/core/query"
	"github.com/salesview-lab/salesview/internal/core/storage"
	"github.com/stretchr/testify/mock"
)

// SalesStore is a mock type for the storage.SalesStore interface.
type SalesStore struct {
	mock.Mock
}

var _ storage.SalesStore = (*SalesStore)(nil)

// FindSales provides a mock function with given fields: ctx, spec
func (_m *SalesStore) FindSales(ctx context.Context, spec query.Spec) ([]v1.Sale, error) {
	ret := _m.Called(ctx, spec)

	var r0 []v1.Sale
	if rf, ok := ret.Get(0).(func(context.Context, query.Spec) []v1.Sale); ok {
		r0 = rf(ctx, spec)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]v1.Sale)
	}

	return r0, ret.Error(1)
}

// CountSales provides a mock function with given fields: ctx, filter
func (_m *SalesStore) CountSales(ctx context.Context, filter query.Filter) (int64, error) {
	ret := _m.Called(ctx, filter)
	return ret.Get(0).(int64), ret.Error(1)
}

// SummarizeSales provides a mock function with given fields: ctx, filter
func (_m *SalesStore) SummarizeSales(ctx context.Context, filter query.Filter) (aggregation.Summary, error) {
	ret := _m.Called(ctx, filter)
	return ret.Get(0).(aggregation.Summary), ret.Error(1)
}

// DistinctValues provides a mock function with given fields: ctx, field
func (_m *SalesStore) DistinctValues(ctx context.Context, field storage.FacetField) ([]string, error) {
	ret := _m.Called(ctx, field)

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}

	return r0, ret.Error(1)
}

// AgeRange provides a mock function with given fields: ctx
func (_m *SalesStore) AgeRange(ctx context.Context) (aggregation.AgeRange, bool, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(aggregation.AgeRange), ret.Bool(1), ret.Error(2)
}

// InsertSales provides a mock function with given fields: ctx, sales
func (_m *SalesStore) InsertSales(ctx context.Context, sales []v1.Sale) (int64, error) {
	ret := _m.Called(ctx, sales)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, []v1.Sale) int64); ok {
		r0 = rf(ctx, sales)
	} else {
		r0 = ret.Get(0).(int64)
	}

	return r0, ret.Error(1)
}

// NewSalesStore creates a new instance of SalesStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewSalesStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *SalesStore {
	m := &SalesStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
