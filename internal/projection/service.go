package projection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	"github.com/salesview-lab/salesview/internal/core/aggregation"
	"github.com/salesview-lab/salesview/internal/core/query"
	"github.com/salesview-lab/salesview/internal/core/storage"
	"golang.org/x/sync/errgroup"
)

// Service implements the read side: filtered sales pages with their summary,
// and the facet values that populate filter controls.
type Service struct {
	reader  storage.SalesReader
	builder *query.Builder
}

// NewService creates a new projection service.
func NewService(reader storage.SalesReader, builder *query.Builder) *Service {
	if reader == nil {
		panic("projection: reader must not be nil")
	}
	if builder == nil {
		builder = query.NewBuilder(nil, 0, 0)
	}
	return &Service{reader: reader, builder: builder}
}

// QuerySales interprets the parameters and runs fetch, count and summary
// concurrently against the same filter. Any failure fails the whole call;
// no partial result is returned. Invalid parameters wrap query.ErrInvalidQuery.
func (s *Service) QuerySales(ctx context.Context, params query.Params) (*SalesQueryResponse, error) {
	spec, err := s.builder.Build(params)
	if err != nil {
		return nil, err
	}

	var (
		sales   []v1.Sale
		total   int64
		summary aggregation.Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.reader.FindSales(gctx, spec)
		if err != nil {
			return fmt.Errorf("find sales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.reader.CountSales(gctx, spec.Filter)
		if err != nil {
			return fmt.Errorf("count sales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		summary, err = s.reader.SummarizeSales(gctx, spec.Filter)
		if err != nil {
			return fmt.Errorf("summarize sales: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("[Projection] Sales query failed", "error", err)
		return nil, err
	}

	if sales == nil {
		sales = []v1.Sale{}
	}

	return &SalesQueryResponse{
		Sales: sales,
		Pagination: Pagination{
			CurrentPage:  spec.Page.Number,
			TotalPages:   spec.Page.TotalPages(total),
			TotalItems:   total,
			ItemsPerPage: spec.Page.Limit,
		},
		Summary: summary,
	}, nil
}

// Filters resolves every facet across the whole corpus, independent of any
// active filter. The six reads run concurrently.
func (s *Service) Filters(ctx context.Context) (*FiltersResponse, error) {
	values := make(map[storage.FacetField][]string, len(storage.FacetFields))
	results := make([][]string, len(storage.FacetFields))
	var ageRange aggregation.AgeRange

	g, gctx := errgroup.WithContext(ctx)
	for i, field := range storage.FacetFields {
		g.Go(func() error {
			vals, err := s.reader.DistinctValues(gctx, field)
			if err != nil {
				return fmt.Errorf("distinct %s: %w", field, err)
			}
			results[i] = vals
			return nil
		})
	}
	g.Go(func() error {
		r, ok, err := s.reader.AgeRange(gctx)
		if err != nil {
			return fmt.Errorf("age range: %w", err)
		}
		if !ok {
			r = aggregation.DefaultAgeRange
		}
		ageRange = r
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("[Projection] Filter facets query failed", "error", err)
		return nil, err
	}

	for i, field := range storage.FacetFields {
		values[field] = sortedFacet(results[i], field == storage.FacetTags)
	}

	return &FiltersResponse{
		CustomerRegions:   values[storage.FacetCustomerRegion],
		Genders:           values[storage.FacetGender],
		ProductCategories: values[storage.FacetProductCategory],
		Tags:              values[storage.FacetTags],
		PaymentMethods:    values[storage.FacetPaymentMethod],
		AgeRange:          ageRange,
	}, nil
}

// sortedFacet dedupes and sorts facet values. Empty values are dropped when
// dropEmpty is set.
func sortedFacet(vals []string, dropEmpty bool) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if dropEmpty && v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
