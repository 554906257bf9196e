package ingestion

import (
	"context"
	"errors"
	"fmt"
	"testing"

	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	"github.com/salesview-lab/salesview/internal/core/storage"
	storagemocks "github.com/salesview-lab/salesview/internal/mocks/storage"
	"github.com/salesview-lab/salesview/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validRows(n int) []normalize.Row {
	rows := make([]normalize.Row, n)
	for i := range rows {
		rows[i] = normalize.Row{
			"Customer ID":   fmt.Sprintf("C%d", i),
			"Customer Name": "Jane",
			"Product ID":    "P1",
			"Date":          "2024-01-05",
		}
	}
	return rows
}

func batchOf(n int) interface{} {
	return mock.MatchedBy(func(s []v1.Sale) bool { return len(s) == n })
}

// retainingWriter keeps every batch slice it receives.
type retainingWriter struct {
	batches [][]v1.Sale
}

func (w *retainingWriter) InsertSales(_ context.Context, sales []v1.Sale) (int64, error) {
	w.batches = append(w.batches, sales)
	return int64(len(sales)), nil
}

func TestLoader_BatchesAreNotReused(t *testing.T) {
	w := &retainingWriter{}
	loader := &Loader{BatchSize: 2, Store: w, Normalizer: normalize.NewNormalizer(nil, nil)}

	report, err := loader.Load(context.Background(), NewSliceReader(validRows(5)))
	require.NoError(t, err)
	require.Equal(t, int64(5), report.Imported)

	require.Len(t, w.batches, 3)
	var ids []string
	for _, b := range w.batches {
		for _, s := range b {
			ids = append(ids, s.CustomerID)
		}
	}
	assert.Equal(t, []string{"C0", "C1", "C2", "C3", "C4"}, ids)
}

func TestLoader_ContinuesPastFailedBatch(t *testing.T) {
	store := storagemocks.NewSalesStore(t)
	store.On("InsertSales", mock.Anything, batchOf(500)).Return(int64(500), nil).Once()
	store.On("InsertSales", mock.Anything, batchOf(500)).Return(int64(0), errors.New("write timeout")).Once()
	store.On("InsertSales", mock.Anything, batchOf(200)).Return(int64(200), nil).Once()

	var results []storage.BatchResult
	loader := &Loader{
		BatchSize:  500,
		Store:      store,
		Normalizer: normalize.NewNormalizer(nil, nil),
		OnBatch: func(r storage.BatchResult, _ Report) {
			results = append(results, r)
		},
	}

	report, err := loader.Load(context.Background(), NewSliceReader(validRows(1200)))
	require.NoError(t, err)

	assert.Equal(t, 1200, report.RowsSeen)
	assert.Equal(t, int64(700), report.Imported)
	assert.Equal(t, 500, report.Failed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, 1, report.FailedBatches)

	require.Len(t, results, 3)
	assert.False(t, results[0].Failed)
	assert.True(t, results[1].Failed)
	assert.Equal(t, "write timeout", results[1].Error)
	assert.Equal(t, 200, results[2].Size)
	store.AssertNumberOfCalls(t, "InsertSales", 3)
}

func TestLoader_CountsRejectedRows(t *testing.T) {
	store := storagemocks.NewSalesStore(t)
	store.On("InsertSales", mock.Anything, batchOf(2)).Return(int64(2), nil).Once()

	rows := validRows(2)
	rows = append(rows,
		normalize.Row{"Customer Name": "Jane", "Product ID": "P1", "Date": "2024-01-05"},
		normalize.Row{"Customer ID": "C9", "Customer Name": "Jane", "Product ID": "P1", "Date": "someday"},
	)

	loader := &Loader{BatchSize: 10, Store: store, Normalizer: normalize.NewNormalizer(nil, nil)}
	report, err := loader.Load(context.Background(), NewSliceReader(rows))
	require.NoError(t, err)

	assert.Equal(t, 4, report.RowsSeen)
	assert.Equal(t, int64(2), report.Imported)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.SkipReasons[normalize.ReasonMissingCustomerID])
	assert.Equal(t, 1, report.SkipReasons[normalize.ReasonInvalidDate])
}

func TestLoader_NoRowsNoInsert(t *testing.T) {
	store := storagemocks.NewSalesStore(t)

	loader := &Loader{BatchSize: 10, Store: store}
	report, err := loader.Load(context.Background(), NewSliceReader(nil))
	require.NoError(t, err)
	assert.Zero(t, report.Batches)
	store.AssertNotCalled(t, "InsertSales", mock.Anything, mock.Anything)
}

type failingReader struct {
	rows []normalize.Row
	err  error
}

func (r *failingReader) Read() (normalize.Row, error) {
	if len(r.rows) == 0 {
		return nil, r.err
	}
	row := r.rows[0]
	r.rows = r.rows[1:]
	return row, nil
}

func TestLoader_ReaderErrorReturnsPartialReport(t *testing.T) {
	store := storagemocks.NewSalesStore(t)
	store.On("InsertSales", mock.Anything, batchOf(2)).Return(int64(2), nil).Once()

	readErr := errors.New("disk gone")
	loader := &Loader{BatchSize: 2, Store: store}
	report, err := loader.Load(context.Background(), &failingReader{rows: validRows(3), err: readErr})

	require.ErrorIs(t, err, readErr)
	assert.Equal(t, int64(2), report.Imported)
	assert.Equal(t, 3, report.RowsSeen)
}

func TestLoader_StopsOnCancelledContext(t *testing.T) {
	store := storagemocks.NewSalesStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := &Loader{BatchSize: 2, Store: store}
	_, err := loader.Load(ctx, NewSliceReader(validRows(5)))
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoader_ReportsMalformedFromReader(t *testing.T) {
	store := storagemocks.NewSalesStore(t)

	r := NewJSONArrayReader(stringsReader(`[1, 2, {"customerId": ""}]`))
	loader := &Loader{BatchSize: 2, Store: store}
	report, err := loader.Load(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Malformed)
	assert.Equal(t, 1, report.Skipped)
}
