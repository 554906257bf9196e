package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	httperr "github.com/salesview-lab/salesview/internal/core/errors"
	"github.com/salesview-lab/salesview/internal/core/storage"
	"github.com/salesview-lab/salesview/internal/core/storage/memory"
	storagemocks "github.com/salesview-lab/salesview/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/api"))
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestImportHandler_Success(t *testing.T) {
	store := memory.NewSalesStore()
	r := newRouter(newTestService(store))

	body := `[
		{"Customer ID":"C1","Customer Name":"Jane","Product ID":"P1","Date":"2024-01-05"},
		{"customerId":"C2","customerName":"Bob","productId":"P2","date":"2024-01-06"},
		{"customerId":"C3","customerName":"Ann","productId":"P3","date":"2024-01-07"},
		{"customerId":"","customerName":"Nobody","productId":"P4","date":"2024-01-07"}
	]`

	resp := post(r, "/api/sales/import", body)
	require.Equal(t, http.StatusOK, resp.Code)

	var result ImportResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "Data imported successfully", result.Message)
	require.Equal(t, int64(3), result.Count)
	require.Equal(t, 1, result.Skipped)
	require.Equal(t, 0, result.Failed)
	require.Equal(t, 3, store.Len())
}

func TestImportHandler_NotArray(t *testing.T) {
	r := newRouter(newTestService(memory.NewSalesStore()))

	resp := post(r, "/api/sales/import", `{"customerId":"C1"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var result httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, httperr.HttpInvalidJsonError, result.ErrorType)
	require.Equal(t, "Data must be an array", result.Message)
}

func TestImportHandler_InvalidJSON(t *testing.T) {
	r := newRouter(newTestService(memory.NewSalesStore()))

	resp := post(r, "/api/sales/import", `[{"customerId":`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestImportHandler_MalformedTrailingElementStoresNothing(t *testing.T) {
	store := memory.NewSalesStore()
	r := newRouter(newTestService(store))

	body := `[
		{"customerId":"C1","customerName":"Jane","productId":"P1","date":"2024-01-05"},
		{"customerId":"C2","customerName":"Bob","productId":"P2","date":"2024-01-06"},
		{"customerId":"C3","customerName":"Ann","productId":"P3","date":"2024-01-07"},
		{oops}
	]`

	resp := post(r, "/api/sales/import", body)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var result httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, httperr.HttpInvalidJsonError, result.ErrorType)
	require.Equal(t, 0, store.Len())
}

func TestImportHandler_CancelledRequestIsServerError(t *testing.T) {
	store := memory.NewSalesStore()
	r := newRouter(newTestService(store))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/sales/import",
		strings.NewReader(`[{"customerId":"C1","customerName":"Jane","productId":"P1","date":"2024-01-05"}]`)).WithContext(ctx)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)

	var result httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, httperr.HttpInternalError, result.ErrorType)
	require.Equal(t, 0, store.Len())
}

func TestImportHandler_AllBatchesFailed(t *testing.T) {
	store := storagemocks.NewSalesStore(t)
	store.On("InsertSales", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	r := newRouter(newTestService(store))
	resp := post(r, "/api/sales/import", `[{"customerId":"C1","customerName":"Jane","productId":"P1","date":"2024-01-05"}]`)
	require.Equal(t, http.StatusInternalServerError, resp.Code)

	var result httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, httperr.HttpInternalError, result.ErrorType)
}

func TestImportHandler_BodyTooLarge(t *testing.T) {
	r := newRouter(newTestService(memory.NewSalesStore()))

	big := "[" + strings.Repeat(" ", 1024*1024+1) + "]"
	resp := post(r, "/api/sales/import", big)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestCreateHandler_Success(t *testing.T) {
	store := memory.NewSalesStore()
	r := newRouter(newTestService(store))

	resp := post(r, "/api/sales", `{"Customer ID":"C1","Customer Name":"Jane","Product ID":"P1","Date":"2024-01-05","Phone Number":9876543210}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	var sale v1.Sale
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sale))
	require.NotEmpty(t, sale.ID)
	require.Equal(t, "C1", sale.CustomerID)
	require.Equal(t, "9876543210", sale.PhoneNumber)
	require.Equal(t, 1, store.Len())
}

func TestCreateHandler_ValidationFailed(t *testing.T) {
	store := storagemocks.NewSalesStore(t)
	r := newRouter(newTestService(store))

	resp := post(r, "/api/sales", `{"Customer ID":"","Customer Name":"Jane","Product ID":"P1","Date":"2024-01-05"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var result httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, httperr.HttpValidationFailedError, result.ErrorType)
	require.Contains(t, result.Message, "missing_customer_id")
}

func TestCreateHandler_Duplicate(t *testing.T) {
	store := storagemocks.NewSalesStore(t)
	store.On("InsertSales", mock.Anything, mock.Anything).Return(int64(0), storage.ErrDuplicate).Once()

	r := newRouter(newTestService(store))
	resp := post(r, "/api/sales", `{"customerId":"C1","customerName":"Jane","productId":"P1","date":"2024-01-05"}`)
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestCreateHandler_TrailingInputRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "garbage after object", body: `{"customerId":"C1","customerName":"Jane","productId":"P1","date":"2024-01-05"}garbage`},
		{name: "second object", body: `{"customerId":"C1","customerName":"Jane","productId":"P1","date":"2024-01-05"} {}`},
		{name: "stray closing brace", body: `{"customerId":"C1","customerName":"Jane","productId":"P1","date":"2024-01-05"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewSalesStore()
			r := newRouter(newTestService(store))

			resp := post(r, "/api/sales", tt.body)
			require.Equal(t, http.StatusBadRequest, resp.Code)
			require.Equal(t, 0, store.Len())
		})
	}
}

func TestCreateHandler_TrailingWhitespaceAccepted(t *testing.T) {
	store := memory.NewSalesStore()
	r := newRouter(newTestService(store))

	resp := post(r, "/api/sales", "{\"customerId\":\"C1\",\"customerName\":\"Jane\",\"productId\":\"P1\",\"date\":\"2024-01-05\"}\n  ")
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Equal(t, 1, store.Len())
}

func TestCreateHandler_InvalidJSON(t *testing.T) {
	r := newRouter(newTestService(memory.NewSalesStore()))

	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewReader([]byte("not json")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
