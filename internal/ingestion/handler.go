package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	httperr "github.com/salesview-lab/salesview/internal/core/errors"
	"github.com/salesview-lab/salesview/internal/core/storage"
	"github.com/salesview-lab/salesview/internal/normalize"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgNotArray       = "Data must be an array"
	msgPersistFailed  = "Failed to persist sales"
	msgImportAborted  = "Import aborted"
	msgDuplicateSale  = "Sale already exists"
	msgImported       = "Data imported successfully"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// ImportResponse is the body of a bulk import.
type ImportResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// ImportHandler handles POST /sales/import. The body must be a JSON array of
// raw rows; each row goes through the same normalizer as file imports.
func (s *Service) ImportHandler(c *gin.Context) {
	body, ierr := s.readBody(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	// Reject malformed documents before any batch is written.
	if !json.Valid(body) {
		slog.Warn("[Import] Rejected import payload", "payload_size", len(body))
		writeError(c, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		})
		return
	}

	loader := &Loader{
		BatchSize:  s.batches.JSON,
		Store:      s.store,
		Normalizer: s.normalizer,
	}

	report, err := loader.Load(c.Request.Context(), NewJSONArrayReader(bytes.NewReader(body)))
	if err != nil {
		if errors.Is(err, ErrNotArray) {
			writeError(c, &ingestionError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidJsonError,
				message:    msgNotArray,
			})
			return
		}
		slog.Error("[Import] Bulk import aborted",
			"error", err,
			"imported", report.Imported,
			"failed", report.Failed)
		writeError(c, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgImportAborted,
			details: map[string]interface{}{
				"imported": report.Imported,
				"skipped":  report.Skipped,
				"failed":   report.Failed,
			},
		})
		return
	}

	if report.Batches > 0 && report.FailedBatches == report.Batches {
		writeError(c, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
			details: map[string]interface{}{
				"failed":  report.Failed,
				"skipped": report.Skipped,
			},
		})
		return
	}

	slog.Info("[Import] Bulk import finished",
		"imported", report.Imported,
		"skipped", report.Skipped,
		"failed", report.Failed)

	c.JSON(http.StatusOK, ImportResponse{
		Message: msgImported,
		Count:   report.Imported,
		Skipped: report.Skipped,
		Failed:  report.Failed,
	})
}

// CreateHandler handles POST /sales with a single raw row object.
func (s *Service) CreateHandler(c *gin.Context) {
	body, ierr := s.readBody(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var row normalize.Row
	if err := dec.Decode(&row); err != nil || row == nil || !atEOF(dec) {
		writeError(c, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		})
		return
	}

	res := s.normalizer.Normalize(row)
	if res.Rejected() {
		writeError(c, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationFailedError,
			message:    "Sale rejected: " + string(res.Reason),
			details:    map[string]interface{}{"reason": res.Reason},
		})
		return
	}

	sale := res.Sale
	sale.ID = uuid.NewString()
	sale.CreatedAt = time.Now().UTC()

	if _, err := s.store.InsertSales(c.Request.Context(), []v1.Sale{sale}); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(c, &ingestionError{
				statusCode: http.StatusConflict,
				errorType:  httperr.HttpDuplicateSaleError,
				message:    msgDuplicateSale,
			})
			return
		}
		slog.Error("[Import] Failed to persist sale", "error", err, "customer_id", sale.CustomerID)
		writeError(c, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		})
		return
	}

	slog.Info("[Import] Created sale", "id", sale.ID, "customer_id", sale.CustomerID)
	c.JSON(http.StatusCreated, sale)
}

// readBody reads the request body up to the configured limit.
func (s *Service) readBody(c *gin.Context) ([]byte, *ingestionError) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	body, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(body)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(body), "max", maxBytes)
		return nil, &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpPayloadTooLargeError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	return body, nil
}

// atEOF reports whether nothing but whitespace follows the decoded value.
func atEOF(dec *json.Decoder) bool {
	_, err := dec.Token()
	return errors.Is(err, io.EOF)
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
