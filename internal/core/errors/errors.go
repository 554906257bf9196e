package errors

const (
	HttpInternalError         = "internal_error"
	HttpInvalidJsonError      = "invalid_json"
	HttpInvalidQueryError     = "invalid_query"
	HttpValidationFailedError = "validation_failed"
	HttpDuplicateSaleError    = "duplicate_sale"
	HttpPayloadTooLargeError  = "payload_too_large"
)

// ErrorResponse is the error response body for every API error.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
