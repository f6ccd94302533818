package errors

const (
	HttpInternalError      = "internal_error"
	HttpInvalidFilterError = "invalid_filter"
	HttpUpstreamError      = "upstream_fetch_failed"
)

// ErrorResponse is the error response body for portal API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
