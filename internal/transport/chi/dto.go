package chi

// ErrorCode is the machine-readable error classifier in error bodies.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnknownModel     ErrorCode = "unknown_model"
	ErrorCodeUnknownDomain    ErrorCode = "unknown_domain"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeRateLimited      ErrorCode = "rate_limited"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /anisearchmodel/{domain}.
type SearchRequest struct {
	Model       string `json:"model"`
	Description string `json:"description"`
}

// SearchResultItem is one ranked catalogue entry.
type SearchResultItem struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Synopsis   string  `json:"synopsis"`
	Similarity float64 `json:"similarity"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
