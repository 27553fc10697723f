package model

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes returned in ErrorResponse.Code
const (
	CodeProviderUnavailable = "provider_unavailable"
	CodeUserRejected        = "user_rejected"
	CodeNotReady            = "not_ready"
	CodeNotConnected        = "not_connected"
	CodeBusy                = "busy"
	CodeFundingFailed       = "funding_failed"
	CodeTransferFailed      = "transfer_failed"
	CodeBadRequest          = "bad_request"
	CodeInternal            = "internal"
)
