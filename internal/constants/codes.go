package constants

// Error codes used in API responses.
// These are the machine-readable codes returned in the "error" field.
const (
	// Common error codes
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeRateLimited    = "RATE_LIMITED"

	// Shortener-specific codes
	CodeInvalidLongLink     = "INVALID_LONG_LINK"
	CodeInvalidCustomAlias  = "INVALID_CUSTOM_ALIAS"
	CodeLinkCreationFailed  = "LINK_CREATION_FAILED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"

	// Success codes
	CodeLinkCreated  = "LINK_CREATED"
	CodeLinkResolved = "LINK_RESOLVED"
)
