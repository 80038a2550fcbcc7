package constants

// Error messages used in API responses.
// These are the human-readable messages returned in the "message" field.
const (
	// Common messages
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "An internal error occurred"
	MsgUnauthorized       = "Unauthorized"
	MsgRateLimited        = "Too many requests, slow down"

	// Shortener-specific messages
	MsgInvalidLongLink     = "Invalid long link (must be an http or https URL)"
	MsgInvalidCustomAlias  = "Invalid custom alias"
	MsgLinkCreationFailed  = "Short link could not be created"
	MsgUpstreamUnavailable = "Link service is unavailable"
)
