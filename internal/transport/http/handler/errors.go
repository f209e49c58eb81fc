package handler

const (
	errInternalServer     = "Internal server error"
	errUserNotFound       = "User not found"
	errInvalidCredentials = "Invalid credentials"
	errDuplicateEmail     = "User already exists"
	errInvalidGoogleToken = "Invalid Google token"
	errUpstreamTimeout    = "Upstream service timed out"
	errContentNotFound    = "Content not found"
	errInvalidContentID   = "Invalid content id"
	errGenerationFailed   = "Failed to generate content"
	errPasswordTooLong    = "Password must be at most 72 bytes"
	errBlankTopic         = "Topic must not be blank"
)
