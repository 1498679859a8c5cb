package constants

const (
	// ContextKeyUserID is the session and gin context key holding the authenticated user ID
	ContextKeyUserID = "user_id"

	// ContextKeyPrincipal is the gin context key holding the resolved auth.Principal
	ContextKeyPrincipal = "principal"

	// ContextKeyRequestID is the gin context key holding the request ID
	ContextKeyRequestID = "request_id"

	// HeaderRequestID is echoed back on every response
	HeaderRequestID = "X-Request-ID"

	// HeaderTotalCount reports the unpaginated size of a list
	HeaderTotalCount = "X-Total-Count"

	// SessionCookieName is the name of the session cookie
	SessionCookieName = "task_session"
)

const (
	MinPasswordLength = 8
	MaxTitleLength    = 255
	MaxUsernameLength = 150
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"
