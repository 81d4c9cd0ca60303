package constants

// Context keys shared between middleware and handlers
const (
	ContextKeyUserID      = "user_id"
	ContextKeyCurrentUser = "current_user"
	ContextKeyTask        = "task"
)

// SessionName is the cookie name for the session store.
const SessionName = "taskboard_session"

// MinPasswordLength is the minimum accepted password length on signup.
const MinPasswordLength = 8

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ResetTokenTTLMinutes is how long a password reset token stays valid.
const ResetTokenTTLMinutes = 60
