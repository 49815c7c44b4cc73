// Package auth implements the two authentication strategies for BrainSpill:
// local email/password and Google OAuth. Both produce a store.User on
// success; failures carry a machine-checkable code so handlers never match on
// message strings.
package auth

// Error codes for authentication and registration failures.
const (
	CodeUserNotFound    = "user_not_found"
	CodeInvalidPassword = "invalid_password"
	CodeEmailExists     = "email_exists"
	CodeUsernameTaken   = "username_taken"
	CodeAuthFailed      = "auth_failed"
	CodeStorageFailed   = "storage_failed"
)

// Error is a structured authentication error with a code for dispatch and a
// human-readable message for redirect query strings.
type Error struct {
	Code    string
	Message string
	Field   string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a structured auth error.
func NewError(code, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field}
}
