package gamedto

// Error codes used across the coordinator boundary.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeIllegalState = "ILLEGAL_STATE"
	CodeConflict     = "CONFLICT"
	CodeTransient    = "TRANSIENT"
)

type DomainError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "game service error"
}

func NotFound(msg string) error     { return DomainError{Code: CodeNotFound, Message: msg} }
func Unauthorized(msg string) error { return DomainError{Code: CodeUnauthorized, Message: msg} }
func IllegalState(msg string) error { return DomainError{Code: CodeIllegalState, Message: msg} }
func Conflict(msg string) error     { return DomainError{Code: CodeConflict, Message: msg} }

// Transient wraps store/catalog availability failures that are safe to retry.
func Transient(msg string) error {
	return DomainError{Code: CodeTransient, Message: msg, Retryable: true}
}
