package core

// Error codes for domain errors.
const (
	ErrCodeInvalidPayload   = "invalid_payload"
	ErrCodeInvalidTarget    = "invalid_target"
	ErrCodeReceiverNotFound = "receiver_not_found"
	ErrCodeUserNotFound     = "user_not_found"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeStorageFailure   = "storage_failure"
	ErrCodeBadRequest       = "bad_request"
)

// CoreError wraps a code and human-readable message. Handler failures are
// reported to the originating connection only and never tear it down.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
