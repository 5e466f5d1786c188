package assistant

import "fmt"

// Error codes for turn-level failures. Every failure is recovered before the
// turn boundary; codes decide how much session context survives the failure.
const (
	CodeValidation = "validationError"
	CodeNotFound   = "notFoundError"
	CodeConflict   = "conflictError"
	CodeUpstream   = "upstreamError"
)

type AssistantError struct {
	Code    string
	Message string
}

func (e *AssistantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &AssistantError{Code: CodeValidation, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &AssistantError{Code: CodeNotFound, Message: msg}
}

func NewConflictError(msg string) error {
	return &AssistantError{Code: CodeConflict, Message: msg}
}

func NewUpstreamError(msg string) error {
	return &AssistantError{Code: CodeUpstream, Message: msg}
}
