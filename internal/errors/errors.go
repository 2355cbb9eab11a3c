package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewNotFoundError reports a missing game file. The conversation only loads
// games it has itself recorded as selected, so hitting this at runtime is an
// invariant violation rather than a user mistake.
func NewNotFoundError(game string, cause error) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     fmt.Sprintf("game not found: %s", game),
		UserMessage: "Сталася помилка. Спробуй пізніше",
		Severity:    SeverityCritical,
		Retryable:   false,
		cause:       cause,
	}
}

// NewPreconditionError reports an action that needs a selected game when
// there is none. Handlers recover it locally by rerouting to the admin
// prompt; the user never sees it as an error.
func NewPreconditionError(msg string) *AppError {
	return &AppError{
		Code:        "E200",
		Message:     msg,
		UserMessage: "Спочатку створи або загрузи гру",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewMalformedPayloadError reports callback data that does not decode into a
// known action, e.g. a non-integer quest index.
func NewMalformedPayloadError(payload string, cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("malformed callback payload: %q", payload),
		UserMessage: "Сталася помилка. Спробуй пізніше",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       cause,
	}
}

// NewStorageError wraps a quest store I/O failure.
func NewStorageError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E400",
		Message:     fmt.Sprintf("quest store error: %s", underlyingMsg),
		UserMessage: "Тимчасова проблема, спробуй пізніше",
		Severity:    SeverityHigh,
		Retryable:   false,
		cause:       cause,
	}
}

// NewStateError reports a conversation stage that cannot accept the event.
func NewStateError(msg string) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     msg,
		UserMessage: "Операція неможлива зараз",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       nil,
	}
}
