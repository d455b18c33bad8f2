// Package errors defines the typed errors shared by vitrine packages and the
// suggestion-bearing errors surfaced by the CLI.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeLifecycle  ErrorType = "lifecycle"
	ErrorTypeInternal   ErrorType = "internal"
)

// VitrineError is a structured error type with context.
type VitrineError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	FilePath    string
	Line        int
	Recoverable bool
}

// Error implements the error interface.
func (e *VitrineError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *VitrineError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a VitrineError of the same type and code.
func (e *VitrineError) Is(target error) bool {
	var t *VitrineError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *VitrineError) WithContext(key string, value interface{}) *VitrineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *VitrineError) WithLocation(filePath string, line int) *VitrineError {
	e.FilePath = filePath
	e.Line = line

	return e
}

// WithComponent adds component context.
func (e *VitrineError) WithComponent(component string) *VitrineError {
	e.Component = component

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *VitrineError {
	return &VitrineError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *VitrineError {
	return &VitrineError{
		Type:    ErrorTypeSecurity,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *VitrineError {
	return &VitrineError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewNetworkError creates a transport error. Network errors are per-client
// and therefore recoverable for the server as a whole.
func NewNetworkError(code, message string, cause error) *VitrineError {
	return &VitrineError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *VitrineError {
	return &VitrineError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewLifecycleError reports misuse of a component's lifecycle, such as
// operating on something already torn down. These are programmer errors
// that callers guard against rather than surface to users.
func NewLifecycleError(code, message string) *VitrineError {
	return &VitrineError{
		Type:        ErrorTypeLifecycle,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *VitrineError {
	return &VitrineError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// As is errors.As, re-exported so callers importing this package need not
// alias the standard library.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ve *VitrineError
	if errors.As(err, &ve) {
		return ve.Recoverable
	}

	return false
}

// IsType reports whether err is a VitrineError of the given type.
func IsType(err error, errType ErrorType) bool {
	var ve *VitrineError
	if errors.As(err, &ve) {
		return ve.Type == errType
	}

	return false
}

// HasCode reports whether err is a VitrineError carrying code.
func HasCode(err error, code string) bool {
	var ve *VitrineError
	if errors.As(err, &ve) {
		return ve.Code == code
	}

	return false
}

// Logger is the subset of logging.Logger the handler needs.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// ErrorHandler routes errors to the logger at a severity chosen from their type.
type ErrorHandler struct {
	logger Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err. Recoverable errors are warnings, the rest are errors.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var ve *VitrineError
	if !errors.As(err, &ve) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	fields := []interface{}{"type", string(ve.Type), "code", ve.Code}
	if ve.Component != "" {
		fields = append(fields, "component", ve.Component)
	}
	for k, v := range ve.Context {
		fields = append(fields, k, v)
	}

	if ve.Recoverable {
		h.logger.Warn(ctx, err, ve.Message, fields...)
	} else {
		h.logger.Error(ctx, err, ve.Message, fields...)
	}
}

// Common error codes.
const (
	ErrCodeInvalidPath        = "ERR_INVALID_PATH"
	ErrCodePathTraversal      = "ERR_PATH_TRAVERSAL"
	ErrCodeInvalidOrigin      = "ERR_INVALID_ORIGIN"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound       = "ERR_FILE_NOT_FOUND"
	ErrCodeContentInvalid     = "ERR_CONTENT_INVALID"
	ErrCodeUnknownStimulus    = "ERR_UNKNOWN_STIMULUS"
	ErrCodeMessageMalformed   = "ERR_MESSAGE_MALFORMED"
	ErrCodeCarouselTornDown   = "CAROUSEL_TORN_DOWN"
	ErrCodeCarouselInitTwice  = "CAROUSEL_ALREADY_INITIALIZED"
	ErrCodeCarouselNotReady   = "CAROUSEL_NOT_INITIALIZED"
	ErrCodeAdapterClosed      = "ADAPTER_CLOSED"
	ErrCodeAccessibilityCheck = "ERR_A11Y_CONTRACT"
	ErrCodeListenFailed       = "ERR_LISTEN_FAILED"
	ErrCodeServerUnhealthy    = "ERR_SERVER_UNHEALTHY"
	ErrCodeRenderFailed       = "ERR_RENDER_FAILED"
)
