package tools

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/usestring/promptlib-mcp/internal/compose"
	"github.com/usestring/promptlib-mcp/internal/interpret"
	"github.com/usestring/promptlib-mcp/internal/render"
	"github.com/usestring/promptlib-mcp/internal/rules"
	"github.com/usestring/promptlib-mcp/internal/schema"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeSchemaInvalid  = "SCHEMA_INVALID"
	ErrCodeConflict       = "INTERPRETATION_CONFLICT"
	ErrCodeComposition    = "COMPOSITION_FAILED"
	ErrCodeRenderContract = "RENDER_CONTRACT"
	ErrCodeRulesInvalid   = "RULES_INVALID"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapError converts a component error into a coded error. Errors that are
// already coded pass through; unknown errors become INVALID_INPUT.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var (
		coded *CodedError
		serr  *schema.SchemaError
		ierr  *interpret.InterpretationError
		cerr  *compose.CompositionError
		rerr  *render.RenderError
		lerr  *rules.RuleLoadError
	)
	switch {
	case errors.As(err, &coded):
		return coded
	case errors.As(err, &serr):
		coded = &CodedError{Code: ErrCodeSchemaInvalid, Message: "schema cannot be indexed", Cause: err}
	case errors.As(err, &ierr):
		coded = &CodedError{Code: ErrCodeConflict, Message: fmt.Sprintf("%d conflict(s) in request", len(ierr.Conflicts)), Cause: err}
	case errors.As(err, &cerr):
		coded = &CodedError{Code: ErrCodeComposition, Message: "template cannot be composed", Cause: err}
	case errors.As(err, &rerr):
		coded = &CodedError{Code: ErrCodeRenderContract, Message: "data does not fit the template", Cause: err}
	case errors.As(err, &lerr):
		coded = &CodedError{Code: ErrCodeRulesInvalid, Message: "rules cannot be loaded", Cause: err}
	case errors.Is(err, interpret.ErrUnsupportedInput):
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: "unsupported request shape", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: err.Error()}
	}

	slog.Warn("tool error",
		slog.String("code", coded.Code),
		slog.String("error", err.Error()),
	)
	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
