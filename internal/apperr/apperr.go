// Package apperr defines the error kinds surfaced by the transcription pipeline.
// Every failure carries enough context (paths, commands, attempted candidates)
// for the user to act on it; nothing in the pipeline retries.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	gkerrors "github.com/kbukum/gokit/errors"
)

// Kind is a machine-readable error category.
type Kind = gkerrors.ErrorCode

const (
	KindPrecondition Kind = "PRECONDITION"
	KindExternalTool Kind = "EXTERNAL_TOOL"
	KindEngineInit   Kind = "ENGINE_INIT"
	KindValidation   Kind = "VALIDATION"
	KindStorage      Kind = "STORAGE"
	KindBusy         Kind = "BUSY"
)

// Error is the unified application error type.
type Error = gkerrors.AppError

// None of the kinds are retryable, so Retryable is always false.
func newError(kind Kind, message string, status int) *Error {
	return gkerrors.New(kind, message, status)
}

// Precondition reports a missing input or model artifact.
func Precondition(format string, args ...any) *Error {
	return newError(KindPrecondition, fmt.Sprintf(format, args...), http.StatusPreconditionFailed)
}

// ExternalTool reports a failed or missing external executable.
// The resolved command is always part of the message.
func ExternalTool(command string, cause error) *Error {
	return newError(KindExternalTool, fmt.Sprintf("command %q failed", command), http.StatusBadGateway).
		WithDetail("command", command).
		WithCause(cause)
}

// Attempt is one failed engine initialization.
type Attempt struct {
	Target    string
	Precision string
	Err       error
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s/%s: %v", a.Target, a.Precision, a.Err)
}

// EngineInit reports that every backend candidate failed to initialize.
func EngineInit(backend string, attempts []Attempt) *Error {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		parts = append(parts, a.String())
	}
	msg := fmt.Sprintf("failed to initialize %s engine; attempted: %s", backend, strings.Join(parts, "; "))
	return newError(KindEngineInit, msg, http.StatusServiceUnavailable).
		WithDetails(map[string]any{"backend": backend, "attempts": len(attempts)})
}

// Validation reports an unsupported option value together with the allowed ones.
func Validation(field, value string, allowed []string) *Error {
	sorted := append([]string(nil), allowed...)
	sort.Strings(sorted)
	msg := fmt.Sprintf("unsupported %s %q", field, value)
	if len(sorted) > 0 {
		msg += ". Allowed: " + strings.Join(sorted, ", ")
	}
	return newError(KindValidation, msg, http.StatusBadRequest).
		WithDetails(map[string]any{"field": field, "allowed": sorted})
}

// Invalid reports a malformed argument that has no fixed set of allowed values.
func Invalid(format string, args ...any) *Error {
	return newError(KindValidation, fmt.Sprintf(format, args...), http.StatusBadRequest)
}

// Storage reports that the schema or search index is unavailable.
func Storage(message string, cause error) *Error {
	return newError(KindStorage, message, http.StatusInternalServerError).WithCause(cause)
}

// Busy reports that another pipeline run is already in flight.
func Busy() *Error {
	return newError(KindBusy, "a transcription run is already in progress", http.StatusConflict)
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == kind
	}
	return false
}
