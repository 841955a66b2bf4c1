package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrDiscovery     = errors.New("discovery error")
	ErrExternalTool  = errors.New("external tool error")
	ErrLockBusy      = errors.New("sync already in progress")
	ErrInternal      = errors.New("internal error")
)

// Error is a classified failure. Message is safe to show to API clients.
type Error struct {
	Marker    error
	Component string
	Operation string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	detail := buildDetail(e.Component, e.Operation, e.Message)
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Marker, detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Marker, detail)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	if marker == nil {
		marker = ErrInternal
	}
	return &Error{
		Marker:    marker,
		Component: strings.TrimSpace(component),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// UserMessage returns the client-facing text of err: the Message of the
// outermost *Error, or the busy text for lock contention, or err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var busy *LockBusyError
	if errors.As(err, &busy) {
		return busy.Error()
	}
	var svc *Error
	if errors.As(err, &svc) && svc.Message != "" {
		return svc.Message
	}
	return err.Error()
}

// LockBusyError reports that another run holds the run lock.
type LockBusyError struct {
	HeldFor time.Duration
}

func (e *LockBusyError) Error() string {
	return fmt.Sprintf("%s (held for %s)", ErrLockBusy.Error(), e.HeldFor.Round(time.Second))
}

// Is lets errors.Is(err, ErrLockBusy) match.
func (e *LockBusyError) Is(target error) bool {
	return target == ErrLockBusy
}

// HTTPStatus maps a run-level error to the response status the API returns.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrLockBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
