package service

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

/* =========================================================
   Error taxonomy

   Every failed operation returns one of these kinds so callers
   always know whether a retry can help. Gateway errors are the
   only retryable kind; the engine itself never auto-retries.
========================================================= */

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindGateway    ErrorKind = "gateway"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether calling again later can succeed.
func (e *Error) Retryable() bool { return e.Kind == KindGateway }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func ValidationDetails(message string, details []string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func GatewayErr(err error, format string, args ...any) *Error {
	return &Error{Kind: KindGateway, Message: fmt.Sprintf(format, args...), Err: err}
}

func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// HTTPStatus maps the taxonomy onto the response codes the API contract
// promises: 400 validation, 404 unknown, 409 conflict, 502 upstream.
func HTTPStatus(err error) int {
	switch kind, _ := KindOf(err); kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindGateway:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
