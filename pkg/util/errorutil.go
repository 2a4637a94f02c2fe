package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/virtual-card-service/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// notFoundErrors resolve an identity or PAN to nothing.
var notFoundErrors = []error{
	domain.ErrUserNotFound,
	domain.ErrCardNotFound,
	domain.ErrApplicationNotFound,
	domain.ErrDestinationNotFound,
}

// validationErrors are malformed-input failures.
var validationErrors = []error{
	domain.ErrInvalidAmount,
	domain.ErrInvalidDestination,
	domain.ErrSelfTransfer,
}

// policyErrors are well-formed requests rejected by a business rule.
var policyErrors = []error{
	domain.ErrCardFrozen,
	domain.ErrInsufficientFunds,
	domain.ErrDuplicateApplication,
	domain.ErrApplicationDecided,
	domain.ErrUserHasNoCards,
}

// ToDomainError converts generic errors to DomainError, mapping the
// domain sentinels onto the NotFound/Validation/Policy taxonomy.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return NewDomainError(codeForStatus(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return NewDomainError("NOT_FOUND", sentinel.Error(), http.StatusNotFound, nil)
		}
	}
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return NewDomainError("VALIDATION_FAILED", sentinel.Error(), http.StatusBadRequest, nil)
		}
	}
	for _, sentinel := range policyErrors {
		if errors.Is(err, sentinel) {
			return NewDomainError("POLICY_VIOLATION", sentinel.Error(), http.StatusConflict, nil)
		}
	}
	if errors.Is(err, domain.ErrEmailTaken) {
		return NewDomainError("CONFLICT", err.Error(), http.StatusConflict, nil)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return NewDomainError("UNAUTHORIZED", err.Error(), http.StatusUnauthorized, nil)
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_FAILED"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	default:
		return "ERROR"
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

