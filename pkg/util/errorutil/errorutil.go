package errorutil

import (
	"errors"
	"fmt"
	"net/http"
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

// NewInvalidClassifier signals a classifier identifier unknown to the taxonomy.
func NewInvalidClassifier(id string) error {
	return NewDomainError("INVALID_CLASSIFIER", fmt.Sprintf("unknown classifier %q", id), http.StatusBadRequest, map[string]any{
		"classifier_id": id,
	})
}

// NewAmbiguousHierarchy signals a classifier selection spanning several roots.
// Selections are OR-ed together downstream, which has no meaning across
// unrelated hierarchies.
func NewAmbiguousHierarchy(rootIDs []string) error {
	return NewDomainError("AMBIGUOUS_HIERARCHY", "classifier selection spans multiple hierarchies", http.StatusBadRequest, map[string]any{
		"root_ids": rootIDs,
	})
}

// NewInvalidPagination signals non-positive page or page size values.
func NewInvalidPagination(message string, details map[string]any) error {
	return NewDomainError("INVALID_PAGINATION", message, http.StatusBadRequest, details)
}

// NewInvalidGrouping signals an unknown bucket granularity.
func NewInvalidGrouping(granularity string) error {
	return NewDomainError("INVALID_GROUPING", fmt.Sprintf("unknown bucket granularity %q", granularity), http.StatusBadRequest, map[string]any{
		"granularity": granularity,
	})
}

// NewQueryTimeout signals that a store call exceeded its deadline.
func NewQueryTimeout(operation string, err error) error {
	return &DomainError{
		Code:       "QUERY_TIMEOUT",
		Message:    fmt.Sprintf("%s exceeded its deadline", operation),
		HTTPStatus: http.StatusGatewayTimeout,
		Err:        err,
	}
}

// NewStoreUnavailable signals a transport-level failure talking to the store.
// The core never retries; retry policy belongs to the caller.
func NewStoreUnavailable(operation string, err error) error {
	return &DomainError{
		Code:       "STORE_UNAVAILABLE",
		Message:    fmt.Sprintf("store unreachable during %s", operation),
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
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

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeOf returns the DomainError code for err, or INTERNAL_ERROR.
func CodeOf(err error) string {
	return ToDomainError(err).Code
}
