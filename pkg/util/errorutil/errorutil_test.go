package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewInvalidClassifier("ghost")
	converted := ToDomainError(original)
	if converted.Code != "INVALID_CLASSIFIER" {
		t.Errorf("Code = %s, want INVALID_CLASSIFIER", converted.Code)
	}
	if converted.HTTPStatus != http.StatusBadRequest {
		t.Errorf("HTTPStatus = %d, want %d", converted.HTTPStatus, http.StatusBadRequest)
	}
}

func TestToDomainErrorWrapsGenericErrors(t *testing.T) {
	converted := ToDomainError(errors.New("boom"))
	if converted.Code != "INTERNAL_ERROR" {
		t.Errorf("Code = %s, want INTERNAL_ERROR", converted.Code)
	}
	if converted.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d, want %d", converted.HTTPStatus, http.StatusInternalServerError)
	}
}

func TestToDomainErrorUnwrapsChains(t *testing.T) {
	wrapped := fmt.Errorf("query failed: %w", NewQueryTimeout("tickets.list_page", context.DeadlineExceeded))
	converted := ToDomainError(wrapped)
	if converted.Code != "QUERY_TIMEOUT" {
		t.Errorf("Code = %s, want QUERY_TIMEOUT", converted.Code)
	}
	if converted.HTTPStatus != http.StatusGatewayTimeout {
		t.Errorf("HTTPStatus = %d, want %d", converted.HTTPStatus, http.StatusGatewayTimeout)
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Error("nil error should convert to nil")
	}
}

func TestCodeOf(t *testing.T) {
	if code := CodeOf(NewAmbiguousHierarchy([]string{"a", "b"})); code != "AMBIGUOUS_HIERARCHY" {
		t.Errorf("CodeOf = %s, want AMBIGUOUS_HIERARCHY", code)
	}
	if code := CodeOf(errors.New("boom")); code != "INTERNAL_ERROR" {
		t.Errorf("CodeOf = %s, want INTERNAL_ERROR", code)
	}
}
