package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

// mapStoreError classifies store failures: deadline expiry surfaces as a
// timeout, transport failures as store-unavailable, anything else is
// wrapped with the operation name so callers see where it happened.
func mapStoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return apperrors.NewQueryTimeout(operation, err)
	}
	if mongo.IsNetworkError(err) {
		return apperrors.NewStoreUnavailable(operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}
