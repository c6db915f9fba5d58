package service

import (
	"context"
	"math"
	"time"

	"github.com/spec-kit/ticket-analytics/internal/repository"
	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

// Pagination is a validated page selector.
type Pagination struct {
	Page     int
	PageSize int
}

// NormalizePagination applies defaults for unset values and rejects
// non-positive ones. Validation happens before any store call.
func NormalizePagination(page, pageSize, defaultPageSize int) (Pagination, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if page < 1 {
		return Pagination{}, apperrors.NewInvalidPagination("page must be a positive integer", map[string]any{"page": page})
	}
	if pageSize < 1 {
		return Pagination{}, apperrors.NewInvalidPagination("page size must be a positive integer", map[string]any{"page_size": pageSize})
	}
	return Pagination{Page: page, PageSize: pageSize}, nil
}

// Offset returns the number of items preceding the selected page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages derives the page count for a result total.
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

// Granularity names a time-bucket size for the intake distribution.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// dateFormat maps the granularity onto the store's $dateToString format.
// Weeks use ISO numbering with the ISO week-year (%G), so dates at a
// calendar year boundary land in the week they actually belong to.
func (g Granularity) dateFormat() (string, error) {
	switch g {
	case GranularityHour:
		return "%Y-%m-%d %H:00", nil
	case GranularityDay:
		return "%Y-%m-%d", nil
	case GranularityWeek:
		return "%G-W%V", nil
	case GranularityMonth:
		return "%Y-%m", nil
	}
	return "", apperrors.NewInvalidGrouping(string(g))
}

// requireWindow validates the mandatory [start, end) window the aggregators
// take. An empty window (start == end) is legal and simply matches nothing.
func requireWindow(start, end time.Time) (repository.TimeWindow, error) {
	if start.IsZero() || end.IsZero() {
		return repository.TimeWindow{}, apperrors.NewValidationError("start_date and end_date are required", nil)
	}
	if end.Before(start) {
		return repository.TimeWindow{}, apperrors.NewValidationError("end_date precedes start_date", map[string]any{
			"start_date": start,
			"end_date":   end,
		})
	}
	return repository.TimeWindow{Start: &start, End: &end}, nil
}

// optionalWindow validates an open-ended window where either bound may be
// absent.
func optionalWindow(start, end *time.Time) (repository.TimeWindow, error) {
	if start != nil && end != nil && end.Before(*start) {
		return repository.TimeWindow{}, apperrors.NewValidationError("end_date precedes start_date", map[string]any{
			"start_date": *start,
			"end_date":   *end,
		})
	}
	return repository.TimeWindow{Start: start, End: end}, nil
}

// withQueryDeadline wraps the store call in a deadline so operations never
// block indefinitely. Expiry surfaces as QUERY_TIMEOUT via the repository
// error mapping.
func withQueryDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// round2 rounds to two decimal places, half away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
