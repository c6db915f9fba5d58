package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/repository"
	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

const defaultTicketPageSize = 50

// TicketQueryService answers paginated case listings.
type TicketQueryService struct {
	tickets  repository.TicketRepository
	resolver ClassifierResolver
	timeout  time.Duration
	logger   *zap.Logger
}

// TicketQueryDependencies bundles collaborators for the service.
type TicketQueryDependencies struct {
	TicketRepo   repository.TicketRepository
	Resolver     ClassifierResolver
	QueryTimeout time.Duration
	Logger       *zap.Logger
}

// NewTicketQueryService constructs the service.
func NewTicketQueryService(deps TicketQueryDependencies) *TicketQueryService {
	return &TicketQueryService{
		tickets:  deps.TicketRepo,
		resolver: deps.Resolver,
		timeout:  deps.QueryTimeout,
		logger:   deps.Logger,
	}
}

// TicketListInput describes a case listing request. Every optional filter
// is an explicit nullable field.
type TicketListInput struct {
	StartDate     *time.Time
	EndDate       *time.Time
	State         *domain.TicketState
	ClassifierIDs []string
	Page          int
	PageSize      int
}

// TicketPage is one page of matching tickets plus pagination metadata.
type TicketPage struct {
	Tickets    []domain.Ticket `json:"tickets"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// ListTickets returns tickets sorted by creation time descending. With both
// window bounds present the listing uses existence-during-window semantics:
// a ticket matches if it was open at any instant within [start, end).
//
// Current-state filtering is a snapshot concept and mixes badly with a
// backward-looking window, so the state filter is suppressed (with a
// warning) whenever both bounds are supplied.
func (s *TicketQueryService) ListTickets(ctx context.Context, input TicketListInput) (*TicketPage, error) {
	pagination, err := NormalizePagination(input.Page, input.PageSize, defaultTicketPageSize)
	if err != nil {
		return nil, err
	}
	if input.State != nil && !input.State.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket state", map[string]any{"state": *input.State})
	}
	window, err := optionalWindow(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	// Resolution hits the store too, so it shares the query deadline.
	ctx, cancel := withQueryDeadline(ctx, s.timeout)
	defer cancel()

	selection, err := s.resolver.Resolve(ctx, input.ClassifierIDs)
	if err != nil {
		return nil, err
	}

	query := repository.TicketQuery{PathAnyOf: selection.NodeIDs}
	switch {
	case window.Closed():
		query.ActiveDuring = &window
		if input.State != nil {
			s.logger.Warn("state filter suppressed for date-ranged listing",
				zap.String("state", string(*input.State)))
		}
	case input.State != nil:
		query.State = input.State
	}

	tickets, total, err := s.tickets.ListPage(ctx, query, pagination.Offset(), pagination.PageSize)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}

	return &TicketPage{
		Tickets:    tickets,
		Total:      total,
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalPages: TotalPages(total, pagination.PageSize),
	}, nil
}
