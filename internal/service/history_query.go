package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/repository"
	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

const defaultActionPageSize = 100

// HistoryQueryService answers paginated audit listings.
type HistoryQueryService struct {
	history repository.HistoryRepository
	timeout time.Duration
	logger  *zap.Logger
}

// HistoryQueryDependencies bundles collaborators for the service.
type HistoryQueryDependencies struct {
	HistoryRepo  repository.HistoryRepository
	QueryTimeout time.Duration
	Logger       *zap.Logger
}

// NewHistoryQueryService constructs the service.
func NewHistoryQueryService(deps HistoryQueryDependencies) *HistoryQueryService {
	return &HistoryQueryService{
		history: deps.HistoryRepo,
		timeout: deps.QueryTimeout,
		logger:  deps.Logger,
	}
}

// ActionListInput describes an audit listing request. TicketID is the hex
// representation of the owning ticket's object id. Either window bound may
// be absent; the filter is open-ended on the missing side.
type ActionListInput struct {
	TicketID    *string
	ActionTypes []domain.ActionType
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int
	PageSize    int
}

// ActionPage is one page of enriched audit events plus pagination metadata.
type ActionPage struct {
	Actions    []repository.ActionRecord `json:"actions"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalPages int                       `json:"total_pages"`
}

// ListActions returns audit events sorted by timestamp descending. Each
// event carries the owning ticket's number and current state from a live
// join; the enrichment may differ from the ticket's state when the event
// occurred.
func (s *HistoryQueryService) ListActions(ctx context.Context, input ActionListInput) (*ActionPage, error) {
	pagination, err := NormalizePagination(input.Page, input.PageSize, defaultActionPageSize)
	if err != nil {
		return nil, err
	}
	window, err := optionalWindow(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	for _, actionType := range input.ActionTypes {
		if !actionType.Valid() {
			return nil, apperrors.NewValidationError("unknown action type", map[string]any{"action_type": actionType})
		}
	}

	var ticketID *primitive.ObjectID
	if input.TicketID != nil {
		parsed, err := primitive.ObjectIDFromHex(*input.TicketID)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid ticket id", map[string]any{"ticket_id": *input.TicketID})
		}
		ticketID = &parsed
	}

	query := repository.ActionQuery{
		TicketID:    ticketID,
		ActionTypes: input.ActionTypes,
		Window:      window,
	}

	ctx, cancel := withQueryDeadline(ctx, s.timeout)
	defer cancel()

	actions, total, err := s.history.ListPage(ctx, query, pagination.Offset(), pagination.PageSize)
	if err != nil {
		return nil, err
	}
	if actions == nil {
		actions = []repository.ActionRecord{}
	}

	return &ActionPage{
		Actions:    actions,
		Total:      total,
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalPages: TotalPages(total, pagination.PageSize),
	}, nil
}
