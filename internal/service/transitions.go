package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/repository"
	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

// TransitionService counts and details state-transition events: reopenings
// (closed back to open) and closures (into closed).
type TransitionService struct {
	history  repository.HistoryRepository
	resolver ClassifierResolver
	timeout  time.Duration
	logger   *zap.Logger
}

// TransitionDependencies bundles collaborators for the service.
type TransitionDependencies struct {
	HistoryRepo  repository.HistoryRepository
	Resolver     ClassifierResolver
	QueryTimeout time.Duration
	Logger       *zap.Logger
}

// NewTransitionService constructs the service.
func NewTransitionService(deps TransitionDependencies) *TransitionService {
	return &TransitionService{
		history:  deps.HistoryRepo,
		resolver: deps.Resolver,
		timeout:  deps.QueryTimeout,
		logger:   deps.Logger,
	}
}

// TransitionDetail aggregates qualifying events grouped by owning ticket.
type TransitionDetail struct {
	TotalEvents     int64                          `json:"total_events"`
	TicketsAffected int                            `json:"tickets_affected"`
	Details         []repository.TicketTransitions `json:"details"`
}

// CountTransitions counts state-change events of the given kind within
// [start, end). With classifier ids supplied, each event is joined to its
// owning ticket and the ticket's classification is tested; events whose
// ticket no longer exists are excluded. Without classifiers the join is
// skipped entirely.
func (s *TransitionService) CountTransitions(ctx context.Context, kind domain.TransitionKind, start, end time.Time, classifierIDs []string) (int64, error) {
	// buildQuery resolves classifiers against the store, so the deadline
	// wraps it too.
	ctx, cancel := withQueryDeadline(ctx, s.timeout)
	defer cancel()

	query, err := s.buildQuery(ctx, kind, start, end, classifierIDs)
	if err != nil {
		return 0, err
	}

	return s.history.CountTransitions(ctx, query)
}

// DetailByTicket groups qualifying events by owning ticket, sorted by
// descending event count with ticket id as the tie-break.
func (s *TransitionService) DetailByTicket(ctx context.Context, kind domain.TransitionKind, start, end time.Time, classifierIDs []string) (*TransitionDetail, error) {
	ctx, cancel := withQueryDeadline(ctx, s.timeout)
	defer cancel()

	query, err := s.buildQuery(ctx, kind, start, end, classifierIDs)
	if err != nil {
		return nil, err
	}

	details, err := s.history.TransitionsByTicket(ctx, query)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = []repository.TicketTransitions{}
	}

	var total int64
	for _, detail := range details {
		total += detail.Count
	}
	return &TransitionDetail{
		TotalEvents:     total,
		TicketsAffected: len(details),
		Details:         details,
	}, nil
}

func (s *TransitionService) buildQuery(ctx context.Context, kind domain.TransitionKind, start, end time.Time, classifierIDs []string) (repository.TransitionQuery, error) {
	if !kind.Valid() {
		return repository.TransitionQuery{}, apperrors.NewValidationError("unknown transition kind", map[string]any{"kind": kind})
	}
	window, err := requireWindow(start, end)
	if err != nil {
		return repository.TransitionQuery{}, err
	}
	selection, err := s.resolver.Resolve(ctx, classifierIDs)
	if err != nil {
		return repository.TransitionQuery{}, err
	}
	return repository.TransitionQuery{
		Kind:      kind,
		Window:    window,
		PathAnyOf: selection.NodeIDs,
	}, nil
}
