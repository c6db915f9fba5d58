package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/repository"
	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

// IntakeService counts ticket creations over time.
type IntakeService struct {
	tickets  repository.TicketRepository
	resolver ClassifierResolver
	timeout  time.Duration
	logger   *zap.Logger
}

// IntakeDependencies bundles collaborators for the service.
type IntakeDependencies struct {
	TicketRepo   repository.TicketRepository
	Resolver     ClassifierResolver
	QueryTimeout time.Duration
	Logger       *zap.Logger
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	return &IntakeService{
		tickets:  deps.TicketRepo,
		resolver: deps.Resolver,
		timeout:  deps.QueryTimeout,
		logger:   deps.Logger,
	}
}

// IntakeDistribution is the bucketed intake count over a window.
type IntakeDistribution struct {
	Total       int64                    `json:"total"`
	Granularity Granularity              `json:"granularity"`
	Buckets     []repository.IntakeBucket `json:"buckets"`
}

// CountIntakes counts tickets created within [start, end), optionally
// narrowed by current state and classifier membership.
func (s *IntakeService) CountIntakes(ctx context.Context, start, end time.Time, classifierIDs []string, state *domain.TicketState) (int64, error) {
	window, err := requireWindow(start, end)
	if err != nil {
		return 0, err
	}
	if state != nil && !state.Valid() {
		return 0, apperrors.NewValidationError("unknown ticket state", map[string]any{"state": *state})
	}
	ctx, cancel := withQueryDeadline(ctx, s.timeout)
	defer cancel()

	selection, err := s.resolver.Resolve(ctx, classifierIDs)
	if err != nil {
		return 0, err
	}

	query := repository.TicketQuery{
		CreatedDuring: &window,
		State:         state,
		PathAnyOf:     selection.NodeIDs,
	}

	return s.tickets.CountCreated(ctx, query)
}

// Distribution groups matching tickets into creation-time buckets of the
// given granularity, ordered by bucket key ascending.
func (s *IntakeService) Distribution(ctx context.Context, start, end time.Time, classifierIDs []string, granularity Granularity) (*IntakeDistribution, error) {
	format, err := granularity.dateFormat()
	if err != nil {
		return nil, err
	}
	window, err := requireWindow(start, end)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withQueryDeadline(ctx, s.timeout)
	defer cancel()

	selection, err := s.resolver.Resolve(ctx, classifierIDs)
	if err != nil {
		return nil, err
	}

	query := repository.TicketQuery{
		CreatedDuring: &window,
		PathAnyOf:     selection.NodeIDs,
	}

	buckets, err := s.tickets.IntakeDistribution(ctx, query, format)
	if err != nil {
		return nil, err
	}
	if buckets == nil {
		buckets = []repository.IntakeBucket{}
	}

	var total int64
	for _, bucket := range buckets {
		total += bucket.Count
	}
	return &IntakeDistribution{
		Total:       total,
		Granularity: granularity,
		Buckets:     buckets,
	}, nil
}
