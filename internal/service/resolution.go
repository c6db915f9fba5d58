package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/repository"
)

// ResolutionService computes resolution-time statistics over closure events.
type ResolutionService struct {
	history  repository.HistoryRepository
	resolver ClassifierResolver
	timeout  time.Duration
	logger   *zap.Logger
}

// ResolutionDependencies bundles collaborators for the service.
type ResolutionDependencies struct {
	HistoryRepo  repository.HistoryRepository
	Resolver     ClassifierResolver
	QueryTimeout time.Duration
	Logger       *zap.Logger
}

// NewResolutionService constructs the service.
func NewResolutionService(deps ResolutionDependencies) *ResolutionService {
	return &ResolutionService{
		history:  deps.HistoryRepo,
		resolver: deps.Resolver,
		timeout:  deps.QueryTimeout,
		logger:   deps.Logger,
	}
}

// ResolutionStats carries closure counts and resolution times in hours,
// rounded to two decimals half away from zero.
type ResolutionStats struct {
	TotalClosures int64   `json:"total_closures"`
	AvgHours      float64 `json:"avg_resolution_time_hours"`
	MinHours      float64 `json:"min_resolution_time_hours"`
	MaxHours      float64 `json:"max_resolution_time_hours"`
}

// Stats aggregates resolution time over closure events within [start, end),
// joined to their owning tickets and optionally filtered by classifier
// membership. An empty match yields all-zero stats, never an error.
//
// Negative durations are possible only with inconsistent data (closure
// recorded before creation); that is the writer's concern, not validated
// here.
func (s *ResolutionService) Stats(ctx context.Context, start, end time.Time, classifierIDs []string) (*ResolutionStats, error) {
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

	query := repository.TransitionQuery{
		Kind:      domain.TransitionClose,
		Window:    window,
		PathAnyOf: selection.NodeIDs,
	}

	aggregate, err := s.history.ResolutionStats(ctx, query)
	if err != nil {
		return nil, err
	}
	if aggregate.Count == 0 {
		return &ResolutionStats{}, nil
	}

	return &ResolutionStats{
		TotalClosures: aggregate.Count,
		AvgHours:      round2(aggregate.AvgHours),
		MinHours:      round2(aggregate.MinHours),
		MaxHours:      round2(aggregate.MaxHours),
	}, nil
}
