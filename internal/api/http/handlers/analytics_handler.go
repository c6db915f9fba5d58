package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-analytics/internal/api/dto"
	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/service"
)

// AnalyticsHandler serves the aggregation endpoints.
type AnalyticsHandler struct {
	transitions *service.TransitionService
	intakes     *service.IntakeService
	resolution  *service.ResolutionService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(transitions *service.TransitionService, intakes *service.IntakeService, resolution *service.ResolutionService) *AnalyticsHandler {
	return &AnalyticsHandler{
		transitions: transitions,
		intakes:     intakes,
		resolution:  resolution,
	}
}

// CountReopenings GET /analytics/reopenings.
func (h *AnalyticsHandler) CountReopenings(c *fiber.Ctx) error {
	return h.countTransitions(c, domain.TransitionReopen)
}

// ReopeningsByTicket GET /analytics/reopenings/by-ticket.
func (h *AnalyticsHandler) ReopeningsByTicket(c *fiber.Ctx) error {
	return h.transitionDetail(c, domain.TransitionReopen)
}

// CountClosures GET /analytics/closures.
func (h *AnalyticsHandler) CountClosures(c *fiber.Ctx) error {
	return h.countTransitions(c, domain.TransitionClose)
}

// ClosuresByTicket GET /analytics/closures/by-ticket.
func (h *AnalyticsHandler) ClosuresByTicket(c *fiber.Ctx) error {
	return h.transitionDetail(c, domain.TransitionClose)
}

// ResolutionStats GET /analytics/closures/resolution.
func (h *AnalyticsHandler) ResolutionStats(c *fiber.Ctx) error {
	start, end, err := aggregationWindow(c)
	if err != nil {
		return err
	}
	stats, err := h.resolution.Stats(c.UserContext(), start, end, parseCSVParam(c, "classifier_ids"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ResolutionStatsResponse{
		TotalClosures: stats.TotalClosures,
		AvgHours:      stats.AvgHours,
		MinHours:      stats.MinHours,
		MaxHours:      stats.MaxHours,
	}})
}

// CountIntakes GET /analytics/intakes.
func (h *AnalyticsHandler) CountIntakes(c *fiber.Ctx) error {
	start, end, err := aggregationWindow(c)
	if err != nil {
		return err
	}
	total, err := h.intakes.CountIntakes(c.UserContext(), start, end, parseCSVParam(c, "classifier_ids"), parseStateParam(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.IntakeCountResponse{Total: total}})
}

// IntakeDistribution GET /analytics/intakes/distribution.
func (h *AnalyticsHandler) IntakeDistribution(c *fiber.Ctx) error {
	start, end, err := aggregationWindow(c)
	if err != nil {
		return err
	}
	granularity := service.GranularityDay
	if raw := strings.TrimSpace(c.Query("bucket")); raw != "" {
		granularity = service.Granularity(raw)
	}
	distribution, err := h.intakes.Distribution(c.UserContext(), start, end, parseCSVParam(c, "classifier_ids"), granularity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.IntakeDistributionResponse{
		Total:       distribution.Total,
		Granularity: distribution.Granularity,
		Buckets:     distribution.Buckets,
	}})
}

func (h *AnalyticsHandler) countTransitions(c *fiber.Ctx, kind domain.TransitionKind) error {
	start, end, err := aggregationWindow(c)
	if err != nil {
		return err
	}
	total, err := h.transitions.CountTransitions(c.UserContext(), kind, start, end, parseCSVParam(c, "classifier_ids"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TransitionCountResponse{Kind: kind, Total: total}})
}

func (h *AnalyticsHandler) transitionDetail(c *fiber.Ctx, kind domain.TransitionKind) error {
	start, end, err := aggregationWindow(c)
	if err != nil {
		return err
	}
	detail, err := h.transitions.DetailByTicket(c.UserContext(), kind, start, end, parseCSVParam(c, "classifier_ids"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTransitionDetail(kind, detail)})
}

func aggregationWindow(c *fiber.Ctx) (time.Time, time.Time, error) {
	start, err := requireTimeParam(c, "start_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := requireTimeParam(c, "end_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
