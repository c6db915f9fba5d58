package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

// timeLayouts accepted for date parameters. Date-only values are taken as
// midnight UTC, matching the half-open window convention.
var timeLayouts = []string{time.RFC3339, "2006-01-02"}

func parseTimeParam(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, nil
		}
	}
	return nil, apperrors.NewValidationError("invalid timestamp", map[string]any{key: raw})
}

func requireTimeParam(c *fiber.Ctx, key string) (time.Time, error) {
	parsed, err := parseTimeParam(c, key)
	if err != nil {
		return time.Time{}, err
	}
	if parsed == nil {
		return time.Time{}, apperrors.NewValidationError(key+" is required", nil)
	}
	return *parsed, nil
}

func parseCSVParam(c *fiber.Ctx, key string) []string {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// parsePageParam parses page/page_size values. Non-integer input is a
// pagination error, surfaced before any store work.
func parsePageParam(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewInvalidPagination(key+" must be an integer", map[string]any{key: raw})
	}
	return value, nil
}

func parseStateParam(c *fiber.Ctx) *domain.TicketState {
	raw := strings.TrimSpace(c.Query("state"))
	if raw == "" {
		return nil
	}
	state := domain.TicketState(raw)
	return &state
}

func parseActionTypes(c *fiber.Ctx) []domain.ActionType {
	values := parseCSVParam(c, "action_types")
	if len(values) == 0 {
		return nil
	}
	types := make([]domain.ActionType, 0, len(values))
	for _, value := range values {
		types = append(types, domain.ActionType(value))
	}
	return types
}
