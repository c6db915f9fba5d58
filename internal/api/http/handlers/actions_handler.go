package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-analytics/internal/api/dto"
	"github.com/spec-kit/ticket-analytics/internal/service"
)

// ActionsHandler serves the audit listing endpoint.
type ActionsHandler struct {
	service *service.HistoryQueryService
}

// NewActionsHandler constructs handler.
func NewActionsHandler(historyService *service.HistoryQueryService) *ActionsHandler {
	return &ActionsHandler{service: historyService}
}

// ListActions GET /actions.
func (h *ActionsHandler) ListActions(c *fiber.Ctx) error {
	startDate, err := parseTimeParam(c, "start_date")
	if err != nil {
		return err
	}
	endDate, err := parseTimeParam(c, "end_date")
	if err != nil {
		return err
	}
	page, err := parsePageParam(c, "page")
	if err != nil {
		return err
	}
	pageSize, err := parsePageParam(c, "page_size")
	if err != nil {
		return err
	}

	var ticketID *string
	if raw := strings.TrimSpace(c.Query("ticket_id")); raw != "" {
		ticketID = &raw
	}

	input := service.ActionListInput{
		TicketID:    ticketID,
		ActionTypes: parseActionTypes(c),
		StartDate:   startDate,
		EndDate:     endDate,
		Page:        page,
		PageSize:    pageSize,
	}
	result, err := h.service.ListActions(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromActionPage(result)})
}
