package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-analytics/internal/api/dto"
	"github.com/spec-kit/ticket-analytics/internal/service"
)

// TicketsHandler serves the case listing endpoint.
type TicketsHandler struct {
	service *service.TicketQueryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketQueryService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
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

	input := service.TicketListInput{
		StartDate:     startDate,
		EndDate:       endDate,
		State:         parseStateParam(c),
		ClassifierIDs: parseCSVParam(c, "classifier_ids"),
		Page:          page,
		PageSize:      pageSize,
	}
	result, err := h.service.ListTickets(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicketPage(result)})
}
