package dto

import (
	"time"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/repository"
	"github.com/spec-kit/ticket-analytics/internal/service"
)

// TicketSummary is the wire shape of a ticket in listings.
type TicketSummary struct {
	ID             string                `json:"id"`
	TicketNumber   string                `json:"ticket_number"`
	CurrentState   domain.TicketState    `json:"current_state"`
	Classification domain.Classification `json:"classification"`
	CreatedAt      time.Time             `json:"created_at"`
	ClosedAt       *time.Time            `json:"closed_at,omitempty"`
	UpdatedAt      time.Time             `json:"updated_at"`
	AssignedTo     *string               `json:"assigned_to,omitempty"`
	Metadata       map[string]any        `json:"metadata,omitempty"`
}

// TicketListResponse is the case listing payload.
type TicketListResponse struct {
	Tickets    []TicketSummary `json:"tickets"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// FromTicketPage maps a service page onto the wire shape.
func FromTicketPage(page *service.TicketPage) TicketListResponse {
	tickets := make([]TicketSummary, 0, len(page.Tickets))
	for _, ticket := range page.Tickets {
		tickets = append(tickets, TicketSummary{
			ID:             ticket.ID.Hex(),
			TicketNumber:   ticket.TicketNumber,
			CurrentState:   ticket.CurrentState,
			Classification: ticket.CurrentClassification,
			CreatedAt:      ticket.CreatedAt,
			ClosedAt:       ticket.ClosedAt,
			UpdatedAt:      ticket.UpdatedAt,
			AssignedTo:     ticket.AssignedTo,
			Metadata:       ticket.Metadata,
		})
	}
	return TicketListResponse{
		Tickets:    tickets,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}

// ActionView is the wire shape of an enriched audit event.
type ActionView struct {
	ID           string             `json:"id"`
	TicketID     string             `json:"ticket_id"`
	TicketNumber string             `json:"ticket_number"`
	TicketState  domain.TicketState `json:"ticket_state"`
	ActionType   domain.ActionType  `json:"action_type"`
	Timestamp    time.Time          `json:"timestamp"`
	PerformedBy  *string            `json:"performed_by,omitempty"`
	Changes      map[string]any     `json:"changes,omitempty"`
	Metadata     map[string]any     `json:"metadata,omitempty"`
}

// ActionListResponse is the audit listing payload.
type ActionListResponse struct {
	Actions    []ActionView `json:"actions"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// FromActionPage maps a service page onto the wire shape.
func FromActionPage(page *service.ActionPage) ActionListResponse {
	actions := make([]ActionView, 0, len(page.Actions))
	for _, record := range page.Actions {
		actions = append(actions, ActionView{
			ID:           record.ID.Hex(),
			TicketID:     record.TicketID.Hex(),
			TicketNumber: record.TicketNumber,
			TicketState:  record.TicketState,
			ActionType:   record.ActionType,
			Timestamp:    record.Timestamp,
			PerformedBy:  record.PerformedBy,
			Changes:      record.Changes,
			Metadata:     record.Metadata,
		})
	}
	return ActionListResponse{
		Actions:    actions,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}

// TransitionCountResponse is the payload of the transition count endpoints.
type TransitionCountResponse struct {
	Kind  domain.TransitionKind `json:"kind"`
	Total int64                 `json:"total"`
}

// TransitionTicketDetail is one per-ticket grouping in the detail payload.
type TransitionTicketDetail struct {
	TicketID     string      `json:"ticket_id"`
	TicketNumber string      `json:"ticket_number"`
	Count        int64       `json:"count"`
	Timestamps   []time.Time `json:"timestamps"`
}

// TransitionDetailResponse is the payload of the by-ticket detail endpoints.
type TransitionDetailResponse struct {
	Kind            domain.TransitionKind    `json:"kind"`
	TotalEvents     int64                    `json:"total_events"`
	TicketsAffected int                      `json:"tickets_affected"`
	Details         []TransitionTicketDetail `json:"details"`
}

// FromTransitionDetail maps the service aggregate onto the wire shape.
func FromTransitionDetail(kind domain.TransitionKind, detail *service.TransitionDetail) TransitionDetailResponse {
	details := make([]TransitionTicketDetail, 0, len(detail.Details))
	for _, item := range detail.Details {
		details = append(details, TransitionTicketDetail{
			TicketID:     item.TicketID.Hex(),
			TicketNumber: item.TicketNumber,
			Count:        item.Count,
			Timestamps:   item.Timestamps,
		})
	}
	return TransitionDetailResponse{
		Kind:            kind,
		TotalEvents:     detail.TotalEvents,
		TicketsAffected: detail.TicketsAffected,
		Details:         details,
	}
}

// IntakeCountResponse is the payload of the intake count endpoint.
type IntakeCountResponse struct {
	Total int64 `json:"total"`
}

// IntakeDistributionResponse is the payload of the bucketed intake endpoint.
type IntakeDistributionResponse struct {
	Total       int64                     `json:"total"`
	Granularity service.Granularity       `json:"granularity"`
	Buckets     []repository.IntakeBucket `json:"buckets"`
}

// ResolutionStatsResponse is the payload of the resolution stats endpoint.
type ResolutionStatsResponse struct {
	TotalClosures int64   `json:"total_closures"`
	AvgHours      float64 `json:"avg_resolution_time_hours"`
	MinHours      float64 `json:"min_resolution_time_hours"`
	MaxHours      float64 `json:"max_resolution_time_hours"`
}
