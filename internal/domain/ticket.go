package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketState enumerates lifecycle states for tickets.
type TicketState string

const (
	TicketStateOpen       TicketState = "open"
	TicketStateInProgress TicketState = "in_progress"
	TicketStateClosed     TicketState = "closed"
)

// Valid reports whether s is a known lifecycle state.
func (s TicketState) Valid() bool {
	switch s {
	case TicketStateOpen, TicketStateInProgress, TicketStateClosed:
		return true
	}
	return false
}

// Classification is the denormalized copy of a classifier kept on the ticket.
// Writers keep it in sync with the taxonomy on every reclassification.
type Classification struct {
	RootID string   `bson:"root_id" json:"root_id"`
	NodeID string   `bson:"node_id" json:"node_id"`
	Path   []string `bson:"path" json:"path"`
}

// Ticket is a support case. ClosedAt tracks only the current closed episode:
// reopening a ticket nulls it out, so historical closures must be read from
// the history stream.
type Ticket struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TicketNumber          string             `bson:"ticket_number" json:"ticket_number"`
	CurrentState          TicketState        `bson:"current_state" json:"current_state"`
	CurrentClassification Classification     `bson:"current_classification" json:"current_classification"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
	ClosedAt              *time.Time         `bson:"closed_at" json:"closed_at,omitempty"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updated_at"`
	AssignedTo            *string            `bson:"assigned_to" json:"assigned_to,omitempty"`
	Metadata              map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
}
