package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActionType enumerates the kinds of audit events a ticket accumulates.
type ActionType string

const (
	ActionTicketCreated        ActionType = "ticket_created"
	ActionStateChange          ActionType = "state_change"
	ActionClassificationChange ActionType = "classification_change"
	ActionComment              ActionType = "comment"
	ActionAssignment           ActionType = "assignment"
)

// Valid reports whether a is a known action type.
func (a ActionType) Valid() bool {
	switch a {
	case ActionTicketCreated, ActionStateChange, ActionClassificationChange,
		ActionComment, ActionAssignment:
		return true
	}
	return false
}

// HistoryEvent is an immutable audit record owned by a ticket. For
// state_change events the Changes payload carries "old_value" and
// "new_value" state strings.
type HistoryEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TicketID    primitive.ObjectID `bson:"ticket_id" json:"ticket_id"`
	ActionType  ActionType         `bson:"action_type" json:"action_type"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	PerformedBy *string            `bson:"performed_by" json:"performed_by,omitempty"`
	Changes     map[string]any     `bson:"changes,omitempty" json:"changes,omitempty"`
	Metadata    map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// TransitionKind selects one of the two structural state-change predicates
// the aggregators care about. Neither is a stored flag: both are derived
// from the Changes payload.
type TransitionKind string

const (
	// TransitionReopen matches state changes from closed back to open.
	TransitionReopen TransitionKind = "reopen"
	// TransitionClose matches state changes into closed, from any state.
	TransitionClose TransitionKind = "close"
)

// Valid reports whether k names a known transition kind.
func (k TransitionKind) Valid() bool {
	return k == TransitionReopen || k == TransitionClose
}

// IsReopening reports whether the event records a closed-to-open transition.
func (e HistoryEvent) IsReopening() bool {
	return e.ActionType == ActionStateChange &&
		e.changeValue("old_value") == string(TicketStateClosed) &&
		e.changeValue("new_value") == string(TicketStateOpen)
}

// IsClosure reports whether the event records a transition into closed.
func (e HistoryEvent) IsClosure() bool {
	return e.ActionType == ActionStateChange &&
		e.changeValue("new_value") == string(TicketStateClosed)
}

// MatchesTransition applies the structural predicate selected by kind.
func (e HistoryEvent) MatchesTransition(kind TransitionKind) bool {
	switch kind {
	case TransitionReopen:
		return e.IsReopening()
	case TransitionClose:
		return e.IsClosure()
	}
	return false
}

func (e HistoryEvent) changeValue(key string) string {
	if e.Changes == nil {
		return ""
	}
	value, ok := e.Changes[key].(string)
	if !ok {
		return ""
	}
	return value
}
