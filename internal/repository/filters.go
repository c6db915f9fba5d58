package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/ticket-analytics/internal/domain"
)

// TimeWindow is a half-open interval [Start, End). A nil bound leaves that
// side open. Half-open bounds keep boundary instants from being counted
// twice across adjacent windows.
type TimeWindow struct {
	Start *time.Time
	End   *time.Time
}

// Closed reports whether both bounds are present.
func (w TimeWindow) Closed() bool {
	return w.Start != nil && w.End != nil
}

// IsZero reports whether neither bound is present.
func (w TimeWindow) IsZero() bool {
	return w.Start == nil && w.End == nil
}

// rangeDocument renders the window as a comparison document, tolerating an
// absent bound on either side.
func (w TimeWindow) rangeDocument() bson.D {
	var doc bson.D
	if w.Start != nil {
		doc = append(doc, bson.E{Key: "$gte", Value: *w.Start})
	}
	if w.End != nil {
		doc = append(doc, bson.E{Key: "$lt", Value: *w.End})
	}
	return doc
}

// TicketQuery is the normalized predicate over the ticket stream. At most
// one of ActiveDuring/CreatedDuring is set per operation: case listing uses
// existence-during-window, intake counting uses event-within-window on the
// creation timestamp.
type TicketQuery struct {
	// ActiveDuring selects tickets whose lifespan overlaps the window:
	// created before End and either closed at-or-after Start or still open.
	ActiveDuring *TimeWindow
	// CreatedDuring selects tickets whose creation timestamp falls in the window.
	CreatedDuring *TimeWindow
	// State matches the current lifecycle state snapshot.
	State *domain.TicketState
	// PathAnyOf matches tickets classified at or below any of the given
	// nodes, via path membership on the denormalized classification.
	PathAnyOf []string
}

// Document renders the query as a store filter.
func (q TicketQuery) Document() bson.D {
	var clauses bson.A

	if q.ActiveDuring != nil && q.ActiveDuring.Closed() {
		// Two-branch OR: a ticket may span the window boundary, so a plain
		// range containment check would drop tickets closed inside the
		// window but created before it.
		clauses = append(clauses, bson.D{{Key: "$or", Value: bson.A{
			bson.D{
				{Key: "created_at", Value: bson.D{{Key: "$lt", Value: *q.ActiveDuring.End}}},
				{Key: "closed_at", Value: bson.D{{Key: "$gte", Value: *q.ActiveDuring.Start}}},
			},
			bson.D{
				{Key: "created_at", Value: bson.D{{Key: "$lt", Value: *q.ActiveDuring.End}}},
				{Key: "closed_at", Value: nil},
			},
		}}})
	}
	if q.CreatedDuring != nil && !q.CreatedDuring.IsZero() {
		clauses = append(clauses, bson.D{{Key: "created_at", Value: q.CreatedDuring.rangeDocument()}})
	}
	if q.State != nil {
		clauses = append(clauses, bson.D{{Key: "current_state", Value: *q.State}})
	}
	if len(q.PathAnyOf) > 0 {
		clauses = append(clauses, pathMembership("current_classification.path", q.PathAnyOf))
	}

	return combine(clauses)
}

// ActionQuery is the normalized predicate over the history stream for the
// audit listing.
type ActionQuery struct {
	TicketID    *primitive.ObjectID
	ActionTypes []domain.ActionType
	Window      TimeWindow
}

// Document renders the query as a store filter.
func (q ActionQuery) Document() bson.D {
	var doc bson.D
	if q.TicketID != nil {
		doc = append(doc, bson.E{Key: "ticket_id", Value: *q.TicketID})
	}
	if len(q.ActionTypes) > 0 {
		doc = append(doc, bson.E{Key: "action_type", Value: bson.D{{Key: "$in", Value: q.ActionTypes}}})
	}
	if !q.Window.IsZero() {
		doc = append(doc, bson.E{Key: "timestamp", Value: q.Window.rangeDocument()})
	}
	if doc == nil {
		return bson.D{}
	}
	return doc
}

// TransitionQuery selects state-change events by structural predicate,
// window, and optionally the owning ticket's classification.
type TransitionQuery struct {
	Kind      domain.TransitionKind
	Window    TimeWindow
	PathAnyOf []string
}

// Document renders the event-level half of the query. The classifier half
// applies after the ticket join; see TicketMatch.
func (q TransitionQuery) Document() bson.D {
	doc := bson.D{
		{Key: "action_type", Value: domain.ActionStateChange},
	}
	if q.Kind == domain.TransitionReopen {
		doc = append(doc,
			bson.E{Key: "changes.old_value", Value: domain.TicketStateClosed},
			bson.E{Key: "changes.new_value", Value: domain.TicketStateOpen},
		)
	} else {
		doc = append(doc, bson.E{Key: "changes.new_value", Value: domain.TicketStateClosed})
	}
	if !q.Window.IsZero() {
		doc = append(doc, bson.E{Key: "timestamp", Value: q.Window.rangeDocument()})
	}
	return doc
}

// NeedsTicketJoin reports whether the query must join events to tickets.
func (q TransitionQuery) NeedsTicketJoin() bool {
	return len(q.PathAnyOf) > 0
}

// TicketMatch renders the post-join classifier filter against the unwound
// ticket document.
func (q TransitionQuery) TicketMatch() bson.D {
	return pathMembership("ticket.current_classification.path", q.PathAnyOf)
}

// pathMembership ORs path-contains tests across the selected nodes. A
// ticket classified at or below any selected node matches.
func pathMembership(field string, nodeIDs []string) bson.D {
	branches := make(bson.A, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		branches = append(branches, bson.D{{Key: field, Value: id}})
	}
	return bson.D{{Key: "$or", Value: branches}}
}

func combine(clauses bson.A) bson.D {
	switch len(clauses) {
	case 0:
		return bson.D{}
	case 1:
		return clauses[0].(bson.D)
	default:
		return bson.D{{Key: "$and", Value: clauses}}
	}
}
