package repository

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/ticket-analytics/internal/domain"
)

var (
	windowStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
)

func TestTimeWindow(t *testing.T) {
	both := TimeWindow{Start: &windowStart, End: &windowEnd}
	if !both.Closed() || both.IsZero() {
		t.Error("window with both bounds should be closed and non-zero")
	}
	startOnly := TimeWindow{Start: &windowStart}
	if startOnly.Closed() || startOnly.IsZero() {
		t.Error("window with one bound should be neither closed nor zero")
	}
	if !(TimeWindow{}).IsZero() {
		t.Error("empty window should be zero")
	}
}

func TestTicketQueryDocument(t *testing.T) {
	stateClosed := domain.TicketStateClosed

	tests := []struct {
		name  string
		query TicketQuery
		want  bson.D
	}{
		{
			name:  "empty query matches everything",
			query: TicketQuery{},
			want:  bson.D{},
		},
		{
			name:  "state only",
			query: TicketQuery{State: &stateClosed},
			want:  bson.D{{Key: "current_state", Value: domain.TicketStateClosed}},
		},
		{
			name:  "existence during closed window",
			query: TicketQuery{ActiveDuring: &TimeWindow{Start: &windowStart, End: &windowEnd}},
			want: bson.D{{Key: "$or", Value: bson.A{
				bson.D{
					{Key: "created_at", Value: bson.D{{Key: "$lt", Value: windowEnd}}},
					{Key: "closed_at", Value: bson.D{{Key: "$gte", Value: windowStart}}},
				},
				bson.D{
					{Key: "created_at", Value: bson.D{{Key: "$lt", Value: windowEnd}}},
					{Key: "closed_at", Value: nil},
				},
			}}},
		},
		{
			// A half-open ActiveDuring cannot express existence semantics, so
			// it contributes nothing.
			name:  "open-ended active window is ignored",
			query: TicketQuery{ActiveDuring: &TimeWindow{Start: &windowStart}},
			want:  bson.D{},
		},
		{
			name:  "creation window with one bound",
			query: TicketQuery{CreatedDuring: &TimeWindow{End: &windowEnd}},
			want:  bson.D{{Key: "created_at", Value: bson.D{{Key: "$lt", Value: windowEnd}}}},
		},
		{
			name:  "classifier membership",
			query: TicketQuery{PathAnyOf: []string{"billing", "network"}},
			want: bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "current_classification.path", Value: "billing"}},
				bson.D{{Key: "current_classification.path", Value: "network"}},
			}}},
		},
		{
			name: "combined clauses wrap in $and",
			query: TicketQuery{
				CreatedDuring: &TimeWindow{Start: &windowStart, End: &windowEnd},
				State:         &stateClosed,
				PathAnyOf:     []string{"billing"},
			},
			want: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "created_at", Value: bson.D{
					{Key: "$gte", Value: windowStart},
					{Key: "$lt", Value: windowEnd},
				}}},
				bson.D{{Key: "current_state", Value: domain.TicketStateClosed}},
				bson.D{{Key: "$or", Value: bson.A{
					bson.D{{Key: "current_classification.path", Value: "billing"}},
				}}},
			}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.query.Document()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Document() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestActionQueryDocument(t *testing.T) {
	ticketID := primitive.NewObjectID()

	tests := []struct {
		name  string
		query ActionQuery
		want  bson.D
	}{
		{
			name:  "empty query",
			query: ActionQuery{},
			want:  bson.D{},
		},
		{
			name: "all filters",
			query: ActionQuery{
				TicketID:    &ticketID,
				ActionTypes: []domain.ActionType{domain.ActionStateChange, domain.ActionComment},
				Window:      TimeWindow{Start: &windowStart, End: &windowEnd},
			},
			want: bson.D{
				{Key: "ticket_id", Value: ticketID},
				{Key: "action_type", Value: bson.D{{Key: "$in", Value: []domain.ActionType{domain.ActionStateChange, domain.ActionComment}}}},
				{Key: "timestamp", Value: bson.D{
					{Key: "$gte", Value: windowStart},
					{Key: "$lt", Value: windowEnd},
				}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.query.Document()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Document() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTransitionQueryDocument(t *testing.T) {
	reopen := TransitionQuery{
		Kind:   domain.TransitionReopen,
		Window: TimeWindow{Start: &windowStart, End: &windowEnd},
	}
	wantReopen := bson.D{
		{Key: "action_type", Value: domain.ActionStateChange},
		{Key: "changes.old_value", Value: domain.TicketStateClosed},
		{Key: "changes.new_value", Value: domain.TicketStateOpen},
		{Key: "timestamp", Value: bson.D{
			{Key: "$gte", Value: windowStart},
			{Key: "$lt", Value: windowEnd},
		}},
	}
	if got := reopen.Document(); !reflect.DeepEqual(got, wantReopen) {
		t.Errorf("reopen Document() = %#v, want %#v", got, wantReopen)
	}

	// Closures constrain only the new value: any prior state counts.
	closure := TransitionQuery{Kind: domain.TransitionClose}
	wantClosure := bson.D{
		{Key: "action_type", Value: domain.ActionStateChange},
		{Key: "changes.new_value", Value: domain.TicketStateClosed},
	}
	if got := closure.Document(); !reflect.DeepEqual(got, wantClosure) {
		t.Errorf("closure Document() = %#v, want %#v", got, wantClosure)
	}
}

func TestTransitionQueryTicketJoin(t *testing.T) {
	plain := TransitionQuery{Kind: domain.TransitionReopen}
	if plain.NeedsTicketJoin() {
		t.Error("query without classifiers should not need the ticket join")
	}

	filtered := TransitionQuery{Kind: domain.TransitionReopen, PathAnyOf: []string{"hardware"}}
	if !filtered.NeedsTicketJoin() {
		t.Error("classifier-filtered query should need the ticket join")
	}
	want := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "ticket.current_classification.path", Value: "hardware"}},
	}}}
	if got := filtered.TicketMatch(); !reflect.DeepEqual(got, want) {
		t.Errorf("TicketMatch() = %#v, want %#v", got, want)
	}
}
