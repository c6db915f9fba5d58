package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/observability"
	"github.com/spec-kit/ticket-analytics/internal/persistence"
)

// ActionRecord is a history event enriched with the owning ticket's
// identifying fields. The enrichment is a live join: TicketState reflects
// the ticket at fetch time, not at the time the event occurred.
type ActionRecord struct {
	domain.HistoryEvent `bson:",inline"`
	TicketNumber        string             `bson:"ticket_number" json:"ticket_number"`
	TicketState         domain.TicketState `bson:"ticket_state" json:"ticket_state"`
}

// TicketTransitions is the per-ticket grouping of qualifying transition
// events. Timestamps are ordered ascending.
type TicketTransitions struct {
	TicketID     primitive.ObjectID `bson:"ticket_id" json:"ticket_id"`
	TicketNumber string             `bson:"ticket_number" json:"ticket_number"`
	Count        int64              `bson:"count" json:"count"`
	Timestamps   []time.Time        `bson:"timestamps" json:"timestamps"`
}

// ResolutionAggregate carries raw (unrounded) resolution-time statistics.
type ResolutionAggregate struct {
	Count    int64   `bson:"count"`
	AvgHours float64 `bson:"avg_hours"`
	MinHours float64 `bson:"min_hours"`
	MaxHours float64 `bson:"max_hours"`
}

// HistoryRepository reads the append-only history stream.
type HistoryRepository interface {
	// ListPage returns one page of enriched events plus the total match
	// count from a single composed request.
	ListPage(ctx context.Context, query ActionQuery, skip, limit int) ([]ActionRecord, int64, error)
	// CountTransitions counts qualifying state-change events. Queries
	// without a classifier filter skip the ticket join entirely.
	CountTransitions(ctx context.Context, query TransitionQuery) (int64, error)
	// TransitionsByTicket groups qualifying events by owning ticket, sorted
	// by descending count with ticket id as the tie-break.
	TransitionsByTicket(ctx context.Context, query TransitionQuery) ([]TicketTransitions, error)
	// ResolutionStats aggregates closure-to-creation durations in hours
	// across qualifying closure events joined to their tickets.
	ResolutionStats(ctx context.Context, query TransitionQuery) (ResolutionAggregate, error)
}

type historyRepository struct {
	collection *mongo.Collection
	metrics    *observability.Metrics
}

// NewHistoryRepository instantiates the store-backed repository.
func NewHistoryRepository(db *mongo.Database, metrics *observability.Metrics) HistoryRepository {
	return &historyRepository{
		collection: db.Collection(persistence.CollectionTicketHistory),
		metrics:    metrics,
	}
}

func (r *historyRepository) ListPage(ctx context.Context, query ActionQuery, skip, limit int) ([]ActionRecord, int64, error) {
	const op = "history.list_page"
	defer r.metrics.TimeQuery(op)()

	// Timestamp descending; the event id breaks ties so pages are stable
	// across identical calls.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query.Document()}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "metadata", Value: bson.A{bson.D{{Key: "$count", Value: "total"}}}},
			{Key: "data", Value: bson.A{
				bson.D{{Key: "$skip", Value: skip}},
				bson.D{{Key: "$limit", Value: limit}},
				ticketLookup("ticket_id"),
				bson.D{{Key: "$addFields", Value: bson.D{
					{Key: "ticket_number", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$ticket.ticket_number", 0}}}},
					{Key: "ticket_state", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$ticket.current_state", 0}}}},
				}}},
				bson.D{{Key: "$project", Value: bson.D{{Key: "ticket", Value: 0}}}},
			}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, mapStoreError(op, err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Metadata []struct {
			Total int64 `bson:"total"`
		} `bson:"metadata"`
		Data []ActionRecord `bson:"data"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, mapStoreError(op, err)
	}
	if len(results) == 0 {
		return nil, 0, nil
	}
	var total int64
	if len(results[0].Metadata) > 0 {
		total = results[0].Metadata[0].Total
	}
	return results[0].Data, total, nil
}

func (r *historyRepository) CountTransitions(ctx context.Context, query TransitionQuery) (int64, error) {
	const op = "history.count_transitions"
	defer r.metrics.TimeQuery(op)()

	if !query.NeedsTicketJoin() {
		total, err := r.collection.CountDocuments(ctx, query.Document())
		if err != nil {
			return 0, mapStoreError(op, err)
		}
		return total, nil
	}

	// The classification lives on the ticket, so classifier-filtered counts
	// join each event to its owner. $unwind drops events whose ticket no
	// longer exists.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query.Document()}},
		ticketLookup("ticket_id"),
		{{Key: "$unwind", Value: "$ticket"}},
		{{Key: "$match", Value: query.TicketMatch()}},
		{{Key: "$count", Value: "total"}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, mapStoreError(op, err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, mapStoreError(op, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (r *historyRepository) TransitionsByTicket(ctx context.Context, query TransitionQuery) ([]TicketTransitions, error) {
	const op = "history.transitions_by_ticket"
	defer r.metrics.TimeQuery(op)()

	// Sort before grouping so $push accumulates timestamps ascending.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query.Document()}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$ticket_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "timestamps", Value: bson.D{{Key: "$push", Value: "$timestamp"}}},
		}}},
		ticketLookup("_id"),
		{{Key: "$unwind", Value: "$ticket"}},
	}
	if query.NeedsTicketJoin() {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: query.TicketMatch()}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "ticket_id", Value: "$_id"},
			{Key: "ticket_number", Value: "$ticket.ticket_number"},
			{Key: "count", Value: 1},
			{Key: "timestamps", Value: 1},
			{Key: "_id", Value: 0},
		}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapStoreError(op, err)
	}
	defer cursor.Close(ctx)

	var details []TicketTransitions
	if err := cursor.All(ctx, &details); err != nil {
		return nil, mapStoreError(op, err)
	}
	return details, nil
}

func (r *historyRepository) ResolutionStats(ctx context.Context, query TransitionQuery) (ResolutionAggregate, error) {
	const op = "history.resolution_stats"
	defer r.metrics.TimeQuery(op)()

	// Resolution time spans from the ticket's creation to the closure
	// event's own timestamp. The ticket's closed_at is never consulted: it
	// is wiped on reopening and only describes the current episode.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query.Document()}},
		ticketLookup("ticket_id"),
		{{Key: "$unwind", Value: "$ticket"}},
	}
	if query.NeedsTicketJoin() {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: query.TicketMatch()}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "resolution_hours", Value: bson.D{{Key: "$divide", Value: bson.A{
				bson.D{{Key: "$subtract", Value: bson.A{"$timestamp", "$ticket.created_at"}}},
				1000 * 60 * 60,
			}}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_hours", Value: bson.D{{Key: "$avg", Value: "$resolution_hours"}}},
			{Key: "min_hours", Value: bson.D{{Key: "$min", Value: "$resolution_hours"}}},
			{Key: "max_hours", Value: bson.D{{Key: "$max", Value: "$resolution_hours"}}},
		}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return ResolutionAggregate{}, mapStoreError(op, err)
	}
	defer cursor.Close(ctx)

	var results []ResolutionAggregate
	if err := cursor.All(ctx, &results); err != nil {
		return ResolutionAggregate{}, mapStoreError(op, err)
	}
	if len(results) == 0 {
		return ResolutionAggregate{}, nil
	}
	return results[0], nil
}

func ticketLookup(localField string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: persistence.CollectionTickets},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "ticket"},
	}}}
}
