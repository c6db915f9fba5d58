package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/observability"
	"github.com/spec-kit/ticket-analytics/internal/persistence"
)

// IntakeBucket is one time bucket of the intake distribution.
type IntakeBucket struct {
	Period        string   `bson:"period" json:"period"`
	Count         int64    `bson:"count" json:"count"`
	TicketNumbers []string `bson:"ticket_numbers" json:"ticket_numbers"`
}

// TicketRepository reads the ticket stream.
type TicketRepository interface {
	// ListPage returns one page of tickets matching the query plus the total
	// match count, evaluated in a single composed request so data and count
	// observe the same snapshot.
	ListPage(ctx context.Context, query TicketQuery, skip, limit int) ([]domain.Ticket, int64, error)
	// CountCreated counts tickets matching the query.
	CountCreated(ctx context.Context, query TicketQuery) (int64, error)
	// IntakeDistribution groups matching tickets into creation-time buckets
	// keyed by the given $dateToString format, ordered by bucket key.
	IntakeDistribution(ctx context.Context, query TicketQuery, dateFormat string) ([]IntakeBucket, error)
}

type ticketRepository struct {
	collection *mongo.Collection
	metrics    *observability.Metrics
}

// NewTicketRepository instantiates the store-backed repository.
func NewTicketRepository(db *mongo.Database, metrics *observability.Metrics) TicketRepository {
	return &ticketRepository{
		collection: db.Collection(persistence.CollectionTickets),
		metrics:    metrics,
	}
}

func (r *ticketRepository) ListPage(ctx context.Context, query TicketQuery, skip, limit int) ([]domain.Ticket, int64, error) {
	const op = "tickets.list_page"
	defer r.metrics.TimeQuery(op)()

	// Creation time descending; ticket number breaks ties so pages are
	// stable across identical calls.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query.Document()}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "ticket_number", Value: 1}}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "metadata", Value: bson.A{bson.D{{Key: "$count", Value: "total"}}}},
			{Key: "data", Value: bson.A{
				bson.D{{Key: "$skip", Value: skip}},
				bson.D{{Key: "$limit", Value: limit}},
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
		Data []domain.Ticket `bson:"data"`
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

func (r *ticketRepository) CountCreated(ctx context.Context, query TicketQuery) (int64, error) {
	const op = "tickets.count"
	defer r.metrics.TimeQuery(op)()
	total, err := r.collection.CountDocuments(ctx, query.Document())
	if err != nil {
		return 0, mapStoreError(op, err)
	}
	return total, nil
}

func (r *ticketRepository) IntakeDistribution(ctx context.Context, query TicketQuery, dateFormat string) ([]IntakeBucket, error) {
	const op = "tickets.intake_distribution"
	defer r.metrics.TimeQuery(op)()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query.Document()}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: dateFormat},
				{Key: "date", Value: "$created_at"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "tickets", Value: bson.D{{Key: "$push", Value: "$ticket_number"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "period", Value: "$_id"},
			{Key: "count", Value: 1},
			{Key: "ticket_numbers", Value: "$tickets"},
			{Key: "_id", Value: 0},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapStoreError(op, err)
	}
	defer cursor.Close(ctx)

	var buckets []IntakeBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, mapStoreError(op, err)
	}
	return buckets, nil
}
