package persistence

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names for the three logical views the engine reads.
const (
	CollectionClassifiers   = "classifiers"
	CollectionTickets       = "tickets"
	CollectionTicketHistory = "ticket_history"
)

// EnsureIndexes provisions the indexes the query pipelines rely on.
// CreateMany is idempotent for identical definitions, so this is safe to run
// on every boot.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	classifierIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "root_id", Value: 1}, {Key: "parent_id", Value: 1}},
			Options: options.Index().SetName("idx_root_parent"),
		},
		{
			Keys:    bson.D{{Key: "path", Value: 1}},
			Options: options.Index().SetName("idx_path"),
		},
	}
	ticketIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ticket_number", Value: 1}},
			Options: options.Index().SetName("idx_ticket_number_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "current_state", Value: 1}},
			Options: options.Index().SetName("idx_current_state"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}, {Key: "closed_at", Value: 1}},
			Options: options.Index().SetName("idx_dates"),
		},
		{
			Keys:    bson.D{{Key: "current_classification.path", Value: 1}},
			Options: options.Index().SetName("idx_classification_path"),
		},
		{
			Keys:    bson.D{{Key: "current_classification.node_id", Value: 1}},
			Options: options.Index().SetName("idx_classification_node"),
		},
		{
			Keys: bson.D{
				{Key: "current_state", Value: 1},
				{Key: "current_classification.path", Value: 1},
				{Key: "created_at", Value: 1},
				{Key: "closed_at", Value: 1},
			},
			Options: options.Index().SetName("idx_composite_main_query"),
		},
	}
	historyIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ticket_id", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("idx_ticket_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "action_type", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("idx_action_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("idx_timestamp"),
		},
	}

	for collection, indexes := range map[string][]mongo.IndexModel{
		CollectionClassifiers:   classifierIndexes,
		CollectionTickets:       ticketIndexes,
		CollectionTicketHistory: historyIndexes,
	} {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return err
		}
		logger.Info("indexes ensured", zap.String("collection", collection), zap.Int("count", len(indexes)))
	}
	return nil
}
