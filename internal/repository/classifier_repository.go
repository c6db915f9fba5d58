package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/observability"
	"github.com/spec-kit/ticket-analytics/internal/persistence"
)

// ClassifierRepository reads the taxonomy. The taxonomy is read-only input
// to the engine; no write methods exist.
type ClassifierRepository interface {
	// FindByIDs returns the classifiers matching the given identifiers.
	// Unknown identifiers are simply absent from the result; callers decide
	// whether that is an error.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Classifier, error)
}

type classifierRepository struct {
	collection *mongo.Collection
	metrics    *observability.Metrics
}

// NewClassifierRepository instantiates the store-backed repository.
func NewClassifierRepository(db *mongo.Database, metrics *observability.Metrics) ClassifierRepository {
	return &classifierRepository{
		collection: db.Collection(persistence.CollectionClassifiers),
		metrics:    metrics,
	}
}

func (r *classifierRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Classifier, error) {
	const op = "classifiers.find_by_ids"
	if len(ids) == 0 {
		return nil, nil
	}
	defer r.metrics.TimeQuery(op)()

	cursor, err := r.collection.Find(ctx, bson.D{
		{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
	})
	if err != nil {
		return nil, mapStoreError(op, err)
	}
	defer cursor.Close(ctx)

	var classifiers []domain.Classifier
	if err := cursor.All(ctx, &classifiers); err != nil {
		return nil, mapStoreError(op, err)
	}
	return classifiers, nil
}

// cachedClassifierRepository is a read-through cache in front of the store.
// The taxonomy is administered outside this service and changes rarely, so
// a short TTL is enough to keep resolutions off the store's hot path.
type cachedClassifierRepository struct {
	inner  ClassifierRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedClassifierRepository decorates inner with a Redis read-through
// cache keyed per classifier id.
func NewCachedClassifierRepository(inner ClassifierRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) ClassifierRepository {
	return &cachedClassifierRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (r *cachedClassifierRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Classifier, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found := make([]domain.Classifier, 0, len(ids))
	var missing []string
	for _, id := range ids {
		cached, err := r.client.Get(ctx, cacheKey(id)).Bytes()
		if err != nil {
			// Cache miss or Redis failure: fall back to the store either way.
			missing = append(missing, id)
			continue
		}
		var classifier domain.Classifier
		if err := json.Unmarshal(cached, &classifier); err != nil {
			r.logger.Warn("discarding undecodable cache entry", zap.String("classifier_id", id), zap.Error(err))
			missing = append(missing, id)
			continue
		}
		found = append(found, classifier)
	}

	if len(missing) == 0 {
		return found, nil
	}

	fetched, err := r.inner.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, classifier := range fetched {
		if encoded, err := json.Marshal(classifier); err == nil {
			if err := r.client.Set(ctx, cacheKey(classifier.ID), encoded, r.ttl).Err(); err != nil {
				r.logger.Warn("classifier cache write failed", zap.Error(err))
			}
		}
	}
	return append(found, fetched...), nil
}

func cacheKey(id string) string {
	return "classifier:" + id
}
