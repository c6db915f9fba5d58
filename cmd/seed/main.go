package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-analytics/internal/config"
	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/observability"
	"github.com/spec-kit/ticket-analytics/internal/persistence"
)

// Sample-data generator: a small classifier forest, a batch of tickets with
// weighted states, their full history streams, and a handful of reopenings.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongodb", zap.Error(err))
	}
	defer store.Close(ctx)

	db := store.DatabaseHandle()
	if cfg.Seed.Drop {
		for _, name := range []string{persistence.CollectionClassifiers, persistence.CollectionTickets, persistence.CollectionTicketHistory} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				logger.Fatal("failed to drop collection", zap.String("collection", name), zap.Error(err))
			}
		}
		logger.Info("dropped existing collections")
	}

	if cfg.Mongo.EnsureIndexes {
		if err := persistence.EnsureIndexes(ctx, db, logger); err != nil {
			logger.Fatal("failed to ensure indexes", zap.Error(err))
		}
	}

	startDate, err := time.Parse("2006-01-02", cfg.Seed.StartDate)
	if err != nil {
		logger.Fatal("invalid SEED_START_DATE", zap.Error(err))
	}

	if err := seedClassifiers(ctx, db); err != nil {
		logger.Fatal("failed to seed classifiers", zap.Error(err))
	}
	logger.Info("classifiers seeded", zap.Int("count", len(classifierForest)))

	tickets, history := generateTickets(cfg.Seed, startDate)
	history = append(history, reopenTickets(cfg.Seed, tickets)...)

	ticketDocs := make([]any, 0, len(tickets))
	for _, ticket := range tickets {
		ticketDocs = append(ticketDocs, ticket)
	}
	if _, err := db.Collection(persistence.CollectionTickets).InsertMany(ctx, ticketDocs); err != nil {
		logger.Fatal("failed to insert tickets", zap.Error(err))
	}

	historyDocs := make([]any, 0, len(history))
	for _, event := range history {
		historyDocs = append(historyDocs, event)
	}
	if _, err := db.Collection(persistence.CollectionTicketHistory).InsertMany(ctx, historyDocs); err != nil {
		logger.Fatal("failed to insert history", zap.Error(err))
	}

	logger.Info("seed complete",
		zap.Int("tickets", len(tickets)),
		zap.Int("history_events", len(history)),
	)
}

var classifierForest = []domain.Classifier{
	{ID: "services", Name: "Services", RootID: "services", Path: []string{"services"}, Level: 0},
	{ID: "maintenance", Name: "Maintenance", RootID: "services", ParentID: strptr("services"), Path: []string{"services", "maintenance"}, Level: 1},
	{ID: "cleaning", Name: "Cleaning", RootID: "services", ParentID: strptr("services"), Path: []string{"services", "cleaning"}, Level: 1},
	{ID: "security", Name: "Security", RootID: "services", ParentID: strptr("services"), Path: []string{"services", "security"}, Level: 1, IsLeaf: true},
	{ID: "maintenance_common_areas", Name: "Common Areas", RootID: "services", ParentID: strptr("maintenance"), Path: []string{"services", "maintenance", "maintenance_common_areas"}, Level: 2, IsLeaf: true},
	{ID: "maintenance_buildings", Name: "Buildings", RootID: "services", ParentID: strptr("maintenance"), Path: []string{"services", "maintenance", "maintenance_buildings"}, Level: 2, IsLeaf: true},
	{ID: "maintenance_elevators", Name: "Elevators", RootID: "services", ParentID: strptr("maintenance"), Path: []string{"services", "maintenance", "maintenance_elevators"}, Level: 2, IsLeaf: true},
	{ID: "cleaning_common_areas", Name: "Common Areas", RootID: "services", ParentID: strptr("cleaning"), Path: []string{"services", "cleaning", "cleaning_common_areas"}, Level: 2, IsLeaf: true},
}

func seedClassifiers(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(persistence.CollectionClassifiers)
	for _, classifier := range classifierForest {
		_, err := collection.ReplaceOne(ctx,
			bson.D{{Key: "_id", Value: classifier.ID}},
			classifier,
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func generateTickets(cfg config.SeedConfig, startDate time.Time) ([]domain.Ticket, []domain.HistoryEvent) {
	leaves := []domain.Classifier{}
	for _, classifier := range classifierForest {
		if classifier.IsLeaf {
			leaves = append(leaves, classifier)
		}
	}

	tickets := make([]domain.Ticket, 0, cfg.TicketCount)
	var history []domain.HistoryEvent

	for i := 1; i <= cfg.TicketCount; i++ {
		leaf := leaves[rand.Intn(len(leaves))]
		createdAt := startDate.
			AddDate(0, 0, rand.Intn(cfg.SpanDays)).
			Add(time.Duration(rand.Intn(24)) * time.Hour)
		assignee := fmt.Sprintf("user_%d", rand.Intn(10)+1)

		ticket := domain.Ticket{
			ID:           primitive.NewObjectID(),
			TicketNumber: fmt.Sprintf("TKT-%d-%04d", startDate.Year(), i),
			CurrentClassification: domain.Classification{
				RootID: leaf.RootID,
				NodeID: leaf.ID,
				Path:   leaf.Path,
			},
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
			AssignedTo: &assignee,
			Metadata: map[string]any{
				"priority":    []string{"high", "medium", "low"}[rand.Intn(3)],
				"customer_id": uuid.NewString(),
			},
		}

		// Weighted states: 70% closed, 20% in progress, 10% open.
		switch roll := rand.Float64(); {
		case roll < 0.7:
			ticket.CurrentState = domain.TicketStateClosed
			closedAt := createdAt.Add(time.Duration(rand.Intn(72)+1) * time.Hour)
			ticket.ClosedAt = &closedAt
			ticket.UpdatedAt = closedAt
		case roll < 0.9:
			ticket.CurrentState = domain.TicketStateInProgress
		default:
			ticket.CurrentState = domain.TicketStateOpen
		}

		history = append(history, domain.HistoryEvent{
			TicketID:    ticket.ID,
			ActionType:  domain.ActionTicketCreated,
			Timestamp:   createdAt,
			PerformedBy: &assignee,
			Changes: map[string]any{
				"initial_state":          string(domain.TicketStateOpen),
				"initial_classification": leaf.ID,
			},
		})

		if ticket.CurrentState != domain.TicketStateOpen {
			history = append(history, stateChange(ticket.ID, assignee,
				createdAt.Add(time.Duration(rand.Intn(24))*time.Hour),
				domain.TicketStateOpen, domain.TicketStateInProgress))
		}
		if ticket.CurrentState == domain.TicketStateClosed && ticket.ClosedAt != nil {
			history = append(history, stateChange(ticket.ID, assignee,
				*ticket.ClosedAt,
				domain.TicketStateInProgress, domain.TicketStateClosed))
		}

		for c := 0; c < rand.Intn(3); c++ {
			commenter := fmt.Sprintf("user_%d", rand.Intn(10)+1)
			history = append(history, domain.HistoryEvent{
				TicketID:    ticket.ID,
				ActionType:  domain.ActionComment,
				Timestamp:   createdAt.Add(time.Duration(rand.Intn(48)) * time.Hour),
				PerformedBy: &commenter,
				Changes: map[string]any{
					"content": fmt.Sprintf("sample comment %d on %s", c+1, ticket.TicketNumber),
				},
			})
		}

		tickets = append(tickets, ticket)
	}

	return tickets, history
}

// reopenTickets flips a batch of closed tickets back to open, wiping
// closed_at the way the writers do, and appends the reopening events.
func reopenTickets(cfg config.SeedConfig, tickets []domain.Ticket) []domain.HistoryEvent {
	var events []domain.HistoryEvent
	reopened := 0
	for i := range tickets {
		if reopened >= cfg.Reopenings {
			break
		}
		ticket := &tickets[i]
		if ticket.CurrentState != domain.TicketStateClosed || ticket.ClosedAt == nil {
			continue
		}
		reopenedAt := ticket.ClosedAt.AddDate(0, 0, rand.Intn(5)+1)
		assignee := "user_1"
		if ticket.AssignedTo != nil {
			assignee = *ticket.AssignedTo
		}
		events = append(events, stateChange(ticket.ID, assignee, reopenedAt,
			domain.TicketStateClosed, domain.TicketStateOpen))

		ticket.CurrentState = domain.TicketStateOpen
		ticket.ClosedAt = nil
		ticket.UpdatedAt = reopenedAt
		reopened++
	}
	return events
}

func stateChange(ticketID primitive.ObjectID, performer string, at time.Time, from, to domain.TicketState) domain.HistoryEvent {
	return domain.HistoryEvent{
		TicketID:    ticketID,
		ActionType:  domain.ActionStateChange,
		Timestamp:   at,
		PerformedBy: &performer,
		Changes: map[string]any{
			"field":     "state",
			"old_value": string(from),
			"new_value": string(to),
		},
	}
}

func strptr(s string) *string {
	return &s
}
