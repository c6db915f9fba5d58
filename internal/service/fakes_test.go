package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/repository"
)

// stubResolver returns a fixed selection without consulting a taxonomy.
type stubResolver struct {
	selection   Selection
	err         error
	sawDeadline bool
}

func (r *stubResolver) Resolve(ctx context.Context, ids []string) (Selection, error) {
	_, r.sawDeadline = ctx.Deadline()
	if r.err != nil {
		return Selection{}, r.err
	}
	if len(ids) == 0 {
		return Selection{}, nil
	}
	if r.selection.Empty() {
		return Selection{NodeIDs: ids}, nil
	}
	return r.selection, nil
}

// fakeTicketRepo evaluates TicketQuery semantics over an in-memory slice,
// mirroring the store contract: creation time descending, ticket number
// ascending on ties.
type fakeTicketRepo struct {
	tickets   []domain.Ticket
	err       error
	lastQuery repository.TicketQuery
	listCalls int
}

func (f *fakeTicketRepo) ListPage(ctx context.Context, query repository.TicketQuery, skip, limit int) ([]domain.Ticket, int64, error) {
	f.lastQuery = query
	f.listCalls++
	if f.err != nil {
		return nil, 0, f.err
	}
	matched := f.matching(query)
	total := int64(len(matched))
	if skip >= len(matched) {
		return nil, total, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (f *fakeTicketRepo) CountCreated(ctx context.Context, query repository.TicketQuery) (int64, error) {
	f.lastQuery = query
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.matching(query))), nil
}

func (f *fakeTicketRepo) IntakeDistribution(ctx context.Context, query repository.TicketQuery, dateFormat string) ([]repository.IntakeBucket, error) {
	if f.err != nil {
		return nil, f.err
	}
	grouped := map[string][]string{}
	for _, ticket := range f.matching(query) {
		key := bucketKey(dateFormat, ticket.CreatedAt)
		grouped[key] = append(grouped[key], ticket.TicketNumber)
	}
	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	buckets := make([]repository.IntakeBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, repository.IntakeBucket{
			Period:        key,
			Count:         int64(len(grouped[key])),
			TicketNumbers: grouped[key],
		})
	}
	return buckets, nil
}

func (f *fakeTicketRepo) matching(query repository.TicketQuery) []domain.Ticket {
	var matched []domain.Ticket
	for _, ticket := range f.tickets {
		if matchesTicketQuery(ticket, query) {
			matched = append(matched, ticket)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].TicketNumber < matched[j].TicketNumber
	})
	return matched
}

func matchesTicketQuery(ticket domain.Ticket, query repository.TicketQuery) bool {
	if w := query.ActiveDuring; w != nil && w.Closed() {
		if !ticket.CreatedAt.Before(*w.End) {
			return false
		}
		stillOpen := ticket.ClosedAt == nil
		closedInOrAfter := ticket.ClosedAt != nil && !ticket.ClosedAt.Before(*w.Start)
		if !stillOpen && !closedInOrAfter {
			return false
		}
	}
	if w := query.CreatedDuring; w != nil {
		if w.Start != nil && ticket.CreatedAt.Before(*w.Start) {
			return false
		}
		if w.End != nil && !ticket.CreatedAt.Before(*w.End) {
			return false
		}
	}
	if query.State != nil && ticket.CurrentState != *query.State {
		return false
	}
	if len(query.PathAnyOf) > 0 && !pathContainsAny(ticket.CurrentClassification.Path, query.PathAnyOf) {
		return false
	}
	return true
}

func pathContainsAny(path, nodeIDs []string) bool {
	for _, node := range nodeIDs {
		for _, segment := range path {
			if segment == node {
				return true
			}
		}
	}
	return false
}

// bucketKey mirrors the store's $dateToString for the formats the engine
// emits.
func bucketKey(format string, t time.Time) string {
	switch format {
	case "%Y-%m-%d %H:00":
		return t.Format("2006-01-02 15:00")
	case "%Y-%m-%d":
		return t.Format("2006-01-02")
	case "%G-W%V":
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case "%Y-%m":
		return t.Format("2006-01")
	}
	return t.Format(time.RFC3339)
}

// fakeHistoryRepo evaluates history queries over in-memory events joined to
// an in-memory ticket map.
type fakeHistoryRepo struct {
	events    []domain.HistoryEvent
	tickets   map[primitive.ObjectID]domain.Ticket
	err       error
	listCalls int
}

func (f *fakeHistoryRepo) ListPage(ctx context.Context, query repository.ActionQuery, skip, limit int) ([]repository.ActionRecord, int64, error) {
	f.listCalls++
	if f.err != nil {
		return nil, 0, f.err
	}
	var matched []domain.HistoryEvent
	for _, event := range f.events {
		if matchesActionQuery(event, query) {
			matched = append(matched, event)
		}
	}
	// Mirrors the store contract: timestamp descending, event id ascending
	// on ties.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].ID.Hex() < matched[j].ID.Hex()
	})
	total := int64(len(matched))
	if skip >= len(matched) {
		return nil, total, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	records := make([]repository.ActionRecord, 0, end-skip)
	for _, event := range matched[skip:end] {
		record := repository.ActionRecord{HistoryEvent: event}
		if ticket, ok := f.tickets[event.TicketID]; ok {
			record.TicketNumber = ticket.TicketNumber
			record.TicketState = ticket.CurrentState
		}
		records = append(records, record)
	}
	return records, total, nil
}

func matchesActionQuery(event domain.HistoryEvent, query repository.ActionQuery) bool {
	if query.TicketID != nil && event.TicketID != *query.TicketID {
		return false
	}
	if len(query.ActionTypes) > 0 {
		found := false
		for _, actionType := range query.ActionTypes {
			if event.ActionType == actionType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return inWindow(event.Timestamp, query.Window)
}

func (f *fakeHistoryRepo) CountTransitions(ctx context.Context, query repository.TransitionQuery) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var total int64
	for _, event := range f.events {
		if f.matchesTransition(event, query) {
			total++
		}
	}
	return total, nil
}

func (f *fakeHistoryRepo) TransitionsByTicket(ctx context.Context, query repository.TransitionQuery) ([]repository.TicketTransitions, error) {
	if f.err != nil {
		return nil, f.err
	}
	grouped := map[primitive.ObjectID][]time.Time{}
	for _, event := range f.events {
		if f.matchesTransition(event, query) {
			grouped[event.TicketID] = append(grouped[event.TicketID], event.Timestamp)
		}
	}
	details := make([]repository.TicketTransitions, 0, len(grouped))
	for ticketID, timestamps := range grouped {
		sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })
		detail := repository.TicketTransitions{
			TicketID:   ticketID,
			Count:      int64(len(timestamps)),
			Timestamps: timestamps,
		}
		if ticket, ok := f.tickets[ticketID]; ok {
			detail.TicketNumber = ticket.TicketNumber
		}
		details = append(details, detail)
	}
	sort.Slice(details, func(i, j int) bool {
		if details[i].Count != details[j].Count {
			return details[i].Count > details[j].Count
		}
		return details[i].TicketID.Hex() < details[j].TicketID.Hex()
	})
	return details, nil
}

func (f *fakeHistoryRepo) ResolutionStats(ctx context.Context, query repository.TransitionQuery) (repository.ResolutionAggregate, error) {
	if f.err != nil {
		return repository.ResolutionAggregate{}, f.err
	}
	var aggregate repository.ResolutionAggregate
	for _, event := range f.events {
		if !f.matchesTransition(event, query) {
			continue
		}
		ticket, ok := f.tickets[event.TicketID]
		if !ok {
			continue
		}
		hours := event.Timestamp.Sub(ticket.CreatedAt).Hours()
		if aggregate.Count == 0 {
			aggregate.MinHours = hours
			aggregate.MaxHours = hours
		} else {
			if hours < aggregate.MinHours {
				aggregate.MinHours = hours
			}
			if hours > aggregate.MaxHours {
				aggregate.MaxHours = hours
			}
		}
		aggregate.AvgHours = (aggregate.AvgHours*float64(aggregate.Count) + hours) / float64(aggregate.Count+1)
		aggregate.Count++
	}
	return aggregate, nil
}

func (f *fakeHistoryRepo) matchesTransition(event domain.HistoryEvent, query repository.TransitionQuery) bool {
	if !event.MatchesTransition(query.Kind) {
		return false
	}
	if !inWindow(event.Timestamp, query.Window) {
		return false
	}
	if query.NeedsTicketJoin() {
		ticket, ok := f.tickets[event.TicketID]
		if !ok {
			return false
		}
		if !pathContainsAny(ticket.CurrentClassification.Path, query.PathAnyOf) {
			return false
		}
	}
	return true
}

func inWindow(at time.Time, window repository.TimeWindow) bool {
	if window.Start != nil && at.Before(*window.Start) {
		return false
	}
	if window.End != nil && !at.Before(*window.End) {
		return false
	}
	return true
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func date(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return parsed
}
