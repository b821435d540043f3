package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/wms-platform/coordination-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TicketRepository implements domain.TicketRepository using MongoDB
type TicketRepository struct {
	collection *mongo.Collection
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *mongo.Database) *TicketRepository {
	repo := &TicketRepository{
		collection: db.Collection("tickets"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

// ensureIndexes creates the necessary indexes
func (r *TicketRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ticketId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "reference.taskId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "assignedTo", Value: 1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Create persists a new ticket
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if _, err := r.collection.InsertOne(ctx, ticket); err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

// FindByID retrieves a ticket by its ID
func (r *TicketRepository) FindByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.collection.FindOne(ctx, bson.M{"ticketId": ticketID}).Decode(&ticket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// Find lists tickets filtered by status and priority, newest first. Empty
// filter values match everything.
func (r *TicketRepository) Find(ctx context.Context, status domain.TicketStatus, priority domain.TicketPriority, limit int) ([]*domain.Ticket, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if priority != "" {
		filter["priority"] = priority
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []*domain.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// Assign moves an open ticket to in_progress in one conditional write
func (r *TicketRepository) Assign(ctx context.Context, ticketID, assignee string) (*domain.Ticket, error) {
	filter := bson.M{
		"ticketId": ticketID,
		"status":   domain.TicketStatusOpen,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     domain.TicketStatusInProgress,
			"assignedTo": assignee,
			"updatedAt":  time.Now().UTC(),
		},
	}

	ticket, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.diagnoseFailure(ctx, ticketID, func(t *domain.Ticket) error {
			return t.Assign(assignee)
		})
	}
	return ticket, err
}

// Resolve records the resolution of an in_progress ticket
func (r *TicketRepository) Resolve(ctx context.Context, ticketID, resolution, resolvedBy string) (*domain.Ticket, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"ticketId": ticketID,
		"status":   domain.TicketStatusInProgress,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     domain.TicketStatusResolved,
			"resolution": resolution,
			"resolvedBy": resolvedBy,
			"resolvedAt": now,
			"updatedAt":  now,
		},
	}

	ticket, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.diagnoseFailure(ctx, ticketID, func(t *domain.Ticket) error {
			return t.Resolve(resolution, resolvedBy)
		})
	}
	return ticket, err
}

// Close closes a resolved ticket
func (r *TicketRepository) Close(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	filter := bson.M{
		"ticketId": ticketID,
		"status":   domain.TicketStatusResolved,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.TicketStatusClosed,
			"updatedAt": time.Now().UTC(),
		},
	}

	ticket, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.diagnoseFailure(ctx, ticketID, func(t *domain.Ticket) error {
			return t.Close()
		})
	}
	return ticket, err
}

// Reopen returns a non-open ticket to open, clearing resolution fields and
// the assignee in the same write.
func (r *TicketRepository) Reopen(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	filter := bson.M{
		"ticketId": ticketID,
		"status":   bson.M{"$ne": domain.TicketStatusOpen},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.TicketStatusOpen,
			"updatedAt": time.Now().UTC(),
		},
		"$unset": bson.M{
			"resolution": "",
			"resolvedBy": "",
			"resolvedAt": "",
			"assignedTo": "",
		},
		"$inc": bson.M{
			"reopenCount": 1,
		},
	}

	ticket, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.diagnoseFailure(ctx, ticketID, func(t *domain.Ticket) error {
			return t.Reopen()
		})
	}
	return ticket, err
}

// Stats aggregates ticket counts by status plus open high-or-critical tickets
func (r *TicketRepository) Stats(ctx context.Context) (*domain.TicketStats, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Status domain.TicketStatus `bson:"_id"`
		Count  int64               `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	stats := &domain.TicketStats{}
	for _, result := range results {
		switch result.Status {
		case domain.TicketStatusOpen:
			stats.Open = result.Count
		case domain.TicketStatusInProgress:
			stats.InProgress = result.Count
		case domain.TicketStatusResolved:
			stats.Resolved = result.Count
		case domain.TicketStatusClosed:
			stats.Closed = result.Count
		}
	}

	highOpen, err := r.collection.CountDocuments(ctx, bson.M{
		"status":   domain.TicketStatusOpen,
		"priority": bson.M{"$in": []domain.TicketPriority{domain.PriorityHigh, domain.PriorityCritical}},
	})
	if err != nil {
		return nil, err
	}
	stats.HighPriorityOpen = highOpen

	return stats, nil
}

func (r *TicketRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Ticket, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ticket domain.Ticket
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// diagnoseFailure re-reads the ticket after a conditional write matched
// nothing and replays the transition in memory to recover the domain error.
func (r *TicketRepository) diagnoseFailure(ctx context.Context, ticketID string, transition func(*domain.Ticket) error) error {
	ticket, err := r.FindByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := transition(ticket); err != nil {
		return err
	}
	return domain.ErrTicketNotFound
}
