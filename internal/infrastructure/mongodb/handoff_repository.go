package mongodb

import (
	"context"
	"fmt"

	"github.com/wms-platform/coordination-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HandOffRepository implements domain.HandOffRepository using MongoDB.
// The hand-off log is append-only; there are no update or delete paths.
type HandOffRepository struct {
	collection *mongo.Collection
}

// NewHandOffRepository creates a new HandOffRepository
func NewHandOffRepository(db *mongo.Database) *HandOffRepository {
	repo := &HandOffRepository{
		collection: db.Collection("handoffs"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

// ensureIndexes creates the necessary indexes
func (r *HandOffRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "handOffId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "shipmentId", Value: 1}, {Key: "recordedAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "trackingNumber", Value: 1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Append inserts a hand-off record
func (r *HandOffRepository) Append(ctx context.Context, record *domain.HandOffRecord) error {
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to append hand-off record: %w", err)
	}
	return nil
}

// FindByShipmentID lists hand-off records for a shipment in recorded order
func (r *HandOffRepository) FindByShipmentID(ctx context.Context, shipmentID string) ([]*domain.HandOffRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recordedAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"shipmentId": shipmentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*domain.HandOffRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
