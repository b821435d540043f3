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

// WaveRepository implements domain.WaveRepository using MongoDB
type WaveRepository struct {
	collection *mongo.Collection
}

// NewWaveRepository creates a new WaveRepository
func NewWaveRepository(db *mongo.Database) *WaveRepository {
	repo := &WaveRepository{
		collection: db.Collection("waves"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

// ensureIndexes creates the necessary indexes
func (r *WaveRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "waveId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Create persists a new wave
func (r *WaveRepository) Create(ctx context.Context, wave *domain.Wave) error {
	if _, err := r.collection.InsertOne(ctx, wave); err != nil {
		return fmt.Errorf("failed to insert wave: %w", err)
	}
	return nil
}

// FindByID retrieves a wave by its ID
func (r *WaveRepository) FindByID(ctx context.Context, waveID string) (*domain.Wave, error) {
	var wave domain.Wave
	err := r.collection.FindOne(ctx, bson.M{"waveId": waveID}).Decode(&wave)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrWaveNotFound
		}
		return nil, err
	}
	return &wave, nil
}

// Release flips the wave from pending to picking in one conditional write,
// stamping ReleasedAt exactly once.
func (r *WaveRepository) Release(ctx context.Context, waveID string) (*domain.Wave, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"waveId": waveID,
		"status": domain.WaveStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     domain.WaveStatusPicking,
			"releasedAt": now,
			"updatedAt":  now,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var wave domain.Wave
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&wave)
	if err == mongo.ErrNoDocuments {
		if _, findErr := r.FindByID(ctx, waveID); findErr != nil {
			return nil, findErr
		}
		return nil, domain.ErrWaveAlreadyReleased
	}
	if err != nil {
		return nil, err
	}
	return &wave, nil
}

// FindPickingWaveIDs returns the IDs of all waves currently in picking
func (r *WaveRepository) FindPickingWaveIDs(ctx context.Context) ([]string, error) {
	filter := bson.M{"status": domain.WaveStatusPicking}
	opts := options.Find().SetProjection(bson.M{"waveId": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		WaveID string `bson:"waveId"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.WaveID)
	}
	return ids, nil
}
