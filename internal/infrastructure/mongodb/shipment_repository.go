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

// ShipmentRepository implements domain.ShipmentRepository using MongoDB.
// Pack and ship transitions are single conditional writes; the pack filter
// also encodes "every line picked" so the gate cannot race with a concurrent
// line pick.
type ShipmentRepository struct {
	collection *mongo.Collection
}

// NewShipmentRepository creates a new ShipmentRepository
func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	repo := &ShipmentRepository{
		collection: db.Collection("shipments"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

// ensureIndexes creates the necessary indexes
func (r *ShipmentRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shipmentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "waveId", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Create persists a new shipment
func (r *ShipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	if _, err := r.collection.InsertOne(ctx, shipment); err != nil {
		return fmt.Errorf("failed to insert shipment: %w", err)
	}
	return nil
}

// FindByID retrieves a shipment by its ID
func (r *ShipmentRepository) FindByID(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := r.collection.FindOne(ctx, bson.M{"shipmentId": shipmentID}).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByWaveID retrieves all shipments of a wave
func (r *ShipmentRepository) FindByWaveID(ctx context.Context, waveID string) ([]*domain.Shipment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"waveId": waveID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shipments []*domain.Shipment
	if err := cursor.All(ctx, &shipments); err != nil {
		return nil, err
	}
	return shipments, nil
}

// AssignToWave attaches an unassigned shipment to a wave
func (r *ShipmentRepository) AssignToWave(ctx context.Context, shipmentID, waveID string) error {
	filter := bson.M{
		"shipmentId": shipmentID,
		"waveId":     bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"waveId":    waveID,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, findErr := r.FindByID(ctx, shipmentID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("shipment %s already assigned to a wave", shipmentID)
	}
	return nil
}

// MarkPicking moves all pending shipments of a wave to picking
func (r *ShipmentRepository) MarkPicking(ctx context.Context, waveID string) error {
	filter := bson.M{
		"waveId": waveID,
		"status": domain.ShipmentStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.ShipmentStatusPicking,
			"updatedAt": time.Now().UTC(),
		},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// MarkLinePicked sets one line's pick status to picked
func (r *ShipmentRepository) MarkLinePicked(ctx context.Context, shipmentID, lineID string) error {
	filter := bson.M{
		"shipmentId":   shipmentID,
		"lines.lineId": lineID,
	}
	update := bson.M{
		"$set": bson.M{
			"lines.$.pickStatus": domain.LineStatusPicked,
			"updatedAt":          time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, findErr := r.FindByID(ctx, shipmentID); findErr != nil {
			return findErr
		}
		return domain.ErrShipmentLineNotFound
	}
	return nil
}

// StartPacking packs a shipment in one conditional write. The filter requires
// a pre-packed status and no line whose pick status is not picked.
func (r *ShipmentRepository) StartPacking(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"shipmentId": shipmentID,
		"status":     bson.M{"$in": []domain.ShipmentStatus{domain.ShipmentStatusPending, domain.ShipmentStatusPicking}},
		"lines": bson.M{
			"$not": bson.M{
				"$elemMatch": bson.M{
					"pickStatus": bson.M{"$ne": domain.LineStatusPicked},
				},
			},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.ShipmentStatusPacked,
			"packedAt":  now,
			"updatedAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var shipment domain.Shipment
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&shipment)
	if err == mongo.ErrNoDocuments {
		return nil, r.diagnoseFailure(ctx, shipmentID, func(s *domain.Shipment) error {
			return s.StartPacking()
		})
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// ConfirmShip moves a packed shipment to shipped, stamping carrier, tracking
// number and hand-off details in one conditional write.
func (r *ShipmentRepository) ConfirmShip(ctx context.Context, shipmentID string, carrier domain.Carrier, trackingNumber, shippedBy string, weightKg float64) (*domain.Shipment, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"shipmentId": shipmentID,
		"status":     domain.ShipmentStatusPacked,
	}
	update := bson.M{
		"$set": bson.M{
			"status":         domain.ShipmentStatusShipped,
			"carrier":        carrier,
			"trackingNumber": trackingNumber,
			"shippedBy":      shippedBy,
			"weightKg":       weightKg,
			"shippedAt":      now,
			"updatedAt":      now,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var shipment domain.Shipment
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&shipment)
	if err == mongo.ErrNoDocuments {
		return nil, r.diagnoseFailure(ctx, shipmentID, func(s *domain.Shipment) error {
			return s.ConfirmShip(carrier, shippedBy, weightKg)
		})
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// diagnoseFailure re-reads the shipment after a conditional write matched
// nothing and replays the transition in memory to recover the domain error.
func (r *ShipmentRepository) diagnoseFailure(ctx context.Context, shipmentID string, transition func(*domain.Shipment) error) error {
	shipment, err := r.FindByID(ctx, shipmentID)
	if err != nil {
		return err
	}
	if err := transition(shipment); err != nil {
		return err
	}
	return domain.ErrShipmentNotFound
}
