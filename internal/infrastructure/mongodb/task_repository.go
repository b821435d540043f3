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

// TaskRepository implements domain.TaskRepository using MongoDB. Every
// transition is a single FindOneAndUpdate whose filter encodes the required
// current state, so two workers racing for the same task can never both win.
type TaskRepository struct {
	collection *mongo.Collection
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *mongo.Database) *TaskRepository {
	repo := &TaskRepository{
		collection: db.Collection("tasks"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

// ensureIndexes creates the necessary indexes
func (r *TaskRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "taskId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "kind", Value: 1}, {Key: "createdAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "claimedBy", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "pick.shipmentId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "pick.waveId", Value: 1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Create persists a new task
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if _, err := r.collection.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// CreateMany persists a batch of tasks
func (r *TaskRepository) CreateMany(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(tasks))
	for _, task := range tasks {
		docs = append(docs, task)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert tasks: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID
func (r *TaskRepository) FindByID(ctx context.Context, taskID string) (*domain.Task, error) {
	var task domain.Task
	err := r.collection.FindOne(ctx, bson.M{"taskId": taskID}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindPending lists pending tasks of one kind, oldest first. For pick tasks
// the waveIDs slice restricts results to released waves.
func (r *TaskRepository) FindPending(ctx context.Context, kind domain.TaskKind, waveIDs []string, limit int) ([]*domain.Task, error) {
	filter := bson.M{
		"status": domain.TaskStatusPending,
		"kind":   kind,
	}
	if kind == domain.KindPick && len(waveIDs) > 0 {
		filter["pick.waveId"] = bson.M{"$in": waveIDs}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*domain.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindInProgressByWorker lists the tasks currently claimed by a worker
func (r *TaskRepository) FindInProgressByWorker(ctx context.Context, workerID string) ([]*domain.Task, error) {
	filter := bson.M{
		"status":    domain.TaskStatusInProgress,
		"claimedBy": workerID,
	}
	opts := options.Find().SetSort(bson.D{{Key: "claimedAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*domain.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountIncompletePicks counts pick tasks for a shipment that are not completed
func (r *TaskRepository) CountIncompletePicks(ctx context.Context, shipmentID string) (int64, error) {
	filter := bson.M{
		"kind":            domain.KindPick,
		"pick.shipmentId": shipmentID,
		"status":          bson.M{"$ne": domain.TaskStatusCompleted},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// Claim atomically assigns a pending task to a worker. The filter requires
// status == pending, so at most one concurrent claimer succeeds; losers get
// the precise conflict error diagnosed from the task's actual state.
func (r *TaskRepository) Claim(ctx context.Context, taskID, workerID string) (*domain.Task, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"taskId": taskID,
		"status": domain.TaskStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.TaskStatusInProgress,
			"claimedBy": workerID,
			"claimedAt": now,
			"updatedAt": now,
		},
	}

	task, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.diagnoseFailure(ctx, taskID, func(t *domain.Task) error {
			return t.Claim(workerID)
		})
	}
	return task, err
}

// Release atomically returns a task claimed by workerID to the pool
func (r *TaskRepository) Release(ctx context.Context, taskID, workerID string) (*domain.Task, error) {
	filter := bson.M{
		"taskId":    taskID,
		"status":    domain.TaskStatusInProgress,
		"claimedBy": workerID,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.TaskStatusPending,
			"updatedAt": time.Now().UTC(),
		},
		"$unset": bson.M{
			"claimedBy": "",
			"claimedAt": "",
		},
	}

	task, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.diagnoseFailure(ctx, taskID, func(t *domain.Task) error {
			return t.Release(workerID)
		})
	}
	return task, err
}

// Complete atomically completes a task claimed by workerID
func (r *TaskRepository) Complete(ctx context.Context, taskID, workerID string) (*domain.Task, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"taskId":    taskID,
		"status":    domain.TaskStatusInProgress,
		"claimedBy": workerID,
	}
	update := bson.M{
		"$set": bson.M{
			"status":      domain.TaskStatusCompleted,
			"completedAt": now,
			"updatedAt":   now,
		},
	}

	task, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.diagnoseFailure(ctx, taskID, func(t *domain.Task) error {
			return t.Complete(workerID)
		})
	}
	return task, err
}

// CompleteCount completes a count task, writing the counted quantity and
// variance in the same conditional write that flips the status.
func (r *TaskRepository) CompleteCount(ctx context.Context, taskID, workerID string, countedQuantity, variance int) (*domain.Task, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"taskId":    taskID,
		"kind":      domain.KindCount,
		"status":    domain.TaskStatusInProgress,
		"claimedBy": workerID,
	}
	update := bson.M{
		"$set": bson.M{
			"status":                domain.TaskStatusCompleted,
			"count.countedQuantity": countedQuantity,
			"count.variance":        variance,
			"completedAt":           now,
			"updatedAt":             now,
		},
	}

	task, err := r.findOneAndUpdate(ctx, filter, update)
	if err == mongo.ErrNoDocuments {
		return nil, r.diagnoseFailure(ctx, taskID, func(t *domain.Task) error {
			return t.CompleteCount(workerID, countedQuantity)
		})
	}
	return task, err
}

func (r *TaskRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task domain.Task
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

// diagnoseFailure re-reads the task after a conditional write matched nothing
// and replays the transition in memory to recover the exact domain error.
func (r *TaskRepository) diagnoseFailure(ctx context.Context, taskID string, transition func(*domain.Task) error) error {
	task, err := r.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := transition(task); err != nil {
		return err
	}
	// The task changed between the write and the re-read. Treat it as a
	// claim race the caller should retry.
	return domain.ErrTaskAlreadyClaimed
}
