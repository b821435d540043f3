package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task domain errors
var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskAlreadyClaimed     = errors.New("task already claimed")
	ErrTaskAlreadyCompleted   = errors.New("task already completed")
	ErrTaskNotClaimedByCaller = errors.New("task not claimed by caller")
	ErrUnknownTaskKind        = errors.New("unknown task kind")
	ErrNegativeCountedQty     = errors.New("counted quantity must not be negative")
	ErrNotCountTask           = errors.New("task is not a count task")
)

// TaskKind identifies the kind of warehouse work a task represents
type TaskKind string

const (
	KindPick    TaskKind = "pick"
	KindPutaway TaskKind = "putaway"
	KindCount   TaskKind = "count"
)

// ParseTaskKind validates a task kind string
func ParseTaskKind(s string) (TaskKind, error) {
	switch TaskKind(s) {
	case KindPick, KindPutaway, KindCount:
		return TaskKind(s), nil
	}
	return "", ErrUnknownTaskKind
}

// TaskStatus represents the status of a task in the claim pool
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// PickDetail carries the pick-specific payload of a task
type PickDetail struct {
	WaveID     string `bson:"waveId" json:"waveId"`
	ShipmentID string `bson:"shipmentId" json:"shipmentId"`
	LineID     string `bson:"lineId" json:"lineId"`
}

// PutawayDetail carries the putaway-specific payload of a task
type PutawayDetail struct {
	ASNID      string `bson:"asnId" json:"asnId"`
	ToLocation string `bson:"toLocation" json:"toLocation"`
}

// CountDetail carries the cycle-count payload of a task. SystemQuantity is
// captured at task creation and withheld from workers until the count is
// submitted (blind count). Variance is computed exactly once, at completion.
type CountDetail struct {
	SystemQuantity  int  `bson:"systemQuantity" json:"systemQuantity"`
	CountedQuantity *int `bson:"countedQuantity,omitempty" json:"countedQuantity,omitempty"`
	Variance        *int `bson:"variance,omitempty" json:"variance,omitempty"`
}

// Task is a discrete unit of warehouse work published to the shared claim
// pool. A task is claimed by at most one worker at a time; all transitions
// go through conditional writes keyed on the current status and claimant.
type Task struct {
	ID          string     `bson:"taskId" json:"taskId"`
	Kind        TaskKind   `bson:"kind" json:"kind"`
	Status      TaskStatus `bson:"status" json:"status"`
	SKU         string     `bson:"sku" json:"sku"`
	Quantity    int        `bson:"quantity" json:"quantity"`
	Location    string     `bson:"locationId" json:"locationId"`
	ClaimedBy   *string    `bson:"claimedBy,omitempty" json:"claimedBy,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	ClaimedAt   *time.Time `bson:"claimedAt,omitempty" json:"claimedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`

	// Exactly one of these is set, matching Kind.
	Pick    *PickDetail    `bson:"pick,omitempty" json:"pick,omitempty"`
	Putaway *PutawayDetail `bson:"putaway,omitempty" json:"putaway,omitempty"`
	Count   *CountDetail   `bson:"count,omitempty" json:"count,omitempty"`

	domainEvents []DomainEvent `bson:"-"`
}

// NewPickTask creates a pending pick task for one shipment line
func NewPickTask(waveID, shipmentID string, line ShipmentLine) *Task {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New().String(),
		Kind:      KindPick,
		Status:    TaskStatusPending,
		SKU:       line.SKU,
		Quantity:  line.Quantity,
		Location:  line.Location,
		CreatedAt: now,
		UpdatedAt: now,
		Pick: &PickDetail{
			WaveID:     waveID,
			ShipmentID: shipmentID,
			LineID:     line.LineID,
		},
	}

	task.AddDomainEvent(&TaskCreatedEvent{
		TaskID:    task.ID,
		Kind:      string(KindPick),
		SKU:       line.SKU,
		Location:  line.Location,
		CreatedAt: now,
	})

	return task
}

// NewPutawayTask creates a pending putaway task
func NewPutawayTask(asnID, sku string, quantity int, fromLocation, toLocation string) *Task {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New().String(),
		Kind:      KindPutaway,
		Status:    TaskStatusPending,
		SKU:       sku,
		Quantity:  quantity,
		Location:  fromLocation,
		CreatedAt: now,
		UpdatedAt: now,
		Putaway: &PutawayDetail{
			ASNID:      asnID,
			ToLocation: toLocation,
		},
	}

	task.AddDomainEvent(&TaskCreatedEvent{
		TaskID:    task.ID,
		Kind:      string(KindPutaway),
		SKU:       sku,
		Location:  fromLocation,
		CreatedAt: now,
	})

	return task
}

// NewCountTask creates a pending blind count task. The system quantity is
// recorded now, before any worker can see the task.
func NewCountTask(locationID, sku string, systemQuantity int) *Task {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New().String(),
		Kind:      KindCount,
		Status:    TaskStatusPending,
		SKU:       sku,
		Location:  locationID,
		CreatedAt: now,
		UpdatedAt: now,
		Count: &CountDetail{
			SystemQuantity: systemQuantity,
		},
	}

	task.AddDomainEvent(&TaskCreatedEvent{
		TaskID:    task.ID,
		Kind:      string(KindCount),
		SKU:       sku,
		Location:  locationID,
		CreatedAt: now,
	})

	return task
}

// Claim transitions the task from pending to in_progress for the given worker.
// The persisted equivalent is a conditional write on status == pending; this
// method carries the same guard for in-memory use and conflict diagnosis.
func (t *Task) Claim(workerID string) error {
	switch t.Status {
	case TaskStatusCompleted:
		return ErrTaskAlreadyCompleted
	case TaskStatusInProgress:
		return ErrTaskAlreadyClaimed
	}

	now := time.Now().UTC()
	t.Status = TaskStatusInProgress
	t.ClaimedBy = &workerID
	t.ClaimedAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskClaimedEvent{
		TaskID:    t.ID,
		Kind:      string(t.Kind),
		WorkerID:  workerID,
		ClaimedAt: now,
	})

	return nil
}

// Release returns a claimed task to the pool, clearing the claimant. Only the
// current claimant may release.
func (t *Task) Release(workerID string) error {
	if !t.claimedByCaller(workerID) {
		return ErrTaskNotClaimedByCaller
	}

	now := time.Now().UTC()
	t.Status = TaskStatusPending
	t.ClaimedBy = nil
	t.ClaimedAt = nil
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskReleasedEvent{
		TaskID:     t.ID,
		Kind:       string(t.Kind),
		WorkerID:   workerID,
		ReleasedAt: now,
	})

	return nil
}

// Complete transitions an in_progress task claimed by the caller to completed
func (t *Task) Complete(workerID string) error {
	if !t.claimedByCaller(workerID) {
		return ErrTaskNotClaimedByCaller
	}

	now := time.Now().UTC()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskCompletedEvent{
		TaskID:      t.ID,
		Kind:        string(t.Kind),
		WorkerID:    workerID,
		CompletedAt: now,
	})

	return nil
}

// CompleteCount completes a count task with the worker-submitted quantity and
// records the variance (system minus counted), even when it is zero.
func (t *Task) CompleteCount(workerID string, countedQuantity int) error {
	if t.Kind != KindCount || t.Count == nil {
		return ErrNotCountTask
	}
	if countedQuantity < 0 {
		return ErrNegativeCountedQty
	}
	if !t.claimedByCaller(workerID) {
		return ErrTaskNotClaimedByCaller
	}

	variance := t.Count.SystemQuantity - countedQuantity
	t.Count.CountedQuantity = &countedQuantity
	t.Count.Variance = &variance

	return t.Complete(workerID)
}

func (t *Task) claimedByCaller(workerID string) bool {
	return t.Status == TaskStatusInProgress && t.ClaimedBy != nil && *t.ClaimedBy == workerID
}

// HasVariance reports whether a completed count task found a non-zero variance
func (t *Task) HasVariance() bool {
	return t.Count != nil && t.Count.Variance != nil && *t.Count.Variance != 0
}

// AddDomainEvent adds a domain event to the task
func (t *Task) AddDomainEvent(event DomainEvent) {
	t.domainEvents = append(t.domainEvents, event)
}

// GetDomainEvents returns all domain events
func (t *Task) GetDomainEvents() []DomainEvent {
	return t.domainEvents
}

// ClearDomainEvents clears all domain events
func (t *Task) ClearDomainEvents() {
	t.domainEvents = nil
}
