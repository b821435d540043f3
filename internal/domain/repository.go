package domain

import "context"

// TaskRepository persists tasks. All transition methods are single conditional
// writes: the filter encodes the required current state and the returned
// document reflects the new state. Implementations return the task sentinel
// errors when the condition does not hold.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	CreateMany(ctx context.Context, tasks []*Task) error
	FindByID(ctx context.Context, taskID string) (*Task, error)
	// FindPending lists pending tasks of one kind. For pick tasks, waveIDs
	// restricts results to tasks belonging to released waves; an empty slice
	// means no wave filter.
	FindPending(ctx context.Context, kind TaskKind, waveIDs []string, limit int) ([]*Task, error)
	FindInProgressByWorker(ctx context.Context, workerID string) ([]*Task, error)
	// CountIncompletePicks returns the number of pick tasks for a shipment
	// that are not yet completed.
	CountIncompletePicks(ctx context.Context, shipmentID string) (int64, error)

	Claim(ctx context.Context, taskID, workerID string) (*Task, error)
	Release(ctx context.Context, taskID, workerID string) (*Task, error)
	Complete(ctx context.Context, taskID, workerID string) (*Task, error)
	// CompleteCount completes a count task, persisting the counted quantity
	// and variance in the same conditional write that flips the status.
	CompleteCount(ctx context.Context, taskID, workerID string, countedQuantity, variance int) (*Task, error)
}

// WaveRepository persists waves
type WaveRepository interface {
	Create(ctx context.Context, wave *Wave) error
	FindByID(ctx context.Context, waveID string) (*Wave, error)
	// Release flips the wave from pending to picking in one conditional write.
	Release(ctx context.Context, waveID string) (*Wave, error)
	// FindPickingWaveIDs returns the IDs of all waves currently in picking.
	FindPickingWaveIDs(ctx context.Context) ([]string, error)
}

// ShipmentRepository persists shipments
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *Shipment) error
	FindByID(ctx context.Context, shipmentID string) (*Shipment, error)
	FindByWaveID(ctx context.Context, waveID string) ([]*Shipment, error)
	AssignToWave(ctx context.Context, shipmentID, waveID string) error
	// MarkPicking moves all pending shipments of a wave to picking.
	MarkPicking(ctx context.Context, waveID string) error
	MarkLinePicked(ctx context.Context, shipmentID, lineID string) error
	// StartPacking packs a shipment only if every line is picked, as a single
	// conditional write.
	StartPacking(ctx context.Context, shipmentID string) (*Shipment, error)
	// ConfirmShip moves a packed shipment to shipped, stamping carrier and
	// tracking details.
	ConfirmShip(ctx context.Context, shipmentID string, carrier Carrier, trackingNumber, shippedBy string, weightKg float64) (*Shipment, error)
}

// HandOffRepository persists the append-only carrier hand-off log
type HandOffRepository interface {
	Append(ctx context.Context, record *HandOffRecord) error
	FindByShipmentID(ctx context.Context, shipmentID string) ([]*HandOffRecord, error)
}

// TicketRepository persists exception tickets
type TicketRepository interface {
	Create(ctx context.Context, ticket *Ticket) error
	FindByID(ctx context.Context, ticketID string) (*Ticket, error)
	Find(ctx context.Context, status TicketStatus, priority TicketPriority, limit int) ([]*Ticket, error)

	Assign(ctx context.Context, ticketID, assignee string) (*Ticket, error)
	Resolve(ctx context.Context, ticketID, resolution, resolvedBy string) (*Ticket, error)
	Close(ctx context.Context, ticketID string) (*Ticket, error)
	Reopen(ctx context.Context, ticketID string) (*Ticket, error)

	Stats(ctx context.Context) (*TicketStats, error)
}

// EventPublisher publishes domain events to the event stream. Publishing is a
// secondary effect: failures are surfaced to the caller for logging but never
// roll back the primary write.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	PublishAll(ctx context.Context, events []DomainEvent) error
}
