package domain

import "time"

// DomainEvent is implemented by all domain events raised by aggregates
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// TaskCreatedEvent is raised when a task enters the claim pool
type TaskCreatedEvent struct {
	TaskID    string    `json:"taskId"`
	Kind      string    `json:"kind"`
	SKU       string    `json:"sku"`
	Location  string    `json:"locationId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e *TaskCreatedEvent) EventType() string     { return "wms.coordination.task-created" }
func (e *TaskCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// TaskClaimedEvent is raised when a worker claims a task
type TaskClaimedEvent struct {
	TaskID    string    `json:"taskId"`
	Kind      string    `json:"kind"`
	WorkerID  string    `json:"workerId"`
	ClaimedAt time.Time `json:"claimedAt"`
}

func (e *TaskClaimedEvent) EventType() string     { return "wms.coordination.task-claimed" }
func (e *TaskClaimedEvent) OccurredAt() time.Time { return e.ClaimedAt }

// TaskReleasedEvent is raised when a worker returns a task to the pool
type TaskReleasedEvent struct {
	TaskID     string    `json:"taskId"`
	Kind       string    `json:"kind"`
	WorkerID   string    `json:"workerId"`
	ReleasedAt time.Time `json:"releasedAt"`
}

func (e *TaskReleasedEvent) EventType() string     { return "wms.coordination.task-released" }
func (e *TaskReleasedEvent) OccurredAt() time.Time { return e.ReleasedAt }

// TaskCompletedEvent is raised when a worker completes a task
type TaskCompletedEvent struct {
	TaskID      string    `json:"taskId"`
	Kind        string    `json:"kind"`
	WorkerID    string    `json:"workerId"`
	CompletedAt time.Time `json:"completedAt"`
}

func (e *TaskCompletedEvent) EventType() string     { return "wms.coordination.task-completed" }
func (e *TaskCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// WaveCreatedEvent is raised when a wave is planned
type WaveCreatedEvent struct {
	WaveID         string    `json:"waveId"`
	TotalShipments int       `json:"totalShipments"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (e *WaveCreatedEvent) EventType() string     { return "wms.coordination.wave-created" }
func (e *WaveCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// WaveReleasedEvent is raised when a wave is released to the floor
type WaveReleasedEvent struct {
	WaveID         string    `json:"waveId"`
	TotalShipments int       `json:"totalShipments"`
	ReleasedAt     time.Time `json:"releasedAt"`
}

func (e *WaveReleasedEvent) EventType() string     { return "wms.coordination.wave-released" }
func (e *WaveReleasedEvent) OccurredAt() time.Time { return e.ReleasedAt }

// ShipmentPackedEvent is raised when a shipment's contents are finalized
type ShipmentPackedEvent struct {
	ShipmentID string    `json:"shipmentId"`
	WaveID     string    `json:"waveId"`
	PackedAt   time.Time `json:"packedAt"`
}

func (e *ShipmentPackedEvent) EventType() string     { return "wms.coordination.shipment-packed" }
func (e *ShipmentPackedEvent) OccurredAt() time.Time { return e.PackedAt }

// ShipmentShippedEvent is raised when a shipment is handed to a carrier
type ShipmentShippedEvent struct {
	ShipmentID     string    `json:"shipmentId"`
	WaveID         string    `json:"waveId"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"trackingNumber"`
	ShippedBy      string    `json:"shippedBy"`
	ShippedAt      time.Time `json:"shippedAt"`
}

func (e *ShipmentShippedEvent) EventType() string     { return "wms.coordination.shipment-shipped" }
func (e *ShipmentShippedEvent) OccurredAt() time.Time { return e.ShippedAt }

// CountVarianceDetectedEvent is raised when a completed blind count disagrees
// with the system quantity
type CountVarianceDetectedEvent struct {
	TaskID          string    `json:"taskId"`
	TicketID        string    `json:"ticketId"`
	LocationID      string    `json:"locationId"`
	SKU             string    `json:"sku"`
	SystemQuantity  int       `json:"systemQuantity"`
	CountedQuantity int       `json:"countedQuantity"`
	Variance        int       `json:"variance"`
	DetectedAt      time.Time `json:"detectedAt"`
}

func (e *CountVarianceDetectedEvent) EventType() string {
	return "wms.coordination.count-variance-detected"
}
func (e *CountVarianceDetectedEvent) OccurredAt() time.Time { return e.DetectedAt }

// TicketOpenedEvent is raised when an exception ticket is opened
type TicketOpenedEvent struct {
	TicketID string    `json:"ticketId"`
	Type     string    `json:"type"`
	Priority string    `json:"priority"`
	OpenedAt time.Time `json:"openedAt"`
}

func (e *TicketOpenedEvent) EventType() string     { return "wms.coordination.ticket-opened" }
func (e *TicketOpenedEvent) OccurredAt() time.Time { return e.OpenedAt }

// TicketAssignedEvent is raised when a ticket is assigned to a problem solver
type TicketAssignedEvent struct {
	TicketID   string    `json:"ticketId"`
	AssignedTo string    `json:"assignedTo"`
	AssignedAt time.Time `json:"assignedAt"`
}

func (e *TicketAssignedEvent) EventType() string     { return "wms.coordination.ticket-assigned" }
func (e *TicketAssignedEvent) OccurredAt() time.Time { return e.AssignedAt }

// TicketResolvedEvent is raised when a ticket's resolution is recorded
type TicketResolvedEvent struct {
	TicketID   string    `json:"ticketId"`
	ResolvedBy string    `json:"resolvedBy"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

func (e *TicketResolvedEvent) EventType() string     { return "wms.coordination.ticket-resolved" }
func (e *TicketResolvedEvent) OccurredAt() time.Time { return e.ResolvedAt }

// TicketClosedEvent is raised when a resolved ticket is closed
type TicketClosedEvent struct {
	TicketID string    `json:"ticketId"`
	ClosedAt time.Time `json:"closedAt"`
}

func (e *TicketClosedEvent) EventType() string     { return "wms.coordination.ticket-closed" }
func (e *TicketClosedEvent) OccurredAt() time.Time { return e.ClosedAt }

// TicketReopenedEvent is raised when a ticket is pushed back to open
type TicketReopenedEvent struct {
	TicketID   string    `json:"ticketId"`
	ReopenedAt time.Time `json:"reopenedAt"`
}

func (e *TicketReopenedEvent) EventType() string     { return "wms.coordination.ticket-reopened" }
func (e *TicketReopenedEvent) OccurredAt() time.Time { return e.ReopenedAt }
