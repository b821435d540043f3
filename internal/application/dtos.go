package application

import "time"

// PickDetailDTO is the pick payload of a task
type PickDetailDTO struct {
	WaveID     string `json:"waveId"`
	ShipmentID string `json:"shipmentId"`
	LineID     string `json:"lineId"`
}

// PutawayDetailDTO is the putaway payload of a task
type PutawayDetailDTO struct {
	ASNID      string `json:"asnId"`
	ToLocation string `json:"toLocation"`
}

// CountDetailDTO is the count payload of a task. SystemQuantity and Variance
// are withheld until the count is completed so workers count blind.
type CountDetailDTO struct {
	SystemQuantity  *int `json:"systemQuantity,omitempty"`
	CountedQuantity *int `json:"countedQuantity,omitempty"`
	Variance        *int `json:"variance,omitempty"`
}

// TaskDTO is the API representation of a task
type TaskDTO struct {
	TaskID      string            `json:"taskId"`
	Kind        string            `json:"kind"`
	Status      string            `json:"status"`
	SKU         string            `json:"sku,omitempty"`
	Quantity    int               `json:"quantity,omitempty"`
	LocationID  string            `json:"locationId,omitempty"`
	ClaimedBy   *string           `json:"claimedBy,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	ClaimedAt   *time.Time        `json:"claimedAt,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	Pick        *PickDetailDTO    `json:"pick,omitempty"`
	Putaway     *PutawayDetailDTO `json:"putaway,omitempty"`
	Count       *CountDetailDTO   `json:"count,omitempty"`
}

// CompleteTaskResult is the outcome of completing a task. Warning is set when
// a best-effort secondary effect failed after the completion committed.
type CompleteTaskResult struct {
	Task     *TaskDTO `json:"task"`
	TicketID string   `json:"ticketId,omitempty"`
	Warning  string   `json:"warning,omitempty"`
}

// ShipmentLineDTO is one line of a shipment
type ShipmentLineDTO struct {
	LineID     string `json:"lineId"`
	SKU        string `json:"sku"`
	Quantity   int    `json:"quantity"`
	LocationID string `json:"locationId"`
	PickStatus string `json:"pickStatus"`
}

// ShipmentDTO is the API representation of a shipment
type ShipmentDTO struct {
	ShipmentID     string            `json:"shipmentId"`
	WaveID         string            `json:"waveId,omitempty"`
	Status         string            `json:"status"`
	Lines          []ShipmentLineDTO `json:"lines"`
	Carrier        string            `json:"carrier,omitempty"`
	TrackingNumber string            `json:"trackingNumber,omitempty"`
	ShippedBy      string            `json:"shippedBy,omitempty"`
	WeightKg       float64           `json:"weightKg,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	PackedAt       *time.Time        `json:"packedAt,omitempty"`
	ShippedAt      *time.Time        `json:"shippedAt,omitempty"`
}

// WaveDTO is the API representation of a wave. Status is the derived status
// when shipments are loaded.
type WaveDTO struct {
	WaveID         string        `json:"waveId"`
	Status         string        `json:"status"`
	TotalShipments int           `json:"totalShipments"`
	CreatedAt      time.Time     `json:"createdAt"`
	ReleasedAt     *time.Time    `json:"releasedAt,omitempty"`
	Shipments      []ShipmentDTO `json:"shipments,omitempty"`
}

// ReleaseWaveResult is the outcome of releasing a wave
type ReleaseWaveResult struct {
	Wave      *WaveDTO `json:"wave"`
	PickTasks int      `json:"pickTasks"`
	Warning   string   `json:"warning,omitempty"`
}

// ConfirmShipResult is the outcome of a carrier hand-off confirmation
type ConfirmShipResult struct {
	Shipment *ShipmentDTO `json:"shipment"`
	Warning  string       `json:"warning,omitempty"`
}

// HandOffDTO is one entry of the carrier hand-off log
type HandOffDTO struct {
	HandOffID      string    `json:"handOffId"`
	ShipmentID     string    `json:"shipmentId"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"trackingNumber"`
	ShippedBy      string    `json:"shippedBy"`
	WeightKg       float64   `json:"weightKg"`
	RecordedAt     time.Time `json:"recordedAt"`
}

// TicketReferenceDTO points at the warehouse state a ticket is about
type TicketReferenceDTO struct {
	TaskID     string `json:"taskId,omitempty"`
	LocationID string `json:"locationId,omitempty"`
	SKU        string `json:"sku,omitempty"`
}

// TicketDTO is the API representation of an exception ticket
type TicketDTO struct {
	TicketID    string              `json:"ticketId"`
	Type        string              `json:"type"`
	Priority    string              `json:"priority"`
	Status      string              `json:"status"`
	Description string              `json:"description"`
	Reference   *TicketReferenceDTO `json:"reference,omitempty"`
	AssignedTo  *string             `json:"assignedTo,omitempty"`
	Resolution  *string             `json:"resolution,omitempty"`
	ResolvedBy  *string             `json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time          `json:"resolvedAt,omitempty"`
	ReopenCount int                 `json:"reopenCount"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// TicketStatsDTO summarizes the ticket population
type TicketStatsDTO struct {
	Open             int64 `json:"open"`
	InProgress       int64 `json:"inProgress"`
	Resolved         int64 `json:"resolved"`
	Closed           int64 `json:"closed"`
	HighPriorityOpen int64 `json:"highPriorityOpen"`
}
