package cloudevents

import (
	"time"
)

// EventType constants for coordination domain events
const (
	// Task events
	TaskCreated   = "wms.coordination.task-created"
	TaskClaimed   = "wms.coordination.task-claimed"
	TaskReleased  = "wms.coordination.task-released"
	TaskCompleted = "wms.coordination.task-completed"

	// Wave events
	WaveCreated  = "wms.coordination.wave-created"
	WaveReleased = "wms.coordination.wave-released"

	// Shipment events
	ShipmentPacked  = "wms.coordination.shipment-packed"
	ShipmentShipped = "wms.coordination.shipment-shipped"

	// Count reconciliation events
	CountVarianceDetected = "wms.coordination.count-variance-detected"

	// Problem ticket events
	TicketOpened   = "wms.coordination.ticket-opened"
	TicketAssigned = "wms.coordination.ticket-assigned"
	TicketResolved = "wms.coordination.ticket-resolved"
	TicketClosed   = "wms.coordination.ticket-closed"
	TicketReopened = "wms.coordination.ticket-reopened"
)

// Source constants for event sources
const (
	SourceCoordination = "/wms/coordination-service"
)

// WMSCloudEvent represents a CloudEvents v1.0 compliant event
type WMSCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// WMS-specific extensions
	CorrelationID string `json:"wmscorrelationid,omitempty"`
	WaveID        string `json:"wmswaveid,omitempty"`
}

// TaskEventData is the payload for task lifecycle events
type TaskEventData struct {
	TaskID   string `json:"taskId"`
	Kind     string `json:"kind"`
	WorkerID string `json:"workerId,omitempty"`
	SKU      string `json:"sku,omitempty"`
	Location string `json:"locationId,omitempty"`
}

// WaveReleasedData is the payload for the WaveReleased event
type WaveReleasedData struct {
	WaveID         string    `json:"waveId"`
	TotalShipments int       `json:"totalShipments"`
	PickTasks      int       `json:"pickTasks"`
	ReleasedAt     time.Time `json:"releasedAt"`
}

// ShipmentShippedData is the payload for the ShipmentShipped event
type ShipmentShippedData struct {
	ShipmentID     string  `json:"shipmentId"`
	WaveID         string  `json:"waveId"`
	Carrier        string  `json:"carrier"`
	TrackingNumber string  `json:"trackingNumber"`
	ShippedBy      string  `json:"shippedBy"`
	WeightKg       float64 `json:"weightKg"`
}

// CountVarianceData is the payload for the CountVarianceDetected event
type CountVarianceData struct {
	TaskID          string `json:"taskId"`
	LocationID      string `json:"locationId"`
	SKU             string `json:"sku"`
	SystemQuantity  int    `json:"systemQuantity"`
	CountedQuantity int    `json:"countedQuantity"`
	Variance        int    `json:"variance"`
	TicketID        string `json:"ticketId,omitempty"`
}

// TicketEventData is the payload for ticket lifecycle events
type TicketEventData struct {
	TicketID string `json:"ticketId"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}
