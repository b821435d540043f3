package application

// CreateTaskCommand represents the command to publish a task to the pool.
// Pick tasks are created by wave release, not through this command.
type CreateTaskCommand struct {
	Kind           string
	SKU            string
	Quantity       int
	LocationID     string
	ASNID          string
	ToLocation     string
	SystemQuantity int
}

// ClaimTaskCommand represents the command to claim a pending task
type ClaimTaskCommand struct {
	TaskID   string
	WorkerID string
}

// ReleaseTaskCommand represents the command to return a claimed task
type ReleaseTaskCommand struct {
	TaskID   string
	WorkerID string
}

// CompleteTaskCommand represents the command to complete a claimed task.
// CountedQuantity is required for count tasks and ignored otherwise.
type CompleteTaskCommand struct {
	TaskID          string
	WorkerID        string
	CountedQuantity *int
}

// ListClaimableQuery represents the query for pending tasks of one kind
type ListClaimableQuery struct {
	Kind  string
	Limit int
}

// GetTaskQuery represents the query to get a task by ID
type GetTaskQuery struct {
	TaskID string
}

// ShipmentLineInput is one line of a new shipment
type ShipmentLineInput struct {
	SKU        string
	Quantity   int
	LocationID string
}

// ShipmentInput describes a new shipment to create inside a wave
type ShipmentInput struct {
	Lines []ShipmentLineInput
}

// CreateWaveCommand represents the command to plan a wave. New shipments are
// created inline; existing unassigned shipments may be attached by ID.
type CreateWaveCommand struct {
	Shipments   []ShipmentInput
	ShipmentIDs []string
}

// ReleaseWaveCommand represents the command to release a wave for picking
type ReleaseWaveCommand struct {
	WaveID string
}

// GetWaveQuery represents the query to get a wave with its shipments
type GetWaveQuery struct {
	WaveID string
}

// CreateShipmentCommand represents the command to create a standalone shipment
type CreateShipmentCommand struct {
	Lines []ShipmentLineInput
}

// StartPackingCommand represents the command to pack a shipment
type StartPackingCommand struct {
	ShipmentID string
}

// ConfirmShipCommand represents the command to confirm carrier hand-off
type ConfirmShipCommand struct {
	ShipmentID string
	Carrier    string
	ShippedBy  string
	WeightKg   float64
}

// GetShipmentQuery represents the query to get a shipment by ID
type GetShipmentQuery struct {
	ShipmentID string
}

// ListHandOffsQuery represents the query for a shipment's hand-off log
type ListHandOffsQuery struct {
	ShipmentID string
}

// OpenTicketCommand represents the command to open an exception ticket
type OpenTicketCommand struct {
	Type        string
	Priority    string
	Description string
	TaskID      string
	LocationID  string
	SKU         string
}

// AssignTicketCommand represents the command to assign a ticket
type AssignTicketCommand struct {
	TicketID string
	Assignee string
}

// ResolveTicketCommand represents the command to resolve a ticket
type ResolveTicketCommand struct {
	TicketID   string
	Resolution string
	ResolvedBy string
}

// CloseTicketCommand represents the command to close a resolved ticket
type CloseTicketCommand struct {
	TicketID string
}

// ReopenTicketCommand represents the command to reopen a ticket
type ReopenTicketCommand struct {
	TicketID string
}

// GetTicketQuery represents the query to get a ticket by ID
type GetTicketQuery struct {
	TicketID string
}

// ListTicketsQuery represents the query for tickets by status and priority
type ListTicketsQuery struct {
	Status   string
	Priority string
	Limit    int
}
