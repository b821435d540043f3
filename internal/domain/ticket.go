package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ticket domain errors
var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketNotOpen       = errors.New("ticket not open")
	ErrTicketNotInProgress = errors.New("ticket not in progress")
	ErrTicketNotResolved   = errors.New("ticket not resolved")
	ErrTicketAlreadyOpen   = errors.New("ticket already open")
	ErrResolutionRequired  = errors.New("resolution text is required")
	ErrAssigneeRequired    = errors.New("assignee is required")
	ErrUnknownTicketType   = errors.New("unknown ticket type")
)

// TicketType classifies a problem ticket
type TicketType string

const (
	TicketTypeCountVariance TicketType = "count_variance"
	TicketTypeDamage        TicketType = "damage"
	TicketTypeMissing       TicketType = "missing"
	TicketTypeQuality       TicketType = "quality"
	TicketTypeSystemError   TicketType = "system_error"
	TicketTypeOther         TicketType = "other"
)

// ParseTicketType validates a ticket type string
func ParseTicketType(s string) (TicketType, error) {
	switch TicketType(s) {
	case TicketTypeCountVariance, TicketTypeDamage, TicketTypeMissing,
		TicketTypeQuality, TicketTypeSystemError, TicketTypeOther:
		return TicketType(s), nil
	}
	return "", ErrUnknownTicketType
}

// TicketPriority represents ticket priority
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// TicketStatus represents ticket lifecycle status
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketReference points at the warehouse state a ticket is about. Tickets
// own no inventory state themselves; they are pure exception records.
type TicketReference struct {
	TaskID     string `bson:"taskId,omitempty" json:"taskId,omitempty"`
	LocationID string `bson:"locationId,omitempty" json:"locationId,omitempty"`
	SKU        string `bson:"sku,omitempty" json:"sku,omitempty"`
}

// Ticket is an exception record operated by problem-solver roles.
// Resolution, ResolvedBy and ResolvedAt are set iff status is resolved;
// reopening clears all three and the assignee.
type Ticket struct {
	ID          string           `bson:"ticketId" json:"ticketId"`
	Type        TicketType       `bson:"type" json:"type"`
	Priority    TicketPriority   `bson:"priority" json:"priority"`
	Status      TicketStatus     `bson:"status" json:"status"`
	Description string           `bson:"description" json:"description"`
	Reference   *TicketReference `bson:"reference,omitempty" json:"reference,omitempty"`
	AssignedTo  *string          `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Resolution  *string          `bson:"resolution,omitempty" json:"resolution,omitempty"`
	ResolvedBy  *string          `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time       `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	ReopenCount int              `bson:"reopenCount" json:"reopenCount"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`

	domainEvents []DomainEvent `bson:"-"`
}

// NewTicket creates an open ticket
func NewTicket(ticketType TicketType, priority TicketPriority, description string, reference *TicketReference) *Ticket {
	now := time.Now().UTC()
	ticket := &Ticket{
		ID:          uuid.New().String(),
		Type:        ticketType,
		Priority:    priority,
		Status:      TicketStatusOpen,
		Description: description,
		Reference:   reference,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ticket.AddDomainEvent(&TicketOpenedEvent{
		TicketID: ticket.ID,
		Type:     string(ticketType),
		Priority: string(priority),
		OpenedAt: now,
	})

	return ticket
}

// CountVarianceThreshold is the absolute variance above which a count
// variance ticket is raised as high priority instead of medium.
const CountVarianceThreshold = 10

// NewCountVarianceTicket builds the ticket raised when a completed blind
// count disagrees with the system quantity.
func NewCountVarianceTicket(taskID, locationID, sku string, systemQuantity, countedQuantity int) *Ticket {
	variance := systemQuantity - countedQuantity

	priority := PriorityMedium
	if abs(variance) > CountVarianceThreshold {
		priority = PriorityHigh
	}

	description := fmt.Sprintf("Count variance detected. System: %d, Counted: %d, Variance: %d",
		systemQuantity, countedQuantity, variance)

	return NewTicket(TicketTypeCountVariance, priority, description, &TicketReference{
		TaskID:     taskID,
		LocationID: locationID,
		SKU:        sku,
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Assign moves an open ticket to in_progress with an assignee
func (t *Ticket) Assign(assignee string) error {
	if assignee == "" {
		return ErrAssigneeRequired
	}
	if t.Status != TicketStatusOpen {
		return ErrTicketNotOpen
	}

	t.Status = TicketStatusInProgress
	t.AssignedTo = &assignee
	t.UpdatedAt = time.Now().UTC()

	return nil
}

// Resolve records the resolution of an in_progress ticket. The resolver is
// not required to be the assignee.
func (t *Ticket) Resolve(resolution, resolvedBy string) error {
	if resolution == "" {
		return ErrResolutionRequired
	}
	if t.Status != TicketStatusInProgress {
		return ErrTicketNotInProgress
	}

	now := time.Now().UTC()
	t.Status = TicketStatusResolved
	t.Resolution = &resolution
	t.ResolvedBy = &resolvedBy
	t.ResolvedAt = &now
	t.UpdatedAt = now

	return nil
}

// Close closes a resolved ticket
func (t *Ticket) Close() error {
	if t.Status != TicketStatusResolved {
		return ErrTicketNotResolved
	}

	t.Status = TicketStatusClosed
	t.UpdatedAt = time.Now().UTC()

	return nil
}

// Reopen returns a ticket to open from any non-open status, clearing the
// resolution fields and assignee unconditionally. This is the deliberate
// escape hatch in the lifecycle.
func (t *Ticket) Reopen() error {
	if t.Status == TicketStatusOpen {
		return ErrTicketAlreadyOpen
	}

	now := time.Now().UTC()
	t.Status = TicketStatusOpen
	t.Resolution = nil
	t.ResolvedBy = nil
	t.ResolvedAt = nil
	t.AssignedTo = nil
	t.ReopenCount++
	t.UpdatedAt = now

	t.AddDomainEvent(&TicketReopenedEvent{
		TicketID:   t.ID,
		ReopenedAt: now,
	})

	return nil
}

// AddDomainEvent adds a domain event to the ticket
func (t *Ticket) AddDomainEvent(event DomainEvent) {
	t.domainEvents = append(t.domainEvents, event)
}

// GetDomainEvents returns all domain events
func (t *Ticket) GetDomainEvents() []DomainEvent {
	return t.domainEvents
}

// ClearDomainEvents clears all domain events
func (t *Ticket) ClearDomainEvents() {
	t.domainEvents = nil
}

// TicketStats summarizes the ticket population for dashboards
type TicketStats struct {
	Open             int64 `json:"open"`
	InProgress       int64 `json:"inProgress"`
	Resolved         int64 `json:"resolved"`
	Closed           int64 `json:"closed"`
	HighPriorityOpen int64 `json:"highPriorityOpen"`
}
