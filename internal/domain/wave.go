package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Wave domain errors
var (
	ErrWaveNotFound        = errors.New("wave not found")
	ErrWaveAlreadyReleased = errors.New("wave already released")
	ErrWaveHasNoShipments  = errors.New("wave must contain at least one shipment")
)

// WaveStatus represents the status of a wave
type WaveStatus string

const (
	WaveStatusPending WaveStatus = "pending"
	WaveStatusPicking WaveStatus = "picking"
	WaveStatusPacking WaveStatus = "packing"
	WaveStatusShipped WaveStatus = "shipped"
)

// Wave groups shipments for a picking cycle. The only forced transition is
// pending -> picking at release; later stages are derived from the aggregate
// state of the wave's shipments.
type Wave struct {
	ID             string     `bson:"waveId" json:"waveId"`
	Status         WaveStatus `bson:"status" json:"status"`
	TotalShipments int        `bson:"totalShipments" json:"totalShipments"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	ReleasedAt     *time.Time `bson:"releasedAt,omitempty" json:"releasedAt,omitempty"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`

	domainEvents []DomainEvent `bson:"-"`
}

// NewWave creates a pending wave over the given number of shipments
func NewWave(totalShipments int) (*Wave, error) {
	if totalShipments < 1 {
		return nil, ErrWaveHasNoShipments
	}

	now := time.Now().UTC()
	wave := &Wave{
		ID:             uuid.New().String(),
		Status:         WaveStatusPending,
		TotalShipments: totalShipments,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	wave.AddDomainEvent(&WaveCreatedEvent{
		WaveID:         wave.ID,
		TotalShipments: totalShipments,
		CreatedAt:      now,
	})

	return wave, nil
}

// Release transitions the wave from pending to picking and stamps ReleasedAt.
// ReleasedAt is set exactly once; transitions never move backward.
func (w *Wave) Release() error {
	if w.Status != WaveStatusPending {
		return ErrWaveAlreadyReleased
	}

	now := time.Now().UTC()
	w.Status = WaveStatusPicking
	w.ReleasedAt = &now
	w.UpdatedAt = now

	w.AddDomainEvent(&WaveReleasedEvent{
		WaveID:         w.ID,
		TotalShipments: w.TotalShipments,
		ReleasedAt:     now,
	})

	return nil
}

// DerivedStatus computes the wave's displayed status from its shipments.
// The stored status only tracks pending/picking; packing and shipped are
// observable aggregates, not forced transitions.
func (w *Wave) DerivedStatus(shipments []*Shipment) WaveStatus {
	if w.Status == WaveStatusPending || len(shipments) == 0 {
		return w.Status
	}

	allShipped := true
	anyPacked := false
	for _, s := range shipments {
		switch s.Status {
		case ShipmentStatusShipped:
			anyPacked = true
		case ShipmentStatusPacked:
			anyPacked = true
			allShipped = false
		default:
			allShipped = false
		}
	}

	if allShipped {
		return WaveStatusShipped
	}
	if anyPacked {
		return WaveStatusPacking
	}
	return WaveStatusPicking
}

// AddDomainEvent adds a domain event to the wave
func (w *Wave) AddDomainEvent(event DomainEvent) {
	w.domainEvents = append(w.domainEvents, event)
}

// GetDomainEvents returns all domain events
func (w *Wave) GetDomainEvents() []DomainEvent {
	return w.domainEvents
}

// ClearDomainEvents clears all domain events
func (w *Wave) ClearDomainEvents() {
	w.domainEvents = nil
}
