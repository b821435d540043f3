package domain

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Shipment domain errors
var (
	ErrShipmentNotFound       = errors.New("shipment not found")
	ErrShipmentLinesNotPicked = errors.New("shipment has lines not yet picked")
	ErrShipmentNotPacked      = errors.New("shipment not packed")
	ErrShipmentAlreadyPacked  = errors.New("shipment already packed")
	ErrShipmentLineNotFound   = errors.New("shipment line not found")
	ErrUnknownCarrier         = errors.New("unknown carrier")
)

// ShipmentStatus represents the status of a shipment
type ShipmentStatus string

const (
	ShipmentStatusPending ShipmentStatus = "pending"
	ShipmentStatusPicking ShipmentStatus = "picking"
	ShipmentStatusPacked  ShipmentStatus = "packed"
	ShipmentStatusShipped ShipmentStatus = "shipped"
)

// LineStatus represents the pick status of a single shipment line
type LineStatus string

const (
	LineStatusPending    LineStatus = "pending"
	LineStatusInProgress LineStatus = "in_progress"
	LineStatusPicked     LineStatus = "picked"
)

// Carrier is a supported parcel carrier
type Carrier string

const (
	CarrierFedEx Carrier = "fedex"
	CarrierUPS   Carrier = "ups"
	CarrierDHL   Carrier = "dhl"
)

// ParseCarrier validates a carrier code
func ParseCarrier(s string) (Carrier, error) {
	switch Carrier(strings.ToLower(s)) {
	case CarrierFedEx, CarrierUPS, CarrierDHL:
		return Carrier(strings.ToLower(s)), nil
	}
	return "", ErrUnknownCarrier
}

const trackingCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTrackingNumber generates a tracking identifier of the form CARRIER-XXXXXXXXXX
func NewTrackingNumber(carrier Carrier) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(string(carrier)))
	b.WriteByte('-')
	for i := 0; i < 10; i++ {
		b.WriteByte(trackingCharset[rand.Intn(len(trackingCharset))])
	}
	return b.String()
}

// ShipmentLine is one orderable line of a shipment with its own pick status
type ShipmentLine struct {
	LineID     string     `bson:"lineId" json:"lineId"`
	SKU        string     `bson:"sku" json:"sku"`
	Quantity   int        `bson:"quantity" json:"quantity"`
	Location   string     `bson:"locationId" json:"locationId"`
	PickStatus LineStatus `bson:"pickStatus" json:"pickStatus"`
}

// Shipment belongs to exactly one wave and owns an ordered set of lines.
// A shipment may be packed only when every line is picked, and shipped only
// when packed with a carrier hand-off recorded.
type Shipment struct {
	ID             string         `bson:"shipmentId" json:"shipmentId"`
	WaveID         string         `bson:"waveId,omitempty" json:"waveId,omitempty"`
	Status         ShipmentStatus `bson:"status" json:"status"`
	Lines          []ShipmentLine `bson:"lines" json:"lines"`
	Carrier        Carrier        `bson:"carrier,omitempty" json:"carrier,omitempty"`
	TrackingNumber string         `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	ShippedBy      string         `bson:"shippedBy,omitempty" json:"shippedBy,omitempty"`
	WeightKg       float64        `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	PackedAt       *time.Time     `bson:"packedAt,omitempty" json:"packedAt,omitempty"`
	ShippedAt      *time.Time     `bson:"shippedAt,omitempty" json:"shippedAt,omitempty"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`

	domainEvents []DomainEvent `bson:"-"`
}

// NewShipment creates a pending shipment with the given lines
func NewShipment(lines []ShipmentLine) *Shipment {
	now := time.Now().UTC()
	for i := range lines {
		if lines[i].LineID == "" {
			lines[i].LineID = uuid.New().String()
		}
		lines[i].PickStatus = LineStatusPending
	}

	return &Shipment{
		ID:        uuid.New().String(),
		Status:    ShipmentStatusPending,
		Lines:     lines,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AllLinesPicked reports whether every line has been picked
func (s *Shipment) AllLinesPicked() bool {
	for _, line := range s.Lines {
		if line.PickStatus != LineStatusPicked {
			return false
		}
	}
	return len(s.Lines) > 0
}

// MarkLinePicked sets one line's pick status to picked
func (s *Shipment) MarkLinePicked(lineID string) error {
	for i := range s.Lines {
		if s.Lines[i].LineID == lineID {
			s.Lines[i].PickStatus = LineStatusPicked
			s.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrShipmentLineNotFound
}

// StartPacking finalizes the shipment's contents. It is allowed only while the
// shipment is pending or picking, and only once every line is picked.
func (s *Shipment) StartPacking() error {
	switch s.Status {
	case ShipmentStatusPacked, ShipmentStatusShipped:
		return ErrShipmentAlreadyPacked
	}
	if !s.AllLinesPicked() {
		return ErrShipmentLinesNotPicked
	}

	now := time.Now().UTC()
	s.Status = ShipmentStatusPacked
	s.PackedAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(&ShipmentPackedEvent{
		ShipmentID: s.ID,
		WaveID:     s.WaveID,
		PackedAt:   now,
	})

	return nil
}

// ConfirmShip transitions a packed shipment to shipped, stamping the carrier
// and a freshly generated tracking number. The caller appends the hand-off
// record after this commits.
func (s *Shipment) ConfirmShip(carrier Carrier, shippedBy string, weightKg float64) error {
	if s.Status != ShipmentStatusPacked {
		return ErrShipmentNotPacked
	}

	now := time.Now().UTC()
	s.Status = ShipmentStatusShipped
	s.Carrier = carrier
	s.TrackingNumber = NewTrackingNumber(carrier)
	s.ShippedBy = shippedBy
	s.WeightKg = weightKg
	s.ShippedAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(&ShipmentShippedEvent{
		ShipmentID:     s.ID,
		WaveID:         s.WaveID,
		Carrier:        string(carrier),
		TrackingNumber: s.TrackingNumber,
		ShippedBy:      shippedBy,
		ShippedAt:      now,
	})

	return nil
}

// AddDomainEvent adds a domain event to the shipment
func (s *Shipment) AddDomainEvent(event DomainEvent) {
	s.domainEvents = append(s.domainEvents, event)
}

// GetDomainEvents returns all domain events
func (s *Shipment) GetDomainEvents() []DomainEvent {
	return s.domainEvents
}

// ClearDomainEvents clears all domain events
func (s *Shipment) ClearDomainEvents() {
	s.domainEvents = nil
}

// HandOffRecord is one append-only entry in the carrier hand-off log.
// Records are never updated or deleted.
type HandOffRecord struct {
	ID             string    `bson:"handOffId" json:"handOffId"`
	ShipmentID     string    `bson:"shipmentId" json:"shipmentId"`
	Carrier        Carrier   `bson:"carrier" json:"carrier"`
	TrackingNumber string    `bson:"trackingNumber" json:"trackingNumber"`
	ShippedBy      string    `bson:"shippedBy" json:"shippedBy"`
	WeightKg       float64   `bson:"weightKg" json:"weightKg"`
	RecordedAt     time.Time `bson:"recordedAt" json:"recordedAt"`
}

// NewHandOffRecord builds the hand-off log entry for a shipped shipment
func NewHandOffRecord(s *Shipment) *HandOffRecord {
	return &HandOffRecord{
		ID:             uuid.New().String(),
		ShipmentID:     s.ID,
		Carrier:        s.Carrier,
		TrackingNumber: s.TrackingNumber,
		ShippedBy:      s.ShippedBy,
		WeightKg:       s.WeightKg,
		RecordedAt:     time.Now().UTC(),
	}
}
