package application

import (
	"context"
	"fmt"

	apperrors "github.com/wms-platform/coordination-service/pkg/errors"
	"github.com/wms-platform/coordination-service/pkg/logging"
	"github.com/wms-platform/coordination-service/pkg/metrics"

	"github.com/wms-platform/coordination-service/internal/domain"
)

// LifecycleApplicationService drives waves and shipments from planning to
// carrier hand-off: wave release with pick task fan-out, pack gating and ship
// confirmation with the append-only hand-off log.
type LifecycleApplicationService struct {
	waves     domain.WaveRepository
	shipments domain.ShipmentRepository
	tasks     domain.TaskRepository
	handOffs  domain.HandOffRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewLifecycleApplicationService creates a new LifecycleApplicationService
func NewLifecycleApplicationService(
	waves domain.WaveRepository,
	shipments domain.ShipmentRepository,
	tasks domain.TaskRepository,
	handOffs domain.HandOffRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *LifecycleApplicationService {
	return &LifecycleApplicationService{
		waves:     waves,
		shipments: shipments,
		tasks:     tasks,
		handOffs:  handOffs,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// CreateShipment creates a standalone shipment not yet assigned to a wave
func (s *LifecycleApplicationService) CreateShipment(ctx context.Context, cmd CreateShipmentCommand) (*ShipmentDTO, error) {
	lines, err := toShipmentLines(cmd.Lines)
	if err != nil {
		return nil, err
	}

	shipment := domain.NewShipment(lines)
	if err := s.shipments.Create(ctx, shipment); err != nil {
		s.logger.WithError(err).Error("Failed to create shipment")
		return nil, shipmentError(err)
	}

	s.logger.Info("Created shipment", "shipmentId", shipment.ID, "lines", len(lines))
	return ToShipmentDTO(shipment), nil
}

// GetShipment retrieves a shipment by ID
func (s *LifecycleApplicationService) GetShipment(ctx context.Context, query GetShipmentQuery) (*ShipmentDTO, error) {
	shipment, err := s.shipments.FindByID(ctx, query.ShipmentID)
	if err != nil {
		return nil, shipmentError(err)
	}
	return ToShipmentDTO(shipment), nil
}

// CreateWave plans a wave over inline shipments and/or existing unassigned
// shipments. The wave starts pending; nothing is claimable until release.
func (s *LifecycleApplicationService) CreateWave(ctx context.Context, cmd CreateWaveCommand) (*WaveDTO, error) {
	total := len(cmd.Shipments) + len(cmd.ShipmentIDs)
	wave, err := domain.NewWave(total)
	if err != nil {
		return nil, waveError(err)
	}

	created := make([]*domain.Shipment, 0, len(cmd.Shipments))
	for _, input := range cmd.Shipments {
		lines, err := toShipmentLines(input.Lines)
		if err != nil {
			return nil, err
		}
		shipment := domain.NewShipment(lines)
		shipment.WaveID = wave.ID
		created = append(created, shipment)
	}

	if err := s.waves.Create(ctx, wave); err != nil {
		s.logger.WithError(err).Error("Failed to create wave")
		return nil, waveError(err)
	}

	for _, shipment := range created {
		if err := s.shipments.Create(ctx, shipment); err != nil {
			s.logger.WithError(err).Error("Failed to create wave shipment", "waveId", wave.ID)
			return nil, shipmentError(err)
		}
	}

	for _, shipmentID := range cmd.ShipmentIDs {
		if err := s.shipments.AssignToWave(ctx, shipmentID, wave.ID); err != nil {
			s.logger.WithError(err).Error("Failed to assign shipment to wave",
				"waveId", wave.ID, "shipmentId", shipmentID)
			return nil, shipmentError(err)
		}
	}

	s.publishEvents(ctx, wave.GetDomainEvents())
	wave.ClearDomainEvents()

	s.logger.Info("Created wave", "waveId", wave.ID, "totalShipments", total)
	return ToWaveDTO(wave, created), nil
}

// GetWave retrieves a wave with its shipments and derived status
func (s *LifecycleApplicationService) GetWave(ctx context.Context, query GetWaveQuery) (*WaveDTO, error) {
	wave, err := s.waves.FindByID(ctx, query.WaveID)
	if err != nil {
		return nil, waveError(err)
	}

	shipments, err := s.shipments.FindByWaveID(ctx, query.WaveID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load wave shipments", "waveId", query.WaveID)
		return nil, shipmentError(err)
	}

	return ToWaveDTO(wave, shipments), nil
}

// ReleaseWave moves the wave from pending to picking exactly once and fans
// out one pick task per shipment line. Fan-out runs after the release
// committed: a failure leaves the wave released and is reported as a warning.
func (s *LifecycleApplicationService) ReleaseWave(ctx context.Context, cmd ReleaseWaveCommand) (*ReleaseWaveResult, error) {
	wave, err := s.waves.Release(ctx, cmd.WaveID)
	if err != nil {
		return nil, waveError(err)
	}

	result := &ReleaseWaveResult{}

	shipments, err := s.shipments.FindByWaveID(ctx, cmd.WaveID)
	if err != nil {
		s.metrics.RecordSecondaryEffectFailure("pick_fanout")
		s.logger.WithError(err).Error("Failed to load shipments for pick fan-out", "waveId", cmd.WaveID)
		result.Wave = ToWaveDTO(wave, nil)
		result.Warning = apperrors.ErrSecondaryEffect("pick task fan-out").Error()
		return result, nil
	}

	if err := s.shipments.MarkPicking(ctx, cmd.WaveID); err != nil {
		s.logger.WithError(err).Error("Failed to mark shipments picking", "waveId", cmd.WaveID)
	}

	pickTasks := make([]*domain.Task, 0)
	for _, shipment := range shipments {
		for _, line := range shipment.Lines {
			pickTasks = append(pickTasks, domain.NewPickTask(wave.ID, shipment.ID, line))
		}
	}

	if err := s.tasks.CreateMany(ctx, pickTasks); err != nil {
		s.metrics.RecordSecondaryEffectFailure("pick_fanout")
		s.logger.WithError(err).Error("Failed to fan out pick tasks", "waveId", cmd.WaveID)
		result.Warning = apperrors.ErrSecondaryEffect("pick task fan-out").Error()
	} else {
		result.PickTasks = len(pickTasks)
	}

	s.metrics.RecordWaveReleased()
	s.publishEvents(ctx, []domain.DomainEvent{&domain.WaveReleasedEvent{
		WaveID:         wave.ID,
		TotalShipments: wave.TotalShipments,
		ReleasedAt:     *wave.ReleasedAt,
	}})

	result.Wave = ToWaveDTO(wave, shipments)
	s.logger.Info("Released wave", "waveId", wave.ID,
		"shipments", len(shipments), "pickTasks", result.PickTasks)
	return result, nil
}

// StartPacking finalizes a shipment's contents. The store-level write requires
// every line picked; an incomplete pick task count yields a clearer conflict
// before the write is attempted.
func (s *LifecycleApplicationService) StartPacking(ctx context.Context, cmd StartPackingCommand) (*ShipmentDTO, error) {
	incomplete, err := s.tasks.CountIncompletePicks(ctx, cmd.ShipmentID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to count incomplete picks", "shipmentId", cmd.ShipmentID)
		return nil, taskError(err)
	}
	if incomplete > 0 {
		return nil, apperrors.ErrConflict(
			fmt.Sprintf("shipment has %d incomplete pick tasks", incomplete)).
			WithDetail("shipmentId", cmd.ShipmentID)
	}

	shipment, err := s.shipments.StartPacking(ctx, cmd.ShipmentID)
	if err != nil {
		return nil, shipmentError(err)
	}

	s.publishEvents(ctx, []domain.DomainEvent{&domain.ShipmentPackedEvent{
		ShipmentID: shipment.ID,
		WaveID:     shipment.WaveID,
		PackedAt:   *shipment.PackedAt,
	}})

	s.logger.Info("Packed shipment", "shipmentId", shipment.ID, "waveId", shipment.WaveID)
	return ToShipmentDTO(shipment), nil
}

// ConfirmShip moves a packed shipment to shipped, generates the tracking
// number and appends the hand-off record. The hand-off append is a
// best-effort secondary effect after the ship write commits.
func (s *LifecycleApplicationService) ConfirmShip(ctx context.Context, cmd ConfirmShipCommand) (*ConfirmShipResult, error) {
	carrier, err := domain.ParseCarrier(cmd.Carrier)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error()).WithDetail("carrier", cmd.Carrier)
	}
	if cmd.ShippedBy == "" {
		return nil, apperrors.ErrValidation("shippedBy is required")
	}
	if cmd.WeightKg < 0 {
		return nil, apperrors.ErrValidation("weightKg must not be negative")
	}

	trackingNumber := domain.NewTrackingNumber(carrier)
	shipment, err := s.shipments.ConfirmShip(ctx, cmd.ShipmentID, carrier, trackingNumber, cmd.ShippedBy, cmd.WeightKg)
	if err != nil {
		return nil, shipmentError(err)
	}

	result := &ConfirmShipResult{Shipment: ToShipmentDTO(shipment)}

	record := domain.NewHandOffRecord(shipment)
	if err := s.handOffs.Append(ctx, record); err != nil {
		s.metrics.RecordSecondaryEffectFailure("handoff_append")
		s.logger.WithError(err).Error("Failed to append hand-off record",
			"shipmentId", shipment.ID, "trackingNumber", shipment.TrackingNumber)
		result.Warning = apperrors.ErrSecondaryEffect("recording the carrier hand-off").Error()
	}

	s.metrics.RecordShipmentShipped(string(carrier))
	s.publishEvents(ctx, []domain.DomainEvent{&domain.ShipmentShippedEvent{
		ShipmentID:     shipment.ID,
		WaveID:         shipment.WaveID,
		Carrier:        string(carrier),
		TrackingNumber: shipment.TrackingNumber,
		ShippedBy:      cmd.ShippedBy,
		ShippedAt:      *shipment.ShippedAt,
	}})

	s.logger.Info("Shipped shipment", "shipmentId", shipment.ID,
		"carrier", string(carrier), "trackingNumber", shipment.TrackingNumber)
	return result, nil
}

// ListHandOffs lists the hand-off log of a shipment in recorded order
func (s *LifecycleApplicationService) ListHandOffs(ctx context.Context, query ListHandOffsQuery) ([]HandOffDTO, error) {
	records, err := s.handOffs.FindByShipmentID(ctx, query.ShipmentID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list hand-offs", "shipmentId", query.ShipmentID)
		return nil, apperrors.ErrStoreUnavailable("hand-off store").Wrap(err)
	}
	return ToHandOffDTOs(records), nil
}

func toShipmentLines(inputs []ShipmentLineInput) ([]domain.ShipmentLine, error) {
	if len(inputs) == 0 {
		return nil, apperrors.ErrValidation("shipment must have at least one line")
	}

	lines := make([]domain.ShipmentLine, 0, len(inputs))
	for _, input := range inputs {
		if input.SKU == "" || input.LocationID == "" {
			return nil, apperrors.ErrValidation("line sku and locationId are required")
		}
		if input.Quantity < 1 {
			return nil, apperrors.ErrValidation("line quantity must be at least 1")
		}
		lines = append(lines, domain.ShipmentLine{
			SKU:      input.SKU,
			Quantity: input.Quantity,
			Location: input.LocationID,
		})
	}
	return lines, nil
}

func (s *LifecycleApplicationService) publishEvents(ctx context.Context, events []domain.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.metrics.RecordSecondaryEffectFailure("event_publish")
		s.logger.WithError(err).Warn("Failed to publish domain events")
	}
}
