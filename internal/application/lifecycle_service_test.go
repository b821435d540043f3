package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/coordination-service/internal/domain"
	apperrors "github.com/wms-platform/coordination-service/pkg/errors"
)

type lifecycleServiceMocks struct {
	waves     *MockWaveRepository
	shipments *MockShipmentRepository
	tasks     *MockTaskRepository
	handOffs  *MockHandOffRepository
	publisher *MockEventPublisher
}

func newLifecycleService(t *testing.T) (*LifecycleApplicationService, *lifecycleServiceMocks) {
	t.Helper()
	m := &lifecycleServiceMocks{
		waves:     new(MockWaveRepository),
		shipments: new(MockShipmentRepository),
		tasks:     new(MockTaskRepository),
		handOffs:  new(MockHandOffRepository),
		publisher: new(MockEventPublisher),
	}
	svc := NewLifecycleApplicationService(
		m.waves, m.shipments, m.tasks, m.handOffs, m.publisher,
		newTestMetrics(), newTestLogger(),
	)
	return svc, m
}

func releasedWave(t *testing.T, totalShipments int) *domain.Wave {
	t.Helper()
	wave, err := domain.NewWave(totalShipments)
	require.NoError(t, err)
	require.NoError(t, wave.Release())
	wave.ClearDomainEvents()
	return wave
}

func waveShipment(t *testing.T, waveID string, lineCount int) *domain.Shipment {
	t.Helper()
	lines := make([]domain.ShipmentLine, 0, lineCount)
	for i := 0; i < lineCount; i++ {
		lines = append(lines, domain.ShipmentLine{SKU: "SKU-1", Quantity: 1, Location: "A-01-01"})
	}
	shipment := domain.NewShipment(lines)
	shipment.WaveID = waveID
	return shipment
}

func TestCreateWave_WithInlineShipments(t *testing.T) {
	svc, m := newLifecycleService(t)
	m.waves.On("Create", mock.Anything, mock.AnythingOfType("*domain.Wave")).Return(nil)
	m.shipments.On("Create", mock.Anything, mock.AnythingOfType("*domain.Shipment")).Return(nil).Twice()
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.CreateWave(context.Background(), CreateWaveCommand{
		Shipments: []ShipmentInput{
			{Lines: []ShipmentLineInput{{SKU: "SKU-1", Quantity: 2, LocationID: "A-01-01"}}},
			{Lines: []ShipmentLineInput{{SKU: "SKU-2", Quantity: 1, LocationID: "A-01-02"}}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, dto.TotalShipments)
	assert.Len(t, dto.Shipments, 2)
	m.shipments.AssertExpectations(t)
}

func TestCreateWave_Empty(t *testing.T) {
	svc, _ := newLifecycleService(t)

	_, err := svc.CreateWave(context.Background(), CreateWaveCommand{})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestCreateWave_AttachesExistingShipments(t *testing.T) {
	svc, m := newLifecycleService(t)
	m.waves.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.shipments.On("AssignToWave", mock.Anything, "ship-1", mock.AnythingOfType("string")).Return(nil)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.CreateWave(context.Background(), CreateWaveCommand{ShipmentIDs: []string{"ship-1"}})

	require.NoError(t, err)
	assert.Equal(t, 1, dto.TotalShipments)
	m.shipments.AssertExpectations(t)
}

func TestReleaseWave_FansOutPickTasks(t *testing.T) {
	svc, m := newLifecycleService(t)
	wave := releasedWave(t, 2)
	shipments := []*domain.Shipment{
		waveShipment(t, wave.ID, 2),
		waveShipment(t, wave.ID, 1),
	}

	m.waves.On("Release", mock.Anything, wave.ID).Return(wave, nil)
	m.shipments.On("FindByWaveID", mock.Anything, wave.ID).Return(shipments, nil)
	m.shipments.On("MarkPicking", mock.Anything, wave.ID).Return(nil)
	m.tasks.On("CreateMany", mock.Anything, mock.AnythingOfType("[]*domain.Task")).Return(nil)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.ReleaseWave(context.Background(), ReleaseWaveCommand{WaveID: wave.ID})

	require.NoError(t, err)
	assert.Equal(t, 3, result.PickTasks)
	assert.Empty(t, result.Warning)

	created := m.tasks.Calls[0].Arguments.Get(1).([]*domain.Task)
	require.Len(t, created, 3)
	for _, task := range created {
		assert.Equal(t, domain.KindPick, task.Kind)
		assert.Equal(t, wave.ID, task.Pick.WaveID)
	}
}

func TestReleaseWave_AlreadyReleased(t *testing.T) {
	svc, m := newLifecycleService(t)
	m.waves.On("Release", mock.Anything, "wave-1").Return(nil, domain.ErrWaveAlreadyReleased)

	_, err := svc.ReleaseWave(context.Background(), ReleaseWaveCommand{WaveID: "wave-1"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestReleaseWave_FanOutFailureIsWarning(t *testing.T) {
	svc, m := newLifecycleService(t)
	wave := releasedWave(t, 1)
	shipments := []*domain.Shipment{waveShipment(t, wave.ID, 1)}

	m.waves.On("Release", mock.Anything, wave.ID).Return(wave, nil)
	m.shipments.On("FindByWaveID", mock.Anything, wave.ID).Return(shipments, nil)
	m.shipments.On("MarkPicking", mock.Anything, wave.ID).Return(nil)
	m.tasks.On("CreateMany", mock.Anything, mock.Anything).Return(assert.AnError)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.ReleaseWave(context.Background(), ReleaseWaveCommand{WaveID: wave.ID})

	require.NoError(t, err)
	assert.Contains(t, result.Warning, "SECONDARY_EFFECT_FAILED")
	assert.Equal(t, "picking", result.Wave.Status)
}

func TestGetWave_DerivedStatus(t *testing.T) {
	svc, m := newLifecycleService(t)
	wave := releasedWave(t, 1)

	packed := waveShipment(t, wave.ID, 1)
	for _, line := range packed.Lines {
		require.NoError(t, packed.MarkLinePicked(line.LineID))
	}
	require.NoError(t, packed.StartPacking())
	packed.ClearDomainEvents()

	m.waves.On("FindByID", mock.Anything, wave.ID).Return(wave, nil)
	m.shipments.On("FindByWaveID", mock.Anything, wave.ID).Return([]*domain.Shipment{packed}, nil)

	dto, err := svc.GetWave(context.Background(), GetWaveQuery{WaveID: wave.ID})

	require.NoError(t, err)
	assert.Equal(t, "packing", dto.Status)
}

func TestStartPacking_IncompletePicksConflict(t *testing.T) {
	svc, m := newLifecycleService(t)
	m.tasks.On("CountIncompletePicks", mock.Anything, "ship-1").Return(int64(2), nil)

	_, err := svc.StartPacking(context.Background(), StartPackingCommand{ShipmentID: "ship-1"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	m.shipments.AssertNotCalled(t, "StartPacking", mock.Anything, mock.Anything)
}

func TestStartPacking_Success(t *testing.T) {
	svc, m := newLifecycleService(t)

	shipment := waveShipment(t, "wave-1", 1)
	for _, line := range shipment.Lines {
		require.NoError(t, shipment.MarkLinePicked(line.LineID))
	}
	require.NoError(t, shipment.StartPacking())
	shipment.ClearDomainEvents()

	m.tasks.On("CountIncompletePicks", mock.Anything, shipment.ID).Return(int64(0), nil)
	m.shipments.On("StartPacking", mock.Anything, shipment.ID).Return(shipment, nil)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.StartPacking(context.Background(), StartPackingCommand{ShipmentID: shipment.ID})

	require.NoError(t, err)
	assert.Equal(t, "packed", dto.Status)
	assert.NotNil(t, dto.PackedAt)
}

func TestConfirmShip_AppendsHandOff(t *testing.T) {
	svc, m := newLifecycleService(t)

	shipment := waveShipment(t, "wave-1", 1)
	for _, line := range shipment.Lines {
		require.NoError(t, shipment.MarkLinePicked(line.LineID))
	}
	require.NoError(t, shipment.StartPacking())
	require.NoError(t, shipment.ConfirmShip(domain.CarrierFedEx, "worker-1", 3.5))
	shipment.ClearDomainEvents()

	m.shipments.On("ConfirmShip", mock.Anything, shipment.ID, domain.CarrierFedEx,
		mock.AnythingOfType("string"), "worker-1", 3.5).Return(shipment, nil)
	m.handOffs.On("Append", mock.Anything, mock.AnythingOfType("*domain.HandOffRecord")).Return(nil)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.ConfirmShip(context.Background(), ConfirmShipCommand{
		ShipmentID: shipment.ID,
		Carrier:    "fedex",
		ShippedBy:  "worker-1",
		WeightKg:   3.5,
	})

	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	assert.Regexp(t, `^FEDEX-[A-Z0-9]{10}$`, result.Shipment.TrackingNumber)

	record := m.handOffs.Calls[0].Arguments.Get(1).(*domain.HandOffRecord)
	assert.Equal(t, shipment.ID, record.ShipmentID)
	assert.Equal(t, shipment.TrackingNumber, record.TrackingNumber)
}

func TestConfirmShip_UnknownCarrier(t *testing.T) {
	svc, _ := newLifecycleService(t)

	_, err := svc.ConfirmShip(context.Background(), ConfirmShipCommand{
		ShipmentID: "ship-1",
		Carrier:    "usps",
		ShippedBy:  "worker-1",
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestConfirmShip_NotPacked(t *testing.T) {
	svc, m := newLifecycleService(t)
	m.shipments.On("ConfirmShip", mock.Anything, "ship-1", domain.CarrierUPS,
		mock.AnythingOfType("string"), "worker-1", 1.0).Return(nil, domain.ErrShipmentNotPacked)

	_, err := svc.ConfirmShip(context.Background(), ConfirmShipCommand{
		ShipmentID: "ship-1",
		Carrier:    "ups",
		ShippedBy:  "worker-1",
		WeightKg:   1.0,
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestConfirmShip_HandOffFailureIsWarning(t *testing.T) {
	svc, m := newLifecycleService(t)

	shipment := waveShipment(t, "wave-1", 1)
	for _, line := range shipment.Lines {
		require.NoError(t, shipment.MarkLinePicked(line.LineID))
	}
	require.NoError(t, shipment.StartPacking())
	require.NoError(t, shipment.ConfirmShip(domain.CarrierDHL, "worker-1", 2.0))
	shipment.ClearDomainEvents()

	m.shipments.On("ConfirmShip", mock.Anything, shipment.ID, domain.CarrierDHL,
		mock.AnythingOfType("string"), "worker-1", 2.0).Return(shipment, nil)
	m.handOffs.On("Append", mock.Anything, mock.Anything).Return(assert.AnError)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.ConfirmShip(context.Background(), ConfirmShipCommand{
		ShipmentID: shipment.ID,
		Carrier:    "dhl",
		ShippedBy:  "worker-1",
		WeightKg:   2.0,
	})

	require.NoError(t, err)
	assert.Contains(t, result.Warning, "SECONDARY_EFFECT_FAILED")
	assert.Equal(t, "shipped", result.Shipment.Status)
}

func TestListHandOffs(t *testing.T) {
	svc, m := newLifecycleService(t)
	records := []*domain.HandOffRecord{
		{ID: "h-1", ShipmentID: "ship-1", Carrier: domain.CarrierUPS, TrackingNumber: "UPS-ABCDEF0123"},
	}
	m.handOffs.On("FindByShipmentID", mock.Anything, "ship-1").Return(records, nil)

	dtos, err := svc.ListHandOffs(context.Background(), ListHandOffsQuery{ShipmentID: "ship-1"})

	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, "UPS-ABCDEF0123", dtos[0].TrackingNumber)
}
