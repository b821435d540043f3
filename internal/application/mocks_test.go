package application

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/wms-platform/coordination-service/internal/domain"
	"github.com/wms-platform/coordination-service/pkg/logging"
	"github.com/wms-platform/coordination-service/pkg/metrics"
)

func newTestLogger() *logging.Logger {
	return logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "coordination-service-test",
		Output:      io.Discard,
	})
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("coordination-service-test"))
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) CreateMany(ctx context.Context, tasks []*domain.Task) error {
	args := m.Called(ctx, tasks)
	return args.Error(0)
}

func (m *MockTaskRepository) FindByID(ctx context.Context, taskID string) (*domain.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) FindPending(ctx context.Context, kind domain.TaskKind, waveIDs []string, limit int) ([]*domain.Task, error) {
	args := m.Called(ctx, kind, waveIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) FindInProgressByWorker(ctx context.Context, workerID string) ([]*domain.Task, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) CountIncompletePicks(ctx context.Context, shipmentID string) (int64, error) {
	args := m.Called(ctx, shipmentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) Claim(ctx context.Context, taskID, workerID string) (*domain.Task, error) {
	args := m.Called(ctx, taskID, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Release(ctx context.Context, taskID, workerID string) (*domain.Task, error) {
	args := m.Called(ctx, taskID, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Complete(ctx context.Context, taskID, workerID string) (*domain.Task, error) {
	args := m.Called(ctx, taskID, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) CompleteCount(ctx context.Context, taskID, workerID string, countedQuantity, variance int) (*domain.Task, error) {
	args := m.Called(ctx, taskID, workerID, countedQuantity, variance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

type MockWaveRepository struct {
	mock.Mock
}

func (m *MockWaveRepository) Create(ctx context.Context, wave *domain.Wave) error {
	args := m.Called(ctx, wave)
	return args.Error(0)
}

func (m *MockWaveRepository) FindByID(ctx context.Context, waveID string) (*domain.Wave, error) {
	args := m.Called(ctx, waveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wave), args.Error(1)
}

func (m *MockWaveRepository) Release(ctx context.Context, waveID string) (*domain.Wave, error) {
	args := m.Called(ctx, waveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wave), args.Error(1)
}

func (m *MockWaveRepository) FindPickingWaveIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByWaveID(ctx context.Context, waveID string) ([]*domain.Shipment, error) {
	args := m.Called(ctx, waveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) AssignToWave(ctx context.Context, shipmentID, waveID string) error {
	args := m.Called(ctx, shipmentID, waveID)
	return args.Error(0)
}

func (m *MockShipmentRepository) MarkPicking(ctx context.Context, waveID string) error {
	args := m.Called(ctx, waveID)
	return args.Error(0)
}

func (m *MockShipmentRepository) MarkLinePicked(ctx context.Context, shipmentID, lineID string) error {
	args := m.Called(ctx, shipmentID, lineID)
	return args.Error(0)
}

func (m *MockShipmentRepository) StartPacking(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) ConfirmShip(ctx context.Context, shipmentID string, carrier domain.Carrier, trackingNumber, shippedBy string, weightKg float64) (*domain.Shipment, error) {
	args := m.Called(ctx, shipmentID, carrier, trackingNumber, shippedBy, weightKg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

type MockHandOffRepository struct {
	mock.Mock
}

func (m *MockHandOffRepository) Append(ctx context.Context, record *domain.HandOffRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHandOffRepository) FindByShipmentID(ctx context.Context, shipmentID string) ([]*domain.HandOffRecord, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HandOffRecord), args.Error(1)
}

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) FindByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Find(ctx context.Context, status domain.TicketStatus, priority domain.TicketPriority, limit int) ([]*domain.Ticket, error) {
	args := m.Called(ctx, status, priority, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Assign(ctx context.Context, ticketID, assignee string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID, assignee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Resolve(ctx context.Context, ticketID, resolution, resolvedBy string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID, resolution, resolvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Close(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Reopen(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Stats(ctx context.Context) (*domain.TicketStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketStats), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
