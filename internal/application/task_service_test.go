package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/coordination-service/internal/domain"
	apperrors "github.com/wms-platform/coordination-service/pkg/errors"
)

type taskServiceMocks struct {
	tasks     *MockTaskRepository
	waves     *MockWaveRepository
	shipments *MockShipmentRepository
	tickets   *MockTicketRepository
	publisher *MockEventPublisher
}

func newTaskService(t *testing.T) (*TaskApplicationService, *taskServiceMocks) {
	t.Helper()
	m := &taskServiceMocks{
		tasks:     new(MockTaskRepository),
		waves:     new(MockWaveRepository),
		shipments: new(MockShipmentRepository),
		tickets:   new(MockTicketRepository),
		publisher: new(MockEventPublisher),
	}
	svc := NewTaskApplicationService(
		m.tasks, m.waves, m.shipments, m.tickets, m.publisher,
		newTestMetrics(), newTestLogger(),
	)
	return svc, m
}

func claimedCountTask(t *testing.T, workerID string, systemQty int) *domain.Task {
	t.Helper()
	task := domain.NewCountTask("A-01-01", "SKU-1", systemQty)
	require.NoError(t, task.Claim(workerID))
	task.ClearDomainEvents()
	return task
}

func TestCreateTask_Putaway(t *testing.T) {
	svc, m := newTaskService(t)
	m.tasks.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.CreateTask(context.Background(), CreateTaskCommand{
		Kind:       "putaway",
		SKU:        "SKU-1",
		Quantity:   5,
		LocationID: "DOCK-01",
		ASNID:      "asn-1",
		ToLocation: "A-01-01",
	})

	require.NoError(t, err)
	assert.Equal(t, "putaway", dto.Kind)
	assert.Equal(t, "pending", dto.Status)
	m.tasks.AssertExpectations(t)
}

func TestCreateTask_PickRejected(t *testing.T) {
	svc, _ := newTaskService(t)

	_, err := svc.CreateTask(context.Background(), CreateTaskCommand{Kind: "pick"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestCreateTask_UnknownKind(t *testing.T) {
	svc, _ := newTaskService(t)

	_, err := svc.CreateTask(context.Background(), CreateTaskCommand{Kind: "replenish"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestClaim_Success(t *testing.T) {
	svc, m := newTaskService(t)
	task := claimedCountTask(t, "worker-1", 10)
	m.tasks.On("Claim", mock.Anything, task.ID, "worker-1").Return(task, nil)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.Claim(context.Background(), ClaimTaskCommand{TaskID: task.ID, WorkerID: "worker-1"})

	require.NoError(t, err)
	assert.Equal(t, "in_progress", dto.Status)
	require.NotNil(t, dto.ClaimedBy)
	assert.Equal(t, "worker-1", *dto.ClaimedBy)
}

func TestClaim_Conflict(t *testing.T) {
	svc, m := newTaskService(t)
	task := claimedCountTask(t, "worker-1", 10)
	m.tasks.On("Claim", mock.Anything, task.ID, "worker-2").Return(nil, domain.ErrTaskAlreadyClaimed)
	m.tasks.On("FindByID", mock.Anything, task.ID).Return(task, nil)

	_, err := svc.Claim(context.Background(), ClaimTaskCommand{TaskID: task.ID, WorkerID: "worker-2"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestClaim_NotFound(t *testing.T) {
	svc, m := newTaskService(t)
	m.tasks.On("Claim", mock.Anything, "missing", "worker-1").Return(nil, domain.ErrTaskNotFound)

	_, err := svc.Claim(context.Background(), ClaimTaskCommand{TaskID: "missing", WorkerID: "worker-1"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestRelease_NotClaimant(t *testing.T) {
	svc, m := newTaskService(t)
	m.tasks.On("Release", mock.Anything, "task-1", "worker-2").Return(nil, domain.ErrTaskNotClaimedByCaller)

	_, err := svc.Release(context.Background(), ReleaseTaskCommand{TaskID: "task-1", WorkerID: "worker-2"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestComplete_PickMarksLine(t *testing.T) {
	svc, m := newTaskService(t)

	line := domain.ShipmentLine{LineID: "line-1", SKU: "SKU-1", Quantity: 1, Location: "A-01-01"}
	task := domain.NewPickTask("wave-1", "ship-1", line)
	require.NoError(t, task.Claim("worker-1"))
	require.NoError(t, task.Complete("worker-1"))
	task.ClearDomainEvents()

	m.tasks.On("FindByID", mock.Anything, task.ID).Return(task, nil)
	m.tasks.On("Complete", mock.Anything, task.ID, "worker-1").Return(task, nil)
	m.shipments.On("MarkLinePicked", mock.Anything, "ship-1", "line-1").Return(nil)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Complete(context.Background(), CompleteTaskCommand{TaskID: task.ID, WorkerID: "worker-1"})

	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	m.shipments.AssertExpectations(t)
}

func TestComplete_PickLineFailureIsWarning(t *testing.T) {
	svc, m := newTaskService(t)

	line := domain.ShipmentLine{LineID: "line-1", SKU: "SKU-1", Quantity: 1, Location: "A-01-01"}
	task := domain.NewPickTask("wave-1", "ship-1", line)
	require.NoError(t, task.Claim("worker-1"))
	require.NoError(t, task.Complete("worker-1"))
	task.ClearDomainEvents()

	m.tasks.On("FindByID", mock.Anything, task.ID).Return(task, nil)
	m.tasks.On("Complete", mock.Anything, task.ID, "worker-1").Return(task, nil)
	m.shipments.On("MarkLinePicked", mock.Anything, "ship-1", "line-1").Return(assert.AnError)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Complete(context.Background(), CompleteTaskCommand{TaskID: task.ID, WorkerID: "worker-1"})

	require.NoError(t, err)
	assert.Contains(t, result.Warning, "SECONDARY_EFFECT_FAILED")
	assert.Equal(t, "completed", result.Task.Status)
}

func TestComplete_CountWithVarianceOpensTicket(t *testing.T) {
	svc, m := newTaskService(t)

	pending := claimedCountTask(t, "worker-1", 40)
	completed := claimedCountTask(t, "worker-1", 40)
	completed.ID = pending.ID
	require.NoError(t, completed.CompleteCount("worker-1", 20))
	completed.ClearDomainEvents()

	m.tasks.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	m.tasks.On("CompleteCount", mock.Anything, pending.ID, "worker-1", 20, 20).Return(completed, nil)
	m.tickets.On("Create", mock.Anything, mock.AnythingOfType("*domain.Ticket")).Return(nil)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	counted := 20
	result, err := svc.Complete(context.Background(), CompleteTaskCommand{
		TaskID:          pending.ID,
		WorkerID:        "worker-1",
		CountedQuantity: &counted,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.TicketID)
	assert.Empty(t, result.Warning)

	createdTicket := m.tickets.Calls[0].Arguments.Get(1).(*domain.Ticket)
	assert.Equal(t, domain.TicketTypeCountVariance, createdTicket.Type)
	assert.Equal(t, domain.PriorityHigh, createdTicket.Priority)
	assert.Equal(t, "Count variance detected. System: 40, Counted: 20, Variance: 20", createdTicket.Description)
}

func TestComplete_CountExactMatchNoTicket(t *testing.T) {
	svc, m := newTaskService(t)

	pending := claimedCountTask(t, "worker-1", 25)
	completed := claimedCountTask(t, "worker-1", 25)
	completed.ID = pending.ID
	require.NoError(t, completed.CompleteCount("worker-1", 25))
	completed.ClearDomainEvents()

	m.tasks.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	m.tasks.On("CompleteCount", mock.Anything, pending.ID, "worker-1", 25, 0).Return(completed, nil)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	counted := 25
	result, err := svc.Complete(context.Background(), CompleteTaskCommand{
		TaskID:          pending.ID,
		WorkerID:        "worker-1",
		CountedQuantity: &counted,
	})

	require.NoError(t, err)
	assert.Empty(t, result.TicketID)
	m.tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	require.NotNil(t, result.Task.Count.Variance)
	assert.Equal(t, 0, *result.Task.Count.Variance)
}

func TestComplete_CountTicketFailureIsWarning(t *testing.T) {
	svc, m := newTaskService(t)

	pending := claimedCountTask(t, "worker-1", 75)
	completed := claimedCountTask(t, "worker-1", 75)
	completed.ID = pending.ID
	require.NoError(t, completed.CompleteCount("worker-1", 73))
	completed.ClearDomainEvents()

	m.tasks.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	m.tasks.On("CompleteCount", mock.Anything, pending.ID, "worker-1", 73, 2).Return(completed, nil)
	m.tickets.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
	m.publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	counted := 73
	result, err := svc.Complete(context.Background(), CompleteTaskCommand{
		TaskID:          pending.ID,
		WorkerID:        "worker-1",
		CountedQuantity: &counted,
	})

	require.NoError(t, err)
	assert.Empty(t, result.TicketID)
	assert.Contains(t, result.Warning, "SECONDARY_EFFECT_FAILED")
	assert.Equal(t, "completed", result.Task.Status)
}

func TestComplete_CountRequiresCountedQuantity(t *testing.T) {
	svc, m := newTaskService(t)

	pending := claimedCountTask(t, "worker-1", 10)
	m.tasks.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)

	_, err := svc.Complete(context.Background(), CompleteTaskCommand{TaskID: pending.ID, WorkerID: "worker-1"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestListClaimable_PickFiltersOnPickingWaves(t *testing.T) {
	svc, m := newTaskService(t)
	m.waves.On("FindPickingWaveIDs", mock.Anything).Return([]string{"wave-1"}, nil)
	m.tasks.On("FindPending", mock.Anything, domain.KindPick, []string{"wave-1"}, defaultListLimit).
		Return([]*domain.Task{}, nil)

	tasks, err := svc.ListClaimable(context.Background(), ListClaimableQuery{Kind: "pick"})

	require.NoError(t, err)
	assert.Empty(t, tasks)
	m.tasks.AssertExpectations(t)
}

func TestListClaimable_NoPickingWavesShortCircuits(t *testing.T) {
	svc, m := newTaskService(t)
	m.waves.On("FindPickingWaveIDs", mock.Anything).Return([]string{}, nil)

	tasks, err := svc.ListClaimable(context.Background(), ListClaimableQuery{Kind: "pick"})

	require.NoError(t, err)
	assert.Empty(t, tasks)
	m.tasks.AssertNotCalled(t, "FindPending", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// raceTaskRepo is an in-memory TaskRepository whose Claim mimics the store's
// conditional write under a mutex, for exercising concurrent claim behavior.
type raceTaskRepo struct {
	MockTaskRepository
	mu   sync.Mutex
	task *domain.Task
}

func (r *raceTaskRepo) Claim(ctx context.Context, taskID, workerID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.task.Status != domain.TaskStatusPending {
		return nil, domain.ErrTaskAlreadyClaimed
	}
	if err := r.task.Claim(workerID); err != nil {
		return nil, err
	}
	snapshot := *r.task
	return &snapshot, nil
}

func (r *raceTaskRepo) FindByID(ctx context.Context, taskID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := *r.task
	return &snapshot, nil
}

func TestClaim_ExactlyOneWinnerUnderContention(t *testing.T) {
	task := domain.NewCountTask("A-01-01", "SKU-1", 10)
	task.ClearDomainEvents()
	repo := &raceTaskRepo{task: task}

	publisher := new(MockEventPublisher)
	publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	svc := NewTaskApplicationService(
		repo, new(MockWaveRepository), new(MockShipmentRepository), new(MockTicketRepository),
		publisher, newTestMetrics(), newTestLogger(),
	)

	const workers = 16
	var wg sync.WaitGroup
	var wins, conflicts int64
	var counterMu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Claim(context.Background(), ClaimTaskCommand{
				TaskID:   task.ID,
				WorkerID: string(rune('a' + n)),
			})
			counterMu.Lock()
			defer counterMu.Unlock()
			if err == nil {
				wins++
			} else {
				appErr, ok := apperrors.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperrors.CodeConflict, appErr.Code)
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
	assert.Equal(t, int64(workers-1), conflicts)
}
