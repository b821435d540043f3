package application

import (
	"context"
	"errors"

	apperrors "github.com/wms-platform/coordination-service/pkg/errors"
	"github.com/wms-platform/coordination-service/pkg/logging"
	"github.com/wms-platform/coordination-service/pkg/metrics"

	"github.com/wms-platform/coordination-service/internal/domain"
)

const defaultListLimit = 50

// TaskApplicationService handles the shared task pool use cases: publishing
// tasks, claiming, releasing and completing them, and the count reconciliation
// that runs as a secondary effect of completing count tasks.
type TaskApplicationService struct {
	tasks     domain.TaskRepository
	waves     domain.WaveRepository
	shipments domain.ShipmentRepository
	tickets   domain.TicketRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewTaskApplicationService creates a new TaskApplicationService
func NewTaskApplicationService(
	tasks domain.TaskRepository,
	waves domain.WaveRepository,
	shipments domain.ShipmentRepository,
	tickets domain.TicketRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *TaskApplicationService {
	return &TaskApplicationService{
		tasks:     tasks,
		waves:     waves,
		shipments: shipments,
		tickets:   tickets,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// CreateTask publishes a putaway or count task to the pool. Pick tasks are
// fanned out by wave release and cannot be created here.
func (s *TaskApplicationService) CreateTask(ctx context.Context, cmd CreateTaskCommand) (*TaskDTO, error) {
	kind, err := domain.ParseTaskKind(cmd.Kind)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error()).WithDetail("kind", cmd.Kind)
	}

	var task *domain.Task
	switch kind {
	case domain.KindPutaway:
		task = domain.NewPutawayTask(cmd.ASNID, cmd.SKU, cmd.Quantity, cmd.LocationID, cmd.ToLocation)
	case domain.KindCount:
		if cmd.SystemQuantity < 0 {
			return nil, apperrors.ErrValidation("systemQuantity must not be negative")
		}
		task = domain.NewCountTask(cmd.LocationID, cmd.SKU, cmd.SystemQuantity)
	case domain.KindPick:
		return nil, apperrors.ErrValidation("pick tasks are created by wave release")
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.WithError(err).Error("Failed to create task", "kind", cmd.Kind)
		return nil, taskError(err)
	}

	s.publishEvents(ctx, task.GetDomainEvents())
	task.ClearDomainEvents()

	s.logger.Info("Created task", "taskId", task.ID, "kind", cmd.Kind)
	return ToTaskDTO(task), nil
}

// GetTask retrieves a task by ID
func (s *TaskApplicationService) GetTask(ctx context.Context, query GetTaskQuery) (*TaskDTO, error) {
	task, err := s.tasks.FindByID(ctx, query.TaskID)
	if err != nil {
		return nil, taskError(err)
	}
	return ToTaskDTO(task), nil
}

// ListClaimable lists pending tasks of one kind, oldest first. Pick tasks are
// only claimable once their wave has been released, so the pick listing is
// restricted to waves currently in picking.
func (s *TaskApplicationService) ListClaimable(ctx context.Context, query ListClaimableQuery) ([]TaskDTO, error) {
	kind, err := domain.ParseTaskKind(query.Kind)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error()).WithDetail("kind", query.Kind)
	}

	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	var waveIDs []string
	if kind == domain.KindPick {
		waveIDs, err = s.waves.FindPickingWaveIDs(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Failed to list picking waves")
			return nil, waveError(err)
		}
		if len(waveIDs) == 0 {
			return []TaskDTO{}, nil
		}
	}

	tasks, err := s.tasks.FindPending(ctx, kind, waveIDs, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list claimable tasks", "kind", query.Kind)
		return nil, taskError(err)
	}

	return ToTaskDTOs(tasks), nil
}

// ListMine lists the tasks currently claimed by a worker
func (s *TaskApplicationService) ListMine(ctx context.Context, workerID string) ([]TaskDTO, error) {
	tasks, err := s.tasks.FindInProgressByWorker(ctx, workerID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list worker tasks", "workerId", workerID)
		return nil, taskError(err)
	}
	return ToTaskDTOs(tasks), nil
}

// Claim atomically assigns a pending task to the calling worker. Exactly one
// of N concurrent claimers wins; the rest receive a conflict.
func (s *TaskApplicationService) Claim(ctx context.Context, cmd ClaimTaskCommand) (*TaskDTO, error) {
	task, err := s.tasks.Claim(ctx, cmd.TaskID, cmd.WorkerID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskAlreadyClaimed) || errors.Is(err, domain.ErrTaskAlreadyCompleted) {
			kind := "unknown"
			if lost, ferr := s.tasks.FindByID(ctx, cmd.TaskID); ferr == nil {
				kind = string(lost.Kind)
			}
			s.metrics.RecordClaimConflict(kind)
			s.logger.Info("Claim conflict", "taskId", cmd.TaskID, "workerId", cmd.WorkerID)
		}
		return nil, taskError(err)
	}

	s.metrics.RecordTaskClaimed(string(task.Kind))
	s.publishEvents(ctx, []domain.DomainEvent{&domain.TaskClaimedEvent{
		TaskID:    task.ID,
		Kind:      string(task.Kind),
		WorkerID:  cmd.WorkerID,
		ClaimedAt: *task.ClaimedAt,
	}})

	s.logger.Info("Claimed task", "taskId", task.ID, "kind", task.Kind, "workerId", cmd.WorkerID)
	return ToTaskDTO(task), nil
}

// Release returns a claimed task to the pool. Only the current claimant may
// release; the task becomes claimable again immediately.
func (s *TaskApplicationService) Release(ctx context.Context, cmd ReleaseTaskCommand) (*TaskDTO, error) {
	task, err := s.tasks.Release(ctx, cmd.TaskID, cmd.WorkerID)
	if err != nil {
		return nil, taskError(err)
	}

	s.metrics.RecordTaskReleased(string(task.Kind))
	s.publishEvents(ctx, []domain.DomainEvent{&domain.TaskReleasedEvent{
		TaskID:     task.ID,
		Kind:       string(task.Kind),
		WorkerID:   cmd.WorkerID,
		ReleasedAt: task.UpdatedAt,
	}})

	s.logger.Info("Released task", "taskId", task.ID, "kind", task.Kind, "workerId", cmd.WorkerID)
	return ToTaskDTO(task), nil
}

// Complete finishes a claimed task. Count tasks additionally run variance
// reconciliation, pick tasks mark their shipment line picked. Both run after
// the completing write as best-effort secondary effects: a failure is
// reported as a warning, never rolled back.
func (s *TaskApplicationService) Complete(ctx context.Context, cmd CompleteTaskCommand) (*CompleteTaskResult, error) {
	current, err := s.tasks.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, taskError(err)
	}

	if current.Kind == domain.KindCount {
		return s.completeCount(ctx, cmd, current)
	}

	task, err := s.tasks.Complete(ctx, cmd.TaskID, cmd.WorkerID)
	if err != nil {
		return nil, taskError(err)
	}

	result := &CompleteTaskResult{Task: ToTaskDTO(task)}

	if task.Kind == domain.KindPick && task.Pick != nil {
		if err := s.shipments.MarkLinePicked(ctx, task.Pick.ShipmentID, task.Pick.LineID); err != nil {
			s.metrics.RecordSecondaryEffectFailure("mark_line_picked")
			s.logger.WithError(err).Error("Failed to mark line picked after pick completion",
				"taskId", task.ID, "shipmentId", task.Pick.ShipmentID, "lineId", task.Pick.LineID)
			result.Warning = apperrors.ErrSecondaryEffect("marking the shipment line picked").Error()
		}
	}

	s.metrics.RecordTaskCompleted(string(task.Kind))
	s.publishEvents(ctx, []domain.DomainEvent{&domain.TaskCompletedEvent{
		TaskID:      task.ID,
		Kind:        string(task.Kind),
		WorkerID:    cmd.WorkerID,
		CompletedAt: *task.CompletedAt,
	}})

	s.logger.Info("Completed task", "taskId", task.ID, "kind", task.Kind, "workerId", cmd.WorkerID)
	return result, nil
}

// completeCount completes a count task and runs variance reconciliation. The
// system quantity is immutable after creation, so reading it before the
// conditional completing write preserves atomicity of the transition.
func (s *TaskApplicationService) completeCount(ctx context.Context, cmd CompleteTaskCommand, current *domain.Task) (*CompleteTaskResult, error) {
	if cmd.CountedQuantity == nil {
		return nil, apperrors.ErrValidation("countedQuantity is required for count tasks")
	}
	counted := *cmd.CountedQuantity
	if counted < 0 {
		return nil, taskError(domain.ErrNegativeCountedQty)
	}

	variance := current.Count.SystemQuantity - counted

	task, err := s.tasks.CompleteCount(ctx, cmd.TaskID, cmd.WorkerID, counted, variance)
	if err != nil {
		return nil, taskError(err)
	}

	result := &CompleteTaskResult{Task: ToTaskDTO(task)}

	if task.HasVariance() {
		ticket := domain.NewCountVarianceTicket(task.ID, task.Location, task.SKU, task.Count.SystemQuantity, counted)
		if err := s.tickets.Create(ctx, ticket); err != nil {
			s.metrics.RecordSecondaryEffectFailure("variance_ticket")
			s.logger.WithError(err).Error("Failed to open variance ticket after count completion",
				"taskId", task.ID, "variance", variance)
			result.Warning = apperrors.ErrSecondaryEffect("opening the count variance ticket").Error()
		} else {
			result.TicketID = ticket.ID
			s.metrics.RecordCountVariance(string(ticket.Priority))
			s.publishEvents(ctx, append(ticket.GetDomainEvents(), &domain.CountVarianceDetectedEvent{
				TaskID:          task.ID,
				TicketID:        ticket.ID,
				LocationID:      task.Location,
				SKU:             task.SKU,
				SystemQuantity:  task.Count.SystemQuantity,
				CountedQuantity: counted,
				Variance:        variance,
				DetectedAt:      *task.CompletedAt,
			}))
			ticket.ClearDomainEvents()
			s.logger.Event(ctx, "count_variance_detected", map[string]any{
				"taskId":   task.ID,
				"ticketId": ticket.ID,
				"sku":      task.SKU,
				"variance": variance,
				"priority": string(ticket.Priority),
			})
		}
	}

	s.metrics.RecordTaskCompleted(string(task.Kind))
	s.publishEvents(ctx, []domain.DomainEvent{&domain.TaskCompletedEvent{
		TaskID:      task.ID,
		Kind:        string(task.Kind),
		WorkerID:    cmd.WorkerID,
		CompletedAt: *task.CompletedAt,
	}})

	s.logger.Info("Completed count task", "taskId", task.ID, "workerId", cmd.WorkerID,
		"variance", variance)
	return result, nil
}

// publishEvents publishes domain events best-effort. Event delivery never
// fails the operation that raised them.
func (s *TaskApplicationService) publishEvents(ctx context.Context, events []domain.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.metrics.RecordSecondaryEffectFailure("event_publish")
		s.logger.WithError(err).Warn("Failed to publish domain events")
	}
}
