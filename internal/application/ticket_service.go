package application

import (
	"context"
	"time"

	apperrors "github.com/wms-platform/coordination-service/pkg/errors"
	"github.com/wms-platform/coordination-service/pkg/logging"
	"github.com/wms-platform/coordination-service/pkg/metrics"

	"github.com/wms-platform/coordination-service/internal/domain"
)

// TicketApplicationService handles the exception ticket lifecycle for
// problem-solver roles.
type TicketApplicationService struct {
	tickets   domain.TicketRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewTicketApplicationService creates a new TicketApplicationService
func NewTicketApplicationService(
	tickets domain.TicketRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *TicketApplicationService {
	return &TicketApplicationService{
		tickets:   tickets,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// OpenTicket opens a new exception ticket
func (s *TicketApplicationService) OpenTicket(ctx context.Context, cmd OpenTicketCommand) (*TicketDTO, error) {
	ticketType, err := domain.ParseTicketType(cmd.Type)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error()).WithDetail("type", cmd.Type)
	}
	priority, err := parsePriority(cmd.Priority)
	if err != nil {
		return nil, err
	}
	if cmd.Description == "" {
		return nil, apperrors.ErrValidation("description is required")
	}

	var reference *domain.TicketReference
	if cmd.TaskID != "" || cmd.LocationID != "" || cmd.SKU != "" {
		reference = &domain.TicketReference{
			TaskID:     cmd.TaskID,
			LocationID: cmd.LocationID,
			SKU:        cmd.SKU,
		}
	}

	ticket := domain.NewTicket(ticketType, priority, cmd.Description, reference)
	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.WithError(err).Error("Failed to create ticket", "type", cmd.Type)
		return nil, ticketError(err)
	}

	s.metrics.RecordTicketTransition("opened")
	s.publishEvents(ctx, ticket.GetDomainEvents())
	ticket.ClearDomainEvents()

	s.logger.Info("Opened ticket", "ticketId", ticket.ID, "type", cmd.Type, "priority", string(priority))
	return ToTicketDTO(ticket), nil
}

// GetTicket retrieves a ticket by ID
func (s *TicketApplicationService) GetTicket(ctx context.Context, query GetTicketQuery) (*TicketDTO, error) {
	ticket, err := s.tickets.FindByID(ctx, query.TicketID)
	if err != nil {
		return nil, ticketError(err)
	}
	return ToTicketDTO(ticket), nil
}

// ListTickets lists tickets filtered by status and priority
func (s *TicketApplicationService) ListTickets(ctx context.Context, query ListTicketsQuery) ([]TicketDTO, error) {
	var status domain.TicketStatus
	if query.Status != "" {
		status = domain.TicketStatus(query.Status)
		switch status {
		case domain.TicketStatusOpen, domain.TicketStatusInProgress,
			domain.TicketStatusResolved, domain.TicketStatusClosed:
		default:
			return nil, apperrors.ErrValidation("unknown ticket status").WithDetail("status", query.Status)
		}
	}

	var priority domain.TicketPriority
	if query.Priority != "" {
		parsed, err := parsePriority(query.Priority)
		if err != nil {
			return nil, err
		}
		priority = parsed
	}

	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	tickets, err := s.tickets.Find(ctx, status, priority, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list tickets")
		return nil, ticketError(err)
	}
	return ToTicketDTOs(tickets), nil
}

// AssignTicket moves an open ticket to in_progress with an assignee
func (s *TicketApplicationService) AssignTicket(ctx context.Context, cmd AssignTicketCommand) (*TicketDTO, error) {
	if cmd.Assignee == "" {
		return nil, ticketError(domain.ErrAssigneeRequired)
	}

	ticket, err := s.tickets.Assign(ctx, cmd.TicketID, cmd.Assignee)
	if err != nil {
		return nil, ticketError(err)
	}

	s.metrics.RecordTicketTransition("assigned")
	s.publishEvents(ctx, []domain.DomainEvent{&domain.TicketAssignedEvent{
		TicketID:   ticket.ID,
		AssignedTo: cmd.Assignee,
		AssignedAt: ticket.UpdatedAt,
	}})

	s.logger.Info("Assigned ticket", "ticketId", ticket.ID, "assignee", cmd.Assignee)
	return ToTicketDTO(ticket), nil
}

// ResolveTicket records the resolution of an in_progress ticket. Any problem
// solver may resolve, not just the assignee.
func (s *TicketApplicationService) ResolveTicket(ctx context.Context, cmd ResolveTicketCommand) (*TicketDTO, error) {
	if cmd.Resolution == "" {
		return nil, ticketError(domain.ErrResolutionRequired)
	}
	if cmd.ResolvedBy == "" {
		return nil, apperrors.ErrValidation("resolvedBy is required")
	}

	ticket, err := s.tickets.Resolve(ctx, cmd.TicketID, cmd.Resolution, cmd.ResolvedBy)
	if err != nil {
		return nil, ticketError(err)
	}

	s.metrics.RecordTicketTransition("resolved")
	s.publishEvents(ctx, []domain.DomainEvent{&domain.TicketResolvedEvent{
		TicketID:   ticket.ID,
		ResolvedBy: cmd.ResolvedBy,
		ResolvedAt: resolvedAtOrNow(ticket),
	}})

	s.logger.Info("Resolved ticket", "ticketId", ticket.ID, "resolvedBy", cmd.ResolvedBy)
	return ToTicketDTO(ticket), nil
}

// CloseTicket closes a resolved ticket
func (s *TicketApplicationService) CloseTicket(ctx context.Context, cmd CloseTicketCommand) (*TicketDTO, error) {
	ticket, err := s.tickets.Close(ctx, cmd.TicketID)
	if err != nil {
		return nil, ticketError(err)
	}

	s.metrics.RecordTicketTransition("closed")
	s.publishEvents(ctx, []domain.DomainEvent{&domain.TicketClosedEvent{
		TicketID: ticket.ID,
		ClosedAt: ticket.UpdatedAt,
	}})

	s.logger.Info("Closed ticket", "ticketId", ticket.ID)
	return ToTicketDTO(ticket), nil
}

// ReopenTicket returns a non-open ticket to open, clearing resolution fields
// and the assignee.
func (s *TicketApplicationService) ReopenTicket(ctx context.Context, cmd ReopenTicketCommand) (*TicketDTO, error) {
	ticket, err := s.tickets.Reopen(ctx, cmd.TicketID)
	if err != nil {
		return nil, ticketError(err)
	}

	s.metrics.RecordTicketTransition("reopened")
	s.publishEvents(ctx, []domain.DomainEvent{&domain.TicketReopenedEvent{
		TicketID:   ticket.ID,
		ReopenedAt: ticket.UpdatedAt,
	}})

	s.logger.Info("Reopened ticket", "ticketId", ticket.ID, "reopenCount", ticket.ReopenCount)
	return ToTicketDTO(ticket), nil
}

// GetStats summarizes the ticket population
func (s *TicketApplicationService) GetStats(ctx context.Context) (*TicketStatsDTO, error) {
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to aggregate ticket stats")
		return nil, ticketError(err)
	}
	return ToTicketStatsDTO(stats), nil
}

func parsePriority(raw string) (domain.TicketPriority, error) {
	switch domain.TicketPriority(raw) {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityCritical:
		return domain.TicketPriority(raw), nil
	}
	return "", apperrors.ErrValidation("unknown ticket priority").WithDetail("priority", raw)
}

func resolvedAtOrNow(ticket *domain.Ticket) time.Time {
	if ticket.ResolvedAt != nil {
		return *ticket.ResolvedAt
	}
	return time.Now().UTC()
}

func (s *TicketApplicationService) publishEvents(ctx context.Context, events []domain.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.metrics.RecordSecondaryEffectFailure("event_publish")
		s.logger.WithError(err).Warn("Failed to publish domain events")
	}
}
