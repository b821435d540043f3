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

func newTicketService(t *testing.T) (*TicketApplicationService, *MockTicketRepository, *MockEventPublisher) {
	t.Helper()
	tickets := new(MockTicketRepository)
	publisher := new(MockEventPublisher)
	svc := NewTicketApplicationService(tickets, publisher, newTestMetrics(), newTestLogger())
	return svc, tickets, publisher
}

func TestOpenTicket(t *testing.T) {
	svc, tickets, publisher := newTicketService(t)
	tickets.On("Create", mock.Anything, mock.AnythingOfType("*domain.Ticket")).Return(nil)
	publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.OpenTicket(context.Background(), OpenTicketCommand{
		Type:        "damage",
		Priority:    "high",
		Description: "crushed carton on B-02",
		LocationID:  "B-02-01",
		SKU:         "SKU-7",
	})

	require.NoError(t, err)
	assert.Equal(t, "open", dto.Status)
	assert.Equal(t, "damage", dto.Type)
	require.NotNil(t, dto.Reference)
	assert.Equal(t, "B-02-01", dto.Reference.LocationID)
}

func TestOpenTicket_UnknownType(t *testing.T) {
	svc, _, _ := newTicketService(t)

	_, err := svc.OpenTicket(context.Background(), OpenTicketCommand{
		Type:        "shrinkage",
		Priority:    "low",
		Description: "x",
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestOpenTicket_UnknownPriority(t *testing.T) {
	svc, _, _ := newTicketService(t)

	_, err := svc.OpenTicket(context.Background(), OpenTicketCommand{
		Type:        "damage",
		Priority:    "urgent",
		Description: "x",
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestAssignTicket(t *testing.T) {
	svc, tickets, publisher := newTicketService(t)

	ticket := domain.NewTicket(domain.TicketTypeMissing, domain.PriorityMedium, "missing carton", nil)
	require.NoError(t, ticket.Assign("solver-1"))
	ticket.ClearDomainEvents()

	tickets.On("Assign", mock.Anything, ticket.ID, "solver-1").Return(ticket, nil)
	publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.AssignTicket(context.Background(), AssignTicketCommand{TicketID: ticket.ID, Assignee: "solver-1"})

	require.NoError(t, err)
	assert.Equal(t, "in_progress", dto.Status)
	require.NotNil(t, dto.AssignedTo)
	assert.Equal(t, "solver-1", *dto.AssignedTo)
}

func TestAssignTicket_NotOpen(t *testing.T) {
	svc, tickets, _ := newTicketService(t)
	tickets.On("Assign", mock.Anything, "ticket-1", "solver-2").Return(nil, domain.ErrTicketNotOpen)

	_, err := svc.AssignTicket(context.Background(), AssignTicketCommand{TicketID: "ticket-1", Assignee: "solver-2"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestResolveTicket_ResolverNeedNotBeAssignee(t *testing.T) {
	svc, tickets, publisher := newTicketService(t)

	ticket := domain.NewTicket(domain.TicketTypeQuality, domain.PriorityHigh, "dented goods", nil)
	require.NoError(t, ticket.Assign("solver-1"))
	require.NoError(t, ticket.Resolve("replaced stock", "solver-2"))
	ticket.ClearDomainEvents()

	tickets.On("Resolve", mock.Anything, ticket.ID, "replaced stock", "solver-2").Return(ticket, nil)
	publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.ResolveTicket(context.Background(), ResolveTicketCommand{
		TicketID:   ticket.ID,
		Resolution: "replaced stock",
		ResolvedBy: "solver-2",
	})

	require.NoError(t, err)
	assert.Equal(t, "resolved", dto.Status)
	require.NotNil(t, dto.ResolvedBy)
	assert.Equal(t, "solver-2", *dto.ResolvedBy)
}

func TestResolveTicket_RequiresResolution(t *testing.T) {
	svc, tickets, _ := newTicketService(t)

	_, err := svc.ResolveTicket(context.Background(), ResolveTicketCommand{
		TicketID:   "ticket-1",
		ResolvedBy: "solver-1",
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
	tickets.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCloseTicket_NotResolved(t *testing.T) {
	svc, tickets, _ := newTicketService(t)
	tickets.On("Close", mock.Anything, "ticket-1").Return(nil, domain.ErrTicketNotResolved)

	_, err := svc.CloseTicket(context.Background(), CloseTicketCommand{TicketID: "ticket-1"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestReopenTicket(t *testing.T) {
	svc, tickets, publisher := newTicketService(t)

	ticket := domain.NewTicket(domain.TicketTypeSystemError, domain.PriorityCritical, "stuck wave", nil)
	require.NoError(t, ticket.Assign("solver-1"))
	require.NoError(t, ticket.Resolve("restarted job", "solver-1"))
	require.NoError(t, ticket.Reopen())
	ticket.ClearDomainEvents()

	tickets.On("Reopen", mock.Anything, ticket.ID).Return(ticket, nil)
	publisher.On("PublishAll", mock.Anything, mock.Anything).Return(nil)

	dto, err := svc.ReopenTicket(context.Background(), ReopenTicketCommand{TicketID: ticket.ID})

	require.NoError(t, err)
	assert.Equal(t, "open", dto.Status)
	assert.Nil(t, dto.Resolution)
	assert.Nil(t, dto.AssignedTo)
	assert.Equal(t, 1, dto.ReopenCount)
}

func TestListTickets_UnknownStatus(t *testing.T) {
	svc, _, _ := newTicketService(t)

	_, err := svc.ListTickets(context.Background(), ListTicketsQuery{Status: "stale"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestListTickets(t *testing.T) {
	svc, tickets, _ := newTicketService(t)
	open := domain.NewTicket(domain.TicketTypeOther, domain.PriorityLow, "misc", nil)
	open.ClearDomainEvents()
	tickets.On("Find", mock.Anything, domain.TicketStatusOpen, domain.PriorityLow, defaultListLimit).
		Return([]*domain.Ticket{open}, nil)

	dtos, err := svc.ListTickets(context.Background(), ListTicketsQuery{Status: "open", Priority: "low"})

	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, "open", dtos[0].Status)
}

func TestGetStats(t *testing.T) {
	svc, tickets, _ := newTicketService(t)
	tickets.On("Stats", mock.Anything).Return(&domain.TicketStats{
		Open: 3, InProgress: 2, Resolved: 1, Closed: 5, HighPriorityOpen: 1,
	}, nil)

	stats, err := svc.GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Open)
	assert.Equal(t, int64(1), stats.HighPriorityOpen)
}
