package kafka

import (
	"context"

	"github.com/wms-platform/coordination-service/internal/domain"
	"github.com/wms-platform/coordination-service/pkg/cloudevents"
	"github.com/wms-platform/coordination-service/pkg/kafka"
)

// EventPublisher publishes domain events as CloudEvents on the coordination
// topic. Ticket events additionally go to the problem events topic so the
// problem-solve dashboard can consume them without filtering.
type EventPublisher struct {
	producer     *kafka.CircuitBreakerProducer
	eventFactory *cloudevents.EventFactory
}

// NewEventPublisher creates a new EventPublisher
func NewEventPublisher(producer *kafka.CircuitBreakerProducer, eventFactory *cloudevents.EventFactory) *EventPublisher {
	return &EventPublisher{
		producer:     producer,
		eventFactory: eventFactory,
	}
}

// Publish publishes a single domain event
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	cloudEvent := p.eventFactory.CreateEvent(ctx, event.EventType(), subjectFor(event), event)
	return p.producer.PublishEvent(ctx, topicFor(event), cloudEvent)
}

// PublishAll publishes a batch of domain events, stopping at the first failure
func (p *EventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func subjectFor(event domain.DomainEvent) string {
	switch e := event.(type) {
	case *domain.TaskCreatedEvent:
		return "task/" + e.TaskID
	case *domain.TaskClaimedEvent:
		return "task/" + e.TaskID
	case *domain.TaskReleasedEvent:
		return "task/" + e.TaskID
	case *domain.TaskCompletedEvent:
		return "task/" + e.TaskID
	case *domain.WaveCreatedEvent:
		return "wave/" + e.WaveID
	case *domain.WaveReleasedEvent:
		return "wave/" + e.WaveID
	case *domain.ShipmentPackedEvent:
		return "shipment/" + e.ShipmentID
	case *domain.ShipmentShippedEvent:
		return "shipment/" + e.ShipmentID
	case *domain.CountVarianceDetectedEvent:
		return "task/" + e.TaskID
	case *domain.TicketOpenedEvent:
		return "ticket/" + e.TicketID
	case *domain.TicketAssignedEvent:
		return "ticket/" + e.TicketID
	case *domain.TicketResolvedEvent:
		return "ticket/" + e.TicketID
	case *domain.TicketClosedEvent:
		return "ticket/" + e.TicketID
	case *domain.TicketReopenedEvent:
		return "ticket/" + e.TicketID
	default:
		return ""
	}
}

func topicFor(event domain.DomainEvent) string {
	switch event.(type) {
	case *domain.CountVarianceDetectedEvent,
		*domain.TicketOpenedEvent,
		*domain.TicketAssignedEvent,
		*domain.TicketResolvedEvent,
		*domain.TicketClosedEvent,
		*domain.TicketReopenedEvent:
		return kafka.Topics.ProblemEvents
	default:
		return kafka.Topics.CoordinationEvents
	}
}
