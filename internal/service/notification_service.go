package service

import (
	"context"
	"strings"

	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/repository/specification"
	"case-portal-be/internal/repository/unitofwork"
	"case-portal-be/internal/websocket"
	"case-portal-be/pkg/events"
	pktNats "case-portal-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
)

const (
	MessageDocumentStatus = "document.status_changed"
	MessageOrphanedObject = "storage.orphaned_object"
)

type EventSubscriber interface {
	Subscribe(subject string, durableName string, handler pktNats.EventHandler) error
}

// NotificationService turns bus events into websocket pushes. Nothing is stored.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber EventSubscriber
	delivery   Notifier
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, sub EventSubscriber, delivery Notifier, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "No event subscriber, notifications disabled", nil)
		return
	}
	// Subscribe to all events with a durable consumer
	if err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.HandleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	payload := event.Payload()

	switch typeCode {
	case events.TypeDocumentStatus:
		uploader, err := uuid.Parse(stringField(payload, "uploaded_by"))
		if err != nil {
			s.logger.Warn("NotificationService", "Status event without uploader", map[string]interface{}{"payload": payload})
			return nil
		}
		s.delivery.Send(uploader, websocket.Message{Type: MessageDocumentStatus, Data: payload})

	case events.TypeDocumentOrphanObject:
		admins, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindAll(ctx,
			specification.ByRole{Role: entity.UserRoleAdmin},
			specification.ActiveUsers{},
		)
		if err != nil {
			// Redelivered by the consumer.
			return err
		}
		for _, admin := range admins {
			s.delivery.Send(admin.Id, websocket.Message{Type: MessageOrphanedObject, Data: payload})
		}

	default:
		s.logger.Debug("NotificationService", "Event has no notification", map[string]interface{}{"type": typeCode})
	}
	return nil
}

func stringField(payload map[string]interface{}, key string) string {
	v, _ := payload[key].(string)
	return v
}
