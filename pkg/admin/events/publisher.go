package events

import (
	"context"
	"time"

	"case-portal-be/internal/pkg/logger"
	pkgEvents "case-portal-be/pkg/events"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for privileged operations
type Publisher interface {
	PublishUserCreated(ctx context.Context, userId uuid.UUID, email, role, source string)
	PublishUserDeleted(ctx context.Context, userId uuid.UUID, sessionsRevoked int)
	PublishDocumentStatusChanged(ctx context.Context, doc DocumentStatusChange)
}

type DocumentStatusChange struct {
	DocumentId uuid.UUID
	CaseId     uuid.UUID
	UploadedBy uuid.UUID
	ChangedBy  uuid.UUID
	OldStatus  string
	NewStatus  string
	Notes      string
}

// NatsPublisher implements Publisher on top of an event sink (the NATS publisher in production)
type NatsPublisher struct {
	sink   pkgEvents.Sink
	logger logger.ILogger
}

func NewNatsPublisher(sink pkgEvents.Sink, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		sink:   sink,
		logger: logger,
	}
}

// PublishUserCreated emits USER_CREATED for admin-created users
func (p *NatsPublisher) PublishUserCreated(ctx context.Context, userId uuid.UUID, email, role, source string) {
	p.publish(ctx, pkgEvents.TypeUserCreated, map[string]interface{}{
		"user_id": userId.String(),
		"email":   email,
		"role":    role,
		"source":  source,
	})
}

func (p *NatsPublisher) PublishUserDeleted(ctx context.Context, userId uuid.UUID, sessionsRevoked int) {
	p.publish(ctx, pkgEvents.TypeUserDeleted, map[string]interface{}{
		"user_id":          userId.String(),
		"sessions_revoked": sessionsRevoked,
	})
}

func (p *NatsPublisher) PublishDocumentStatusChanged(ctx context.Context, doc DocumentStatusChange) {
	p.publish(ctx, pkgEvents.TypeDocumentStatus, map[string]interface{}{
		"document_id": doc.DocumentId.String(),
		"case_id":     doc.CaseId.String(),
		"uploaded_by": doc.UploadedBy.String(),
		"changed_by":  doc.ChangedBy.String(),
		"old_status":  doc.OldStatus,
		"new_status":  doc.NewStatus,
		"notes":       doc.Notes,
		"entity_type": "document",
		"entity_id":   doc.DocumentId.String(),
	})
}

func (p *NatsPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.sink == nil {
		return
	}
	evt := pkgEvents.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
	if err := p.sink.Publish(ctx, evt); err != nil {
		p.logger.Error("ADMIN", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}
