// Package ingest turns an uploaded file into a stored object plus a Document
// row, then asks the AI service to parse it.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/repository/contract"
	"case-portal-be/pkg/aiservice"
	"case-portal-be/pkg/events"
	"case-portal-be/pkg/storage"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	logModule           = "INGEST"
	compensationTimeout = 30 * time.Second
)

type SessionChecker interface {
	Live(ctx context.Context, sessionID string) error
}

// SessionExpiry is optionally implemented by a SessionChecker. AI calls are
// then cut off when the session lapses.
type SessionExpiry interface {
	ExpiresAt(ctx context.Context, sessionID string) (time.Time, error)
}

type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) (string, error)
	Remove(ctx context.Context, bucket string, keys ...string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// DocumentStore persists Document rows. FindByID returns nil, nil when the row is gone.
type DocumentStore interface {
	Create(ctx context.Context, doc *entity.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
}

type Parser interface {
	ParseDocument(ctx context.Context, req aiservice.ParseRequest) (string, error)
}

// Auditor records stage outcomes. Implementations must not fail the caller.
type Auditor interface {
	LogEvent(ctx context.Context, userID uuid.UUID, action, resourceType, resourceID string, details map[string]interface{})
}

type Config struct {
	Buckets     []string
	MaxFileSize int64
}

type Deps struct {
	Sessions  SessionChecker
	Objects   ObjectStore
	Documents DocumentStore
	Parser    Parser
	Auditor   Auditor
	Events    events.Sink
	Tracker   *Tracker
	Logger    logger.ILogger
}

type UploadRequest struct {
	SessionID string
	UserID    uuid.UUID
	UserRole  entity.UserRole
	CaseID    *uuid.UUID
	File      FileInput
	Notes     string
}

type RetryRequest struct {
	SessionID  string
	UserID     uuid.UUID
	DocumentID uuid.UUID
	Notes      string
}

// UploadResult is what the completion callback receives. An empty AiError
// means the AI service accepted the task.
type UploadResult struct {
	Document       *entity.Document
	AiTaskID       string
	AiError        string
	RetryAvailable bool
}

func (r UploadResult) Partial() bool { return r.AiError != "" }

type Pipeline struct {
	cfg  Config
	deps Deps
	now  func() time.Time
}

func NewPipeline(cfg Config, deps Deps) *Pipeline {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if deps.Tracker == nil {
		deps.Tracker = NewTracker()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	return &Pipeline{cfg: cfg, deps: deps, now: time.Now}
}

func (p *Pipeline) Tracker() *Tracker { return p.deps.Tracker }

// Upload runs validation, session check, storage upload, metadata insert and
// the AI trigger in that order. A returned error means nothing was created and
// onComplete is not called. Otherwise onComplete is called exactly once.
func (p *Pipeline) Upload(ctx context.Context, req UploadRequest, onComplete func(UploadResult)) (*UploadResult, error) {
	contentType, err := Validate(req.File, req.CaseID, p.cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}

	if err := p.checkSession(ctx, req.SessionID); err != nil {
		return nil, err
	}

	key := ObjectKey(*req.CaseID, req.File.Filename)
	bucket, storedPath, err := p.uploadWithFallback(ctx, req, key, contentType)
	if err != nil {
		return nil, err
	}

	if err := p.checkSession(ctx, req.SessionID); err != nil {
		p.compensate(ctx, req.UserID, bucket, storedPath)
		return nil, err
	}

	now := p.now().UTC()
	doc := &entity.Document{
		Id:          uuid.New(),
		CaseId:      *req.CaseID,
		Filename:    req.File.Filename,
		MimeType:    contentType,
		Size:        req.File.Size(),
		BucketName:  bucket,
		StoragePath: storedPath,
		UploadedAt:  now,
		UploadedBy:  req.UserID,
		Status:      entity.DocumentStatusPending,
		Notes:       req.Notes,
		UpdatedAt:   now,
	}
	if err := p.deps.Documents.Create(ctx, doc); err != nil {
		p.deps.Logger.Error(logModule, "Document metadata insert failed", map[string]interface{}{
			"bucket": bucket, "path": storedPath, "error": err.Error(),
		})
		p.compensate(ctx, req.UserID, bucket, storedPath)
		p.audit(ctx, req.UserID, entity.AuditActionUploadFailed, req.CaseID.String(), map[string]interface{}{
			"stage": "metadata", "filename": req.File.Filename, "error": err.Error(),
		})
		if contract.IsAuth(err) {
			return nil, sessionError(err)
		}
		return nil, &Error{Kind: KindMetadata, Message: msgMetadataFailed, Cause: err}
	}

	p.audit(ctx, req.UserID, entity.AuditActionDocumentUploaded, doc.Id.String(), map[string]interface{}{
		"case_id": doc.CaseId.String(), "bucket": bucket, "path": storedPath, "size": doc.Size,
	})
	p.publish(ctx, events.TypeDocumentUploaded, map[string]interface{}{
		"document_id": doc.Id.String(),
		"case_id":     doc.CaseId.String(),
		"uploaded_by": req.UserID.String(),
		"bucket":      bucket,
		"path":        storedPath,
	})

	result := p.triggerAI(ctx, req.SessionID, req.UserID, doc, req.Notes)
	if onComplete != nil {
		onComplete(result)
	}
	return &result, nil
}

// RetryAI re-runs only the AI trigger for an existing document.
func (p *Pipeline) RetryAI(ctx context.Context, req RetryRequest, onComplete func(UploadResult)) (*UploadResult, error) {
	if p.deps.Tracker.Blocked(req.UserID, req.SessionID) {
		return nil, &Error{Kind: KindSession, Message: msgRetriesDisabled, Cause: ErrRetriesDisabled}
	}
	if err := p.checkSession(ctx, req.SessionID); err != nil {
		return nil, err
	}

	doc, err := p.deps.Documents.FindByID(ctx, req.DocumentID)
	if err != nil {
		if contract.IsAuth(err) {
			return nil, sessionError(err)
		}
		return nil, &Error{Kind: KindMetadata, Message: "Failed to load document.", Cause: err}
	}
	if doc == nil {
		return nil, &Error{Kind: KindNotFound, Message: msgDocumentNotFound}
	}

	result := p.triggerAI(ctx, req.SessionID, req.UserID, doc, req.Notes)
	if onComplete != nil {
		onComplete(result)
	}
	return &result, nil
}

func (p *Pipeline) uploadWithFallback(ctx context.Context, req UploadRequest, key, contentType string) (string, string, error) {
	fallback := NewBucketFallback(p.cfg.Buckets, storage.IsAuth)

	for fallback.State() == StateTrying {
		if fallback.Attempts() > 0 {
			if err := p.checkSession(ctx, req.SessionID); err != nil {
				return "", "", err
			}
		}
		bucket := fallback.Current()
		stored, err := p.deps.Objects.Upload(ctx, bucket, key, contentType, bytes.NewReader(req.File.Content), req.File.Size())
		if err != nil {
			p.deps.Logger.Warn(logModule, "Upload to bucket failed", map[string]interface{}{
				"bucket": bucket, "path": key, "kind": string(storage.KindOf(err)), "error": err.Error(),
			})
		}
		fallback.Step(stored, err)
	}

	switch fallback.State() {
	case StateSucceeded:
		bucket, stored := fallback.Winner()
		if fallback.Attempts() > 1 {
			p.deps.Logger.Info(logModule, "Upload succeeded on fallback bucket", map[string]interface{}{
				"bucket": bucket, "attempts": fallback.Attempts(),
			})
		}
		return bucket, stored, nil
	case StateAbortedAuth:
		p.audit(ctx, req.UserID, entity.AuditActionUploadFailed, req.CaseID.String(), map[string]interface{}{
			"stage": "storage", "filename": req.File.Filename, "error": fallback.LastErr().Error(),
		})
		return "", "", sessionError(fallback.LastErr())
	default:
		lastErr := fallback.LastErr()
		p.audit(ctx, req.UserID, entity.AuditActionUploadFailed, req.CaseID.String(), map[string]interface{}{
			"stage": "storage", "filename": req.File.Filename, "attempts": fallback.Attempts(), "error": lastErr.Error(),
		})
		return "", "", &Error{
			Kind:    KindStorage,
			Message: fmt.Sprintf("Failed to upload file: %v", lastErr),
			Cause:   lastErr,
		}
	}
}

// compensate removes an object whose Document row will never exist, then
// checks that it is really gone.
func (p *Pipeline) compensate(ctx context.Context, userID uuid.UUID, bucket, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	details := map[string]interface{}{"bucket": bucket, "path": key}

	if err := p.deps.Objects.Remove(ctx, bucket, key); err != nil {
		p.deps.Logger.Warn(logModule, "Compensating delete failed", map[string]interface{}{
			"bucket": bucket, "path": key, "error": err.Error(),
		})
	}

	exists, err := p.deps.Objects.Exists(ctx, bucket, key)
	if err == nil && !exists {
		p.deps.Logger.Info(logModule, "Compensating delete verified", details)
		return
	}

	if err != nil {
		details["verify_error"] = err.Error()
	}
	p.deps.Logger.Error(logModule, "Orphaned storage object", details)
	p.publish(ctx, events.TypeDocumentOrphanObject, map[string]interface{}{
		"bucket":      bucket,
		"path":        key,
		"uploaded_by": userID.String(),
		"verified":    err == nil,
	})
}

// sessionExpiry is zero when unknown. A lookup failure is left to checkSession.
func (p *Pipeline) sessionExpiry(ctx context.Context, sessionID string) time.Time {
	exp, ok := p.deps.Sessions.(SessionExpiry)
	if !ok {
		return time.Time{}
	}
	at, err := exp.ExpiresAt(ctx, sessionID)
	if err != nil {
		return time.Time{}
	}
	return at
}

func (p *Pipeline) triggerAI(ctx context.Context, sessionID string, userID uuid.UUID, doc *entity.Document, notes string) UploadResult {
	result := UploadResult{Document: doc}

	callCtx, done, err := p.deps.Tracker.Begin(ctx, userID, sessionID, p.sessionExpiry(ctx, sessionID))
	if err != nil {
		result.AiError = msgRetriesDisabled
		return result
	}
	defer done()

	if err := p.checkSession(callCtx, sessionID); err != nil {
		result.AiError = msgSessionExpired
		return result
	}

	taskID, err := p.deps.Parser.ParseDocument(callCtx, aiservice.ParseRequest{
		FilePath:   doc.StoragePath,
		BucketName: doc.BucketName,
		Filename:   doc.Filename,
		UserQuery:  notes,
	})

	details := map[string]interface{}{"document_id": doc.Id.String()}
	if err != nil {
		if errors.Is(context.Cause(callCtx), ErrSessionEnded) {
			result.AiError = "AI processing was cancelled because your session ended."
		} else {
			result.AiError = aiReason(err)
			result.RetryAvailable = true
		}
		details["status"] = "failed"
		details["error"] = result.AiError
		p.deps.Logger.Warn(logModule, "AI parse request failed", map[string]interface{}{
			"document_id": doc.Id.String(), "error": err.Error(),
		})
	} else {
		result.AiTaskID = taskID
		details["status"] = "accepted"
		details["task_id"] = taskID
	}

	p.audit(ctx, userID, entity.AuditActionAiParse, doc.Id.String(), details)
	return result
}

func aiReason(err error) string {
	var apiErr *aiservice.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}

func (p *Pipeline) checkSession(ctx context.Context, sessionID string) error {
	if err := p.deps.Sessions.Live(ctx, sessionID); err != nil {
		return sessionError(err)
	}
	return nil
}

func (p *Pipeline) audit(ctx context.Context, userID uuid.UUID, action, resourceID string, details map[string]interface{}) {
	if p.deps.Auditor == nil {
		return
	}
	p.deps.Auditor.LogEvent(ctx, userID, action, entity.AuditResourceDocument, resourceID, details)
}

func (p *Pipeline) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.deps.Events == nil {
		return
	}
	if err := p.deps.Events.Publish(ctx, events.New(eventType, data)); err != nil {
		p.deps.Logger.Warn(logModule, "Failed to publish event", map[string]interface{}{
			"type": eventType, "error": err.Error(),
		})
	}
}

// ObjectKey is cases/<case>/<ulid>-<name>. The ULID keeps keys unique and
// sortable by upload time.
func ObjectKey(caseID uuid.UUID, filename string) string {
	return fmt.Sprintf("cases/%s/%s-%s", caseID, ulid.Make(), safeName(filename))
}
