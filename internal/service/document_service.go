package service

import (
	"context"
	"time"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/repository/contract"
	"case-portal-be/internal/repository/specification"
	"case-portal-be/internal/repository/unitofwork"
	"case-portal-be/internal/websocket"
	adminEvents "case-portal-be/pkg/admin/events"
	"case-portal-be/pkg/admin/mapper"
	"case-portal-be/pkg/ingest"

	"github.com/google/uuid"
)

const MessageUploadCompleted = "document.upload_completed"

// Notifier pushes a message to every open connection of a user.
type Notifier interface {
	Send(userID uuid.UUID, msg websocket.Message)
}

type Presigner interface {
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

type UploadInput struct {
	CaseID *uuid.UUID
	File   ingest.FileInput
	Notes  string
}

type IDocumentService interface {
	Upload(ctx context.Context, actor Actor, in UploadInput) (*dto.UploadResponse, error)
	RetryAI(ctx context.Context, actor Actor, documentId uuid.UUID, req dto.RetryAIRequest) (*dto.UploadResponse, error)
	List(ctx context.Context, actor Actor, caseId *uuid.UUID) ([]dto.DocumentResponse, error)
	Get(ctx context.Context, actor Actor, documentId uuid.UUID) (*dto.DocumentResponse, error)
	SignedURL(ctx context.Context, actor Actor, documentId uuid.UUID) (*dto.SignedURLResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, documentId uuid.UUID, req dto.UpdateDocumentStatusRequest) (*dto.DocumentResponse, error)
}

type documentService struct {
	uowFactory  unitofwork.RepositoryFactory
	pipeline    *ingest.Pipeline
	cases       ICaseService
	presigner   Presigner
	presignTTL  time.Duration
	maxFileSize int64
	notifier    Notifier
	publisher   adminEvents.Publisher
	audit       IAuditService
	logger      logger.ILogger
}

type DocumentServiceConfig struct {
	PresignTTL  time.Duration
	MaxFileSize int64
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	pipeline *ingest.Pipeline,
	cases ICaseService,
	presigner Presigner,
	notifier Notifier,
	publisher adminEvents.Publisher,
	audit IAuditService,
	logger logger.ILogger,
	cfg DocumentServiceConfig,
) IDocumentService {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = ingest.DefaultMaxFileSize
	}
	return &documentService{
		uowFactory:  uowFactory,
		pipeline:    pipeline,
		cases:       cases,
		presigner:   presigner,
		presignTTL:  cfg.PresignTTL,
		maxFileSize: cfg.MaxFileSize,
		notifier:    notifier,
		publisher:   publisher,
		audit:       audit,
		logger:      logger,
	}
}

// NewDocumentStore adapts the document repository to the pipeline.
func NewDocumentStore(uowFactory unitofwork.RepositoryFactory) ingest.DocumentStore {
	return documentStore{uowFactory: uowFactory}
}

type documentStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func (s documentStore) Create(ctx context.Context, doc *entity.Document) error {
	return s.uowFactory.NewUnitOfWork(ctx).DocumentRepository().Create(ctx, doc)
}

func (s documentStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	return s.uowFactory.NewUnitOfWork(ctx).DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
}

// Upload checks the file before the case so a bad file costs no lookups.
func (s *documentService) Upload(ctx context.Context, actor Actor, in UploadInput) (*dto.UploadResponse, error) {
	if _, err := ingest.Validate(in.File, in.CaseID, s.maxFileSize); err != nil {
		return nil, err
	}
	if _, err := s.cases.Authorize(ctx, actor, *in.CaseID); err != nil {
		return nil, err
	}

	result, err := s.pipeline.Upload(ctx, ingest.UploadRequest{
		SessionID: actor.SessionID,
		UserID:    actor.UserID,
		UserRole:  actor.Role,
		CaseID:    in.CaseID,
		File:      in.File,
		Notes:     in.Notes,
	}, s.notifyUploader(actor.UserID))
	if err != nil {
		return nil, err
	}
	return toUploadResponse(result), nil
}

func (s *documentService) RetryAI(ctx context.Context, actor Actor, documentId uuid.UUID, req dto.RetryAIRequest) (*dto.UploadResponse, error) {
	if _, err := s.authorizedDocument(ctx, actor, documentId); err != nil {
		return nil, err
	}

	result, err := s.pipeline.RetryAI(ctx, ingest.RetryRequest{
		SessionID:  actor.SessionID,
		UserID:     actor.UserID,
		DocumentID: documentId,
		Notes:      req.Notes,
	}, s.notifyUploader(actor.UserID))
	if err != nil {
		return nil, err
	}
	return toUploadResponse(result), nil
}

func (s *documentService) notifyUploader(userID uuid.UUID) func(ingest.UploadResult) {
	return func(result ingest.UploadResult) {
		if s.notifier == nil {
			return
		}
		s.notifier.Send(userID, websocket.Message{Type: MessageUploadCompleted, Data: toUploadResponse(&result)})
	}
}

func toUploadResponse(result *ingest.UploadResult) *dto.UploadResponse {
	return &dto.UploadResponse{
		Document:       mapper.DocumentToResponse(result.Document),
		AiTaskId:       result.AiTaskID,
		AiError:        result.AiError,
		RetryAvailable: result.RetryAvailable,
	}
}

func (s *documentService) List(ctx context.Context, actor Actor, caseId *uuid.UUID) ([]dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	specs := []specification.Specification{specification.OrderBy{Field: "uploaded_at", Desc: true}}

	switch {
	case caseId != nil:
		if _, err := s.cases.Authorize(ctx, actor, *caseId); err != nil {
			return nil, err
		}
		specs = append(specs, specification.ByCaseID{CaseID: *caseId})
	case !actor.Privileged():
		cases, err := uow.CaseRepository().FindAll(ctx, specification.CaseOwnedBy{ClientID: actor.UserID})
		if err != nil {
			return nil, apperror.Internal("Failed to list cases", err)
		}
		if len(cases) == 0 {
			return []dto.DocumentResponse{}, nil
		}
		ids := make([]uuid.UUID, 0, len(cases))
		for _, c := range cases {
			ids = append(ids, c.Id)
		}
		specs = append(specs, specification.ByCaseIDs{CaseIDs: ids})
	}

	docs, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Internal("Failed to list documents", err)
	}
	return mapper.DocumentsToResponse(docs), nil
}

func (s *documentService) authorizedDocument(ctx context.Context, actor Actor, documentId uuid.UUID) (*entity.Document, error) {
	doc, err := s.uowFactory.NewUnitOfWork(ctx).DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, apperror.Internal("Failed to load document", err)
	}
	if doc == nil {
		return nil, apperror.NotFound("document not found")
	}
	if _, err := s.cases.Authorize(ctx, actor, doc.CaseId); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, actor Actor, documentId uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.authorizedDocument(ctx, actor, documentId)
	if err != nil {
		return nil, err
	}
	res := mapper.DocumentToResponse(doc)
	return &res, nil
}

func (s *documentService) SignedURL(ctx context.Context, actor Actor, documentId uuid.UUID) (*dto.SignedURLResponse, error) {
	doc, err := s.authorizedDocument(ctx, actor, documentId)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.presignTTL).UTC()
	url, err := s.presigner.PresignGet(ctx, doc.BucketName, doc.StoragePath, s.presignTTL)
	if err != nil {
		return nil, apperror.Wrap(502, "Failed to issue download link", err)
	}
	return &dto.SignedURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

func (s *documentService) UpdateStatus(ctx context.Context, actor Actor, documentId uuid.UUID, req dto.UpdateDocumentStatusRequest) (*dto.DocumentResponse, error) {
	if !actor.Privileged() {
		return nil, apperror.Forbidden("only staff can review documents")
	}
	status := entity.DocumentStatus(req.Status)
	if !status.Valid() {
		return nil, apperror.BadRequest("status must be one of pending, approved, rejected")
	}

	doc, err := s.authorizedDocument(ctx, actor, documentId)
	if err != nil {
		return nil, err
	}
	oldStatus := doc.Status

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, status, req.Notes); err != nil {
		if contract.IsAuth(err) {
			return nil, apperror.Unauthorized("Your session has expired. Please log in again.")
		}
		return nil, apperror.Internal("Failed to update document", err)
	}
	doc.Status = status
	doc.Notes = req.Notes

	s.publisher.PublishDocumentStatusChanged(ctx, adminEvents.DocumentStatusChange{
		DocumentId: doc.Id,
		CaseId:     doc.CaseId,
		UploadedBy: doc.UploadedBy,
		ChangedBy:  actor.UserID,
		OldStatus:  string(oldStatus),
		NewStatus:  string(status),
		Notes:      req.Notes,
	})
	s.audit.LogEvent(ctx, actor.UserID, entity.AuditActionDocumentStatus, entity.AuditResourceDocument, doc.Id.String(), map[string]interface{}{
		"old_status": string(oldStatus), "new_status": string(status),
	})
	s.logger.Info("DOCUMENT", "Document status changed", map[string]interface{}{
		"document_id": doc.Id.String(), "old_status": string(oldStatus), "new_status": string(status),
	})

	res := mapper.DocumentToResponse(doc)
	return &res, nil
}
