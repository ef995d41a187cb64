package service

import (
	"context"
	"time"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/repository/specification"
	"case-portal-be/internal/repository/unitofwork"
	"case-portal-be/pkg/admin/mapper"

	"github.com/google/uuid"
)

type IAuditService interface {
	// LogEvent never fails the caller. A nil userId records a system action.
	LogEvent(ctx context.Context, userId uuid.UUID, action, resourceType, resourceId string, details map[string]interface{})
	List(ctx context.Context, query dto.AuditLogQuery) (*dto.AuditLogListResponse, error)
}

type auditService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAuditService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) IAuditService {
	return &auditService{uowFactory: uowFactory, logger: logger}
}

func (s *auditService) LogEvent(ctx context.Context, userId uuid.UUID, action, resourceType, resourceId string, details map[string]interface{}) {
	ctx = context.WithoutCancel(ctx)

	entry := &entity.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceId:   resourceId,
		Details:      details,
		IpAddress:    clientIP(ctx),
		Timestamp:    time.Now().UTC(),
	}
	if userId != uuid.Nil {
		entry.UserId = &userId
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AuditLogRepository().Create(ctx, entry); err != nil {
		s.logger.Warn("AUDIT", "Failed to write audit log", map[string]interface{}{
			"action": action, "resource_type": resourceType, "resource_id": resourceId, "error": err.Error(),
		})
	}
}

func (s *auditService) List(ctx context.Context, query dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	var specs []specification.Specification

	if query.UserId != "" {
		id, err := uuid.Parse(query.UserId)
		if err != nil {
			return nil, apperror.BadRequest("user_id must be a valid uuid")
		}
		specs = append(specs, specification.ByActor{UserID: id})
	}
	if query.Action != "" {
		specs = append(specs, specification.ByAction{Action: query.Action})
	}
	if query.ResourceType != "" {
		specs = append(specs, specification.ByResourceType{ResourceType: query.ResourceType})
	}

	var window specification.TimestampBetween
	var err error
	if window.From, err = parseTime(query.Start); err != nil {
		return nil, apperror.BadRequest("start must be an RFC3339 timestamp")
	}
	if window.To, err = parseTime(query.End); err != nil {
		return nil, apperror.BadRequest("end must be an RFC3339 timestamp")
	}
	specs = append(specs, window)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.AuditLogRepository().Count(ctx, specs...)
	if err != nil {
		return nil, apperror.Internal("Failed to count audit logs", err)
	}

	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	specs = append(specs,
		specification.OrderBy{Field: "timestamp", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)

	logs, err := uow.AuditLogRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Internal("Failed to list audit logs", err)
	}
	return &dto.AuditLogListResponse{Logs: mapper.AuditLogsToResponse(logs), Total: total}, nil
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
