package service

import (
	"context"
	"errors"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/pkg/mailer"
	"case-portal-be/internal/repository/unitofwork"
	"case-portal-be/pkg/admin/dashboard"
	adminEvents "case-portal-be/pkg/admin/events"
	"case-portal-be/pkg/admin/mapper"
	adminUser "case-portal-be/pkg/admin/user"

	"github.com/google/uuid"
)

type IAdminService interface {
	GetDashboardStats(ctx context.Context) (*dto.DashboardStats, error)

	// User Management
	ListUsers(ctx context.Context, query dto.UserListQuery) (*dto.UserListResponse, error)
	CreateUser(ctx context.Context, actorId uuid.UUID, req dto.CreateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actorId, userId uuid.UUID) (*dto.DeleteUserResponse, error)

	// Logs
	GetSystemLogs(ctx context.Context, offset, limit int, level string) ([]dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error)
}

type adminService struct {
	uowFactory  unitofwork.RepositoryFactory
	logger      logger.ILogger
	userManager *adminUser.Manager
	dashboard   *dashboard.Aggregator
	publisher   adminEvents.Publisher
	sessions    SessionManager
	mailer      mailer.IEmailService
	audit       IAuditService
}

func NewAdminService(
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
	userManager *adminUser.Manager,
	dashboardAggregator *dashboard.Aggregator,
	publisher adminEvents.Publisher,
	sessions SessionManager,
	mailer mailer.IEmailService,
	audit IAuditService,
) IAdminService {
	return &adminService{
		uowFactory:  uowFactory,
		logger:      logger,
		userManager: userManager,
		dashboard:   dashboardAggregator,
		publisher:   publisher,
		sessions:    sessions,
		mailer:      mailer,
		audit:       audit,
	}
}

func (s *adminService) GetDashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	stats, err := s.dashboard.GetStats(ctx, s.uowFactory.NewUnitOfWork(ctx))
	if err != nil {
		return nil, apperror.Internal("Failed to load dashboard", err)
	}
	return stats, nil
}

func (s *adminService) ListUsers(ctx context.Context, query dto.UserListQuery) (*dto.UserListResponse, error) {
	if query.Role != "" && !entity.UserRole(query.Role).Valid() {
		return nil, apperror.BadRequest("role must be one of admin, staff, client")
	}
	users, total, err := s.userManager.FindAll(ctx, s.uowFactory.NewUnitOfWork(ctx), query)
	if err != nil {
		return nil, apperror.Internal("Failed to list users", err)
	}
	return &dto.UserListResponse{Users: mapper.UsersToResponse(users), Total: total}, nil
}

func (s *adminService) CreateUser(ctx context.Context, actorId uuid.UUID, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userManager.Create(ctx, s.uowFactory.NewUnitOfWork(ctx), req, "admin_panel")
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, actorId, entity.AuditActionUserCreated, entity.AuditResourceUser, user.Id.String(), map[string]interface{}{
		"email": user.Email, "role": string(user.Role),
	})

	go s.sendWelcome(user.Email, user.FullName, string(user.Role))

	res := mapper.UserToResponse(user)
	return &res, nil
}

func (s *adminService) sendWelcome(email, fullName, role string) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.SendWelcome(email, fullName, role)
	switch {
	case err == nil:
		s.logger.Info("ADMIN", "Welcome mail sent", map[string]interface{}{"email": email})
	case errors.Is(err, mailer.ErrNotConfigured):
		s.logger.Debug("ADMIN", "Welcome mail skipped, SMTP not configured", map[string]interface{}{"email": email})
	default:
		s.logger.Warn("ADMIN", "Welcome mail failed", map[string]interface{}{"email": email, "error": err.Error()})
	}
}

// DeleteUser removes the account and ends every session it holds.
func (s *adminService) DeleteUser(ctx context.Context, actorId, userId uuid.UUID) (*dto.DeleteUserResponse, error) {
	if actorId == userId {
		return nil, apperror.BadRequest("you cannot delete your own account")
	}

	user, err := s.userManager.Delete(ctx, s.uowFactory.NewUnitOfWork(ctx), userId)
	if err != nil {
		return nil, err
	}

	revoked, err := s.sessions.RevokeUser(ctx, userId)
	if err != nil {
		s.logger.Error("ADMIN", "Failed to revoke sessions of deleted user", map[string]interface{}{
			"user_id": userId.String(), "revoked": revoked, "error": err.Error(),
		})
	}

	s.publisher.PublishUserDeleted(ctx, userId, revoked)
	s.audit.LogEvent(ctx, actorId, entity.AuditActionUserDeleted, entity.AuditResourceUser, userId.String(), map[string]interface{}{
		"email": user.Email, "sessions_revoked": revoked,
	})

	return &dto.DeleteUserResponse{Id: userId, SessionsRevoked: revoked}, nil
}

func (s *adminService) GetSystemLogs(ctx context.Context, offset, limit int, level string) ([]dto.LogListResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.logger.GetLogs(level, limit, offset)
	if err != nil {
		return nil, apperror.Internal("Failed to read logs", err)
	}

	res := make([]dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, dto.LogListResponse{
			Id:        e.Id,
			Level:     e.Level,
			Module:    e.Module,
			Message:   e.Message,
			Timestamp: e.Timestamp,
		})
	}
	return res, nil
}

func (s *adminService) GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error) {
	entry, err := s.logger.GetLogById(logId)
	if err != nil {
		if errors.Is(err, logger.ErrLogNotFound) {
			return nil, apperror.NotFound("log entry not found")
		}
		return nil, apperror.Internal("Failed to read logs", err)
	}
	return &dto.LogDetailResponse{
		LogListResponse: dto.LogListResponse{
			Id:        entry.Id,
			Level:     entry.Level,
			Module:    entry.Module,
			Message:   entry.Message,
			Timestamp: entry.Timestamp,
		},
		Details: entry.Details,
	}, nil
}

