package service

import (
	"context"
	"strings"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/repository/specification"
	"case-portal-be/internal/repository/unitofwork"
	"case-portal-be/pkg/admin/mapper"
	adminUser "case-portal-be/pkg/admin/user"
	"case-portal-be/pkg/session"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionManager is the part of session.Manager the services use.
type SessionManager interface {
	Issue(ctx context.Context, userID uuid.UUID, role string) (string, *session.Session, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, userId uuid.UUID, sessionId string) error
	SetupStatus(ctx context.Context) (*dto.SetupStatusResponse, error)
	Setup(ctx context.Context, req *dto.SetupRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory  unitofwork.RepositoryFactory
	sessions    SessionManager
	userManager *adminUser.Manager
	audit       IAuditService
	logger      logger.ILogger
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, sessions SessionManager, userManager *adminUser.Manager, audit IAuditService, logger logger.ILogger) IAuthService {
	return &authService{
		uowFactory:  uowFactory,
		sessions:    sessions,
		userManager: userManager,
		audit:       audit,
		logger:      logger,
	}
}

var errInvalidCredentials = apperror.Unauthorized("invalid email or password")

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, apperror.Internal("Failed to load user", err)
	}
	if user == nil || user.PasswordHash == nil {
		s.audit.LogEvent(ctx, uuid.Nil, entity.AuditActionLogin, entity.AuditResourceUser, email, map[string]interface{}{"status": "failed"})
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		s.audit.LogEvent(ctx, user.Id, entity.AuditActionLogin, entity.AuditResourceUser, user.Id.String(), map[string]interface{}{"status": "failed"})
		return nil, errInvalidCredentials
	}
	if user.Status != entity.UserStatusActive {
		return nil, apperror.Forbidden("account is disabled")
	}

	return s.issue(ctx, user, entity.AuditActionLogin)
}

func (s *authService) issue(ctx context.Context, user *entity.User, action string) (*dto.LoginResponse, error) {
	token, sess, err := s.sessions.Issue(ctx, user.Id, string(user.Role))
	if err != nil {
		return nil, apperror.Wrap(503, "Sessions are unavailable, try again later", err)
	}

	s.audit.LogEvent(ctx, user.Id, action, entity.AuditResourceUser, user.Id.String(), map[string]interface{}{
		"status": "success", "session_id": sess.ID,
	})
	s.logger.Info("SESSION", "Session issued", map[string]interface{}{"user_id": user.Id.String(), "session_id": sess.ID})

	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      mapper.UserToResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, userId uuid.UUID, sessionId string) error {
	if sessionId == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sessionId); err != nil {
		return apperror.Wrap(503, "Sessions are unavailable, try again later", err)
	}
	s.audit.LogEvent(ctx, userId, entity.AuditActionLogout, entity.AuditResourceUser, userId.String(), map[string]interface{}{"session_id": sessionId})
	return nil
}

func (s *authService) SetupStatus(ctx context.Context) (*dto.SetupStatusResponse, error) {
	count, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().Count(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to check setup status", err)
	}
	return &dto.SetupStatusResponse{SetupRequired: count == 0}, nil
}

// Setup creates the first admin and signs it in. It is refused once any user exists.
func (s *authService) Setup(ctx context.Context, req *dto.SetupRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal("Failed to start setup", err)
	}
	defer uow.Rollback()

	count, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to check setup status", err)
	}
	if count > 0 {
		return nil, apperror.Conflict("setup already completed")
	}

	user, err := s.userManager.Create(ctx, uow, dto.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     string(entity.UserRoleAdmin),
	}, "setup")
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal("Failed to complete setup", err)
	}

	return s.issue(ctx, user, entity.AuditActionSetup)
}
