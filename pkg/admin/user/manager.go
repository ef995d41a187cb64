package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/repository/contract"
	"case-portal-be/internal/repository/specification"
	"case-portal-be/internal/repository/unitofwork"
	adminEvents "case-portal-be/pkg/admin/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Manager handles user-related admin operations
type Manager struct {
	logger    logger.ILogger
	publisher adminEvents.Publisher
}

func NewManager(logger logger.ILogger, publisher adminEvents.Publisher) *Manager {
	return &Manager{
		logger:    logger,
		publisher: publisher,
	}
}

// Create hashes the password, stores an active user and emits USER_CREATED.
func (m *Manager) Create(ctx context.Context, uow unitofwork.UnitOfWork, req dto.CreateUserRequest, source string) (*entity.User, error) {
	role := entity.UserRole(req.Role)
	if !role.Valid() {
		return nil, apperror.BadRequest("role must be one of admin, staff, client")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, apperror.Internal("Failed to check existing user", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)

	var staffRole *string
	if role == entity.UserRoleStaff && req.StaffRole != nil && *req.StaffRole != "" {
		staffRole = req.StaffRole
	}

	now := time.Now()
	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: &hashStr,
		Role:         role,
		StaffRole:    staffRole,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if contract.KindOf(err) == contract.ErrorKindConflict {
			return nil, apperror.Conflict("email already exists")
		}
		return nil, apperror.Internal("Failed to create user", err)
	}

	m.logger.Info("ADMIN", "User created", map[string]interface{}{"user_id": user.Id.String(), "role": string(role), "source": source})
	m.publisher.PublishUserCreated(ctx, user.Id, user.Email, string(user.Role), source)

	return user, nil
}

func (m *Manager) Delete(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.User, error) {
	user, err := m.FindOne(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	if err := uow.UserRepository().Delete(ctx, userId); err != nil {
		return nil, apperror.Internal("Failed to delete user", err)
	}
	return user, nil
}

func (m *Manager) FindAll(ctx context.Context, uow unitofwork.UnitOfWork, query dto.UserListQuery) ([]*entity.User, int64, error) {
	var specs []specification.Specification
	if query.Role != "" {
		specs = append(specs, specification.ByRole{Role: entity.UserRole(query.Role)})
	}

	total, err := uow.UserRepository().Count(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)

	users, err := uow.UserRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (m *Manager) FindOne(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Internal("Failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	return user, nil
}
