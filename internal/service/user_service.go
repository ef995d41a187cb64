package service

import (
	"context"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/internal/repository/specification"
	"case-portal-be/internal/repository/unitofwork"
	"case-portal-be/pkg/admin/mapper"

	"github.com/google/uuid"
)

type IUserService interface {
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	// LookupRole returns nil, nil when the user has no active profile row.
	LookupRole(ctx context.Context, userId uuid.UUID) (*entity.UserRole, error)
	ResolveActor(ctx context.Context, userId uuid.UUID, sessionId string) (*Actor, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) activeUser(ctx context.Context, userId uuid.UUID) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != entity.UserStatusActive {
		return nil, nil
	}
	return user, nil
}

func (s *userService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.activeUser(ctx, userId)
	if err != nil {
		return nil, apperror.Internal("Failed to load profile", err)
	}
	if user == nil {
		return nil, apperror.NotFound("profile not found")
	}
	res := mapper.UserToResponse(user)
	return &res, nil
}

func (s *userService) LookupRole(ctx context.Context, userId uuid.UUID) (*entity.UserRole, error) {
	user, err := s.activeUser(ctx, userId)
	if err != nil || user == nil {
		return nil, err
	}
	role := user.Role
	return &role, nil
}

func (s *userService) ResolveActor(ctx context.Context, userId uuid.UUID, sessionId string) (*Actor, error) {
	user, err := s.activeUser(ctx, userId)
	if err != nil {
		return nil, apperror.Internal("Failed to load profile", err)
	}
	if user == nil {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	return &Actor{UserID: user.Id, SessionID: sessionId, Role: user.Role}, nil
}
