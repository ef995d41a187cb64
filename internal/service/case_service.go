package service

import (
	"context"
	"strings"
	"time"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/internal/repository/specification"
	"case-portal-be/internal/repository/unitofwork"
	"case-portal-be/pkg/admin/mapper"

	"github.com/google/uuid"
)

type ICaseService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateCaseRequest) (*dto.CaseResponse, error)
	List(ctx context.Context, actor Actor) ([]dto.CaseResponse, error)
	Get(ctx context.Context, actor Actor, caseId uuid.UUID) (*dto.CaseResponse, error)
	// Authorize loads the case and checks the actor may work on it.
	Authorize(ctx context.Context, actor Actor, caseId uuid.UUID) (*entity.Case, error)
}

type caseService struct {
	uowFactory unitofwork.RepositoryFactory
	audit      IAuditService
}

func NewCaseService(uowFactory unitofwork.RepositoryFactory, audit IAuditService) ICaseService {
	return &caseService{uowFactory: uowFactory, audit: audit}
}

func (s *caseService) Create(ctx context.Context, actor Actor, req dto.CreateCaseRequest) (*dto.CaseResponse, error) {
	if !actor.Privileged() {
		return nil, apperror.Forbidden("only staff can open cases")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	client, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: req.ClientId})
	if err != nil {
		return nil, apperror.Internal("Failed to load client", err)
	}
	if client == nil || client.Role != entity.UserRoleClient {
		return nil, apperror.BadRequest("client_id must reference a client account")
	}

	if req.AssignedStaffId != nil {
		staff, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: *req.AssignedStaffId})
		if err != nil {
			return nil, apperror.Internal("Failed to load staff member", err)
		}
		if staff == nil || (staff.Role != entity.UserRoleStaff && staff.Role != entity.UserRoleAdmin) {
			return nil, apperror.BadRequest("assigned_staff_id must reference a staff account")
		}
	}

	now := time.Now()
	c := &entity.Case{
		Id:              uuid.New(),
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		ClientId:        req.ClientId,
		AssignedStaffId: req.AssignedStaffId,
		Status:          entity.CaseStatusOpen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uow.CaseRepository().Create(ctx, c); err != nil {
		return nil, apperror.Internal("Failed to create case", err)
	}

	s.audit.LogEvent(ctx, actor.UserID, entity.AuditActionCaseCreated, entity.AuditResourceCase, c.Id.String(), map[string]interface{}{
		"client_id": c.ClientId.String(),
	})

	res := mapper.CaseToResponse(c)
	return &res, nil
}

func (s *caseService) List(ctx context.Context, actor Actor) ([]dto.CaseResponse, error) {
	specs := []specification.Specification{specification.OrderBy{Field: "created_at", Desc: true}}
	if !actor.Privileged() {
		specs = append(specs, specification.CaseOwnedBy{ClientID: actor.UserID})
	}

	cases, err := s.uowFactory.NewUnitOfWork(ctx).CaseRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Internal("Failed to list cases", err)
	}
	return mapper.CasesToResponse(cases), nil
}

func (s *caseService) Get(ctx context.Context, actor Actor, caseId uuid.UUID) (*dto.CaseResponse, error) {
	c, err := s.Authorize(ctx, actor, caseId)
	if err != nil {
		return nil, err
	}
	res := mapper.CaseToResponse(c)
	return &res, nil
}

func (s *caseService) Authorize(ctx context.Context, actor Actor, caseId uuid.UUID) (*entity.Case, error) {
	c, err := s.uowFactory.NewUnitOfWork(ctx).CaseRepository().FindOne(ctx, specification.ByID{ID: caseId})
	if err != nil {
		return nil, apperror.Internal("Failed to load case", err)
	}
	if c == nil {
		return nil, apperror.NotFound("case not found")
	}
	if !c.AccessibleBy(actor.UserID, actor.Role) {
		return nil, apperror.Forbidden("you do not have access to this case")
	}
	return c, nil
}
