package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/pkg/aiservice"

	"github.com/cenkalti/backoff/v5"
)

type AIClient interface {
	GenerateDocument(ctx context.Context, req aiservice.GenerateRequest) (string, error)
	AgentStatus(ctx context.Context, taskID string) (*aiservice.TaskStatus, error)
}

type IAiTaskService interface {
	Generate(ctx context.Context, actor Actor, req dto.GenerateDocumentRequest) (*dto.AiTaskResponse, error)
	// Status and WaitForCompletion are staff-only.
	Status(ctx context.Context, actor Actor, taskId string) (*dto.AiTaskStatusResponse, error)
	// WaitForCompletion polls until the task reaches a terminal state or ctx ends.
	WaitForCompletion(ctx context.Context, actor Actor, taskId string) (*dto.AiTaskStatusResponse, error)
}

type aiTaskService struct {
	client  AIClient
	cases   ICaseService
	audit   IAuditService
	logger  logger.ILogger
	backoff func() backoff.BackOff
}

func NewAiTaskService(client AIClient, cases ICaseService, audit IAuditService, logger logger.ILogger) IAiTaskService {
	return &aiTaskService{
		client: client,
		cases:  cases,
		audit:  audit,
		logger: logger,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 15 * time.Second
			return b
		},
	}
}

var errTaskRunning = errors.New("task still running")

const maxTaskWait = 10 * time.Minute

func (s *aiTaskService) Generate(ctx context.Context, actor Actor, req dto.GenerateDocumentRequest) (*dto.AiTaskResponse, error) {
	if !actor.Privileged() {
		return nil, apperror.Forbidden("only staff can generate documents")
	}
	if _, err := s.cases.Authorize(ctx, actor, req.CaseId); err != nil {
		return nil, err
	}

	taskId, err := s.client.GenerateDocument(ctx, aiservice.GenerateRequest{
		CaseID:       req.CaseId.String(),
		DocumentType: req.DocumentType,
		Instructions: req.Instructions,
		RequestedBy:  actor.UserID.String(),
	})
	if err != nil {
		return nil, aiFailure("generation", err)
	}

	s.audit.LogEvent(ctx, actor.UserID, entity.AuditActionAiGenerate, entity.AuditResourceAiTask, taskId, map[string]interface{}{
		"case_id": req.CaseId.String(), "document_type": req.DocumentType,
	})
	return &dto.AiTaskResponse{TaskId: taskId}, nil
}

func (s *aiTaskService) Status(ctx context.Context, actor Actor, taskId string) (*dto.AiTaskStatusResponse, error) {
	if !actor.Privileged() {
		return nil, apperror.Forbidden("only staff can read task status")
	}
	if taskId == "" {
		return nil, apperror.BadRequest("task id is required")
	}
	status, err := s.client.AgentStatus(ctx, taskId)
	if err != nil {
		return nil, aiFailure("status", err)
	}
	return toTaskStatus(status), nil
}

func (s *aiTaskService) WaitForCompletion(ctx context.Context, actor Actor, taskId string) (*dto.AiTaskStatusResponse, error) {
	if !actor.Privileged() {
		return nil, apperror.Forbidden("only staff can read task status")
	}
	if taskId == "" {
		return nil, apperror.BadRequest("task id is required")
	}
	status, err := backoff.Retry(ctx, func() (*aiservice.TaskStatus, error) {
		status, err := s.client.AgentStatus(ctx, taskId)
		if err != nil {
			var apiErr *aiservice.APIError
			if errors.Is(err, aiservice.ErrNotConfigured) || (errors.As(err, &apiErr) && apiErr.Status < 500) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if !status.Status.Terminal() {
			return nil, errTaskRunning
		}
		return status, nil
	}, backoff.WithBackOff(s.backoff()), backoff.WithMaxElapsedTime(maxTaskWait))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, aiFailure("status", err)
	}

	s.logger.Info("AI", "Task finished", map[string]interface{}{"task_id": taskId, "status": string(status.Status)})
	return toTaskStatus(status), nil
}

func toTaskStatus(status *aiservice.TaskStatus) *dto.AiTaskStatusResponse {
	return &dto.AiTaskStatusResponse{
		TaskId:       status.TaskID,
		Status:       string(status.Status),
		Details:      status.Details,
		ErrorMessage: status.ErrorMessage,
		Result:       status.Result,
	}
}

func aiFailure(op string, err error) error {
	if errors.Is(err, aiservice.ErrNotConfigured) {
		return apperror.Wrap(http.StatusServiceUnavailable, "AI service is not configured", err)
	}
	var apiErr *aiservice.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apperror.Wrap(http.StatusBadGateway, apiErr.Detail, err)
	}
	return apperror.Wrap(http.StatusBadGateway, "AI "+op+" request failed", err)
}

