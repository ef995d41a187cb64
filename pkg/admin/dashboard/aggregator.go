package dashboard

import (
	"context"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/repository/specification"
	"case-portal-be/internal/repository/unitofwork"
)

// Aggregator handles dashboard statistics
type Aggregator struct {
	logger logger.ILogger
}

func NewAggregator(logger logger.ILogger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

func (a *Aggregator) GetStats(ctx context.Context, uow unitofwork.UnitOfWork) (*dto.DashboardStats, error) {
	users, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	openCases, err := uow.CaseRepository().Count(ctx, specification.Filter("status", string(entity.CaseStatusOpen)))
	if err != nil {
		return nil, err
	}

	documents, err := uow.DocumentRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := uow.DocumentRepository().Count(ctx, specification.ByDocumentStatus{Status: entity.DocumentStatusPending})
	if err != nil {
		return nil, err
	}

	return &dto.DashboardStats{
		Users:            users,
		OpenCases:        openCases,
		Documents:        documents,
		PendingDocuments: pending,
	}, nil
}
