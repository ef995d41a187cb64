package unitofwork

import (
	"context"

	"case-portal-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	CaseRepository() contract.CaseRepository
	DocumentRepository() contract.DocumentRepository
	AuditLogRepository() contract.AuditLogRepository
}

// RepositoryFactory hands out a fresh unit of work per request or job.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
