package unitofwork

import (
	"context"

	"doc-ingestion-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	JobRepository() contract.JobRepository
	ChunkVectorRepository() contract.ChunkVectorRepository
}
