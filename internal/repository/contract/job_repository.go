package contract

import (
	"context"

	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/repository/specification"

	"github.com/google/uuid"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	// MarkRunning clears any previous result and moves the job (back) into
	// RUNNING. Legal from PENDING and, on redelivery, from FAILED.
	MarkRunning(ctx context.Context, id uuid.UUID, progress int) error
	// UpdateProgress never decreases the stored value, so replayed or
	// out-of-order writes cannot violate the monotonic-progress invariant.
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error
	Complete(ctx context.Context, id uuid.UUID, result *entity.JobResult) error
	Fail(ctx context.Context, id uuid.UUID, result *entity.JobResult) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Job, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Job, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
