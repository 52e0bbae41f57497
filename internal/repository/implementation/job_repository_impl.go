package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/mapper"
	"doc-ingestion-be/internal/model"
	"doc-ingestion-be/internal/repository/contract"
	"doc-ingestion-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JobMapper
}

func NewJobRepository(db *gorm.DB) contract.JobRepository {
	return &JobRepositoryImpl{
		db:     db,
		mapper: mapper.NewJobMapper(),
	}
}

func (r *JobRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *JobRepositoryImpl) Create(ctx context.Context, job *entity.Job) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *JobRepositoryImpl) MarkRunning(ctx context.Context, id uuid.UUID, progress int) error {
	// GREATEST here too, or a redelivery racing an in-flight run would rewind
	// progress a poller already observed.
	return r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   string(entity.JobStatusRunning),
			"progress": gorm.Expr("GREATEST(progress, ?)", progress),
			"result":   nil, // result must be empty while RUNNING
		}).Error
}

func (r *JobRepositoryImpl) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error {
	// GREATEST keeps progress monotonic even if a stale writer races a newer one.
	return r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ?", id).
		Update("progress", gorm.Expr("GREATEST(progress, ?)", progress)).Error
}

func (r *JobRepositoryImpl) Complete(ctx context.Context, id uuid.UUID, result *entity.JobResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   string(entity.JobStatusCompleted),
			"progress": 100,
			"result":   raw,
		}).Error
}

// Fail leaves progress where the run stopped; only completion forces 100.
func (r *JobRepositoryImpl) Fail(ctx context.Context, id uuid.UUID, result *entity.JobResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": string(entity.JobStatusFailed),
			"result": raw,
		}).Error
}

func (r *JobRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Job, error) {
	var m model.Job
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *JobRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Job, error) {
	var models []*model.Job
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Job, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *JobRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Job{}).Count(&count).Error
	return count, err
}
