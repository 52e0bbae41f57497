package mapper

import (
	"encoding/json"
	"time"

	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/model"

	"gorm.io/datatypes"
)

type JobMapper struct{}

func NewJobMapper() *JobMapper {
	return &JobMapper{}
}

func (m *JobMapper) ToEntity(j *model.Job) *entity.Job {
	if j == nil {
		return nil
	}

	var updatedAt *time.Time
	if !j.UpdatedAt.IsZero() {
		t := j.UpdatedAt
		updatedAt = &t
	}

	var result *entity.JobResult
	if len(j.Result) > 0 {
		var r entity.JobResult
		if err := json.Unmarshal(j.Result, &r); err == nil {
			result = &r
		}
	}

	return &entity.Job{
		Id:            j.Id,
		CorrelationId: j.CorrelationId,
		Type:          entity.JobType(j.Type),
		Status:        entity.JobStatus(j.Status),
		Progress:      j.Progress,
		Result:        result,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *JobMapper) ToModel(j *entity.Job) *model.Job {
	if j == nil {
		return nil
	}

	var updatedAt time.Time
	if j.UpdatedAt != nil {
		updatedAt = *j.UpdatedAt
	}

	var result datatypes.JSON
	if j.Result != nil {
		if raw, err := json.Marshal(j.Result); err == nil {
			result = datatypes.JSON(raw)
		}
	}

	return &model.Job{
		Id:            j.Id,
		CorrelationId: j.CorrelationId,
		Type:          string(j.Type),
		Status:        string(j.Status),
		Progress:      j.Progress,
		Result:        result,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}
