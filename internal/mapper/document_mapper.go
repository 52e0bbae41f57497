package mapper

import (
	"time"

	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:             d.Id,
		SessionId:      d.SessionId,
		Name:           d.Name,
		StorageLocator: d.StorageLocator,
		Status:         entity.DocumentStatus(d.Status),
		ErrorMessage:   d.ErrorMessage,
		ChunkCount:     d.ChunkCount,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:             d.Id,
		SessionId:      d.SessionId,
		Name:           d.Name,
		StorageLocator: d.StorageLocator,
		Status:         string(d.Status),
		ErrorMessage:   d.ErrorMessage,
		ChunkCount:     d.ChunkCount,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}
