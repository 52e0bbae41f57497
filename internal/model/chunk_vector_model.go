package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ChunkVector struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey"` // deterministic, never generated by the DB
	SessionId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentId uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position   int             `gorm:"not null;default:0"`
	Page       int             `gorm:"default:0"`
	Section    string          `gorm:"type:varchar(255)"`
	Content    string          `gorm:"type:text"` // payload only, never filtered on
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

func (ChunkVector) TableName() string {
	return "chunk_vectors"
}
