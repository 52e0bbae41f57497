package model

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"type:varchar(255);not null"`
	StorageLocator string    `gorm:"type:text;not null"`
	Status         string    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ErrorMessage   string    `gorm:"type:text"`
	ChunkCount     int       `gorm:"default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
