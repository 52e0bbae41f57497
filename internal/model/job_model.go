package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Job struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CorrelationId string         `gorm:"type:varchar(64);not null;uniqueIndex"` // queue message id, idempotent lookup on redelivery
	Type          string         `gorm:"type:varchar(50);not null"`
	Status        string         `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Progress      int            `gorm:"default:0"`
	Result        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}
