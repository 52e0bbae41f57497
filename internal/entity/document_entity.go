package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "PENDING"
	DocumentStatusProcessing DocumentStatus = "PROCESSING"
	DocumentStatusCompleted  DocumentStatus = "COMPLETED"
	DocumentStatusFailed     DocumentStatus = "FAILED"
)

// Document is the durable record of one uploaded file. Status moves forward
// only (PENDING -> PROCESSING -> COMPLETED/FAILED), except FAILED -> PROCESSING
// when a delivery is replayed.
type Document struct {
	Id             uuid.UUID
	SessionId      uuid.UUID
	Name           string
	StorageLocator string
	Status         DocumentStatus
	ErrorMessage   string
	ChunkCount     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
