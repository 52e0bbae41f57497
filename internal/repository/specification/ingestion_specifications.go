package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByCorrelationId resolves a Job from a (possibly redelivered) queue message.
type ByCorrelationId struct {
	CorrelationId string
}

func (s ByCorrelationId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("correlation_id = ?", s.CorrelationId)
}

// BySessionId scopes rows to one owning session.
type BySessionId struct {
	SessionId uuid.UUID
}

func (s BySessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionId)
}

// ByDocumentId scopes rows to one document.
type ByDocumentId struct {
	DocumentId uuid.UUID
}

func (s ByDocumentId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}

// ByStatus filters on a lifecycle status column.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
