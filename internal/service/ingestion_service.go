package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"doc-ingestion-be/internal/dto"
	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/pkg/logger"
	"doc-ingestion-be/internal/repository/unitofwork"
	"doc-ingestion-be/pkg/queue"

	"github.com/google/uuid"
)

type IIngestionService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
}

// ingestionService is the gateway: it records the PENDING Document and Job in
// one transaction, then enqueues the ingestion message and returns without
// waiting for the pipeline.
type ingestionService struct {
	uowFactory unitofwork.RepositoryFactory
	queue      queue.Queue
	logger     logger.ILogger
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	q queue.Queue,
	sysLogger logger.ILogger,
) IIngestionService {
	return &ingestionService{
		uowFactory: uowFactory,
		queue:      q,
		logger:     sysLogger,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	if req.SessionId == uuid.Nil {
		return nil, fmt.Errorf("session_id is required")
	}
	if req.StorageLocator == "" {
		return nil, fmt.Errorf("storage_locator is required")
	}

	now := time.Now()
	document := entity.Document{
		Id:             uuid.New(),
		SessionId:      req.SessionId,
		Name:           req.Name,
		StorageLocator: req.StorageLocator,
		Status:         entity.DocumentStatusPending,
		CreatedAt:      now,
	}

	// The correlation id is the queue message id: a redelivered message
	// always resolves back to this job row.
	correlationId := uuid.NewString()
	job := entity.Job{
		Id:            uuid.New(),
		CorrelationId: correlationId,
		Type:          entity.JobTypeDocumentIngestion,
		Status:        entity.JobStatusPending,
		Progress:      0,
		CreatedAt:     now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}
	if err := uow.JobRepository().Create(ctx, &job); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	msgPayload := dto.IngestDocumentMessage{
		JobId:          job.Id,
		SessionId:      req.SessionId,
		DocumentId:     document.Id,
		StorageLocator: req.StorageLocator,
		EnqueuedAt:     now,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}

	if err := s.queue.Publish(ctx, &queue.Message{
		ID:         correlationId,
		Payload:    msgJson,
		EnqueuedAt: now,
	}); err != nil {
		// The rows exist but no message does; without this the job would
		// stay PENDING forever.
		s.markEnqueueFailed(ctx, job.Id, document.Id, err)
		return nil, fmt.Errorf("failed to enqueue ingestion message: %w", err)
	}

	s.logger.Info("ingestion", "Document enqueued", map[string]interface{}{
		"job_id":      job.Id.String(),
		"document_id": document.Id.String(),
	})

	return &dto.IngestDocumentResponse{
		JobId:      job.Id,
		DocumentId: document.Id,
	}, nil
}

func (s *ingestionService) markEnqueueFailed(ctx context.Context, jobId, documentId uuid.UUID, cause error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	failure := &entity.JobResult{
		Failure: &entity.JobFailure{
			ErrorType:    "QueueError",
			ErrorMessage: cause.Error(),
		},
	}
	if err := uow.JobRepository().Fail(ctx, jobId, failure); err != nil {
		s.logger.Error("ingestion", "Failed to mark job FAILED after enqueue error", map[string]interface{}{
			"job_id": jobId.String(),
			"error":  err.Error(),
		})
	}
	if err := uow.DocumentRepository().UpdateStatus(ctx, documentId, entity.DocumentStatusFailed, "failed to enqueue ingestion message", 0); err != nil {
		s.logger.Error("ingestion", "Failed to mark document FAILED after enqueue error", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
	}
}
