package service

import (
	"context"
	"encoding/json"

	"doc-ingestion-be/internal/dto"
	"doc-ingestion-be/internal/entity"
	"doc-ingestion-be/internal/pkg/logger"
	"doc-ingestion-be/internal/repository/specification"
	"doc-ingestion-be/internal/repository/unitofwork"
	"doc-ingestion-be/pkg/lock"
	"doc-ingestion-be/pkg/pipeline"
	"doc-ingestion-be/pkg/queue"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the worker tier: it drains the ingestion queue, runs the
// pipeline, and owns every Job/Document status transition after PENDING.
// Deliveries are at-least-once, so every path below must tolerate running
// twice for the same logical job.
type consumerService struct {
	queue        queue.Queue
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *pipeline.Orchestrator
	jobLock      *lock.JobLock
	logger       logger.ILogger
	workerCount  int
}

func NewConsumerService(
	q queue.Queue,
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *pipeline.Orchestrator,
	jobLock *lock.JobLock,
	sysLogger logger.ILogger,
	workerCount int,
) IConsumerService {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &consumerService{
		queue:        q,
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		jobLock:      jobLock,
		logger:       sysLogger,
		workerCount:  workerCount,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	deliveries, err := cs.queue.Consume(ctx)
	if err != nil {
		return err
	}

	pool, err := ants.NewPool(cs.workerCount)
	if err != nil {
		return err
	}

	go func() {
		defer pool.Release()
		for delivery := range deliveries {
			d := delivery
			if err := pool.Submit(func() { cs.processDelivery(ctx, d) }); err != nil {
				cs.logger.Error("consumer", "Failed to submit delivery to worker pool", map[string]interface{}{
					"message_id": d.ID,
					"error":      err.Error(),
				})
				_ = d.Nack()
			}
		}
	}()

	return nil
}

func (cs *consumerService) processDelivery(ctx context.Context, d *queue.Delivery) {
	var payload dto.IngestDocumentMessage
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal message, dropping", map[string]interface{}{
			"message_id": d.ID,
			"error":      err.Error(),
		})
		_ = d.Ack() // malformed messages retry forever otherwise
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.JobRepository().FindOne(ctx, specification.ByCorrelationId{CorrelationId: d.ID})
	if err != nil {
		cs.logger.Error("consumer", "Job lookup failed", map[string]interface{}{
			"message_id": d.ID,
			"error":      err.Error(),
		})
		_ = d.Nack()
		return
	}
	if job == nil {
		cs.logger.Warn("consumer", "No job for message, dropping", map[string]interface{}{
			"message_id": d.ID,
		})
		_ = d.Ack()
		return
	}

	// Duplicate-delivery short-circuit: a finished job is acked and ignored.
	if job.Status == entity.JobStatusCompleted {
		cs.logger.Info("consumer", "Duplicate delivery of completed job, ignoring", map[string]interface{}{
			"job_id":  job.Id.String(),
			"attempt": d.Attempt,
		})
		_ = d.Ack()
		return
	}

	// Best effort only: a concurrent holder means a redelivery raced an
	// in-flight run. Back off and let the queue try again later.
	release, acquired := cs.jobLock.TryAcquire(ctx, job.Id.String())
	if !acquired {
		cs.logger.Warn("consumer", "Job is locked by another worker, requeueing", map[string]interface{}{
			"job_id": job.Id.String(),
		})
		_ = d.Nack()
		return
	}
	defer release()

	if err := uow.JobRepository().MarkRunning(ctx, job.Id, 10); err != nil {
		cs.handlePersistenceFailure(d, "mark job running", err)
		return
	}
	if err := uow.DocumentRepository().UpdateStatus(ctx, payload.DocumentId, entity.DocumentStatusProcessing, "", 0); err != nil {
		cs.handlePersistenceFailure(d, "mark document processing", err)
		return
	}

	cs.logger.Info("consumer", "Processing document", map[string]interface{}{
		"job_id":      job.Id.String(),
		"document_id": payload.DocumentId.String(),
		"attempt":     d.Attempt,
	})

	doc := pipeline.Document{
		Id:             payload.DocumentId,
		SessionId:      payload.SessionId,
		StorageLocator: payload.StorageLocator,
	}

	result, err := cs.orchestrator.Process(ctx, doc, func(percent int) {
		_ = uow.JobRepository().UpdateProgress(ctx, job.Id, percent)
	})
	if err != nil {
		cs.handlePipelineFailure(ctx, uow, job.Id, payload.DocumentId, err, d)
		return
	}

	success := &entity.JobResult{
		Success: &entity.JobSuccess{
			ChunkCount:       result.ChunkCount,
			ProcessingTimeMs: result.Duration.Milliseconds(),
			IndexReference:   result.IndexReference,
		},
	}
	if err := uow.JobRepository().Complete(ctx, job.Id, success); err != nil {
		cs.handlePersistenceFailure(d, "complete job", err)
		return
	}
	if err := uow.DocumentRepository().UpdateStatus(ctx, payload.DocumentId, entity.DocumentStatusCompleted, "", result.ChunkCount); err != nil {
		cs.handlePersistenceFailure(d, "complete document", err)
		return
	}

	cs.logger.Info("consumer", "Document processed", map[string]interface{}{
		"job_id":      job.Id.String(),
		"chunk_count": result.ChunkCount,
		"duration_ms": result.Duration.Milliseconds(),
	})
	_ = d.Ack()
}

// handlePipelineFailure records the typed failure and routes the delivery:
// retryable errors are nacked so the queue redelivers (and eventually
// dead-letters), terminal ones are acked — redelivering an unparseable
// document is wasted work.
func (cs *consumerService) handlePipelineFailure(ctx context.Context, uow unitofwork.UnitOfWork, jobId, documentId uuid.UUID, cause error, d *queue.Delivery) {
	errType := pipeline.ErrorType(cause)
	retryable := pipeline.Retryable(cause)

	failure := &entity.JobResult{
		Failure: &entity.JobFailure{
			ErrorType:    errType,
			ErrorMessage: cause.Error(),
		},
	}
	if err := uow.JobRepository().Fail(ctx, jobId, failure); err != nil {
		cs.logger.Error("consumer", "Failed to record job failure", map[string]interface{}{
			"job_id": jobId.String(),
			"error":  err.Error(),
		})
	}
	if err := uow.DocumentRepository().UpdateStatus(ctx, documentId, entity.DocumentStatusFailed, cause.Error(), 0); err != nil {
		cs.logger.Error("consumer", "Failed to record document failure", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
	}

	cs.logger.Error("consumer", "Pipeline failed", map[string]interface{}{
		"job_id":     jobId.String(),
		"error_type": errType,
		"retryable":  retryable,
		"attempt":    d.Attempt,
		"error":      cause.Error(),
	})

	if retryable {
		_ = d.Nack()
	} else {
		_ = d.Ack()
	}
}

func (cs *consumerService) handlePersistenceFailure(d *queue.Delivery, op string, err error) {
	cs.logger.Error("consumer", "Persistence failure, requeueing", map[string]interface{}{
		"message_id": d.ID,
		"op":         op,
		"error":      err.Error(),
	})
	_ = d.Nack()
}
