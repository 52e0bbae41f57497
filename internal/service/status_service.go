package service

import (
	"context"
	"fmt"

	"doc-ingestion-be/internal/dto"
	"doc-ingestion-be/internal/repository/specification"
	"doc-ingestion-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var ErrNotFound = fmt.Errorf("record not found")

type IStatusService interface {
	GetJob(ctx context.Context, jobId uuid.UUID) (*dto.JobStatusResponse, error)
	GetDocument(ctx context.Context, documentId uuid.UUID) (*dto.DocumentStatusResponse, error)
	ListSessionDocuments(ctx context.Context, sessionId uuid.UUID) ([]*dto.DocumentStatusResponse, error)
}

type statusService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewStatusService(uowFactory unitofwork.RepositoryFactory) IStatusService {
	return &statusService{uowFactory: uowFactory}
}

func (s *statusService) GetJob(ctx context.Context, jobId uuid.UUID) (*dto.JobStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.JobRepository().FindOne(ctx, specification.ByID{ID: jobId})
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrNotFound
	}
	return &dto.JobStatusResponse{
		Id:       job.Id,
		Status:   job.Status,
		Progress: job.Progress,
		Result:   job.Result,
	}, nil
}

func (s *statusService) GetDocument(ctx context.Context, documentId uuid.UUID) (*dto.DocumentStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return &dto.DocumentStatusResponse{
		Id:           doc.Id,
		Name:         doc.Name,
		Status:       doc.Status,
		ErrorMessage: doc.ErrorMessage,
		ChunkCount:   doc.ChunkCount,
	}, nil
}

func (s *statusService) ListSessionDocuments(ctx context.Context, sessionId uuid.UUID) ([]*dto.DocumentStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.BySessionId{SessionId: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.DocumentStatusResponse, len(docs))
	for i, doc := range docs {
		responses[i] = &dto.DocumentStatusResponse{
			Id:           doc.Id,
			Name:         doc.Name,
			Status:       doc.Status,
			ErrorMessage: doc.ErrorMessage,
			ChunkCount:   doc.ChunkCount,
		}
	}
	return responses, nil
}
