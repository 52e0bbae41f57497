package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProgressFunc receives a 0-100 percentage after each completed stage.
type ProgressFunc func(percent int)

// Stage completion checkpoints reported to the job row. The worker starts the
// job at 10, so every value here keeps progress non-decreasing.
const (
	progressParsed   = 30
	progressChunked  = 50
	progressEmbedded = 80
	progressIndexed  = 95
)

// Orchestrator runs the four stages for one document in strict order. A stage
// failure short-circuits the rest and propagates the stage's typed error
// unchanged; classification is the caller's job.
type Orchestrator struct {
	parser   Parser
	chunker  *Chunker
	embedder *Embedder
	indexer  *Indexer

	// StageTimeout bounds each stage. Four stage budgets plus margin must
	// stay below the queue's visibility timeout or redelivery races stop
	// being rare.
	StageTimeout time.Duration

	tracer trace.Tracer
}

func NewOrchestrator(parser Parser, chunker *Chunker, embedder *Embedder, indexer *Indexer, stageTimeout time.Duration) *Orchestrator {
	if stageTimeout <= 0 {
		stageTimeout = time.Minute
	}
	return &Orchestrator{
		parser:       parser,
		chunker:      chunker,
		embedder:     embedder,
		indexer:      indexer,
		StageTimeout: stageTimeout,
		tracer:       otel.Tracer("pipeline"),
	}
}

// Process ingests one document end to end. onProgress may be nil.
//
// A document that parses to zero segments completes successfully with
// ChunkCount 0; empty is a legal outcome, not a failure.
func (o *Orchestrator) Process(ctx context.Context, doc Document, onProgress ProgressFunc) (*Result, error) {
	start := time.Now()

	ctx, span := o.tracer.Start(ctx, "pipeline.process",
		trace.WithAttributes(attribute.String("document_id", doc.Id.String())))
	defer span.End()

	report := func(percent int) {
		if onProgress != nil {
			onProgress(percent)
		}
	}

	var segments []Segment
	err := o.stage(ctx, "parse", func(ctx context.Context) error {
		var stageErr error
		segments, stageErr = o.parser.Parse(ctx, doc.StorageLocator)
		return stageErr
	})
	if err != nil {
		return nil, o.fail(span, err)
	}
	report(progressParsed)

	var chunks []Chunk
	err = o.stage(ctx, "chunk", func(ctx context.Context) error {
		var stageErr error
		chunks, stageErr = o.chunker.Chunk(doc, segments)
		return stageErr
	})
	if err != nil {
		return nil, o.fail(span, err)
	}
	report(progressChunked)

	err = o.stage(ctx, "embed", func(ctx context.Context) error {
		var stageErr error
		chunks, stageErr = o.embedder.Embed(ctx, chunks)
		return stageErr
	})
	if err != nil {
		return nil, o.fail(span, err)
	}
	report(progressEmbedded)

	err = o.stage(ctx, "index", func(ctx context.Context) error {
		return o.indexer.Index(ctx, chunks)
	})
	if err != nil {
		return nil, o.fail(span, err)
	}
	report(progressIndexed)

	span.SetAttributes(attribute.Int("chunk_count", len(chunks)))

	return &Result{
		ChunkCount:     len(chunks),
		Duration:       time.Since(start),
		IndexReference: o.indexer.Reference,
	}, nil
}

func (o *Orchestrator) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, o.StageTimeout)
	defer cancel()

	ctx, span := o.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (o *Orchestrator) fail(span trace.Span, err error) error {
	span.SetStatus(codes.Error, err.Error())
	return err
}
