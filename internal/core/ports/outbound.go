package ports

import (
	"context"

	"github.com/docgrid/docgrid/internal/core/domain"
)

// DocumentRepository persists document state. Writes are atomic at
// single-record granularity.
type DocumentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Document, error)
	SetExtractedValue(ctx context.Context, documentID, columnID string, value domain.ExtractedValue) error
	UpdateProcessing(ctx context.Context, documentID string, processing domain.Processing) error
	RemoveColumnValues(ctx context.Context, projectID, columnID string) error
}

// CollectionRepository persists collections and their derived aggregates.
type CollectionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Collection, error)
	SaveAggregate(ctx context.Context, collectionID, columnID string, value domain.AggregatedValue) error
	RemoveAggregate(ctx context.Context, collectionID, columnID string) error
	RecomputeStats(ctx context.Context, collectionID string) error
	RemoveColumnAggregates(ctx context.Context, projectID, columnID string) error
}

// ColumnRepository reads project column definitions.
type ColumnRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.Column, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Column, error)
	Delete(ctx context.Context, id string) error
}

// AuditLog appends immutable audit entries.
type AuditLog interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

// BlobFetcher downloads document bytes from blob storage.
type BlobFetcher interface {
	Fetch(ctx context.Context, url string, expected domain.FileKind) (*domain.Blob, error)
}

// TextExtractor converts PDF bytes to bounded plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (domain.DocumentText, error)
}

// InferenceService is the external AI capability. It answers one raw
// extraction per column it could read; missing columns are the normalizer's
// problem, malformed responses are the implementation's.
type InferenceService interface {
	ExtractFields(ctx context.Context, req domain.InferenceRequest) ([]domain.RawExtraction, error)
	Model() domain.ModelInfo
}

// MessageQueue carries asynchronous extraction jobs.
type MessageQueue interface {
	PublishExtractionJob(ctx context.Context, job domain.ExtractionJob) error
	SubscribeExtractionJobs(ctx context.Context, handler func(context.Context, domain.ExtractionJob) error) error
}
