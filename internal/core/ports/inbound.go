package ports

import (
	"context"

	"github.com/docgrid/docgrid/internal/core/domain"
)

// ExtractionService runs the extraction pipeline. Strategy failures never
// surface as errors here; they come back as confidence-0 report entries.
type ExtractionService interface {
	ExtractDocument(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionReport, error)
	ExtractCollection(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionReport, error)
}

// ValueEditor applies manual per-cell edits.
type ValueEditor interface {
	SetManualValue(ctx context.Context, documentID, columnID, value, actor string) (*domain.ExtractedValue, error)
}

// ColumnAdmin removes a column and cascades its values everywhere.
type ColumnAdmin interface {
	DeleteColumn(ctx context.Context, columnID, actor string) error
}
