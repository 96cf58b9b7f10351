package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docgrid/docgrid/internal/core/domain"
	"github.com/docgrid/docgrid/internal/core/ports"
)

// EditValueUseCase applies manual cell edits. Manual values carry confidence
// 1 and "manual" provenance, and count as member mutations for aggregation.
type EditValueUseCase struct {
	docs       ports.DocumentRepository
	columns    ports.ColumnRepository
	audit      ports.AuditLog
	aggregator *Aggregator
	now        func() time.Time
}

func NewEditValueUseCase(
	docs ports.DocumentRepository,
	collections ports.CollectionRepository,
	columns ports.ColumnRepository,
	audit ports.AuditLog,
) *EditValueUseCase {
	return &EditValueUseCase{
		docs:       docs,
		columns:    columns,
		audit:      audit,
		aggregator: NewAggregator(collections, docs),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (uc *EditValueUseCase) SetManualValue(ctx context.Context, documentID, columnID, value, actor string) (*domain.ExtractedValue, error) {
	if documentID == "" || columnID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "manual edit", errors.New("document id and column id required"))
	}

	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	cols, err := uc.columns.GetByIDs(ctx, []string{columnID})
	if err != nil {
		return nil, fmt.Errorf("load column: %w", err)
	}
	if len(cols) == 0 {
		return nil, domain.WrapError(domain.ErrColumnNotFound, "manual edit", fmt.Errorf("column %s", columnID))
	}
	col := cols[0]

	edited := domain.ExtractedValue{
		Value:       value,
		Type:        col.Type,
		Confidence:  1,
		ExtractedAt: uc.now(),
		Provenance:  domain.Provenance{Method: domain.MethodManual, Actor: actor},
	}
	if err := uc.docs.SetExtractedValue(ctx, doc.ID, col.ID, edited); err != nil {
		return nil, fmt.Errorf("persist manual value: %w", err)
	}

	if err := uc.audit.Append(ctx, domain.AuditEntry{
		EntityType: "document",
		EntityID:   doc.ID,
		Action:     "manual_edit",
		Actor:      actor,
		Details:    map[string]any{"column_id": col.ID},
		CreatedAt:  uc.now(),
	}); err != nil {
		slog.Error("audit_append_failed", "document_id", doc.ID, "error", err)
	}

	if doc.CollectionID != "" {
		if _, err := uc.aggregator.Refresh(ctx, doc.CollectionID, []domain.Column{col}, uc.now()); err != nil {
			slog.Error("aggregate_refresh_failed", "collection_id", doc.CollectionID, "error", err)
		}
	}
	return &edited, nil
}

// DeleteColumnUseCase removes a column definition and cascades removal of
// its values from every document and collection aggregate in the project.
type DeleteColumnUseCase struct {
	docs        ports.DocumentRepository
	collections ports.CollectionRepository
	columns     ports.ColumnRepository
	audit       ports.AuditLog
	now         func() time.Time
}

func NewDeleteColumnUseCase(
	docs ports.DocumentRepository,
	collections ports.CollectionRepository,
	columns ports.ColumnRepository,
	audit ports.AuditLog,
) *DeleteColumnUseCase {
	return &DeleteColumnUseCase{
		docs:        docs,
		collections: collections,
		columns:     columns,
		audit:       audit,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *DeleteColumnUseCase) DeleteColumn(ctx context.Context, columnID, actor string) error {
	if columnID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete column", errors.New("column id required"))
	}
	cols, err := uc.columns.GetByIDs(ctx, []string{columnID})
	if err != nil {
		return fmt.Errorf("load column: %w", err)
	}
	if len(cols) == 0 {
		return domain.WrapError(domain.ErrColumnNotFound, "delete column", fmt.Errorf("column %s", columnID))
	}
	col := cols[0]

	if err := uc.columns.Delete(ctx, col.ID); err != nil {
		return fmt.Errorf("delete column definition: %w", err)
	}
	if err := uc.docs.RemoveColumnValues(ctx, col.ProjectID, col.ID); err != nil {
		return fmt.Errorf("cascade document values: %w", err)
	}
	if err := uc.collections.RemoveColumnAggregates(ctx, col.ProjectID, col.ID); err != nil {
		return fmt.Errorf("cascade collection aggregates: %w", err)
	}

	if err := uc.audit.Append(ctx, domain.AuditEntry{
		EntityType: "column",
		EntityID:   col.ID,
		Action:     "column_deleted",
		Actor:      actor,
		Details:    map[string]any{"project_id": col.ProjectID},
		CreatedAt:  uc.now(),
	}); err != nil {
		slog.Error("audit_append_failed", "column_id", col.ID, "error", err)
	}
	return nil
}
