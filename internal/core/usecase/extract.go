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

// ExtractUseCase is the extraction pipeline entry point. Strategy failures
// stay inside: callers always get one normalized entry per requested column,
// and only request-level problems (missing document, broken persistence)
// come back as errors.
type ExtractUseCase struct {
	docs        ports.DocumentRepository
	collections ports.CollectionRepository
	columns     ports.ColumnRepository
	audit       ports.AuditLog
	fetcher     ports.BlobFetcher
	chain       *strategyChain
	guard       *DemoDataGuard
	aggregator  *Aggregator
	concurrency int
	now         func() time.Time
	onFallback  func(primary, fallback string)
}

// SetFallbackObserver installs a callback fired whenever a run consulted a
// secondary strategy. Used by the binaries to feed pipeline metrics.
func (uc *ExtractUseCase) SetFallbackObserver(fn func(primary, fallback string)) {
	uc.onFallback = fn
}

func NewExtractUseCase(
	docs ports.DocumentRepository,
	collections ports.CollectionRepository,
	columns ports.ColumnRepository,
	audit ports.AuditLog,
	fetcher ports.BlobFetcher,
	inference ports.InferenceService,
	extractor ports.TextExtractor,
	guard *DemoDataGuard,
	concurrency int,
) *ExtractUseCase {
	if concurrency <= 0 {
		concurrency = 4
	}
	now := func() time.Time { return time.Now().UTC() }
	return &ExtractUseCase{
		docs:        docs,
		collections: collections,
		columns:     columns,
		audit:       audit,
		fetcher:     fetcher,
		chain:       newStrategyChain(inference, extractor, now),
		guard:       guard,
		aggregator:  NewAggregator(collections, docs),
		concurrency: concurrency,
		now:         now,
	}
}

func (uc *ExtractUseCase) ExtractDocument(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionReport, error) {
	if req.DocumentID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract document", errors.New("document id required"))
	}

	doc, err := uc.docs.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	columns, err := uc.resolveColumns(ctx, doc.ProjectID, req.ColumnIDs)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return &domain.ExtractionReport{PerColumn: []domain.ColumnResult{}}, nil
	}

	results, err := uc.extractOne(ctx, doc, columns, req.ForceReextract, req.Actor)
	if err != nil {
		return nil, err
	}

	if doc.CollectionID != "" {
		if _, err := uc.aggregator.Refresh(ctx, doc.CollectionID, columns, uc.now()); err != nil {
			slog.Error("aggregate_refresh_failed", "collection_id", doc.CollectionID, "error", err)
		}
	}

	return buildReport(columns, results), nil
}

// extractOne runs the per-document pipeline and persists its outcome. The
// returned map holds one value per requested column: freshly extracted ones
// plus stored values the demo-data guard decided to keep.
func (uc *ExtractUseCase) extractOne(ctx context.Context, doc *domain.Document, columns []domain.Column, force bool, actor string) (map[string]domain.ExtractedValue, error) {
	results := make(map[string]domain.ExtractedValue, len(columns))
	var todo []domain.Column
	for _, col := range columns {
		if stored, ok := doc.Value(col.ID); ok && !uc.guard.ShouldExtract(&stored, force) {
			results[col.ID] = stored
			continue
		}
		todo = append(todo, col)
	}
	if len(todo) == 0 {
		return results, nil
	}

	// A document with no retrievable URL at all is a request-level failure,
	// not a per-column shortfall.
	if doc.StorageURL == "" {
		if err := uc.transitionProcessing(ctx, doc, actor); err != nil {
			return nil, err
		}
		if err := uc.transitionFailed(ctx, doc, actor, "no_storage_url", "document has no storage url"); err != nil {
			return nil, err
		}
		for _, r := range failureResults(todo, errors.New("document has no storage url"), domain.Provenance{}, uc.now()) {
			results[r.ColumnID] = r.Value
		}
		return results, nil
	}

	if err := uc.transitionProcessing(ctx, doc, actor); err != nil {
		return nil, err
	}

	kind := domain.DetectFileKind(doc.MimeType, doc.Name)
	blob, blobErr := uc.fetcher.Fetch(ctx, doc.StorageURL, kind)
	if blobErr != nil {
		slog.Warn("blob_fetch_failed", "document_id", doc.ID, "error", blobErr)
	}
	uc.reportProgress(ctx, doc, 30)

	outcome := uc.chain.run(ctx, strategyInput{
		doc:     doc,
		kind:    kind,
		blob:    blob,
		blobErr: blobErr,
		columns: todo,
	})
	uc.reportProgress(ctx, doc, 80)

	if outcome.fallback != "" && uc.onFallback != nil {
		uc.onFallback(outcome.primary, outcome.fallback)
	}

	for _, r := range outcome.results {
		if err := uc.docs.SetExtractedValue(ctx, doc.ID, r.ColumnID, r.Value); err != nil {
			uc.tryTransitionFailed(ctx, doc, actor, "persistence", err.Error())
			return nil, fmt.Errorf("persist value for column %s: %w", r.ColumnID, err)
		}
		if doc.Extracted == nil {
			doc.Extracted = make(map[string]domain.ExtractedValue)
		}
		doc.Extracted[r.ColumnID] = r.Value
		results[r.ColumnID] = r.Value
	}

	if err := uc.transitionCompleted(ctx, doc, actor); err != nil {
		return nil, err
	}

	slog.Info("document_extracted",
		"document_id", doc.ID,
		"strategy", outcome.primary,
		"fallback", outcome.fallback,
		"columns", len(todo),
		"succeeded", countSuccesses(outcome.results),
	)
	return results, nil
}

func (uc *ExtractUseCase) resolveColumns(ctx context.Context, projectID string, ids []string) ([]domain.Column, error) {
	if len(ids) == 0 {
		cols, err := uc.columns.ListByProject(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("list project columns: %w", err)
		}
		return cols, nil
	}
	cols, err := uc.columns.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load columns: %w", err)
	}
	if len(cols) != len(ids) {
		return nil, domain.WrapError(domain.ErrColumnNotFound, "load columns",
			fmt.Errorf("resolved %d of %d requested columns", len(cols), len(ids)))
	}
	// Preserve the requested order; the report contract depends on it.
	byID := make(map[string]domain.Column, len(cols))
	for _, c := range cols {
		byID[c.ID] = c
	}
	ordered := make([]domain.Column, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}

func (uc *ExtractUseCase) transitionProcessing(ctx context.Context, doc *domain.Document, actor string) error {
	if doc.Processing.Status == domain.StatusProcessing {
		return nil
	}
	if err := doc.Processing.MarkProcessing(uc.now()); err != nil {
		return fmt.Errorf("enter processing: %w", err)
	}
	return uc.persistTransition(ctx, doc, actor)
}

func (uc *ExtractUseCase) transitionCompleted(ctx context.Context, doc *domain.Document, actor string) error {
	if err := doc.Processing.MarkCompleted(uc.now()); err != nil {
		return fmt.Errorf("enter completed: %w", err)
	}
	return uc.persistTransition(ctx, doc, actor)
}

func (uc *ExtractUseCase) transitionFailed(ctx context.Context, doc *domain.Document, actor, code, message string) error {
	if err := doc.Processing.MarkFailed(uc.now(), code, message); err != nil {
		return fmt.Errorf("enter failed: %w", err)
	}
	return uc.persistTransition(ctx, doc, actor)
}

// tryTransitionFailed is for paths already returning an error of their own.
func (uc *ExtractUseCase) tryTransitionFailed(ctx context.Context, doc *domain.Document, actor, code, message string) {
	if err := uc.transitionFailed(ctx, doc, actor, code, message); err != nil {
		slog.Error("mark_failed_error", "document_id", doc.ID, "error", err)
	}
}

func (uc *ExtractUseCase) persistTransition(ctx context.Context, doc *domain.Document, actor string) error {
	if err := uc.docs.UpdateProcessing(ctx, doc.ID, doc.Processing); err != nil {
		return fmt.Errorf("persist processing state: %w", err)
	}
	entry := domain.AuditEntry{
		EntityType: "document",
		EntityID:   doc.ID,
		Action:     "status_change",
		Actor:      actor,
		Details: map[string]any{
			"status":      string(doc.Processing.Status),
			"retry_count": doc.Processing.RetryCount,
		},
		CreatedAt: uc.now(),
	}
	if doc.Processing.Error != nil {
		entry.Details["error_code"] = doc.Processing.Error.Code
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		slog.Error("audit_append_failed", "document_id", doc.ID, "error", err)
	}
	return nil
}

// reportProgress stores advisory progress; failures only log.
func (uc *ExtractUseCase) reportProgress(ctx context.Context, doc *domain.Document, progress int) {
	doc.Processing.SetProgress(progress)
	if err := uc.docs.UpdateProcessing(ctx, doc.ID, doc.Processing); err != nil {
		slog.Warn("progress_update_failed", "document_id", doc.ID, "error", err)
	}
}

func buildReport(columns []domain.Column, values map[string]domain.ExtractedValue) *domain.ExtractionReport {
	report := &domain.ExtractionReport{
		PerColumn:    make([]domain.ColumnResult, 0, len(columns)),
		TotalColumns: len(columns),
	}
	for _, col := range columns {
		v := values[col.ID]
		report.PerColumn = append(report.PerColumn, domain.ColumnResult{ColumnID: col.ID, Value: v})
		if v.Confidence > 0 {
			report.SuccessCount++
		}
	}
	return report
}
