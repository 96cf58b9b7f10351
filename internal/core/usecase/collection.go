package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/docgrid/docgrid/internal/core/domain"
)

// ExtractCollection fans per-document extraction out over the visible
// members and joins before aggregating: the fold must observe a consistent
// snapshot of member values, so the errgroup acts as a barrier. Documents
// are independent; one member's failure never cancels the others.
func (uc *ExtractUseCase) ExtractCollection(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionReport, error) {
	if req.CollectionID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract collection", errors.New("collection id required"))
	}

	coll, err := uc.collections.GetByID(ctx, req.CollectionID)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	columns, err := uc.resolveColumns(ctx, coll.ProjectID, req.ColumnIDs)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return &domain.ExtractionReport{PerColumn: []domain.ColumnResult{}}, nil
	}

	memberIDs := coll.VisibleMemberOrder()
	members, err := uc.docs.ListByIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("load collection members: %w", err)
	}

	var mu sync.Mutex
	var memberErrs []error

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.concurrency)
	for _, doc := range members {
		eg.Go(func() error {
			if _, err := uc.extractOne(egCtx, doc, columns, req.ForceReextract, req.Actor); err != nil {
				slog.Error("member_extraction_failed", "collection_id", coll.ID, "document_id", doc.ID, "error", err)
				mu.Lock()
				memberErrs = append(memberErrs, fmt.Errorf("document %s: %w", doc.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("join member extractions: %w", err)
	}

	// Request-level failure only when every member broke on infrastructure;
	// partial trouble still aggregates what settled.
	if len(memberErrs) > 0 && len(memberErrs) == len(members) {
		return nil, fmt.Errorf("extract collection %s: %w", coll.ID, errors.Join(memberErrs...))
	}

	aggregates, err := uc.aggregator.Refresh(ctx, coll.ID, columns, uc.now())
	if err != nil {
		return nil, err
	}

	report := &domain.ExtractionReport{
		PerColumn:    make([]domain.ColumnResult, 0, len(columns)),
		TotalColumns: len(columns),
	}
	for _, col := range columns {
		agg := aggregates[col.ID]
		report.PerColumn = append(report.PerColumn, domain.ColumnResult{ColumnID: col.ID, Value: agg.ExtractedValue})
		if agg.Confidence > 0 {
			report.SuccessCount++
		}
	}
	return report, nil
}
