package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/docgrid/docgrid/internal/core/domain"
	"github.com/docgrid/docgrid/internal/core/ports"
)

// Aggregator folds per-document values into collection-level aggregates and
// keeps collection stats current after member mutations.
type Aggregator struct {
	collections ports.CollectionRepository
	docs        ports.DocumentRepository
}

func NewAggregator(collections ports.CollectionRepository, docs ports.DocumentRepository) *Aggregator {
	return &Aggregator{collections: collections, docs: docs}
}

// aggregateColumn scans visible members in aggregation order and takes the
// first value with confidence above zero. Document order breaks ties, not
// confidence magnitude; a later 0.9 never displaces an earlier 0.4.
// Contributors list every visible member that had a usable value.
func aggregateColumn(coll *domain.Collection, docs map[string]*domain.Document, col domain.Column, now time.Time) domain.AggregatedValue {
	agg := domain.AggregatedValue{
		ExtractedValue: domain.ExtractedValue{
			Type:        col.Type,
			ExtractedAt: now,
			Provenance:  domain.Provenance{Method: domain.MethodAggregation},
		},
		ContributorIDs: []string{},
	}

	for _, id := range coll.VisibleMemberOrder() {
		doc, ok := docs[id]
		if !ok {
			continue
		}
		v, ok := doc.Value(col.ID)
		if !ok || v.Confidence <= 0 {
			continue
		}
		if len(agg.ContributorIDs) == 0 {
			agg.Value = v.Value
			agg.Confidence = v.Confidence
			agg.Provenance.Model = v.Provenance.Model
			agg.Provenance.Version = v.Provenance.Version
		}
		agg.ContributorIDs = append(agg.ContributorIDs, id)
	}
	return agg
}

// Refresh re-derives the aggregates for the given columns and recomputes
// collection stats. Callers invoke it after any member mutation; aggregates
// are never authored independently of one.
func (a *Aggregator) Refresh(ctx context.Context, collectionID string, columns []domain.Column, now time.Time) (map[string]domain.AggregatedValue, error) {
	coll, err := a.collections.GetByID(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	members, err := a.docs.ListByIDs(ctx, coll.DocumentIDs)
	if err != nil {
		return nil, fmt.Errorf("load collection members: %w", err)
	}
	byID := make(map[string]*domain.Document, len(members))
	for _, d := range members {
		byID[d.ID] = d
	}

	out := make(map[string]domain.AggregatedValue, len(columns))
	for _, col := range columns {
		agg := aggregateColumn(coll, byID, col, now)
		if err := a.collections.SaveAggregate(ctx, collectionID, col.ID, agg); err != nil {
			return nil, fmt.Errorf("save aggregate for column %s: %w", col.ID, err)
		}
		out[col.ID] = agg
	}

	if err := a.collections.RecomputeStats(ctx, collectionID); err != nil {
		return nil, fmt.Errorf("recompute stats: %w", err)
	}
	return out, nil
}
