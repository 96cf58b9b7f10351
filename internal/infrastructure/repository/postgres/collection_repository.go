package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/docgrid/docgrid/internal/core/domain"
)

type CollectionRepository struct {
	db *sql.DB
}

func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*domain.Collection, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, project_id, document_ids, hidden_document_ids, aggregation_order,
	extracted_data, document_count, total_size, last_modified
FROM collections
WHERE id = $1
`, id)

	var col domain.Collection
	var documentIDs, hiddenIDs, aggOrder, extractedRaw []byte
	err := row.Scan(
		&col.ID, &col.ProjectID, &documentIDs, &hiddenIDs, &aggOrder,
		&extractedRaw, &col.Stats.DocumentCount, &col.Stats.TotalSize, &col.Stats.LastModified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCollectionNotFound, "get collection", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan collection: %w", err)
	}

	for _, pair := range []struct {
		raw  []byte
		dest any
	}{
		{documentIDs, &col.DocumentIDs},
		{hiddenIDs, &col.Settings.HiddenDocumentIDs},
		{aggOrder, &col.Settings.AggregationOrder},
		{extractedRaw, &col.Extracted},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
			return nil, fmt.Errorf("unmarshal collection field: %w", err)
		}
	}
	return &col, nil
}

func (r *CollectionRepository) SaveAggregate(ctx context.Context, collectionID, columnID string, value domain.AggregatedValue) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE collections
SET extracted_data = jsonb_set(extracted_data, ARRAY[$2], $3::jsonb, true)
WHERE id = $1
`, collectionID, columnID, raw)
	if err != nil {
		return fmt.Errorf("save aggregate: %w", err)
	}
	return requireRow(res, domain.ErrCollectionNotFound, "save aggregate", collectionID)
}

func (r *CollectionRepository) RemoveAggregate(ctx context.Context, collectionID, columnID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE collections
SET extracted_data = extracted_data - $2
WHERE id = $1
`, collectionID, columnID)
	if err != nil {
		return fmt.Errorf("remove aggregate: %w", err)
	}
	return requireRow(res, domain.ErrCollectionNotFound, "remove aggregate", collectionID)
}

func (r *CollectionRepository) RecomputeStats(ctx context.Context, collectionID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE collections
SET document_count = s.cnt, total_size = s.sz, last_modified = $2
FROM (
	SELECT COUNT(*) AS cnt, COALESCE(SUM(size_bytes), 0) AS sz
	FROM documents
	WHERE collection_id = $1
) s
WHERE collections.id = $1
`, collectionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recompute stats: %w", err)
	}
	return requireRow(res, domain.ErrCollectionNotFound, "recompute stats", collectionID)
}

func (r *CollectionRepository) RemoveColumnAggregates(ctx context.Context, projectID, columnID string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE collections
SET extracted_data = extracted_data - $2
WHERE project_id = $1
`, projectID, columnID)
	if err != nil {
		return fmt.Errorf("remove column aggregates: %w", err)
	}
	return nil
}
