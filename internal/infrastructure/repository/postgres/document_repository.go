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

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, project_id, collection_id, name, storage_url, mime_type, size_bytes,
	status, progress, started_at, completed_at, error_message, error_code, retry_count,
	extracted_data, created_at, updated_at`

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id IN (`+placeholders(1, len(ids))+`)
`, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.Document, len(ids))
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		byID[doc.ID] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	// Callers depend on input order for aggregation.
	out := make([]*domain.Document, 0, len(byID))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *DocumentRepository) SetExtractedValue(ctx context.Context, documentID, columnID string, value domain.ExtractedValue) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal extracted value: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET extracted_data = jsonb_set(extracted_data, ARRAY[$2], $3::jsonb, true), updated_at = $4
WHERE id = $1
`, documentID, columnID, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set extracted value: %w", err)
	}
	return requireRow(res, domain.ErrDocumentNotFound, "set extracted value", documentID)
}

func (r *DocumentRepository) UpdateProcessing(ctx context.Context, documentID string, p domain.Processing) error {
	var errMessage, errCode sql.NullString
	if p.Error != nil {
		errMessage = sql.NullString{String: p.Error.Message, Valid: true}
		errCode = sql.NullString{String: p.Error.Code, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, progress = $3, started_at = $4, completed_at = $5,
	error_message = $6, error_code = $7, retry_count = $8, updated_at = $9
WHERE id = $1
`, documentID, string(p.Status), p.Progress, p.StartedAt, p.CompletedAt,
		errMessage, errCode, p.RetryCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update processing: %w", err)
	}
	return requireRow(res, domain.ErrDocumentNotFound, "update processing", documentID)
}

func (r *DocumentRepository) RemoveColumnValues(ctx context.Context, projectID, columnID string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET extracted_data = extracted_data - $2, updated_at = $3
WHERE project_id = $1
`, projectID, columnID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("remove column values: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var collectionID, errMessage, errCode sql.NullString
	var startedAt, completedAt sql.NullTime
	var status string
	var extractedRaw []byte

	err := row.Scan(
		&doc.ID, &doc.ProjectID, &collectionID, &doc.Name, &doc.StorageURL, &doc.MimeType, &doc.SizeBytes,
		&status, &doc.Processing.Progress, &startedAt, &completedAt, &errMessage, &errCode, &doc.Processing.RetryCount,
		&extractedRaw, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.CollectionID = collectionID.String
	doc.Processing.Status = domain.ProcessingStatus(status)
	if startedAt.Valid {
		t := startedAt.Time
		doc.Processing.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		doc.Processing.CompletedAt = &t
	}
	if errMessage.Valid || errCode.Valid {
		doc.Processing.Error = &domain.ProcessingError{Message: errMessage.String, Code: errCode.String}
	}
	if len(extractedRaw) > 0 {
		if err := json.Unmarshal(extractedRaw, &doc.Extracted); err != nil {
			return nil, fmt.Errorf("unmarshal extracted data: %w", err)
		}
	}
	return &doc, nil
}

func requireRow(res sql.Result, kind error, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(kind, operation, fmt.Errorf("id %s", id))
	}
	return nil
}
