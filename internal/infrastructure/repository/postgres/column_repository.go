package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docgrid/docgrid/internal/core/domain"
)

type ColumnRepository struct {
	db *sql.DB
}

func NewColumnRepository(db *sql.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

const columnColumns = `id, project_id, name, prompt, col_type, model_hint`

func (r *ColumnRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Column, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+columnColumns+`
FROM columns
WHERE id IN (`+placeholders(1, len(ids))+`)
`, args...)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	return collectColumns(rows)
}

func (r *ColumnRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Column, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+columnColumns+`
FROM columns
WHERE project_id = $1
ORDER BY created_at
`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query project columns: %w", err)
	}
	defer rows.Close()

	return collectColumns(rows)
}

func (r *ColumnRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM columns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete column: %w", err)
	}
	return requireRow(res, domain.ErrColumnNotFound, "delete column", id)
}

func collectColumns(rows *sql.Rows) ([]domain.Column, error) {
	var out []domain.Column
	for rows.Next() {
		var col domain.Column
		var modelHint sql.NullString
		if err := rows.Scan(&col.ID, &col.ProjectID, &col.Name, &col.Prompt, &col.Type, &modelHint); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.ModelHint = modelHint.String
		out = append(out, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return out, nil
}
