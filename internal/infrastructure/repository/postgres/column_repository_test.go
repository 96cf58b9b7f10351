package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/docgrid/docgrid/internal/core/domain"
)

func newColumnRepoWithMock(t *testing.T) (*ColumnRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ColumnRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByIDsScansColumns(t *testing.T) {
	repo, mock, done := newColumnRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM columns").
		WithArgs("col-1", "col-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "name", "prompt", "col_type", "model_hint"}).
			AddRow("col-1", "proj-1", "Vendor", "Extract the vendor name", "text", nil).
			AddRow("col-2", "proj-1", "Total", "Extract the invoice total", "number", "fast"))

	cols, err := repo.GetByIDs(context.Background(), []string{"col-1", "col-2"})
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("len = %d", len(cols))
	}
	if cols[0].ModelHint != "" || cols[1].ModelHint != "fast" {
		t.Fatalf("model hints = [%q %q]", cols[0].ModelHint, cols[1].ModelHint)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDsEmptyInputSkipsQuery(t *testing.T) {
	repo, mock, done := newColumnRepoWithMock(t)
	defer done()

	cols, err := repo.GetByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}
	if cols != nil {
		t.Fatalf("expected nil, got %v", cols)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newColumnRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM columns").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
