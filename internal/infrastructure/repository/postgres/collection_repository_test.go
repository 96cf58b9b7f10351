package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/docgrid/docgrid/internal/core/domain"
)

func newCollectionRepoWithMock(t *testing.T) (*CollectionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &CollectionRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestCollectionGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newCollectionRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM collections").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCollectionGetByIDScansSettingsAndAggregates(t *testing.T) {
	repo, mock, done := newCollectionRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	extracted := `{"col-1":{"value":"Q3 report","type":"text","confidence":0.8,"extracted_at":"2026-02-01T10:00:00Z","provenance":{"method":"aggregation"},"contributor_ids":["doc-2"]}}`
	mock.ExpectQuery("SELECT (.+) FROM collections").
		WithArgs("coll-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "project_id", "document_ids", "hidden_document_ids", "aggregation_order",
			"extracted_data", "document_count", "total_size", "last_modified",
		}).AddRow(
			"coll-1", "proj-1", []byte(`["doc-1","doc-2"]`), []byte(`["doc-1"]`), []byte(`[]`),
			[]byte(extracted), 2, int64(4096), now,
		))

	col, err := repo.GetByID(context.Background(), "coll-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(col.DocumentIDs) != 2 || len(col.Settings.HiddenDocumentIDs) != 1 {
		t.Fatalf("membership = %+v settings = %+v", col.DocumentIDs, col.Settings)
	}
	agg, ok := col.Extracted["col-1"]
	if !ok {
		t.Fatalf("expected aggregate for col-1")
	}
	if agg.Value != "Q3 report" || len(agg.ContributorIDs) != 1 {
		t.Fatalf("aggregate = %+v", agg)
	}
	if col.Stats.DocumentCount != 2 || col.Stats.TotalSize != 4096 {
		t.Fatalf("stats = %+v", col.Stats)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveAggregateReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newCollectionRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE collections").
		WithArgs("missing", "col-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveAggregate(context.Background(), "missing", "col-1", domain.AggregatedValue{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecomputeStatsUpdatesFromMemberDocuments(t *testing.T) {
	repo, mock, done := newCollectionRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE collections").
		WithArgs("coll-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RecomputeStats(context.Background(), "coll-1"); err != nil {
		t.Fatalf("RecomputeStats() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
