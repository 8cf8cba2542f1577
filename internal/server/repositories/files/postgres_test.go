package files

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+media_files\b`

	mock.ExpectExec(q).
		WithArgs("c1", "a.jpg", "collections/c1/k0", "image/jpeg", int64(1024), "gallery-image", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.MediaFile{
		CollectionID: "c1",
		Filename:     "a.jpg",
		StorageKey:   "collections/c1/k0",
		ContentType:  "image/jpeg",
		DeclaredSize: 1024,
		Category:     "gallery-image",
		Status:       models.UploadStatusPending,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+media_files\b`).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.MediaFile{CollectionID: "c1", StorageKey: "k"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetByKey_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "collection_id", "filename", "storage_key", "content_type", "declared_size", "category", "status"}).
		AddRow(int64(7), "c1", "a.jpg", "k0", "image/jpeg", int64(1024), "gallery-image", "pending")

	mock.ExpectQuery(`(?s)^\s*SELECT\b.*FROM\s+media_files\s+WHERE\s+storage_key=\$1`).
		WithArgs("k0").
		WillReturnRows(rows)

	got, err := repo.GetByKey(context.Background(), "k0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Filename != "a.jpg" || got.DeclaredSize != 1024 {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestGetByKey_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*SELECT\b.*FROM\s+media_files\s+WHERE\s+storage_key=\$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByKey(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestMarkConfirmed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+media_files\s+SET\s+status='confirmed'`).
		WithArgs("k0").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkConfirmed(context.Background(), "k0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkConfirmed_AlreadyConfirmedIsNoop(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+media_files\s+SET\s+status='confirmed'`).
		WithArgs("k0").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MarkConfirmed(context.Background(), "k0"); err != nil {
		t.Fatalf("confirm must be idempotent, got %v", err)
	}
}

func TestDeleteByKey(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*DELETE\s+FROM\s+media_files\s+WHERE\s+storage_key=\$1`).
		WithArgs("k0").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteByKey(context.Background(), "k0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSelectByCollection(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "collection_id", "filename", "storage_key", "content_type", "declared_size", "category", "status"}).
		AddRow(int64(1), "c1", "a.jpg", "k0", "image/jpeg", int64(10), "gallery-image", "confirmed").
		AddRow(int64(2), "c1", "b.cr2", "k1", "image/x-canon-cr2", int64(20), "raw-image", "confirmed")

	mock.ExpectQuery(`(?s)^\s*SELECT\b.*FROM\s+media_files\s+WHERE\s+collection_id=\$1`).
		WithArgs("c1", "confirmed").
		WillReturnRows(rows)

	got, err := repo.SelectByCollection(context.Background(), "c1", "confirmed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].StorageKey != "k1" {
		t.Fatalf("unexpected rows: %+v", got)
	}
}
