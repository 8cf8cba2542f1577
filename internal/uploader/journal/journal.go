// Package journal keeps a local sqlite record of batch outcomes so a
// photographer can see what was durably stored, what failed and why, across
// uploader runs.
package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/ameledin/studiovault/internal/classify"
	"github.com/ameledin/studiovault/internal/dbx"
	"github.com/ameledin/studiovault/internal/uploader"
	"github.com/ameledin/studiovault/internal/uploader/journal/migrations"
)

// Entry statuses. "stored" means transferred and server-confirmed; "failed"
// covers everything else, with Reason explaining why.
const (
	StatusStored = "stored"
	StatusFailed = "failed"
)

// Entry is one journaled file outcome.
type Entry struct {
	ID           int64
	CollectionID string
	Filename     string
	StorageKey   string
	Category     string
	Size         int64
	Status       string
	Reason       string
	Security     bool
}

type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at dsn and applies
// pending migrations.
func Open(ctx context.Context, dsn string) (*Journal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("run journal migrations: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordResult writes one row per file in the batch result, all in a single
// transaction.
func (j *Journal) RecordResult(ctx context.Context, collectionID string, result *uploader.Result) error {
	return dbx.WithTx(ctx, j.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, f := range result.Completed {
			cat, _ := classify.Classify(f.Filename)
			e := &Entry{
				CollectionID: collectionID,
				Filename:     f.Filename,
				StorageKey:   f.Key,
				Category:     string(cat),
				Size:         f.Size,
				Status:       StatusStored,
			}
			if err := insertEntry(ctx, tx, e); err != nil {
				return err
			}
		}
		for _, f := range result.Failed {
			cat, _ := classify.Classify(f.Filename)
			e := &Entry{
				CollectionID: collectionID,
				Filename:     f.Filename,
				StorageKey:   f.Key,
				Category:     string(cat),
				Status:       StatusFailed,
				Reason:       f.Reason,
				Security:     f.Security,
			}
			if err := insertEntry(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertEntry(ctx context.Context, db dbx.DBTX, e *Entry) error {
	query := `
		INSERT INTO uploads (collection_id, filename, storage_key, category, size, status, reason, security)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	security := 0
	if e.Security {
		security = 1
	}
	if _, err := db.ExecContext(ctx, query,
		e.CollectionID, e.Filename, e.StorageKey, e.Category, e.Size, e.Status, e.Reason, security,
	); err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

// SelectByCollection returns journal entries for a collection, newest first.
func (j *Journal) SelectByCollection(ctx context.Context, collectionID string) ([]*Entry, error) {
	query := `
		SELECT id, collection_id, filename, storage_key, category, size, status, reason, security
		FROM uploads WHERE collection_id=? ORDER BY id DESC
	`
	rows, err := j.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("error selecting journal entries: %w", err)
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		var item Entry
		var security int
		if err := rows.Scan(&item.ID, &item.CollectionID, &item.Filename, &item.StorageKey,
			&item.Category, &item.Size, &item.Status, &item.Reason, &security); err != nil {
			return nil, err
		}
		item.Security = security != 0
		result = append(result, &item)
	}
	return result, rows.Err()
}
