package repomanager

import (
	"context"
	"database/sql"

	"github.com/ameledin/studiovault/internal/dbx"
	"github.com/ameledin/studiovault/internal/server/repositories/files"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Files(db dbx.DBTX) files.Repository
}
