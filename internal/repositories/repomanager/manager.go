// Package repomanager vends account repositories bound to a database handle
// and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/unidesk/internal/dbx"
	"github.com/dmitrijs2005/unidesk/internal/repositories/accounts"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
