package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/unidesk/internal/dbx"
	"github.com/dmitrijs2005/unidesk/internal/repositories/accounts"
)

// MemoryRepositoryManager serves one shared in-memory directory regardless of
// the handle passed in, so transactions are not isolated.
type MemoryRepositoryManager struct {
	repo *accounts.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{repo: accounts.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.repo
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
