// Package accounts is the account directory: lookup and persistence of rows
// of the users table.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/unidesk/internal/models"
)

// Repository is implemented by PostgresRepository and MemoryRepository.
//
// GetByUsername and Update return common.ErrorNotFound when no row matches;
// Create and Update return common.ErrorAlreadyExists when the username or the
// email (compared case-insensitively) is taken.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	List(ctx context.Context) ([]models.Account, error)
	CountByRole(ctx context.Context) (map[models.Role]int, error)
}
