package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/unidesk/internal/config"
	"github.com/dmitrijs2005/unidesk/internal/dbx"
	"github.com/dmitrijs2005/unidesk/internal/logging"
	"github.com/dmitrijs2005/unidesk/internal/models"
	"github.com/dmitrijs2005/unidesk/internal/repositories/accounts"
	"github.com/stretchr/testify/require"
)

type fakeRepoManager struct {
	repo accounts.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository      { return m.repo }

// spyRepo wraps a MemoryRepository, counts lookups and injects failures.
type spyRepo struct {
	*accounts.MemoryRepository

	lookups int

	getErr    error
	existsErr error
	createErr error
	updateErr error
	listErr   error
}

func newSpyRepo() *spyRepo {
	return &spyRepo{MemoryRepository: accounts.NewMemoryRepository()}
}

func (r *spyRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.lookups++
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.MemoryRepository.GetByUsername(ctx, username)
}

func (r *spyRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.MemoryRepository.ExistsByUsername(ctx, username)
}

func (r *spyRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.MemoryRepository.ExistsByEmail(ctx, email)
}

func (r *spyRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.MemoryRepository.Create(ctx, a)
}

func (r *spyRepo) Update(ctx context.Context, a *models.Account) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.MemoryRepository.Update(ctx, a)
}

func (r *spyRepo) List(ctx context.Context) ([]models.Account, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.MemoryRepository.List(ctx)
}

func (r *spyRepo) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.MemoryRepository.CountByRole(ctx)
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:          "test-secret",
		SessionTimeout:     time.Hour,
		MaxLoginAttempts:   3,
		LoginAttemptWindow: time.Minute,
	}
}

func noThrottleConfig() *config.Config {
	c := testConfig()
	c.MaxLoginAttempts = 0
	return c
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// newService returns a service over repo without a database; transactions
// run inline.
func newService(t *testing.T, repo accounts.Repository, cfg *config.Config) *AccountService {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	return NewAccountService(nil, &fakeRepoManager{repo: repo}, cfg, logging.Nop{})
}

// seedAccount stores an account with password hashed at full strength.
func seedAccount(t *testing.T, s *AccountService, username, password string, role models.Role, email string) *models.Account {
	t.Helper()
	hash, err := s.hasher.Hash(password)
	require.NoError(t, err)
	a, err := s.repomanager.Accounts(nil).Create(context.Background(), &models.Account{
		Username: username, PasswordHash: hash, Role: role, Name: username, Email: email,
	})
	require.NoError(t, err)
	return a
}
