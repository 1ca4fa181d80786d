package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/dmitrijs2005/unidesk/internal/logging"
	"github.com/dmitrijs2005/unidesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_InsertThenUpdate(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := newSpyRepo()
	s := NewAccountService(db, &fakeRepoManager{repo: repo}, noThrottleConfig(), logging.Nop{})
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	res, err := s.Seed(ctx, DefaultSeedAccounts())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 5}, res)

	admin, err := s.Login(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.True(t, s.IsAdmin(admin))

	super, err := s.Login(ctx, "superadmin", "superadmin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, super.Role)

	teacher, err := repo.GetByUsername(ctx, "teacher1")
	require.NoError(t, err)
	assert.Empty(t, teacher.Matricule)

	user, err := repo.GetByUsername(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "USR001", user.Matricule)

	// role changes survive a re-seed, passwords are refreshed
	_, err = s.ChangeRole(ctx, super, "user", "STUDENT")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	res, err = s.Seed(ctx, []SeedAccount{
		{Username: "user", Password: "changed", Role: "USER", Name: "Normal User", Email: "user@school.com", Matricule: "USR002"},
	})
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Updated: 1}, res)

	user, err = s.Login(ctx, "user", "changed")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "USR002", user.Matricule)

	list, _ := repo.List(ctx)
	assert.Len(t, list, 5)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_InvalidAccountWritesNothing(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := newSpyRepo()
	s := NewAccountService(db, &fakeRepoManager{repo: repo}, testConfig(), logging.Nop{})

	_, err := s.Seed(context.Background(), []SeedAccount{
		{Username: "ok", Password: "pw", Role: "USER", Email: "ok@x"},
		{Username: "bad", Password: "pw", Role: "Dean", Email: "bad@x"},
	})
	assert.ErrorIs(t, err, common.ErrorValidation)

	list, _ := repo.List(context.Background())
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_StorageFailureRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := newSpyRepo()
	repo.getErr = errBoom
	s := NewAccountService(db, &fakeRepoManager{repo: repo}, testConfig(), logging.Nop{})

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Seed(context.Background(), DefaultSeedAccounts()[:1])
	assert.ErrorIs(t, err, errBoom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(good, []byte(`[
		{"username":"dean","password":"pw","role":"ADMIN","name":"Dean","email":"dean@school.com"},
		{"username":"s1","password":"pw","role":"student","email":"s1@school.com","matricule":"S1","level":"L1"}
	]`), 0o600))

	list, err := LoadSeedFile(good)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "dean", list[0].Username)
	assert.Equal(t, "L1", list[1].Level)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o600))
	_, err = LoadSeedFile(bad)
	assert.ErrorContains(t, err, "parse seed file")

	_, err = LoadSeedFile(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "read seed file")
}
