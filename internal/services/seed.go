package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/dmitrijs2005/unidesk/internal/dbx"
	"github.com/dmitrijs2005/unidesk/internal/models"
)

// SeedAccount is one account of a seed file.
type SeedAccount struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Matricule string `json:"matricule,omitempty"`
	Level     string `json:"level,omitempty"`
}

type SeedResult struct {
	Created int
	Updated int
}

// DefaultSeedAccounts are the bootstrap accounts of a fresh installation.
// Their passwords must be changed after the first login.
func DefaultSeedAccounts() []SeedAccount {
	return []SeedAccount{
		{Username: "admin", Password: "admin", Role: "ADMIN", Name: "Administrator", Email: "admin@school.com"},
		{Username: "superadmin", Password: "superadmin", Role: "SUPERADMIN", Name: "Super Administrator", Email: "superadmin@school.com"},
		{Username: "user", Password: "user", Role: "USER", Name: "Normal User", Email: "user@school.com", Matricule: "USR001", Level: "Level 1"},
		{Username: "teacher1", Password: "teacher", Role: "TEACHER", Name: "John Doe", Email: "john.doe@school.com"},
		{Username: "teacher2", Password: "teacher", Role: "TEACHER", Name: "Jane Smith", Email: "jane.smith@school.com"},
	}
}

// LoadSeedFile reads a JSON array of SeedAccount.
func LoadSeedFile(path string) ([]SeedAccount, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var list []SeedAccount
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	return list, nil
}

// Seed inserts missing accounts and refreshes the password and profile of
// existing ones. Unlike Register it accepts any known role and skips the
// strength policy. Roles of existing accounts are left untouched. All
// accounts are written in one transaction.
func (s *AccountService) Seed(ctx context.Context, list []SeedAccount) (SeedResult, error) {
	prepared := make([]models.Account, 0, len(list))
	for _, sa := range list {
		role, ok := models.ParseRole(sa.Role)
		if !ok || sa.Username == "" || sa.Email == "" {
			return SeedResult{}, fmt.Errorf("%w: seed account %q", common.ErrorValidation, sa.Username)
		}

		hash, err := s.hasher.Hash(sa.Password)
		if err != nil {
			return SeedResult{}, fmt.Errorf("seed account %q: %w", sa.Username, err)
		}

		a := models.Account{
			Username:     sa.Username,
			PasswordHash: hash,
			Role:         role,
			Name:         sa.Name,
			Email:        sa.Email,
			Matricule:    sa.Matricule,
			Level:        sa.Level,
		}
		a.ClearProfile()
		prepared = append(prepared, a)
	}

	var res SeedResult
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		for i := range prepared {
			a := &prepared[i]

			existing, err := repo.GetByUsername(ctx, a.Username)
			switch {
			case errors.Is(err, common.ErrorNotFound):
				if _, err := repo.Create(ctx, a); err != nil {
					return fmt.Errorf("create %q: %w", a.Username, err)
				}
				res.Created++
			case err != nil:
				return fmt.Errorf("lookup %q: %w", a.Username, err)
			default:
				existing.PasswordHash = a.PasswordHash
				existing.Name = a.Name
				existing.Email = a.Email
				existing.Matricule = a.Matricule
				existing.Level = a.Level
				existing.ClearProfile()
				if err := repo.Update(ctx, existing); err != nil {
					return fmt.Errorf("update %q: %w", a.Username, err)
				}
				res.Updated++
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "seeding failed", "error", err)
		return SeedResult{}, fmt.Errorf("seed: %w", err)
	}

	s.log.Info(ctx, "accounts seeded", "created", res.Created, "updated", res.Updated)

	return res, nil
}
