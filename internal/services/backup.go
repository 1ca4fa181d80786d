package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/dmitrijs2005/unidesk/internal/logging"
	"github.com/dmitrijs2005/unidesk/internal/models"
	"github.com/google/uuid"
)

// Uploader stores an object under key.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

// Snapshot is the JSON document written by a backup.
type Snapshot struct {
	TakenAt  time.Time         `json:"taken_at"`
	TakenBy  string            `json:"taken_by"`
	Accounts []SnapshotAccount `json:"accounts"`
}

type SnapshotAccount struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password"`
	Role         string    `json:"role"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	Matricule    string    `json:"matricule,omitempty"`
	Level        string    `json:"level,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// BackupResult describes an uploaded snapshot.
type BackupResult struct {
	Key      string
	Accounts int
}

type BackupService struct {
	accounts *AccountService
	uploader Uploader
	now      func() time.Time
	log      logging.Logger
}

func NewBackupService(accounts *AccountService, uploader Uploader, log logging.Logger) *BackupService {
	return &BackupService{
		accounts: accounts,
		uploader: uploader,
		now:      time.Now,
		log:      log.With("component", "backup"),
	}
}

// BackupKey returns a fresh object key under backups/YYYY/M/D/.
func BackupKey(t time.Time) string {
	return fmt.Sprintf("backups/%d/%d/%d/%v.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

// Backup uploads a snapshot of the whole directory. Admins only.
func (b *BackupService) Backup(ctx context.Context, actor *models.Account) (*BackupResult, error) {
	list, err := b.accounts.ListAccounts(ctx, actor)
	if err != nil {
		return nil, err
	}

	now := b.now().UTC()
	snap := Snapshot{
		TakenAt:  now,
		TakenBy:  actor.Username,
		Accounts: make([]SnapshotAccount, 0, len(list)),
	}
	for _, a := range list {
		snap.Accounts = append(snap.Accounts, SnapshotAccount{
			ID:           a.ID,
			Username:     a.Username,
			PasswordHash: a.PasswordHash,
			Role:         a.Role.String(),
			Name:         a.Name,
			Email:        a.Email,
			Matricule:    a.Matricule,
			Level:        a.Level,
			CreatedAt:    a.CreatedAt,
		})
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("backup: %w", common.ErrorInternal)
	}

	key := BackupKey(now)
	if err := b.uploader.Upload(ctx, key, body, "application/json"); err != nil {
		b.log.Error(ctx, "backup upload failed", "key", key, "error", err)
		return nil, fmt.Errorf("backup: %w", common.ErrorInternal)
	}

	b.log.Info(ctx, "backup uploaded", "key", key, "accounts", len(list), "actor", actor.Username)

	return &BackupResult{Key: key, Accounts: len(list)}, nil
}
