// Package services holds the account rules: login, self-service
// registration, password reset, the admin predicate and the administrative
// operations built on it.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/unidesk/internal/auth"
	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/dmitrijs2005/unidesk/internal/config"
	"github.com/dmitrijs2005/unidesk/internal/cryptox"
	"github.com/dmitrijs2005/unidesk/internal/dbx"
	"github.com/dmitrijs2005/unidesk/internal/logging"
	"github.com/dmitrijs2005/unidesk/internal/models"
	"github.com/dmitrijs2005/unidesk/internal/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/nbutton23/zxcvbn-go"
)

// RegisterRequest is the self-service registration form.
type RegisterRequest struct {
	Username  string `validate:"required"`
	Password  string `validate:"required"`
	Name      string
	Email     string `validate:"required,email"`
	Matricule string
	Level     string
	Role      string
}

// AccountService implements the account rules over the account directory.
// A nil db is allowed with an in-memory repository manager; transactions then
// run directly against the shared directory.
type AccountService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	hasher         *cryptox.PasswordHasher
	guard          *loginGuard
	validate       *validator.Validate
	minScore       int
	secretKey      []byte
	sessionTimeout time.Duration
	dummyHash      string
	log            logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *AccountService {
	h := cryptox.NewPasswordHasher()
	return &AccountService{
		db:             db,
		repomanager:    m,
		hasher:         h,
		guard:          newLoginGuard(cfg.MaxLoginAttempts, cfg.LoginAttemptWindow),
		validate:       validator.New(),
		minScore:       cfg.PasswordMinScore,
		secretKey:      []byte(cfg.SecretKey),
		sessionTimeout: cfg.SessionTimeout,
		dummyHash:      fmt.Sprintf("%d:AAAAAAAAAAAAAAAAAAAAAA==:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=", h.Iterations),
		log:            log.With("component", "accounts"),
	}
}

// Login returns the account when username exists and password matches its
// stored encoding. Unknown usernames, wrong passwords and corrupt stored
// encodings are indistinguishable to the caller: all yield ErrorUnauthorized.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.Account, error) {
	if username == "" || password == "" {
		return nil, common.ErrorValidation
	}

	if !s.guard.take(username) {
		s.log.Warn(ctx, "login throttled", "username", username)
		return nil, common.ErrorTooManyAttempts
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// same work as a real check
			s.hasher.Verify(password, s.dummyHash)
			s.log.Info(ctx, "login failed", "username", username)
			return nil, common.ErrorUnauthorized
		}
		s.log.Error(ctx, "login lookup failed", "username", username, "error", err)
		return nil, fmt.Errorf("login: %w", common.ErrorInternal)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.log.Info(ctx, "login failed", "username", username)
		return nil, common.ErrorUnauthorized
	}

	s.guard.reset(username)
	s.log.Info(ctx, "login succeeded", "username", username, "role", account.Role)

	return account, nil
}

// Register creates a STUDENT or TEACHER account. Checks run in order: role,
// required fields, password strength, username and email availability.
// Nothing is stored unless every check passes.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	role, ok := models.ParseRole(req.Role)
	if !ok || !role.IsSelfService() {
		s.log.Warn(ctx, "registration with disallowed role", "username", req.Username, "role", req.Role)
		return nil, common.ErrorRoleNotAllowed
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	if err := s.checkStrength(req.Password, req.Username, req.Email, req.Name); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.log.Error(ctx, "hashing failed", "error", err)
		return nil, fmt.Errorf("register: %w: %w", common.ErrorInternal, err)
	}

	account := &models.Account{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
		Name:         req.Name,
		Email:        req.Email,
		Matricule:    req.Matricule,
		Level:        req.Level,
	}
	account.ClearProfile()

	err = s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		taken, err := repo.ExistsByUsername(ctx, account.Username)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrorAlreadyExists
		}

		taken, err = repo.ExistsByEmail(ctx, account.Email)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrorAlreadyExists
		}

		_, err = repo.Create(ctx, account)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.log.Info(ctx, "registration rejected, account exists", "username", req.Username)
			return nil, common.ErrorAlreadyExists
		}
		s.log.Error(ctx, "registration failed", "username", req.Username, "error", err)
		return nil, fmt.Errorf("register: %w", common.ErrorInternal)
	}

	s.log.Info(ctx, "account registered", "username", account.Username, "role", account.Role)

	return account, nil
}

// ResetPassword replaces the password of username when email matches the
// stored email case-insensitively. Possession of the email address string is
// the only proof of identity.
func (s *AccountService) ResetPassword(ctx context.Context, username, email, newPassword string) error {
	if username == "" || email == "" || newPassword == "" {
		return common.ErrorValidation
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "password reset rejected", "username", username)
			return common.ErrorUnauthorized
		}
		s.log.Error(ctx, "password reset lookup failed", "username", username, "error", err)
		return fmt.Errorf("reset password: %w", common.ErrorInternal)
	}

	if !strings.EqualFold(account.Email, email) {
		s.log.Info(ctx, "password reset rejected", "username", username)
		return common.ErrorUnauthorized
	}

	if err := s.checkStrength(newPassword, account.Username, account.Email, account.Name); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.log.Error(ctx, "hashing failed", "error", err)
		return fmt.Errorf("reset password: %w: %w", common.ErrorInternal, err)
	}
	account.PasswordHash = hash

	if err := repo.Update(ctx, account); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		s.log.Error(ctx, "password reset update failed", "username", username, "error", err)
		return fmt.Errorf("reset password: %w", common.ErrorInternal)
	}

	s.guard.reset(username)
	s.log.Info(ctx, "password reset", "username", username)

	return nil
}

// IsAdmin reports whether account holds ADMIN or SUPERADMIN, in any casing.
func (s *AccountService) IsAdmin(account *models.Account) bool {
	return IsAdmin(account)
}

// IsAdmin is the single privileged-role predicate.
func IsAdmin(account *models.Account) bool {
	return account != nil && account.Role.IsPrivileged()
}

// ChangeRole sets the role of username. Actors must be admins; granting a
// privileged role or touching a privileged account requires SUPERADMIN.
func (s *AccountService) ChangeRole(ctx context.Context, actor *models.Account, username, role string) (*models.Account, error) {
	if !IsAdmin(actor) {
		return nil, common.ErrorForbidden
	}

	newRole, ok := models.ParseRole(role)
	if !ok || username == "" {
		return nil, common.ErrorValidation
	}

	superAdmin := models.NormalizeRole(actor.Role.String()) == models.RoleSuperAdmin

	repo := s.repomanager.Accounts(s.db)
	target, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.log.Error(ctx, "role change lookup failed", "username", username, "error", err)
		return nil, fmt.Errorf("change role: %w", common.ErrorInternal)
	}

	if (newRole.IsPrivileged() || target.Role.IsPrivileged()) && !superAdmin {
		s.log.Warn(ctx, "role change denied", "actor", actor.Username, "username", username, "role", newRole)
		return nil, common.ErrorForbidden
	}

	target.Role = newRole
	target.ClearProfile()

	if err := repo.Update(ctx, target); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.log.Error(ctx, "role change failed", "username", username, "error", err)
		return nil, fmt.Errorf("change role: %w", common.ErrorInternal)
	}

	s.log.Info(ctx, "role changed", "actor", actor.Username, "username", username, "role", newRole)

	return target, nil
}

// ListAccounts returns every account ordered by id.
func (s *AccountService) ListAccounts(ctx context.Context, actor *models.Account) ([]models.Account, error) {
	if !IsAdmin(actor) {
		return nil, common.ErrorForbidden
	}

	list, err := s.repomanager.Accounts(s.db).List(ctx)
	if err != nil {
		s.log.Error(ctx, "listing accounts failed", "error", err)
		return nil, fmt.Errorf("list accounts: %w", common.ErrorInternal)
	}

	return list, nil
}

// RoleCounts returns the number of accounts per role.
func (s *AccountService) RoleCounts(ctx context.Context, actor *models.Account) (map[models.Role]int, error) {
	if !IsAdmin(actor) {
		return nil, common.ErrorForbidden
	}

	counts, err := s.repomanager.Accounts(s.db).CountByRole(ctx)
	if err != nil {
		s.log.Error(ctx, "counting accounts failed", "error", err)
		return nil, fmt.Errorf("role counts: %w", common.ErrorInternal)
	}

	return counts, nil
}

// StartSession issues a session token for a logged-in account.
func (s *AccountService) StartSession(account *models.Account) (string, error) {
	token, err := auth.IssueToken(account, s.secretKey, s.sessionTimeout)
	if err != nil {
		return "", fmt.Errorf("start session: %w", common.ErrorInternal)
	}
	return token, nil
}

// Authenticate validates token and reloads its account, so role changes made
// since login take effect. Expired tokens yield common.ErrTokenExpired;
// tokens for vanished accounts yield common.ErrInvalidToken.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	session, err := auth.ParseToken(token, s.secretKey)
	if err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByUsername(ctx, session.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		s.log.Error(ctx, "session lookup failed", "username", session.Username, "error", err)
		return nil, fmt.Errorf("authenticate: %w", common.ErrorInternal)
	}

	return account, nil
}

func (s *AccountService) checkStrength(password string, inputs ...string) error {
	if s.minScore <= 0 {
		return nil
	}
	if zxcvbn.PasswordStrength(password, inputs).Score < s.minScore {
		return common.ErrorWeakPassword
	}
	return nil
}

func (s *AccountService) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, s.db, nil, fn)
}
