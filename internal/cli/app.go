package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/dmitrijs2005/unidesk/internal/logging"
	"github.com/dmitrijs2005/unidesk/internal/models"
	"github.com/dmitrijs2005/unidesk/internal/services"
)

// AccountService is the part of services.AccountService the front end uses.
type AccountService interface {
	Login(ctx context.Context, username, password string) (*models.Account, error)
	Register(ctx context.Context, req services.RegisterRequest) (*models.Account, error)
	ResetPassword(ctx context.Context, username, email, newPassword string) error
	IsAdmin(account *models.Account) bool
	ChangeRole(ctx context.Context, actor *models.Account, username, role string) (*models.Account, error)
	ListAccounts(ctx context.Context, actor *models.Account) ([]models.Account, error)
	RoleCounts(ctx context.Context, actor *models.Account) (map[models.Role]int, error)
	StartSession(account *models.Account) (string, error)
	Authenticate(ctx context.Context, token string) (*models.Account, error)
}

type Backupper interface {
	Backup(ctx context.Context, actor *models.Account) (*services.BackupResult, error)
}

type App struct {
	accounts AccountService
	backups  Backupper
	reader   *bufio.Reader
	out      io.Writer
	log      logging.Logger

	token    string
	userName string
	role     models.Role
	admin    bool
}

func NewApp(accounts AccountService, backups Backupper, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		accounts: accounts,
		backups:  backups,
		reader:   bufio.NewReader(in),
		out:      out,
		log:      log.With("component", "cli"),
	}
}

// Run blocks in the REPL until the user exits, input ends or ctx is done.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to unidesk (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	a.endSession()
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s %s) ", a.userName, a.role)
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) isAdmin() bool {
	return a.isLoggedIn() && a.admin
}

func (a *App) startSession(acc *models.Account) error {
	token, err := a.accounts.StartSession(acc)
	if err != nil {
		return err
	}
	a.token = token
	a.remember(acc)
	return nil
}

func (a *App) remember(acc *models.Account) {
	a.userName = acc.Username
	a.role = acc.Role
	a.admin = a.accounts.IsAdmin(acc)
}

func (a *App) endSession() {
	a.token = ""
	a.userName = ""
	a.role = ""
	a.admin = false
}

// currentAccount re-validates the session token and reloads the account.
// Any failure ends the session.
func (a *App) currentAccount(ctx context.Context) (*models.Account, error) {
	if a.token == "" {
		return nil, common.ErrInvalidToken
	}
	acc, err := a.accounts.Authenticate(ctx, a.token)
	if err != nil {
		a.endSession()
		return nil, err
	}
	a.remember(acc)
	return acc, nil
}

// report prints the user-facing message for err and returns err.
func (a *App) report(ctx context.Context, op string, err error) error {
	a.log.Debug(ctx, "command failed", "command", op, "error", err)
	fmt.Fprintln(a.out, userMessage(err))
	return err
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return "invalid input"
	case errors.Is(err, common.ErrorTooManyAttempts):
		return "too many failed attempts, try again later"
	case errors.Is(err, common.ErrorUnauthorized):
		return "invalid username or password"
	case errors.Is(err, common.ErrTokenExpired):
		return "session expired, please log in again"
	case errors.Is(err, common.ErrInvalidToken):
		return "session ended, please log in again"
	case errors.Is(err, common.ErrorForbidden):
		return "permission denied"
	case errors.Is(err, common.ErrorRoleNotAllowed):
		return "role not allowed, choose student or teacher"
	case errors.Is(err, common.ErrorWeakPassword):
		return "password too weak"
	case errors.Is(err, common.ErrorAlreadyExists):
		return "username or email already taken"
	case errors.Is(err, common.ErrorNotFound):
		return "account not found"
	default:
		return "system unavailable, try later"
	}
}
