package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/dmitrijs2005/unidesk/internal/config"
	"github.com/dmitrijs2005/unidesk/internal/logging"
	"github.com/dmitrijs2005/unidesk/internal/models"
	"github.com/dmitrijs2005/unidesk/internal/repositories/repomanager"
	"github.com/dmitrijs2005/unidesk/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInputs feeds prompts from texts and password prompts from passwords,
// failing the test if a prompt is asked for that was not queued.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			t.Fatalf("unexpected prompt %q", prompt)
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(prompt string, _ io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			t.Fatalf("unexpected password prompt %q", prompt)
		}
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
		assert.Empty(t, texts, "unused text inputs")
		assert.Empty(t, passwords, "unused password inputs")
	})
}

type fakeBackupper struct {
	actor *models.Account
	err   error
}

func (f *fakeBackupper) Backup(_ context.Context, actor *models.Account) (*services.BackupResult, error) {
	f.actor = actor
	if f.err != nil {
		return nil, f.err
	}
	return &services.BackupResult{Key: "backups/2026/1/2/x.json", Accounts: 5}, nil
}

func newSeededApp(t *testing.T) (*App, *services.AccountService, *bytes.Buffer, *fakeBackupper) {
	t.Helper()
	cfg := &config.Config{
		SecretKey:          "test-secret",
		SessionTimeout:     time.Minute,
		LoginAttemptWindow: time.Minute,
	}
	svc := services.NewAccountService(nil, repomanager.NewMemoryRepositoryManager(), cfg, logging.Nop{})
	_, err := svc.Seed(context.Background(), services.DefaultSeedAccounts())
	require.NoError(t, err)

	var out bytes.Buffer
	b := &fakeBackupper{}
	return NewApp(svc, b, strings.NewReader(""), &out, logging.Nop{}), svc, &out, b
}

func TestApp_AdminSession(t *testing.T) {
	ctx := context.Background()
	a, _, out, backups := newSeededApp(t)

	stubInputs(t, []string{"admin"}, []string{"admin"})
	require.NoError(t, a.Login(ctx))
	assert.True(t, a.isLoggedIn())
	assert.True(t, a.isAdmin())
	assert.Equal(t, "(admin ADMIN) ", a.getStatus())
	assert.Contains(t, out.String(), "Welcome, Administrator (ADMIN)")

	out.Reset()
	require.NoError(t, a.Users(ctx))
	for _, name := range []string{"admin", "superadmin", "teacher1", "teacher2", "USR001"} {
		assert.Contains(t, out.String(), name)
	}

	out.Reset()
	require.NoError(t, a.Stats(ctx))
	assert.Contains(t, out.String(), "TEACHER    2")
	assert.Contains(t, out.String(), "TOTAL      5")

	out.Reset()
	require.NoError(t, a.ChangeRole(ctx, []string{"user", "student"}))
	assert.Contains(t, out.String(), "user is now STUDENT")

	out.Reset()
	err := a.ChangeRole(ctx, []string{"teacher1", "admin"})
	assert.ErrorIs(t, err, common.ErrorForbidden)
	assert.Contains(t, out.String(), "permission denied")

	out.Reset()
	require.NoError(t, a.Backup(ctx))
	require.NotNil(t, backups.actor)
	assert.Equal(t, "admin", backups.actor.Username)
	assert.Contains(t, out.String(), "Backup uploaded to backups/2026/1/2/x.json (5 accounts)")

	require.NoError(t, a.Logout(ctx))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "", a.getStatus())
}

func TestApp_LoginWrongPassword(t *testing.T) {
	a, _, out, _ := newSeededApp(t)

	stubInputs(t, []string{"admin"}, []string{"nope"})
	err := a.Login(context.Background())
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "invalid username or password")
}

func TestApp_RegisterStudentThenLogin(t *testing.T) {
	ctx := context.Background()
	a, _, out, _ := newSeededApp(t)

	stubInputs(t,
		[]string{"alice", "Alice A", "alice@school.com", "student", "STU042", "Level 2", "alice"},
		[]string{"Secret#1", "Secret#1", "Secret#1"},
	)
	require.NoError(t, a.Register(ctx))
	assert.Contains(t, out.String(), "Account alice created as STUDENT")
	assert.False(t, a.isLoggedIn())

	require.NoError(t, a.Login(ctx))
	assert.False(t, a.isAdmin())

	out.Reset()
	require.NoError(t, a.Whoami(ctx))
	assert.Contains(t, out.String(), "STU042")
	assert.Contains(t, out.String(), "Level 2")

	out.Reset()
	err := a.Users(ctx)
	assert.ErrorIs(t, err, common.ErrorForbidden)
	assert.Contains(t, out.String(), "permission denied")
}

func TestApp_RegisterTeacherSkipsStudentFields(t *testing.T) {
	a, svc, _, _ := newSeededApp(t)

	stubInputs(t,
		[]string{"prof", "Prof P", "prof@school.com", "Teacher"},
		[]string{"pw", "pw"},
	)
	require.NoError(t, a.Register(context.Background()))

	acc, err := svc.Login(context.Background(), "prof", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, acc.Role)
	assert.Empty(t, acc.Matricule)
}

func TestApp_RegisterErrors(t *testing.T) {
	tests := []struct {
		name      string
		texts     []string
		passwords []string
		wantErr   error
		wantMsg   string
	}{
		{
			name:      "password mismatch",
			texts:     []string{"bob"},
			passwords: []string{"one", "two"},
			wantErr:   common.ErrorValidation,
			wantMsg:   "passwords do not match",
		},
		{
			name:      "admin role",
			texts:     []string{"bob", "Bob", "bob@school.com", "admin"},
			passwords: []string{"pw", "pw"},
			wantErr:   common.ErrorRoleNotAllowed,
			wantMsg:   "role not allowed",
		},
		{
			name:      "bad email",
			texts:     []string{"bob", "Bob", "not-an-email", "teacher"},
			passwords: []string{"pw", "pw"},
			wantErr:   common.ErrorValidation,
			wantMsg:   "invalid input",
		},
		{
			name:      "taken username",
			texts:     []string{"teacher1", "Bob", "bob@school.com", "teacher"},
			passwords: []string{"pw", "pw"},
			wantErr:   common.ErrorAlreadyExists,
			wantMsg:   "already taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, out, _ := newSeededApp(t)
			stubInputs(t, tt.texts, tt.passwords)

			err := a.Register(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, out.String(), tt.wantMsg)
		})
	}
}

func TestApp_Reset(t *testing.T) {
	ctx := context.Background()
	a, svc, out, _ := newSeededApp(t)

	stubInputs(t, []string{"user", "USER@school.com", "user", "wrong@school.com"}, []string{"fresh", "fresh", "x", "x"})

	require.NoError(t, a.Reset(ctx))
	assert.Contains(t, out.String(), "Password updated")
	_, err := svc.Login(ctx, "user", "fresh")
	require.NoError(t, err)

	out.Reset()
	err = a.Reset(ctx)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Contains(t, out.String(), "invalid username or password")
}

// sessionAccounts wraps a real service and fails Authenticate on demand.
type sessionAccounts struct {
	AccountService
	authErr error
}

func (s *sessionAccounts) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	return s.AccountService.Authenticate(ctx, token)
}

func TestApp_RejectedTokenEndsSession(t *testing.T) {
	for _, tc := range []struct {
		err error
		msg string
	}{
		{common.ErrTokenExpired, "session expired"},
		{fmt.Errorf("%w: bad signature", common.ErrInvalidToken), "session ended"},
	} {
		t.Run(tc.msg, func(t *testing.T) {
			ctx := context.Background()
			_, svc, out, backups := newSeededApp(t)
			accounts := &sessionAccounts{AccountService: svc}
			a := NewApp(accounts, backups, strings.NewReader(""), out, logging.Nop{})

			stubInputs(t, []string{"superadmin"}, []string{"superadmin"})
			require.NoError(t, a.Login(ctx))

			accounts.authErr = tc.err
			out.Reset()
			err := a.Backup(ctx)
			assert.ErrorIs(t, err, tc.err)
			assert.Nil(t, backups.actor)
			assert.False(t, a.isLoggedIn())
			assert.Contains(t, out.String(), tc.msg)
		})
	}
}

func TestApp_ChangeRoleUsage(t *testing.T) {
	a, _, out, _ := newSeededApp(t)
	assert.ErrorIs(t, a.ChangeRole(context.Background(), []string{"only-one"}), common.ErrorValidation)
	assert.Equal(t, "Usage: role <username> <role>\n", out.String())
}

func TestApp_RunWritesWholeSessionToOut(t *testing.T) {
	a, _, out, _ := newSeededApp(t)
	a.reader = bufio.NewReader(strings.NewReader("help\nwhoami\nnope\nexit\n"))

	a.Run(context.Background())

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "Welcome to unidesk"))
	assert.Contains(t, got, "unidesk > ")
	assert.Contains(t, got, "Available commands: register, login, reset, exit")
	assert.Contains(t, got, "Please log in first")
	assert.Contains(t, got, "Unknown command: nope")
	assert.True(t, strings.HasSuffix(got, "Bye!\n"))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{common.ErrorValidation, "invalid input"},
		{common.ErrorUnauthorized, "invalid username or password"},
		{common.ErrorTooManyAttempts, "too many failed attempts, try again later"},
		{common.ErrorForbidden, "permission denied"},
		{common.ErrorWeakPassword, "password too weak"},
		{common.ErrorAlreadyExists, "username or email already taken"},
		{common.ErrorNotFound, "account not found"},
		{fmt.Errorf("login: %w", common.ErrorInternal), "system unavailable, try later"},
		{common.ErrCryptoUnavailable, "system unavailable, try later"},
		{errors.New("anything else"), "system unavailable, try later"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessage(tt.err))
		})
	}
}
