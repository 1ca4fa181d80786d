package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/dmitrijs2005/unidesk/internal/models"
	"github.com/dmitrijs2005/unidesk/internal/services"
)

// readNewPassword asks for a password twice. The caller wipes the result.
func (a *App) readNewPassword() ([]byte, error) {
	pw, err := getPassword("Enter password", a.out)
	if err != nil {
		return nil, err
	}
	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		common.WipeByteArray(pw)
		fmt.Fprintln(a.out, "passwords do not match")
		return nil, common.ErrorValidation
	}
	return pw, nil
}

// Register walks a guest through self-service registration. Matricule and
// level are only asked of students.
func (a *App) Register(ctx context.Context) error {
	var req services.RegisterRequest
	var err error

	if req.Username, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
		return err
	}

	password, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	if req.Name, err = getSimpleText(a.reader, "Enter full name", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if req.Role, err = getSimpleText(a.reader, "Enter role (student/teacher)", a.out); err != nil {
		return err
	}

	if r, ok := models.ParseRole(req.Role); ok && r == models.RoleStudent {
		if req.Matricule, err = getSimpleText(a.reader, "Enter matricule", a.out); err != nil {
			return err
		}
		if req.Level, err = getSimpleText(a.reader, "Enter level", a.out); err != nil {
			return err
		}
	}

	acc, err := a.accounts.Register(ctx, req)
	if err != nil {
		return a.report(ctx, "register", err)
	}

	fmt.Fprintf(a.out, "Success! Account %s created as %s\n", acc.Username, acc.Role)
	return nil
}

// Login authenticates and starts a session. A failed login leaves the
// current session, if any, untouched.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acc, err := a.accounts.Login(ctx, userName, string(password))
	if err != nil {
		return a.report(ctx, "login", err)
	}

	if err := a.startSession(acc); err != nil {
		return a.report(ctx, "login", err)
	}

	name := acc.Name
	if name == "" {
		name = acc.Username
	}
	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", name, acc.Role)
	return nil
}

// Reset replaces a forgotten password after matching username and email.
func (a *App) Reset(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.accounts.ResetPassword(ctx, userName, email, string(password)); err != nil {
		return a.report(ctx, "reset", err)
	}

	fmt.Fprintln(a.out, "Password updated")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.endSession()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	acc, err := a.currentAccount(ctx)
	if err != nil {
		return a.report(ctx, "whoami", err)
	}

	fmt.Fprintf(a.out, "Username:  %s\n", acc.Username)
	fmt.Fprintf(a.out, "Role:      %s\n", acc.Role)
	fmt.Fprintf(a.out, "Name:      %s\n", acc.Name)
	fmt.Fprintf(a.out, "Email:     %s\n", acc.Email)
	if acc.Role.CarriesProfile() {
		fmt.Fprintf(a.out, "Matricule: %s\n", acc.Matricule)
		fmt.Fprintf(a.out, "Level:     %s\n", acc.Level)
	}
	return nil
}
