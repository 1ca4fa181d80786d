package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies it.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Reset(ctx context.Context) error
	Whoami(ctx context.Context) error
	Logout(ctx context.Context) error
	Users(ctx context.Context) error
	Stats(ctx context.Context) error
	ChangeRole(ctx context.Context, args []string) error
	Backup(ctx context.Context) error
}

// runREPL reads commands line by line from reader, dispatches them to a and
// writes its own output to out until input ends, the context is cancelled or the user types exit/quit.
//
//	Guest:
//	  help, register, login, reset, exit | quit
//
//	Logged in:
//	  help, whoami, logout, exit | quit
//	  users, stats, role <username> <role>, backup   (admins)
//
// Command handlers report their own failures; their errors are dropped here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(out, "unidesk %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(out, helpText(a))

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		case "whoami", "logout", "users", "stats", "role", "backup":
			if !a.isLoggedIn() {
				fmt.Fprintln(out, "Please log in first")
				continue
			}
			switch cmd {
			case "whoami":
				_ = a.Whoami(ctx)
			case "logout":
				_ = a.Logout(ctx)
			case "users":
				_ = a.Users(ctx)
			case "stats":
				_ = a.Stats(ctx)
			case "role":
				_ = a.ChangeRole(ctx, args)
			case "backup":
				_ = a.Backup(ctx)
			}

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}

func helpText(a execIface) string {
	switch {
	case a.isAdmin():
		return "Available commands: whoami, users, stats, role <username> <role>, backup, logout, exit"
	case a.isLoggedIn():
		return "Available commands: whoami, logout, exit"
	default:
		return "Available commands: register, login, reset, exit"
	}
}
