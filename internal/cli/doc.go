// Package cli provides the interactive unidesk terminal front end.
//
// It runs a REPL over the account service: guests can register, log in and
// reset a forgotten password; a logged-in user holds a signed session token
// that is re-checked before every command touching the directory. Admins get
// the directory listing, role statistics, role changes and backups.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends.
package cli
