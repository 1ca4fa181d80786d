package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/unidesk/internal/flagx"
)

// parseFlags overlays command-line flags.
//
//	-d string   PostgreSQL DSN, or "memory"
//	-s string   session token secret
//	-t int      session timeout, minutes
//	-m int      failed logins allowed per window (0 disables)
//	-w int      login attempt window, seconds
//	-q int      minimum password strength score (0-4)
//	-l string   log level
//	-f string   log format (text|json)
//	-seed string  seed accounts file
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 base endpoint
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-d", "-s", "-t", "-m", "-w", "-q", "-l", "-f", "-seed", "-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session token secret")

	sessionTimeout := fs.Int("t", int(config.SessionTimeout.Minutes()), "session timeout (in minutes)")
	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "failed logins allowed per window")
	attemptWindow := fs.Int("w", int(config.LoginAttemptWindow.Seconds()), "login attempt window (in seconds)")
	fs.IntVar(&config.PasswordMinScore, "q", config.PasswordMinScore, "minimum password strength score")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")
	fs.StringVar(&config.SeedFile, "seed", config.SeedFile, "seed accounts file")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// durations set by earlier layers keep their precision unless overridden
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTimeout = time.Duration(*sessionTimeout) * time.Minute
		case "w":
			config.LoginAttemptWindow = time.Duration(*attemptWindow) * time.Second
		}
	})
}
