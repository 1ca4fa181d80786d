package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/unidesk/internal/flagx"
	"github.com/dmitrijs2005/unidesk/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "30m" style
// strings or integer nanoseconds.
type JsonConfig struct {
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	SessionTimeout     timex.Duration `json:"session_timeout"`
	MaxLoginAttempts   *int           `json:"max_login_attempts"`
	LoginAttemptWindow timex.Duration `json:"login_attempt_window"`
	PasswordMinScore   *int           `json:"password_min_score"`
	LogLevel           string         `json:"log_level"`
	LogFormat          string         `json:"log_format"`
	SeedFile           string         `json:"seed_file"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file given by -c/-config. Absent keys
// keep their current values. An unreadable or invalid file panics.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionTimeout.Duration != 0 {
		config.SessionTimeout = c.SessionTimeout.Duration
	}
	if c.MaxLoginAttempts != nil {
		config.MaxLoginAttempts = *c.MaxLoginAttempts
	}
	if c.LoginAttemptWindow.Duration != 0 {
		config.LoginAttemptWindow = c.LoginAttemptWindow.Duration
	}
	if c.PasswordMinScore != nil {
		config.PasswordMinScore = *c.PasswordMinScore
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.SeedFile, c.SeedFile)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
