package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

// parseEnv overlays UNIDESK_* variables. UNIDESK_DATABASE_DSN maps to the
// "database_dsn" key, and so on for every JSON key.
func parseEnv(config *Config) {
	if err := loadEnv(config); err != nil {
		panic(err)
	}
}

func loadEnv(config *Config) error {
	k := koanf.New(".")

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: common.EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, common.EnvPrefix)), value
		},
	}), nil)
	if err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	strs := map[string]*string{
		"database_dsn":     &config.DatabaseDSN,
		"secret_key":       &config.SecretKey,
		"log_level":        &config.LogLevel,
		"log_format":       &config.LogFormat,
		"seed_file":        &config.SeedFile,
		"s3_root_user":     &config.S3RootUser,
		"s3_root_password": &config.S3RootPassword,
		"s3_bucket":        &config.S3Bucket,
		"s3_region":        &config.S3Region,
		"s3_base_endpoint": &config.S3BaseEndpoint,
	}
	for key, dst := range strs {
		if v := k.String(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"session_timeout":      &config.SessionTimeout,
		"login_attempt_window": &config.LoginAttemptWindow,
	}
	for key, dst := range durations {
		v := k.String(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("env %s%s: %w", common.EnvPrefix, strings.ToUpper(key), err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"max_login_attempts": &config.MaxLoginAttempts,
		"password_min_score": &config.PasswordMinScore,
	}
	for key, dst := range ints {
		v := k.String(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s%s: %w", common.EnvPrefix, strings.ToUpper(key), err)
		}
		*dst = n
	}

	return nil
}
