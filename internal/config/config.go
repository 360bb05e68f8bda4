// Package config loads runtime settings from the environment, reading a
// .env file first when one exists in the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDB              = "KAKOMON_DB"
	EnvUser            = "KAKOMON_USER"
	EnvAddr            = "KAKOMON_ADDR"
	EnvJWTSecret       = "KAKOMON_JWT_SECRET"
	EnvShutdownTimeout = "KAKOMON_SHUTDOWN_TIMEOUT"
	EnvLogMode         = "KAKOMON_LOG_MODE"
	EnvLogFile         = "KAKOMON_LOG_FILE"
	EnvLogSalt         = "KAKOMON_LOG_SALT"
)

// ErrMissingSecret is returned by Server.Validate when no JWT secret is set.
var ErrMissingSecret = errors.New("config: " + EnvJWTSecret + " is required")

// Server holds the settings for `kakomon serve`.
type Server struct {
	Addr            string
	JWTSecret       []byte
	ShutdownTimeout time.Duration
	LogMode         string
	LogSalt         string
}

// Logging holds the settings shared by every command.
type Logging struct {
	Mode string
	File string
	Salt string
}

// LoadDotEnv reads .env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// LoadServer reads server settings. Call LoadDotEnv first to honour .env.
func LoadServer() (*Server, error) {
	timeout, err := getDuration(EnvShutdownTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg := &Server{
		Addr:            getenvDefault(EnvAddr, ":8080"),
		JWTSecret:       []byte(os.Getenv(EnvJWTSecret)),
		ShutdownTimeout: timeout,
		LogMode:         getenvDefault(EnvLogMode, "production"),
		LogSalt:         os.Getenv(EnvLogSalt),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields.
func (c *Server) Validate() error {
	if len(c.JWTSecret) == 0 {
		return ErrMissingSecret
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: %s must be positive", EnvShutdownTimeout)
	}
	return nil
}

// LoadLogging reads log settings for local commands. The TUI writes to a
// file so the terminal stays clean; an empty File means discard.
func LoadLogging() Logging {
	return Logging{
		Mode: getenvDefault(EnvLogMode, "development"),
		File: os.Getenv(EnvLogFile),
		Salt: os.Getenv(EnvLogSalt),
	}
}

// ResolveUser picks the local user identity: flag value, then KAKOMON_USER,
// then the OS account name.
func ResolveUser(flag string) (string, error) {
	if v := strings.TrimSpace(flag); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvUser)); v != "" {
		return v, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve user: %w", err)
	}
	if u.Username == "" {
		return "", errors.New("resolve user: empty account name")
	}
	return u.Username, nil
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getDuration(k string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid duration: %w", k, v, err)
	}
	return d, nil
}
