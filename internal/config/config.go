// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the daemon configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Database DatabaseConfig
	Push     PushConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// DatabaseConfig holds SQLite storage configuration.
type DatabaseConfig struct {
	// Path to the database file (default: ~/.psst/psst.db)
	Path string
}

// PushConfig holds Web Push (VAPID) configuration. Push is disabled
// when the key pair is absent.
type PushConfig struct {
	// Subscriber is the contact URI sent to push services, e.g. mailto:ops@example.org
	Subscriber      string
	VapidPublicKey  string
	VapidPrivateKey string
}

// flagValues collects parsed command-line flags. LoadConfig takes the
// argument list explicitly so tests can inject flags without touching
// os.Args.
type flagValues struct {
	env             string
	logLevel        string
	port            string
	readTimeout     string
	writeTimeout    string
	idleTimeout     string
	dbPath          string
	pushSubscriber  string
	vapidPublicKey  string
	vapidPrivateKey string
	envFile         string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	var fv flagValues

	fs := newFlagSet(&fv)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(fv.envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(fv.env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(fv.logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(fv.port, "SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(fv.dbPath, "DATABASE_PATH", ""),
		},
		Push: PushConfig{
			Subscriber:      getConfigValue(fv.pushSubscriber, "PUSH_SUBSCRIBER", ""),
			VapidPublicKey:  getConfigValue(fv.vapidPublicKey, "VAPID_PUBLIC_KEY", ""),
			VapidPrivateKey: getConfigValue(fv.vapidPrivateKey, "VAPID_PRIVATE_KEY", ""),
		},
	}

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(fv.readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeout, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeout

	writeTimeoutStr := getConfigValue(fv.writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	writeTimeout, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeout

	idleTimeoutStr := getConfigValue(fv.idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeout, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeout

	// Expand and validate the database path.
	if err := cfg.expandDatabasePath(); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// newFlagSet binds all flags to the given value holder.
func newFlagSet(fv *flagValues) *flag.FlagSet {
	fs := flag.NewFlagSet("psstd", flag.ContinueOnError)
	fs.StringVar(&fv.env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&fv.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&fv.port, "port", "", "Server port (default: 8080)")
	fs.StringVar(&fv.readTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&fv.writeTimeout, "write-timeout", "", "HTTP write timeout (default: 15s)")
	fs.StringVar(&fv.idleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&fv.dbPath, "db-path", "", "Path to the SQLite database file")
	fs.StringVar(&fv.pushSubscriber, "push-subscriber", "", "Contact URI reported to push services")
	fs.StringVar(&fv.vapidPublicKey, "vapid-public-key", "", "VAPID public key for Web Push")
	fs.StringVar(&fv.vapidPrivateKey, "vapid-private-key", "", "VAPID private key for Web Push")
	fs.StringVar(&fv.envFile, "env-file", ".env", "Path to .env file")
	return fs
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	// A half-configured key pair is a misconfiguration; fully absent means
	// push stays disabled.
	if (c.Push.VapidPublicKey == "") != (c.Push.VapidPrivateKey == "") {
		return errors.New("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set together")
	}
	if c.Push.VapidPublicKey != "" && c.Push.Subscriber == "" {
		return errors.New("PUSH_SUBSCRIBER is required when VAPID keys are set")
	}

	return nil
}

// PushEnabled reports whether a complete VAPID key pair is configured.
func (c *Config) PushEnabled() bool {
	return c.Push.VapidPublicKey != "" && c.Push.VapidPrivateKey != ""
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDatabasePath expands ~ and makes the path absolute.
func (c *Config) expandDatabasePath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".psst", "psst.db")

	expanded, err := expandPath(c.Database.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Database.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
