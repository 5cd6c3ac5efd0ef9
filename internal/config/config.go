// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Category policies. They mirror catalog.CategoryPolicy without importing it.
const (
	CategoriesSeed    = "seed"
	CategoriesPersist = "persist"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Catalog CatalogConfig
	Cart    CartConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig selects and locates the key-value medium.
type StorageConfig struct {
	Backend   string // badger, sqlite or memory (default: badger)
	Path      string // directory for on-disk backends (default: ~/.storefront/data)
	Namespace string // key prefix shared by every store (default: storefront)
}

// CatalogConfig holds catalog store configuration.
type CatalogConfig struct {
	Key            string // default: catalog
	CategoryPolicy string // seed or persist (default: seed)
}

// CartConfig holds cart configuration.
type CartConfig struct {
	Key string // default: cart
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// args are the command-line arguments without the program name. Flags that
// are not configuration are left for the caller in fs.
func LoadConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	if fs == nil {
		fs = flag.NewFlagSet("storefront", flag.ContinueOnError)
	}

	// Define command-line flags.
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	backend := fs.String("storage", "", "Storage backend (badger, sqlite, memory)")
	storagePath := fs.String("storage-path", "", "Directory for on-disk storage")
	namespace := fs.String("namespace", "", "Key namespace shared by all stores")
	catalogKey := fs.String("catalog-key", "", "Storage key of the catalog snapshot")
	cartKey := fs.String("cart-key", "", "Storage key of the cart")
	categoryPolicy := fs.String("category-policy", "", "Where categories come from on load (seed, persist)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists. Variables already in the environment win.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Backend:   getConfigValue(*backend, "STORAGE_BACKEND", BackendBadger),
			Path:      getConfigValue(*storagePath, "STORAGE_PATH", ""),
			Namespace: getConfigValue(*namespace, "STORAGE_NAMESPACE", "storefront"),
		},
		Catalog: CatalogConfig{
			Key:            getConfigValue(*catalogKey, "CATALOG_KEY", "catalog"),
			CategoryPolicy: getConfigValue(*categoryPolicy, "CATEGORY_POLICY", CategoriesSeed),
		},
		Cart: CartConfig{
			Key: getConfigValue(*cartKey, "CART_KEY", "cart"),
		},
	}

	// Expand storage path.
	if err := cfg.expandStoragePath(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
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

	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage path cannot be empty for on-disk backends")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend: %s (must be badger, sqlite, or memory)", c.Storage.Backend)
	}

	if c.Catalog.Key == "" || c.Cart.Key == "" {
		return errors.New("catalog and cart keys cannot be empty")
	}
	if c.Catalog.Key == c.Cart.Key {
		return fmt.Errorf("catalog and cart share the key %q", c.Catalog.Key)
	}

	if c.Catalog.CategoryPolicy != CategoriesSeed && c.Catalog.CategoryPolicy != CategoriesPersist {
		return fmt.Errorf("invalid category policy: %s (must be seed or persist)", c.Catalog.CategoryPolicy)
	}

	return nil
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

// expandStoragePath expands ~ and makes the path absolute.
// The memory backend needs no path and keeps it empty.
func (c *Config) expandStoragePath() error {
	if c.Storage.Backend == BackendMemory {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".storefront", "data")

	expanded, err := expandPath(c.Storage.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.Path = expanded
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
