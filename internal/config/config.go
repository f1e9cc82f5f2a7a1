package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// Storage backends for the character blob.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	// StorageBackend selects where the character blob lives: sqlite, file, redis or memory.
	StorageBackend string `json:"storage_backend" env:"CHARSHEET_STORAGE"`

	// StorageKey is the single slot the whole character collection is written to.
	StorageKey string `json:"storage_key" env:"CHARSHEET_STORAGE_KEY"`

	// FileDir holds one <key>.json file per slot for the file backend.
	// Relative paths are resolved against the base directory.
	FileDir string `json:"file_dir,omitempty" env:"CHARSHEET_FILE_DIR"`

	RedisAddr     string `json:"redis_addr,omitempty" env:"CHARSHEET_REDIS_ADDR"`
	RedisPassword string `json:"redis_password,omitempty" env:"CHARSHEET_REDIS_PASSWORD"`
	RedisDB       int    `json:"redis_db,omitempty" env:"CHARSHEET_REDIS_DB"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"CHARSHEET_DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"CHARSHEET_DB_MAX_IDLE_CONNS"`

	// MaxImageBytes caps the size of an uploaded picture before encoding.
	MaxImageBytes int64 `json:"max_image_bytes" env:"CHARSHEET_MAX_IMAGE_BYTES"`

	LogLevel    string `json:"log_level" env:"CHARSHEET_LOG_LEVEL"`
	Environment string `json:"environment" env:"CHARSHEET_ENV"`

	// Bind and Port are the web UI listen address.
	Bind string `json:"bind" env:"CHARSHEET_BIND"`
	Port int    `json:"port" env:"CHARSHEET_PORT"`

	// AllowedPaths is an allowlist of directories for import/export.
	// Paths outside <base>/exports require either being in this list or AllowUnsafePaths=true.
	AllowedPaths []string `json:"allowed_paths,omitempty" env:"CHARSHEET_ALLOWED_PATHS" envSeparator:","`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty" env:"CHARSHEET_ALLOW_UNSAFE_PATHS"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"CHARSHEET_DISABLED_TOOLS" envSeparator:","`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		StorageBackend: BackendSQLite,
		StorageKey:     "characters",
		FileDir:        "slots",
		MaxImageBytes:  5 << 20,
		LogLevel:       "info",
		Environment:    "development",
		Bind:           "127.0.0.1",
		Port:           8340,
	}
}

// Load loads configuration from baseDir/config.json, then applies baseDir/.env
// and CHARSHEET_* environment variables on top.
// Returns default config if neither exists.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := LoadDotEnv(filepath.Join(baseDir, ".env")); err != nil {
		return nil, err
	}
	overlay, err := FromEnv()
	if err != nil {
		return nil, err
	}
	return Merge(cfg, overlay), nil
}

// ResolveFileDir returns the file backend directory, resolved against baseDir if relative.
func (c *Config) ResolveFileDir(baseDir string) string {
	if c.FileDir == "" || filepath.IsAbs(c.FileDir) {
		return c.FileDir
	}
	return filepath.Join(baseDir, c.FileDir)
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.StorageBackend = pickString(overlay.StorageBackend, base.StorageBackend)
	result.StorageKey = pickString(overlay.StorageKey, base.StorageKey)
	result.FileDir = pickString(overlay.FileDir, base.FileDir)
	result.RedisAddr = pickString(overlay.RedisAddr, base.RedisAddr)
	result.RedisPassword = pickString(overlay.RedisPassword, base.RedisPassword)
	result.LogLevel = pickString(overlay.LogLevel, base.LogLevel)
	result.Environment = pickString(overlay.Environment, base.Environment)
	result.Bind = pickString(overlay.Bind, base.Bind)

	result.RedisDB = pickInt(overlay.RedisDB, base.RedisDB)
	result.DBMaxOpenConns = pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)
	result.Port = pickInt(overlay.Port, base.Port)

	result.MaxImageBytes = overlay.MaxImageBytes
	if result.MaxImageBytes == 0 {
		result.MaxImageBytes = base.MaxImageBytes
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
