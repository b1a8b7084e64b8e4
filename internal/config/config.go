package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// Project Configuration:
// - PROJECT_MODE: project file mode ("", true, write, read, reload, resume, retranslate, reparse, preview)
// - PROJECT_AUTOSAVE: periodically save the project file during a run (default: true)
// - PROJECT_AUTOSAVE_INTERVAL: autosave interval (default: 20s)
// - PROJECT_BACKUP_CRON: optional cron expression for scheduled backup writes (default: disabled)
// - PROJECT_WRITE_BACKUP: write a backup copy when a project file is loaded (default: false)
// - PROJECT_ENCODING: character encoding for project files (default: utf-8)
//
// Translate Configuration:
// - TARGET_LANGUAGE: translation target language tag (default: en)
// - INCLUDE_ORIGINAL: include original text in translated subtitles (default: false)
// - STOP_ON_ERROR: stop the run on the first translation failure (default: false)
//
// Batch Configuration:
// - SCENE_THRESHOLD: gap between lines that starts a new scene (default: 30s)
// - MIN_BATCH_SIZE: minimum lines per batch (default: 10)
// - MAX_BATCH_SIZE: maximum lines per batch (default: 100)
//
// Journal Configuration:
// - JOURNAL_DB_PATH: sqlite database for the run journal (default: disabled)

type Config struct {
	Project   ProjectConfig   `json:"project"`
	Translate TranslateConfig `json:"translate"`
	Batch     BatchConfig     `json:"batch"`
	Journal   JournalConfig   `json:"journal"`
}

// ProjectConfig controls the project file protocol and autosave behaviour.
type ProjectConfig struct {
	Mode             string        `json:"mode"`
	Autosave         bool          `json:"autosave"`
	AutosaveInterval time.Duration `json:"autosave_interval"`
	BackupCronExpr   string        `json:"backup_cron_expr"`
	WriteBackup      bool          `json:"write_backup"`
	Encoding         string        `json:"encoding"`
}

// TranslateConfig holds run-level translation options.
type TranslateConfig struct {
	TargetLanguage  language.Tag `json:"target_language"`
	IncludeOriginal bool         `json:"include_original"`
	StopOnError     bool         `json:"stop_on_error"`
}

// BatchConfig controls how loaded subtitles are grouped into scenes and batches.
type BatchConfig struct {
	SceneThreshold time.Duration `json:"scene_threshold"`
	MinBatchSize   int           `json:"min_batch_size"`
	MaxBatchSize   int           `json:"max_batch_size"`
}

// JournalConfig points at the optional run journal database.
type JournalConfig struct {
	Path string `json:"path"`
}

// Option is a function type for configuring Config
type Option func(*Config)

func WithMode(mode string) Option {
	return func(c *Config) { c.Project.Mode = mode }
}

func WithWriteBackup(writeBackup bool) Option {
	return func(c *Config) { c.Project.WriteBackup = writeBackup }
}

func WithTargetLanguage(tag language.Tag) Option {
	return func(c *Config) { c.Translate.TargetLanguage = tag }
}

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	// A .env file is optional
	_ = godotenv.Load()

	targetLanguage := language.English
	if raw := getEnvString("TARGET_LANGUAGE", ""); raw != "" {
		tag, err := language.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TARGET_LANGUAGE %q: %w", raw, err)
		}
		targetLanguage = tag
	}

	config := &Config{
		Project: ProjectConfig{
			Mode:             strings.ToLower(getEnvString("PROJECT_MODE", "")),
			Autosave:         getEnvBool("PROJECT_AUTOSAVE", true),
			AutosaveInterval: getEnvDuration("PROJECT_AUTOSAVE_INTERVAL", 20*time.Second),
			BackupCronExpr:   getEnvString("PROJECT_BACKUP_CRON", ""),
			WriteBackup:      getEnvBool("PROJECT_WRITE_BACKUP", false),
			Encoding:         getEnvString("PROJECT_ENCODING", "utf-8"),
		},
		Translate: TranslateConfig{
			TargetLanguage:  targetLanguage,
			IncludeOriginal: getEnvBool("INCLUDE_ORIGINAL", false),
			StopOnError:     getEnvBool("STOP_ON_ERROR", false),
		},
		Batch: BatchConfig{
			SceneThreshold: getEnvDuration("SCENE_THRESHOLD", 30*time.Second),
			MinBatchSize:   getEnvInt("MIN_BATCH_SIZE", 10),
			MaxBatchSize:   getEnvInt("MAX_BATCH_SIZE", 100),
		},
		Journal: JournalConfig{
			Path: getEnvString("JOURNAL_DB_PATH", ""),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all configuration is properly set
func (c *Config) validate() error {
	if c.Project.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave interval must be positive")
	}
	if c.Project.BackupCronExpr != "" {
		if _, err := cron.ParseStandard(c.Project.BackupCronExpr); err != nil {
			return fmt.Errorf("invalid PROJECT_BACKUP_CRON: %w", err)
		}
	}
	if _, err := c.ProjectEncoding(); err != nil {
		return fmt.Errorf("invalid PROJECT_ENCODING %q: %w", c.Project.Encoding, err)
	}
	if c.Batch.MaxBatchSize > 0 && c.Batch.MinBatchSize > c.Batch.MaxBatchSize {
		return fmt.Errorf("min batch size %d exceeds max batch size %d", c.Batch.MinBatchSize, c.Batch.MaxBatchSize)
	}
	return nil
}

// ProjectEncoding resolves the configured character encoding name.
func (c *Config) ProjectEncoding() (encoding.Encoding, error) {
	name := strings.TrimSpace(c.Project.Encoding)
	if name == "" {
		name = "utf-8"
	}
	return htmlindex.Get(name)
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration value from environment variables with default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
