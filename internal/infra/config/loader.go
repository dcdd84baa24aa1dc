package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/lecnote/internal/pkg/retry"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreS3     = "s3"
)

// Config is the resolved runtime configuration
type Config struct {
	Store    string // memory, sqlite, file or s3
	DBPath   string
	DataDir  string
	S3Bucket string
	S3Prefix string
	S3Region string

	TempDir       string
	FFmpegBin     string
	FFmpegTimeout time.Duration
	MaxUploadMB   int

	NotegenProvider string // "" selects automatically
	ClaudeBin       string
	ClaudeTimeout   time.Duration
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string

	RetryAttempts int
	RetryBase     time.Duration
	RetryMax      time.Duration

	LogLevel string

	Source string // "default" or the settings file path
}

// Load resolves configuration: defaults, then the settings file, then environment variables.
func Load(explicitPath string) (*Config, error) {
	settings, source, err := LoadSettings(explicitPath)
	if err != nil {
		return nil, err
	}
	applyDefaults(settings, Home())

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	toDur := func(s string, def time.Duration) time.Duration {
		if s == "" {
			return def
		}
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
		if n, err := strconv.Atoi(s); err == nil {
			return time.Duration(n) * time.Second
		}
		return def
	}
	toInt := func(s string, def int) int {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
		return def
	}

	cfg := &Config{
		Store:    strings.ToLower(get("LECNOTE_STORE", *settings.Store)),
		DBPath:   get("LECNOTE_DB_PATH", *settings.DBPath),
		DataDir:  get("LECNOTE_DATA_DIR", *settings.DataDir),
		S3Bucket: get("LECNOTE_S3_BUCKET", *settings.S3Bucket),
		S3Prefix: get("LECNOTE_S3_PREFIX", *settings.S3Prefix),
		S3Region: get("LECNOTE_S3_REGION", *settings.S3Region),

		TempDir:       get("LECNOTE_TEMP_DIR", *settings.TempDir),
		FFmpegBin:     get("LECNOTE_FFMPEG_BIN", *settings.FFmpegBin),
		FFmpegTimeout: toDur(get("LECNOTE_FFMPEG_TIMEOUT", *settings.FFmpegTimeout), 0),
		MaxUploadMB:   toInt(get("LECNOTE_MAX_UPLOAD_MB", ""), *settings.MaxUploadMB),

		NotegenProvider: get("LECNOTE_NOTEGEN_PROVIDER", *settings.NotegenProvider),
		ClaudeBin:       get("LECNOTE_CLAUDE_BIN", *settings.ClaudeBin),
		ClaudeTimeout:   toDur(get("LECNOTE_CLAUDE_TIMEOUT", *settings.ClaudeTimeout), 10*time.Minute),
		OpenAIAPIKey:    get("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   get("OPENAI_BASE_URL", *settings.OpenAIBaseURL),
		AnthropicAPIKey: get("ANTHROPIC_API_KEY", ""),

		RetryAttempts: toInt(get("LECNOTE_RETRY_ATTEMPTS", ""), *settings.RetryAttempts),
		RetryBase:     toDur(get("LECNOTE_RETRY_BASE", *settings.RetryBase), time.Second),
		RetryMax:      toDur(*settings.RetryMax, 8*time.Second),

		LogLevel: get("LECNOTE_LOG_LEVEL", *settings.LogLevel),

		Source: source,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the container cannot build
func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreSQLite, StoreFile, StoreS3:
	default:
		errs = append(errs, fmt.Errorf("unknown store type: %q", c.Store))
	}
	if c.Store == StoreS3 && c.S3Bucket == "" {
		errs = append(errs, errors.New("s3 store requires a bucket (LECNOTE_S3_BUCKET)"))
	}
	if c.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry attempts must be positive, got %d", c.RetryAttempts))
	}
	if c.MaxUploadMB < 1 {
		errs = append(errs, fmt.Errorf("max upload size must be positive, got %d MB", c.MaxUploadMB))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// RetryPolicy returns the backoff policy for remote gateways
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.RetryAttempts,
		BaseDelay:   c.RetryBase,
		MaxDelay:    c.RetryMax,
	}
}

// MaxUploadBytes converts MaxUploadMB to bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
