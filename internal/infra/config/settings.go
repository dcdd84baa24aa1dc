package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is the name of the optional settings file inside the lecnote home
const SettingsFileName = "lecnote.yaml"

// RawSettings represents the structure of lecnote.yaml.
// Every field is a pointer so an absent key keeps the default.
type RawSettings struct {
	// Note store
	Store    *string `yaml:"store"`
	DBPath   *string `yaml:"db_path"`
	DataDir  *string `yaml:"data_dir"`
	S3Bucket *string `yaml:"s3_bucket"`
	S3Prefix *string `yaml:"s3_prefix"`
	S3Region *string `yaml:"s3_region"`

	// Pipeline
	TempDir       *string `yaml:"temp_dir"`
	FFmpegBin     *string `yaml:"ffmpeg_bin"`
	FFmpegTimeout *string `yaml:"ffmpeg_timeout"`
	MaxUploadMB   *int    `yaml:"max_upload_mb"`

	// Note generation
	NotegenProvider *string `yaml:"notegen_provider"`
	ClaudeBin       *string `yaml:"claude_bin"`
	ClaudeTimeout   *string `yaml:"claude_timeout"`
	OpenAIBaseURL   *string `yaml:"openai_base_url"`

	// Remote call retries
	RetryAttempts *int    `yaml:"retry_attempts"`
	RetryBase     *string `yaml:"retry_base"`
	RetryMax      *string `yaml:"retry_max"`

	// Logging
	LogLevel *string `yaml:"log_level"`
}

// Home returns the lecnote home directory: $LECNOTE_HOME, else ~/.lecnote
func Home() string {
	if v := os.Getenv("LECNOTE_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lecnote"
	}
	return filepath.Join(home, ".lecnote")
}

// LoadSettings reads the settings file.
// An explicit path must exist; otherwise <home>/lecnote.yaml is optional and
// a missing file yields empty settings with source "default".
func LoadSettings(explicitPath string) (*RawSettings, string, error) {
	settings := &RawSettings{}

	path := explicitPath
	if path == "" {
		path = filepath.Join(Home(), SettingsFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicitPath == "" && errors.Is(err, os.ErrNotExist) {
			return settings, "default", nil
		}
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return settings, path, nil
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(s *RawSettings, home string) {
	setStr := func(p **string, v string) {
		if *p == nil {
			*p = &v
		}
	}
	setInt := func(p **int, v int) {
		if *p == nil {
			*p = &v
		}
	}

	setStr(&s.Store, StoreSQLite)
	setStr(&s.DBPath, filepath.Join(home, "lecnote.db"))
	setStr(&s.DataDir, filepath.Join(home, "notes"))
	setStr(&s.S3Bucket, "")
	setStr(&s.S3Prefix, "lecnote")
	setStr(&s.S3Region, "")

	setStr(&s.TempDir, filepath.Join(os.TempDir(), "lecnote-temp"))
	setStr(&s.FFmpegBin, "ffmpeg")
	setStr(&s.FFmpegTimeout, "0") // no timeout unless configured
	setInt(&s.MaxUploadMB, 200)

	setStr(&s.NotegenProvider, "")
	setStr(&s.ClaudeBin, "claude")
	setStr(&s.ClaudeTimeout, "10m")
	setStr(&s.OpenAIBaseURL, "")

	setInt(&s.RetryAttempts, 3)
	setStr(&s.RetryBase, "1s")
	setStr(&s.RetryMax, "8s")

	setStr(&s.LogLevel, "warn")
}

// DefaultSettings returns lecnote.yaml content holding every default
func DefaultSettings() []byte {
	s := &RawSettings{}
	applyDefaults(s, Home())
	data, _ := yaml.Marshal(s)
	return data
}
