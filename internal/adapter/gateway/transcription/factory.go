// Package transcription provides speech-to-text gateways
package transcription

import (
	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/pkg/retry"
)

// Config selects and configures a transcription gateway
type Config struct {
	OpenAIAPIKey string
	BaseURL      string
	Model        string
	Retry        retry.Policy
	Logger       app.Logger
}

// NewGateway returns the Whisper gateway when an OpenAI key is configured and the
// stub otherwise
func NewGateway(cfg Config) output.TranscriptionGateway {
	logger := app.LoggerOr(cfg.Logger)
	if cfg.OpenAIAPIKey == "" {
		logger.Info("OPENAI_API_KEY not set, using stub transcription")
		return NewStubGateway()
	}

	policy := cfg.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy
	}
	return NewWhisperGateway(cfg.OpenAIAPIKey,
		WithBaseURL(cfg.BaseURL),
		WithModel(cfg.Model),
		WithRetry(policy),
		WithLogger(logger),
	)
}
