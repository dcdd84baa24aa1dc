// Package notegen provides gateways that turn transcripts into block documents
package notegen

import (
	"fmt"
	"time"

	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/pkg/retry"
)

// Supported providers
const (
	ProviderAuto       = ""
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderClaudeCLI  = "claude-cli"
	ProviderClassifier = "classifier"
)

// Providers lists the accepted provider names
func Providers() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderClaudeCLI, ProviderClassifier}
}

// Config selects and configures a note generation gateway
type Config struct {
	Provider        string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	ClaudeBin       string
	ClaudeTimeout   time.Duration
	Retry           retry.Policy
	Logger          app.Logger
}

// NewGateway creates the gateway named by cfg.Provider.
// Remote providers without credentials degrade to the classifier.
func NewGateway(cfg Config) (output.NoteGenerationGateway, error) {
	logger := app.LoggerOr(cfg.Logger)
	policy := cfg.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy
	}
	remote := []Option{WithRetry(policy), WithLogger(logger)}

	switch cfg.Provider {
	case ProviderAuto:
		switch {
		case cfg.OpenAIAPIKey != "":
			return NewOpenAIChatGateway(cfg.OpenAIAPIKey, append(remote, WithBaseURL(cfg.OpenAIBaseURL))...), nil
		case cfg.AnthropicAPIKey != "":
			return NewAnthropicGateway(cfg.AnthropicAPIKey, remote...), nil
		}
		return NewClassifierGateway()

	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("OPENAI_API_KEY not set for provider openai, falling back to classifier")
			return NewClassifierGateway()
		}
		return NewOpenAIChatGateway(cfg.OpenAIAPIKey, append(remote, WithBaseURL(cfg.OpenAIBaseURL))...), nil

	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			logger.Warn("ANTHROPIC_API_KEY not set for provider anthropic, falling back to classifier")
			return NewClassifierGateway()
		}
		return NewAnthropicGateway(cfg.AnthropicAPIKey, remote...), nil

	case ProviderClaudeCLI:
		return NewClaudeCLIGateway(cfg.ClaudeBin, cfg.ClaudeTimeout, remote...), nil

	case ProviderClassifier:
		return NewClassifierGateway()

	default:
		return nil, fmt.Errorf("unknown notes provider: %s (supported: %v)", cfg.Provider, Providers())
	}
}
