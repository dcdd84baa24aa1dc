package notegen

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/interface/external/claudecli"
	"github.com/YoshitsuguKoike/lecnote/internal/pkg/retry"
)

// PromptRunner executes a prompt against a local agent; claudecli.Runner satisfies it
type PromptRunner interface {
	Run(ctx context.Context, prompt string, extraArgs ...string) (string, error)
	Available() error
}

var _ PromptRunner = claudecli.Runner{}

// ClaudeCLIGateway implements output.NoteGenerationGateway using the local claude CLI.
// This executes `claude -p --output-format json "prompt"`.
type ClaudeCLIGateway struct {
	runner PromptRunner
	remote remoteOptions
}

var _ output.NoteGenerationGateway = (*ClaudeCLIGateway)(nil)

// NewClaudeCLIGateway creates a gateway running bin (default "claude").
// Only WithRetry and WithLogger apply to this provider.
func NewClaudeCLIGateway(bin string, timeout time.Duration, opts ...Option) *ClaudeCLIGateway {
	if timeout == 0 {
		timeout = 10 * time.Minute
	}
	return NewClaudeCLIGatewayWithRunner(claudecli.Runner{Bin: bin, Timeout: timeout}, opts...)
}

// NewClaudeCLIGatewayWithRunner creates a gateway with a custom runner (for testing)
func NewClaudeCLIGatewayWithRunner(runner PromptRunner, opts ...Option) *ClaudeCLIGateway {
	return &ClaudeCLIGateway{runner: runner, remote: newRemoteOptions("", "", opts)}
}

func (g *ClaudeCLIGateway) Generate(ctx context.Context, req output.GenerationRequest) (output.GenerationResult, error) {
	prompt := BuildPrompt(req.Transcript)
	var result string
	err := g.remote.do(ctx, g.Name(), func(ctx context.Context) error {
		out, err := g.runner.Run(ctx, prompt)
		if errors.Is(err, exec.ErrNotFound) {
			return retry.Permanent(err)
		}
		if err != nil {
			return err
		}
		result = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claude CLI execution failed: %w", err)
	}
	return DecodeResult(result), nil
}

func (g *ClaudeCLIGateway) Name() string {
	return "claude-cli"
}

func (g *ClaudeCLIGateway) HealthCheck(ctx context.Context) error {
	return g.runner.Available()
}
