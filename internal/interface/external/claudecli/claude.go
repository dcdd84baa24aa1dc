package claudecli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes the local claude CLI in print mode
type Runner struct {
	Bin     string
	Timeout time.Duration
}

// ClaudeResponse represents the JSON response from claude
type ClaudeResponse struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	IsError    bool    `json:"is_error"`
	DurationMs int     `json:"duration_ms"`
	Result     string  `json:"result"`
	SessionID  string  `json:"session_id"`
	TotalCost  float64 `json:"total_cost_usd"`
}

// Run sends prompt to claude and returns the result field of its JSON reply
func (r Runner) Run(ctx context.Context, prompt string, extraArgs ...string) (string, error) {
	args := []string{"-p", "--output-format", "json"}
	args = append(args, extraArgs...)
	args = append(args, prompt)

	cctx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cctx, r.bin(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("claude execution failed: %w (output: %s)", err, string(out))
	}

	var response ClaudeResponse
	if err := json.Unmarshal(out, &response); err != nil {
		// Older CLIs print plain text
		return string(out), nil
	}

	if response.IsError {
		return "", fmt.Errorf("claude returned error: %s", response.Result)
	}
	return response.Result, nil
}

// Available reports whether the binary can be found on PATH
func (r Runner) Available() error {
	if _, err := exec.LookPath(r.bin()); err != nil {
		return fmt.Errorf("claude CLI not found: %w", err)
	}
	return nil
}

func (r Runner) bin() string {
	if r.Bin == "" {
		return "claude"
	}
	return r.Bin
}
