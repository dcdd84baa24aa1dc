// Package ffmpeg runs the ffmpeg binary
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultBin is looked up on PATH when Runner.Bin is empty
const DefaultBin = "ffmpeg"

// Runner executes ffmpeg with a bounded lifetime.
// A zero Timeout leaves the process bound only by the caller's context.
type Runner struct {
	Bin     string
	Timeout time.Duration
}

// Run executes ffmpeg with args and returns its combined stdout and stderr.
// On failure the output is returned alongside the error so callers can surface it.
func (r Runner) Run(ctx context.Context, args ...string) (string, error) {
	cctx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cctx, r.bin(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return string(out), fmt.Errorf("ffmpeg timed out after %s: %w (output: %s)", r.Timeout, cctx.Err(), string(out))
		}
		return string(out), fmt.Errorf("ffmpeg execution failed: %w (output: %s)", err, string(out))
	}
	return string(out), nil
}

// Version returns the first line of `ffmpeg -version`
func (r Runner) Version(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "-version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return line, nil
}

func (r Runner) bin() string {
	if r.Bin == "" {
		return DefaultBin
	}
	return r.Bin
}
