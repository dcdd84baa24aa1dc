package notegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/pkg/retry"
)

var noWait = retry.WithSleep(func(ctx context.Context, d time.Duration) error { return nil })

func testOptions(url string) []Option {
	return []Option{WithBaseURL(url), WithRetry(retry.DefaultPolicy, noWait), WithLogger(app.NopLogger)}
}

const notesJSON = `{"title":"Heaps","blocks":[{"type":"heading","content":"Heapify"}]}`

func TestOpenAIChatGateway_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "Transcription: heaps are trees")

		content, _ := json.Marshal(notesJSON)
		_, _ = w.Write([]byte(`{"id":"c1","choices":[{"message":{"role":"assistant","content":` + string(content) + `}}]}`))
	}))
	defer server.Close()

	result, err := NewOpenAIChatGateway("sk-test", testOptions(server.URL)...).
		Generate(context.Background(), output.GenerationRequest{Transcript: "heaps are trees"})
	require.NoError(t, err)

	parsed, ok := result.(output.Parsed)
	require.True(t, ok)
	assert.Equal(t, "Heaps", parsed.Title)
}

func TestOpenAIChatGateway_NullContentIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1","choices":[{"message":{"role":"assistant","content":null}}]}`))
	}))
	defer server.Close()

	result, err := NewOpenAIChatGateway("sk-test", testOptions(server.URL)...).
		Generate(context.Background(), output.GenerationRequest{Transcript: "x"})
	require.NoError(t, err)
	_, ok := result.(output.Malformed)
	assert.True(t, ok)
}

func TestOpenAIChatGateway_RetriesThenFails(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewOpenAIChatGateway("sk-test", testOptions(server.URL)...).
		Generate(context.Background(), output.GenerationRequest{Transcript: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "API error: status 503")
}

func TestOpenAIChatGateway_BadRequestIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"context length exceeded"}}`))
	}))
	defer server.Close()

	_, err := NewOpenAIChatGateway("sk-test", testOptions(server.URL)...).
		Generate(context.Background(), output.GenerationRequest{Transcript: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "API error (400): invalid_request_error - context length exceeded")
}

func TestAnthropicGateway_Generate(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
			return
		}

		var req ClaudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultAnthropicModel, req.Model)
		assert.Positive(t, req.MaxTokens)

		text, _ := json.Marshal("```json\n" + notesJSON + "\n```")
		_, _ = w.Write([]byte(`{"id":"m1","type":"message","role":"assistant","content":[{"type":"text","text":` + string(text) + `}],"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":20}}`))
	}))
	defer server.Close()

	result, err := NewAnthropicGateway("sk-ant", testOptions(server.URL)...).
		Generate(context.Background(), output.GenerationRequest{Transcript: "heaps"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	parsed, ok := result.(output.Parsed)
	require.True(t, ok)
	assert.Equal(t, "Heaps", parsed.Title)
}

func TestAnthropicGateway_AuthErrorFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	gw := NewAnthropicGateway("bad", testOptions(server.URL)...)
	_, err := gw.Generate(context.Background(), output.GenerationRequest{Transcript: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (401): authentication_error - invalid x-api-key")
	assert.Error(t, gw.HealthCheck(context.Background()))
}

type mockPromptRunner struct {
	runFunc       func(ctx context.Context, prompt string) (string, error)
	availableFunc func() error
}

func (m *mockPromptRunner) Run(ctx context.Context, prompt string, extraArgs ...string) (string, error) {
	return m.runFunc(ctx, prompt)
}

func (m *mockPromptRunner) Available() error {
	if m.availableFunc == nil {
		return nil
	}
	return m.availableFunc()
}

func TestClaudeCLIGateway_Generate(t *testing.T) {
	runner := &mockPromptRunner{runFunc: func(ctx context.Context, prompt string) (string, error) {
		assert.Contains(t, prompt, "Transcription: graphs")
		return notesJSON, nil
	}}

	result, err := NewClaudeCLIGatewayWithRunner(runner).Generate(context.Background(), output.GenerationRequest{Transcript: "graphs"})
	require.NoError(t, err)
	assert.IsType(t, output.Parsed{}, result)
}

func TestClaudeCLIGateway_Errors(t *testing.T) {
	runner := &mockPromptRunner{
		runFunc:       func(ctx context.Context, prompt string) (string, error) { return "", errors.New("not logged in") },
		availableFunc: func() error { return errors.New("claude CLI not found") },
	}
	gw := NewClaudeCLIGatewayWithRunner(runner, WithRetry(retry.DefaultPolicy, noWait), WithLogger(app.NopLogger))

	_, err := gw.Generate(context.Background(), output.GenerationRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
	assert.Error(t, gw.HealthCheck(context.Background()))
}

// recordingLogger forwards Warn to warnFunc and drops other levels
type recordingLogger struct {
	warnFunc func(format string, args ...interface{})
}

func (l *recordingLogger) Debug(format string, args ...interface{}) {}
func (l *recordingLogger) Info(format string, args ...interface{})  {}
func (l *recordingLogger) Error(format string, args ...interface{}) {}
func (l *recordingLogger) Warn(format string, args ...interface{}) {
	if l.warnFunc != nil {
		l.warnFunc(format, args...)
	}
}

func TestClaudeCLIGateway_RetriesTransientFailure(t *testing.T) {
	var calls int32
	runner := &mockPromptRunner{runFunc: func(ctx context.Context, prompt string) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "", errors.New("exit status 1: overloaded")
		}
		return notesJSON, nil
	}}
	var warned int32
	logger := &recordingLogger{warnFunc: func(format string, args ...interface{}) { atomic.AddInt32(&warned, 1) }}
	gw := NewClaudeCLIGatewayWithRunner(runner, WithRetry(retry.Policy{MaxAttempts: 3}, noWait), WithLogger(logger))

	result, err := gw.Generate(context.Background(), output.GenerationRequest{Transcript: "graphs"})
	require.NoError(t, err)
	assert.IsType(t, output.Parsed{}, result)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&warned))
}

func TestClaudeCLIGateway_GivesUpAfterPolicy(t *testing.T) {
	var calls int32
	runner := &mockPromptRunner{runFunc: func(ctx context.Context, prompt string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errors.New("exit status 1")
	}}
	gw := NewClaudeCLIGatewayWithRunner(runner, WithRetry(retry.Policy{MaxAttempts: 2}, noWait), WithLogger(app.NopLogger))

	_, err := gw.Generate(context.Background(), output.GenerationRequest{})
	var exhausted *retry.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClaudeCLIGateway_MissingBinaryIsNotRetried(t *testing.T) {
	var calls int32
	runner := &mockPromptRunner{runFunc: func(ctx context.Context, prompt string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", fmt.Errorf("claude execution failed: %w", exec.ErrNotFound)
	}}
	gw := NewClaudeCLIGatewayWithRunner(runner, WithRetry(retry.DefaultPolicy, noWait), WithLogger(app.NopLogger))

	_, err := gw.Generate(context.Background(), output.GenerationRequest{})
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewGateway(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{"auto without keys", Config{}, "classifier", false},
		{"auto prefers openai", Config{OpenAIAPIKey: "a", AnthropicAPIKey: "b"}, "openai", false},
		{"auto uses anthropic", Config{AnthropicAPIKey: "b"}, "anthropic", false},
		{"openai without key degrades", Config{Provider: ProviderOpenAI}, "classifier", false},
		{"anthropic without key degrades", Config{Provider: ProviderAnthropic}, "classifier", false},
		{"claude cli", Config{Provider: ProviderClaudeCLI}, "claude-cli", false},
		{"classifier", Config{Provider: ProviderClassifier, OpenAIAPIKey: "a"}, "classifier", false},
		{"unknown", Config{Provider: "gemini"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Logger = app.NopLogger
			gw, err := NewGateway(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, gw.Name())
		})
	}
}
