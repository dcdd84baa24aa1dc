package notegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/pkg/retry"
)

const (
	// DefaultAnthropicBaseURL is the Anthropic REST root
	DefaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	// DefaultAnthropicModel is the Messages API model
	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"

	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 8192
)

// AnthropicGateway implements output.NoteGenerationGateway with the Messages API
type AnthropicGateway struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	remote     remoteOptions
}

var _ output.NoteGenerationGateway = (*AnthropicGateway)(nil)

// NewAnthropicGateway creates a new Anthropic gateway
func NewAnthropicGateway(apiKey string, opts ...Option) *AnthropicGateway {
	ro := newRemoteOptions(DefaultAnthropicBaseURL, DefaultAnthropicModel, opts)
	return &AnthropicGateway{
		apiKey:     apiKey,
		apiURL:     ro.baseURL + "/messages",
		model:      ro.model,
		httpClient: ro.httpClient,
		remote:     ro,
	}
}

// Generate prompts Claude and decodes the text of its reply
func (g *AnthropicGateway) Generate(ctx context.Context, req output.GenerationRequest) (output.GenerationResult, error) {
	claudeReq := ClaudeRequest{
		Model:     g.model,
		MaxTokens: anthropicMaxTokens,
		Messages: []Message{
			{Role: "user", Content: BuildPrompt(req.Transcript)},
		},
	}

	var resp *ClaudeResponse
	err := g.remote.do(ctx, g.Name(), func(ctx context.Context) error {
		var err error
		resp, err = g.callClaudeAPI(ctx, claudeReq)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return output.Malformed{Reason: "response has no text content"}, nil
	}

	g.remote.logger.Debug("Anthropic usage: %d input tokens, %d output tokens (stop: %s)",
		resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.StopReason)
	return DecodeResult(text.String()), nil
}

func (g *AnthropicGateway) Name() string {
	return "anthropic"
}

// HealthCheck verifies if Claude API is accessible
func (g *AnthropicGateway) HealthCheck(ctx context.Context) error {
	req := ClaudeRequest{
		Model:     g.model,
		MaxTokens: 10,
		Messages:  []Message{{Role: "user", Content: "ping"}},
	}
	_, err := g.callClaudeAPI(ctx, req)
	return err
}

// callClaudeAPI makes an HTTP request to Claude API
func (g *AnthropicGateway) callClaudeAPI(ctx context.Context, req ClaudeRequest) (*ClaudeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var claudeResp ClaudeResponse
	decodeErr := json.Unmarshal(respBody, &claudeResp)

	if httpResp.StatusCode != http.StatusOK {
		if decodeErr == nil && claudeResp.Error.Message != "" {
			return nil, retry.ForStatus(httpResp.StatusCode,
				fmt.Errorf("API error (%d): %s - %s", httpResp.StatusCode, claudeResp.Error.Type, claudeResp.Error.Message))
		}
		return nil, retry.ForStatus(httpResp.StatusCode, fmt.Errorf("API error: status %d", httpResp.StatusCode))
	}
	if decodeErr != nil {
		return nil, retry.Permanent(fmt.Errorf("decode response: %w", decodeErr))
	}
	return &claudeResp, nil
}

// Claude API request/response types
type ClaudeRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type ClaudeResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Role       string          `json:"role"`
	Content    []ContentBlock  `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Usage      Usage           `json:"usage"`
	Error      ClaudeErrorResp `json:"error,omitempty"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type ClaudeErrorResp struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
