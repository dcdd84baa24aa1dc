package notegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/pkg/retry"
)

const (
	// DefaultOpenAIBaseURL is the OpenAI REST root
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultOpenAIModel is the chat model used for note generation
	DefaultOpenAIModel = "gpt-4o"
)

// OpenAIChatGateway implements output.NoteGenerationGateway with chat completions in JSON mode
type OpenAIChatGateway struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	remote     remoteOptions
}

var _ output.NoteGenerationGateway = (*OpenAIChatGateway)(nil)

// NewOpenAIChatGateway creates a new OpenAI chat gateway
func NewOpenAIChatGateway(apiKey string, opts ...Option) *OpenAIChatGateway {
	ro := newRemoteOptions(DefaultOpenAIBaseURL, DefaultOpenAIModel, opts)
	return &OpenAIChatGateway{
		apiKey:     apiKey,
		baseURL:    ro.baseURL,
		model:      ro.model,
		httpClient: ro.httpClient,
		remote:     ro,
	}
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []Message      `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// Message is a chat message shared by the OpenAI and Anthropic request shapes
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *openAIError `json:"error,omitempty"`
}

type openAIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Generate asks the model for a JSON document and decodes it
func (g *OpenAIChatGateway) Generate(ctx context.Context, req output.GenerationRequest) (output.GenerationResult, error) {
	chatReq := chatRequest{
		Model:          g.model,
		Messages:       []Message{{Role: "user", Content: BuildPrompt(req.Transcript)}},
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	var resp *chatResponse
	err := g.remote.do(ctx, g.Name(), func(ctx context.Context) error {
		var err error
		resp, err = g.callChatAPI(ctx, chatReq)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil || strings.TrimSpace(*resp.Choices[0].Message.Content) == "" {
		return output.Malformed{Reason: "response has no message content"}, nil
	}
	g.remote.logger.Debug("OpenAI usage: %d prompt tokens, %d completion tokens", resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return DecodeResult(*resp.Choices[0].Message.Content), nil
}

func (g *OpenAIChatGateway) callChatAPI(ctx context.Context, req chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	decodeErr := json.Unmarshal(respBody, &chatResp)

	if httpResp.StatusCode != http.StatusOK {
		if decodeErr == nil && chatResp.Error != nil && chatResp.Error.Message != "" {
			return nil, retry.ForStatus(httpResp.StatusCode,
				fmt.Errorf("API error (%d): %s - %s", httpResp.StatusCode, chatResp.Error.Type, chatResp.Error.Message))
		}
		return nil, retry.ForStatus(httpResp.StatusCode, fmt.Errorf("API error: status %d", httpResp.StatusCode))
	}
	if decodeErr != nil {
		// A 200 with an unreadable envelope will not improve on retry
		return nil, retry.Permanent(fmt.Errorf("decode response: %w", decodeErr))
	}
	return &chatResp, nil
}

func (g *OpenAIChatGateway) Name() string {
	return "openai"
}

// HealthCheck fetches the configured model
func (g *OpenAIChatGateway) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/models/"+g.model, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}
	return nil
}

// remoteOptions carries the settings shared by the HTTP gateways
type remoteOptions struct {
	baseURL    string
	model      string
	httpClient *http.Client
	policy     retry.Policy
	retryOpts  []retry.Option
	logger     app.Logger
}

// Option customises a remote gateway
type Option func(*remoteOptions)

// WithBaseURL points the gateway at another API root (tests, proxies)
func WithBaseURL(u string) Option {
	return func(o *remoteOptions) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithModel overrides the model name
func WithModel(m string) Option {
	return func(o *remoteOptions) {
		if m != "" {
			o.model = m
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *remoteOptions) { o.httpClient = c }
}

// WithRetry sets the retry policy and options
func WithRetry(p retry.Policy, opts ...retry.Option) Option {
	return func(o *remoteOptions) {
		o.policy = p
		o.retryOpts = opts
	}
}

// WithLogger sets the logger
func WithLogger(l app.Logger) Option {
	return func(o *remoteOptions) { o.logger = l }
}

func newRemoteOptions(baseURL, model string, opts []Option) remoteOptions {
	ro := remoteOptions{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		policy:     retry.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(&ro)
	}
	ro.logger = app.LoggerOr(ro.logger)
	return ro
}

func (o remoteOptions) do(ctx context.Context, provider string, op func(ctx context.Context) error) error {
	onRetry := retry.WithOnRetry(func(attempt int, err error, next time.Duration) {
		o.logger.Warn("%s call failed, attempt %d of %d, retrying in %s: %v", provider, attempt, o.policy.MaxAttempts, next, err)
	})
	return retry.Do(ctx, o.policy, op, append([]retry.Option{onRetry}, o.retryOpts...)...)
}
