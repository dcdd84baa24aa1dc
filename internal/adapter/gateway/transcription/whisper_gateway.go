package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/pkg/retry"
)

const (
	// DefaultBaseURL is the OpenAI REST root
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultWhisperModel is the transcription model
	DefaultWhisperModel = "whisper-1"
)

// WhisperGateway implements output.TranscriptionGateway with the OpenAI
// audio transcription endpoint
type WhisperGateway struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	policy     retry.Policy
	retryOpts  []retry.Option
	logger     app.Logger
}

var _ output.TranscriptionGateway = (*WhisperGateway)(nil)

// WhisperOption customises a WhisperGateway
type WhisperOption func(*WhisperGateway)

// WithBaseURL points the gateway at another API root (tests, proxies)
func WithBaseURL(u string) WhisperOption {
	return func(g *WhisperGateway) {
		if u != "" {
			g.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithModel overrides the transcription model
func WithModel(m string) WhisperOption {
	return func(g *WhisperGateway) {
		if m != "" {
			g.model = m
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) WhisperOption {
	return func(g *WhisperGateway) { g.httpClient = c }
}

// WithRetry sets the retry policy and options
func WithRetry(p retry.Policy, opts ...retry.Option) WhisperOption {
	return func(g *WhisperGateway) {
		g.policy = p
		g.retryOpts = opts
	}
}

// WithLogger sets the logger
func WithLogger(l app.Logger) WhisperOption {
	return func(g *WhisperGateway) { g.logger = l }
}

// NewWhisperGateway creates a new Whisper transcription gateway
func NewWhisperGateway(apiKey string, opts ...WhisperOption) *WhisperGateway {
	g := &WhisperGateway{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultWhisperModel,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
		policy: retry.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = app.LoggerOr(g.logger)
	return g
}

// whisperResponse is the verbose_json response body
type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Transcribe uploads the audio and returns its transcript
func (g *WhisperGateway) Transcribe(ctx context.Context, req output.TranscriptionRequest) (*output.TranscriptionResult, error) {
	body, contentType, err := g.buildMultipart(req)
	if err != nil {
		return nil, err
	}

	var resp whisperResponse
	onRetry := retry.WithOnRetry(func(attempt int, err error, next time.Duration) {
		g.logger.Warn("Transcription attempt %d failed, retrying in %s: %v", attempt, next, err)
	})
	err = retry.Do(ctx, g.policy, func(ctx context.Context) error {
		return g.post(ctx, body, contentType, &resp)
	}, append([]retry.Option{onRetry}, g.retryOpts...)...)
	if err != nil {
		return nil, err
	}

	return &output.TranscriptionResult{
		Text:     resp.Text,
		Duration: resp.Duration,
	}, nil
}

func (g *WhisperGateway) buildMultipart(req output.TranscriptionRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := req.FileName
	if name == "" {
		name = "audio.mp3"
	}
	part, err := w.CreateFormFile("file", audioFileName(name))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, "", fmt.Errorf("write audio: %w", err)
	}
	if err := w.WriteField("model", g.model); err != nil {
		return nil, "", fmt.Errorf("write model field: %w", err)
	}
	if err := w.WriteField("response_format", "verbose_json"); err != nil {
		return nil, "", fmt.Errorf("write response_format field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (g *WhisperGateway) post(ctx context.Context, body []byte, contentType string, out *whisperResponse) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/audio/transcriptions", bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return retry.ForStatus(httpResp.StatusCode, apiError(httpResp.StatusCode, respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return retry.Permanent(fmt.Errorf("parse response: %w", err))
	}
	return nil
}

// Name returns the provider name
func (g *WhisperGateway) Name() string {
	return "openai-whisper"
}

// HealthCheck lists models to confirm the key is accepted
func (g *WhisperGateway) HealthCheck(ctx context.Context) error {
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
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check failed: %w", apiError(resp.StatusCode, body))
	}
	return nil
}

func apiError(status int, body []byte) error {
	var errResp apiErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return fmt.Errorf("API error (%d): %s - %s", status, errResp.Error.Type, errResp.Error.Message)
	}
	return fmt.Errorf("API error (%d): %s", status, strings.TrimSpace(string(body)))
}

// audioFileName swaps the video extension for .mp3 so the API detects the format
func audioFileName(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name + ".mp3"
}
