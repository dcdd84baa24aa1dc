package transcription

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
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

func newTestGateway(url string) *WhisperGateway {
	return NewWhisperGateway("sk-test",
		WithBaseURL(url),
		WithRetry(retry.DefaultPolicy, noWait),
		WithLogger(app.NopLogger),
	)
}

func TestWhisperGateway_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "ID3audio", string(data))
		assert.Equal(t, "lecture.mp3", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"Merge sort splits the array.","language":"english","duration":212.5}`))
	}))
	defer server.Close()

	result, err := newTestGateway(server.URL).Transcribe(context.Background(), output.TranscriptionRequest{
		Audio:    []byte("ID3audio"),
		FileName: "lecture.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, "Merge sort splits the array.", result.Text)
	assert.Equal(t, 212.5, result.Duration)
}

func TestWhisperGateway_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"text":"ok","duration":1}`))
	}))
	defer server.Close()

	result, err := newTestGateway(server.URL).Transcribe(context.Background(), output.TranscriptionRequest{Audio: []byte("a")})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWhisperGateway_RetriesRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer server.Close()

	_, err := newTestGateway(server.URL).Transcribe(context.Background(), output.TranscriptionRequest{Audio: []byte("a")})
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "API error (429): requests - Rate limit reached")
}

func TestWhisperGateway_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := newTestGateway(server.URL).Transcribe(context.Background(), output.TranscriptionRequest{Audio: []byte("a")})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestWhisperGateway_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models/whisper-1" {
			_, _ = w.Write([]byte(`{"id":"whisper-1"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.NoError(t, newTestGateway(server.URL).HealthCheck(context.Background()))

	missing := NewWhisperGateway("sk-test", WithBaseURL(server.URL), WithModel("whisper-9"), WithLogger(app.NopLogger))
	assert.Error(t, missing.HealthCheck(context.Background()))
}
