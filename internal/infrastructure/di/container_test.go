package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/YoshitsuguKoike/lecnote/internal/adapter/gateway/storage"
	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/dto"
	"github.com/YoshitsuguKoike/lecnote/internal/infra/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func testConfig(store string) *config.Config {
	return &config.Config{
		Store:         store,
		TempDir:       "/tmp/lecnote-temp",
		FFmpegBin:     "ffmpeg",
		FFmpegTimeout: time.Minute,
		MaxUploadMB:   200,
		RetryAttempts: 1,
		LogLevel:      "warn",
	}
}

func TestNewContainer_Stores(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		cfg          func(t *testing.T) *config.Config
		opts         []Option
		wantLocation string
	}{
		{
			name:         "memory",
			cfg:          func(t *testing.T) *config.Config { return testConfig(config.StoreMemory) },
			wantLocation: "memory",
		},
		{
			name: "sqlite",
			cfg: func(t *testing.T) *config.Config {
				c := testConfig(config.StoreSQLite)
				c.DBPath = filepath.Join(t.TempDir(), "nested", "lecnote.db")
				return c
			},
		},
		{
			name: "file",
			cfg: func(t *testing.T) *config.Config {
				c := testConfig(config.StoreFile)
				c.DataDir = "/data/notes"
				return c
			},
			opts: []Option{WithFs(afero.NewMemMapFs())},
		},
		{
			name: "s3",
			cfg: func(t *testing.T) *config.Config {
				c := testConfig(config.StoreS3)
				c.S3Bucket = "lectures"
				return c
			},
			opts:         []Option{WithS3Client(storage.NewMockS3Client())},
			wantLocation: "s3://lectures",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg(t)
			opts := append([]Option{WithLogger(app.NopLogger)}, tt.opts...)
			c, err := NewContainer(ctx, cfg, opts...)
			require.NoError(t, err)
			defer c.Close()

			require.NoError(t, c.CheckStore(ctx))
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, c.StoreLocation())
			} else {
				assert.NotEmpty(t, c.StoreLocation())
			}

			created, err := c.GetNoteUseCase().Create(ctx, dto.CreateNoteInput{Title: "Wired"})
			require.NoError(t, err)
			found, err := c.GetNoteRepository().Find(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Wired", found.Title)
		})
	}
}

func TestNewContainer_DefaultGateways(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(config.StoreMemory), WithLogger(app.NopLogger))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "stub", c.GetTranscriptionGateway().Name())
	assert.Equal(t, "classifier", c.GetNoteGenerationGateway().Name())
	assert.NotNil(t, c.GetAudioExtractor())
	assert.NotNil(t, c.GetProcessVideoUseCase())
	assert.NotNil(t, c.GetBlockEditor())
	assert.Equal(t, config.StoreMemory, c.GetConfig().Store)
}

func TestNewContainer_SelectsRemoteGateways(t *testing.T) {
	cfg := testConfig(config.StoreMemory)
	cfg.OpenAIAPIKey = "sk-test"

	c, err := NewContainer(context.Background(), cfg, WithLogger(app.NopLogger))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "openai-whisper", c.GetTranscriptionGateway().Name())
	assert.Equal(t, "openai", c.GetNoteGenerationGateway().Name())
}

func TestNewContainer_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewContainer(ctx, nil)
	assert.Error(t, err)

	_, err = NewContainer(ctx, testConfig("redis"))
	assert.ErrorContains(t, err, "unknown store type")

	cfg := testConfig(config.StoreMemory)
	cfg.NotegenProvider = "gemini"
	_, err = NewContainer(ctx, cfg, WithLogger(app.NopLogger))
	assert.ErrorContains(t, err, "note generation gateway")
}

func TestContainer_CloseIsIdempotent(t *testing.T) {
	cfg := testConfig(config.StoreSQLite)
	cfg.DBPath = filepath.Join(t.TempDir(), "lecnote.db")

	c, err := NewContainer(context.Background(), cfg, WithLogger(app.NopLogger))
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
