// Package di wires configuration into repositories, gateways and use cases
package di

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/lecnote/internal/adapter/gateway/media"
	"github.com/YoshitsuguKoike/lecnote/internal/adapter/gateway/notegen"
	"github.com/YoshitsuguKoike/lecnote/internal/adapter/gateway/storage"
	"github.com/YoshitsuguKoike/lecnote/internal/adapter/gateway/transcription"
	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/application/usecase/lecture"
	"github.com/YoshitsuguKoike/lecnote/internal/application/usecase/notes"
	"github.com/YoshitsuguKoike/lecnote/internal/domain/repository"
	"github.com/YoshitsuguKoike/lecnote/internal/infra/config"
	"github.com/YoshitsuguKoike/lecnote/internal/infrastructure/persistence/blob"
	sqliterepo "github.com/YoshitsuguKoike/lecnote/internal/infrastructure/persistence/sqlite"
	"github.com/YoshitsuguKoike/lecnote/internal/infrastructure/repository/memory"
	"github.com/YoshitsuguKoike/lecnote/internal/interface/external/ffmpeg"
)

// Container is the DI container that holds all dependencies
type Container struct {
	config *config.Config
	fs     afero.Fs
	logger app.Logger

	// Infrastructure Layer - Store
	db        *sql.DB
	s3Client  storage.S3API
	blobStore output.BlobStore
	noteRepo  repository.NoteRepository

	// Infrastructure Layer - Gateways
	workspace   output.Workspace
	extractor   output.AudioExtractor
	transcriber output.TranscriptionGateway
	generator   output.NoteGenerationGateway

	// Application Layer - Use Cases
	processVideo *lecture.ProcessVideoUseCase
	noteUseCase  *notes.NoteUseCase
	blockEditor  *notes.BlockEditor
}

// Option customises a Container before it is initialised
type Option func(*Container)

// WithFs replaces the OS filesystem used by the workspace, the file store and the extractor
func WithFs(fs afero.Fs) Option {
	return func(c *Container) { c.fs = fs }
}

// WithS3Client uses client instead of one built from the AWS default chain
func WithS3Client(client storage.S3API) Option {
	return func(c *Container) { c.s3Client = client }
}

// WithLogger sets the logger handed to every component
func WithLogger(l app.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// NewContainer creates and initializes the DI container
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{config: cfg, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = app.LoggerOr(c.logger)

	if err := c.initializeInfrastructure(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	if err := c.initializeApplication(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return c, nil
}

// initializeInfrastructure initializes the store and the gateways
func (c *Container) initializeInfrastructure(ctx context.Context) error {
	if err := c.initializeStore(ctx); err != nil {
		return err
	}

	c.workspace = storage.NewTempWorkspace(c.fs, c.config.TempDir)

	runner := ffmpeg.Runner{Bin: c.config.FFmpegBin, Timeout: c.config.FFmpegTimeout}
	c.extractor = media.NewFFmpegExtractor(runner, c.fs)

	c.transcriber = transcription.NewGateway(transcription.Config{
		OpenAIAPIKey: c.config.OpenAIAPIKey,
		BaseURL:      c.config.OpenAIBaseURL,
		Retry:        c.config.RetryPolicy(),
		Logger:       c.logger,
	})

	generator, err := notegen.NewGateway(notegen.Config{
		Provider:        c.config.NotegenProvider,
		OpenAIAPIKey:    c.config.OpenAIAPIKey,
		OpenAIBaseURL:   c.config.OpenAIBaseURL,
		AnthropicAPIKey: c.config.AnthropicAPIKey,
		ClaudeBin:       c.config.ClaudeBin,
		ClaudeTimeout:   c.config.ClaudeTimeout,
		Retry:           c.config.RetryPolicy(),
		Logger:          c.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create note generation gateway: %w", err)
	}
	c.generator = generator

	c.logger.Debug("Store %s, transcription %s, note generation %s",
		c.config.Store, c.transcriber.Name(), c.generator.Name())
	return nil
}

func (c *Container) initializeStore(ctx context.Context) error {
	switch c.config.Store {
	case config.StoreMemory:
		c.noteRepo = memory.NewNoteRepository()

	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(c.config.DBPath), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err := sql.Open("sqlite3", c.config.DBPath+"?_foreign_keys=on&_busy_timeout=5000")
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite serialises writers; one connection keeps Update transactions from
		// failing with SQLITE_BUSY
		db.SetMaxOpenConns(1)
		c.db = db

		if err := sqliterepo.NewMigrator(db).Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		c.noteRepo = sqliterepo.NewNoteRepository(db)

	case config.StoreFile:
		c.blobStore = storage.NewAferoBlobStore(c.fs, c.config.DataDir)
		c.noteRepo = blob.NewNoteRepository(c.blobStore)

	case config.StoreS3:
		if c.s3Client != nil {
			c.blobStore = storage.NewS3BlobStoreWithClient(c.s3Client, c.config.S3Bucket, c.config.S3Prefix)
		} else {
			s3Store, err := storage.NewS3BlobStore(ctx, storage.S3Config{
				Bucket: c.config.S3Bucket,
				Prefix: c.config.S3Prefix,
				Region: c.config.S3Region,
			})
			if err != nil {
				return fmt.Errorf("failed to create S3 store: %w", err)
			}
			c.blobStore = s3Store
		}
		c.noteRepo = blob.NewNoteRepository(c.blobStore)

	default:
		return fmt.Errorf("unknown store type: %s", c.config.Store)
	}
	return nil
}

// initializeApplication initializes the use cases
func (c *Container) initializeApplication() error {
	c.processVideo = lecture.NewProcessVideoUseCase(
		c.workspace,
		c.extractor,
		c.transcriber,
		c.generator,
		c.noteRepo,
		lecture.WithLogger(c.logger),
		lecture.WithMaxUploadBytes(c.config.MaxUploadBytes()),
	)
	c.noteUseCase = notes.NewNoteUseCase(c.noteRepo, c.logger)
	c.blockEditor = notes.NewBlockEditor(c.noteRepo, c.logger)
	return nil
}

// GetConfig returns the configuration the container was built from
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetNoteRepository returns the note repository
func (c *Container) GetNoteRepository() repository.NoteRepository {
	return c.noteRepo
}

// GetAudioExtractor returns the audio extractor
func (c *Container) GetAudioExtractor() output.AudioExtractor {
	return c.extractor
}

// GetTranscriptionGateway returns the transcription gateway
func (c *Container) GetTranscriptionGateway() output.TranscriptionGateway {
	return c.transcriber
}

// GetNoteGenerationGateway returns the note generation gateway
func (c *Container) GetNoteGenerationGateway() output.NoteGenerationGateway {
	return c.generator
}

// GetProcessVideoUseCase returns the pipeline use case
func (c *Container) GetProcessVideoUseCase() *lecture.ProcessVideoUseCase {
	return c.processVideo
}

// GetNoteUseCase returns the note CRUD use case
func (c *Container) GetNoteUseCase() *notes.NoteUseCase {
	return c.noteUseCase
}

// GetBlockEditor returns the block editor
func (c *Container) GetBlockEditor() *notes.BlockEditor {
	return c.blockEditor
}

// StoreLocation describes where notes are kept
func (c *Container) StoreLocation() string {
	switch {
	case c.db != nil:
		return "sqlite://" + c.config.DBPath
	case c.blobStore != nil:
		return c.blobStore.Location()
	default:
		return "memory"
	}
}

// CheckStore verifies the note store is reachable
func (c *Container) CheckStore(ctx context.Context) error {
	switch {
	case c.db != nil:
		return c.db.PingContext(ctx)
	case c.blobStore != nil:
		_, err := c.blobStore.List(ctx, "notes/")
		return err
	default:
		return nil
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}
