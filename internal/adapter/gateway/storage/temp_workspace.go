package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/infra/persistence/file"
	"github.com/YoshitsuguKoike/lecnote/internal/pkg/filename"
)

// DefaultTempDirName is the directory created below os.TempDir() for staged uploads
const DefaultTempDirName = "lecnote-temp"

// TempWorkspace implements output.Workspace on an afero filesystem.
// Files are named <uuid>_<sanitized upload name> and <uuid>.mp3 so every request owns
// distinct paths inside the shared directory.
type TempWorkspace struct {
	fs   afero.Fs
	root string
}

var _ output.Workspace = (*TempWorkspace)(nil)

// NewTempWorkspace creates a workspace rooted at root.
// An empty root means os.TempDir()/lecnote-temp.
func NewTempWorkspace(fs afero.Fs, root string) *TempWorkspace {
	if root == "" {
		root = filepath.Join(os.TempDir(), DefaultTempDirName)
	}
	return &TempWorkspace{fs: fs, root: root}
}

// Root returns the workspace directory
func (w *TempWorkspace) Root() string {
	return w.root
}

func (w *TempWorkspace) Stage(ctx context.Context, fileName string, data []byte) (string, error) {
	if err := w.fs.MkdirAll(w.root, 0o755); err != nil {
		return "", fmt.Errorf("create temp directory %s: %w", w.root, err)
	}

	p := filepath.Join(w.root, uuid.NewString()+"_"+filename.Sanitize(fileName, filename.DefaultMaxBytes))
	if err := file.WriteFileAtomic(w.fs, p, data, 0o600); err != nil {
		return "", fmt.Errorf("stage %s: %w", fileName, err)
	}
	return p, nil
}

func (w *TempWorkspace) AudioPath(ctx context.Context) (string, error) {
	if err := w.fs.MkdirAll(w.root, 0o755); err != nil {
		return "", fmt.Errorf("create temp directory %s: %w", w.root, err)
	}
	return filepath.Join(w.root, uuid.NewString()+".mp3"), nil
}

func (w *TempWorkspace) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (w *TempWorkspace) Remove(ctx context.Context, path string) error {
	return file.RemoveIfExists(w.fs, path)
}

// Exists reports whether path is present (for diagnostics and tests)
func (w *TempWorkspace) Exists(path string) bool {
	ok, err := afero.Exists(w.fs, path)
	return err == nil && ok
}

// Entries lists the files currently in the workspace
func (w *TempWorkspace) Entries() ([]string, error) {
	infos, err := afero.ReadDir(w.fs, w.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}
