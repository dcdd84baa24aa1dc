package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/lecnote/internal/application/port/output"
	"github.com/YoshitsuguKoike/lecnote/internal/infra/persistence/file"
)

// AferoBlobStore implements output.BlobStore as plain files below baseDir.
// Keys use forward slashes and map onto nested directories.
type AferoBlobStore struct {
	fs      afero.Fs
	baseDir string
}

var _ output.BlobStore = (*AferoBlobStore)(nil)

// NewAferoBlobStore creates a file-backed blob store
func NewAferoBlobStore(fs afero.Fs, baseDir string) *AferoBlobStore {
	return &AferoBlobStore{fs: fs, baseDir: baseDir}
}

func (s *AferoBlobStore) path(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

func (s *AferoBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := file.WriteFileAtomic(s.fs, s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *AferoBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, output.ErrBlobNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *AferoBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	exists, err := afero.DirExists(s.fs, s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.baseDir, err)
	}
	if !exists {
		return nil, nil
	}

	var keys []string
	err = afero.Walk(s.fs, s.baseDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".lecnote-") {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.baseDir, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *AferoBlobStore) Delete(ctx context.Context, key string) (bool, error) {
	if err := s.fs.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("remove %s: %w", key, err)
	}
	return true, nil
}

func (s *AferoBlobStore) Location() string {
	return s.baseDir
}
