package output

import "context"

// Workspace manages request-scoped temporary files.
// Every path it hands out is unique, so concurrent requests never collide.
type Workspace interface {
	// Stage writes data to a fresh file derived from fileName and returns its path
	Stage(ctx context.Context, fileName string, data []byte) (string, error)

	// AudioPath reserves a fresh path for extracted audio without creating it
	AudioPath(ctx context.Context) (string, error)

	// ReadFile reads a workspace file fully
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Remove deletes a workspace file; a missing file is not an error
	Remove(ctx context.Context, path string) error
}
