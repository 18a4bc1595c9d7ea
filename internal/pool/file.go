package pool

import (
	"context"
	"fmt"
	"os"

	"github.com/abelbrown/dailycard/internal/model"
)

// FileSource reads a quotes JSON asset from disk.
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name returns the source identifier for logging.
func (s *FileSource) Name() string {
	return "file:" + s.Path
}

// Fetch reads and parses the file.
func (s *FileSource) Fetch(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open pool file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
