package ingest

import (
	"context"
	"fmt"

	"github.com/viant/afs"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// Loader fetches extract files from any afs location (local path, file://,
// mem://, s3:// and so on) and parses them.
type Loader struct {
	fs afs.Service
}

// NewLoader creates a loader backed by the default afs service
func NewLoader() *Loader {
	return &Loader{fs: afs.New()}
}

// NewLoaderWithService creates a loader over a caller-supplied afs service
func NewLoaderWithService(fs afs.Service) *Loader {
	return &Loader{fs: fs}
}

// Fetch downloads the raw bytes at URL
func (l *Loader) Fetch(ctx context.Context, URL string) ([]byte, error) {
	data, err := l.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", URL, err)
	}
	return data, nil
}

// Load downloads the file at URL and parses it as fileType, normalizing the
// file type's key columns.
func (l *Loader) Load(ctx context.Context, URL string, fileType models.FileType) (*Result, error) {
	data, err := l.Fetch(ctx, URL)
	if err != nil {
		return nil, err
	}
	return Parse(data, string(fileType), Options{KeyColumns: DefaultKeyColumns[fileType]})
}
