package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/chiesa2k/testeagent/internal/drive"
	"github.com/chiesa2k/testeagent/internal/storage"
)

// Source is where a spreadsheet is read from.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource is a workbook on the local disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// ObjectSource downloads a workbook from object storage into Dir first.
type ObjectSource struct {
	Storage storage.ObjectStorage
	Key     string
	Dir     string
}

func (s ObjectSource) Name() string { return "object:" + s.Key }

func (s ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.Storage == nil {
		return nil, storage.ErrDisabled
	}
	dir := s.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	dest := filepath.Join(dir, path.Base(s.Key))
	if err := s.Storage.DownloadObject(ctx, s.Key, dest); err != nil {
		return nil, err
	}
	return os.Open(dest)
}

// Downloader fetches one Drive file.
type Downloader interface {
	Download(ctx context.Context, fileID string, w io.Writer) (*drive.File, error)
}

// DriveSource is a Drive file, buffered in memory.
type DriveSource struct {
	Drive  Downloader
	FileID string
}

func (s DriveSource) Name() string { return "drive:" + s.FileID }

func (s DriveSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.Drive == nil {
		return nil, fmt.Errorf("google drive is not configured")
	}
	var buf bytes.Buffer
	if _, err := s.Drive.Download(ctx, s.FileID, &buf); err != nil {
		return nil, err
	}
	return io.NopCloser(&buf), nil
}
