package storage

import (
	"context"
	"errors"
	"path"
	"time"
)

// ErrDisabled is returned when no storage endpoint is configured.
var ErrDisabled = errors.New("object storage is not configured")

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the S3-compatible operations used for spreadsheet
// sources and report archives.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// ArchiveKey is the object key of the YTD report rendered on day.
func ArchiveKey(prefix string, day time.Time) string {
	if prefix == "" {
		prefix = "reports"
	}
	return path.Join(prefix, "ytd-"+day.Format("2006-01-02")+".html")
}
