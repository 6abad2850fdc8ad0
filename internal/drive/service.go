package drive

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	xlsxMimeType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Service struct {
	srv *drive.Service
}

// File is the metadata of a downloaded Drive file.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// NewServiceFromFile reads service account credentials from path.
func NewServiceFromFile(ctx context.Context, path string) (*Service, error) {
	if path == "" {
		return nil, fmt.Errorf("google credentials file must be provided")
	}
	credentialsJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file %s: %w", path, err)
	}
	return NewService(ctx, credentialsJSON)
}

func NewService(ctx context.Context, credentialsJSON []byte) (*Service, error) {
	config, err := google.JWTConfigFromJSON(credentialsJSON, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	return NewServiceWithOptions(ctx, option.WithHTTPClient(config.Client(ctx)))
}

// NewServiceWithOptions builds the Drive client from raw client options.
func NewServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*Service, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}
	return &Service{srv: srv}, nil
}

// Download copies the content of fileID to w. Native Google Sheets are
// exported as xlsx.
func (s *Service) Download(ctx context.Context, fileID string, w io.Writer) (*File, error) {
	meta, err := s.srv.Files.Get(fileID).Fields("id, name, mimeType").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to get file %s: %w", fileID, err)
	}
	file := &File{ID: meta.Id, Name: meta.Name, MimeType: meta.MimeType}

	var body io.ReadCloser
	if meta.MimeType == spreadsheetMimeType {
		resp, err := s.srv.Files.Export(fileID, xlsxMimeType).Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("unable to export file %s: %w", fileID, err)
		}
		body = resp.Body
	} else {
		resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("unable to download file %s: %w", fileID, err)
		}
		body = resp.Body
	}
	defer body.Close()

	if _, err := io.Copy(w, body); err != nil {
		return nil, fmt.Errorf("unable to read file %s: %w", fileID, err)
	}
	return file, nil
}
