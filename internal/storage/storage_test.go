package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiesa2k/testeagent/internal/config"
)

func TestArchiveKey(t *testing.T) {
	day := time.Date(2024, time.March, 5, 17, 0, 0, 0, time.UTC)

	assert.Equal(t, "reports/ytd-2024-03-05.html", ArchiveKey("", day))
	assert.Equal(t, "archive/dash/ytd-2024-03-05.html", ArchiveKey("archive/dash/", day))
}

func TestEndpointHost(t *testing.T) {
	cases := []struct {
		endpoint string
		useSSL   bool
		host     string
		secure   bool
	}{
		{"s3.example.com", true, "s3.example.com", true},
		{"localhost:9000", false, "localhost:9000", false},
		{"http://localhost:9000/", true, "localhost:9000", false},
		{"https://s3.example.com", false, "s3.example.com", true},
		{"//bucket.host", true, "bucket.host", true},
	}
	for _, tc := range cases {
		host, secure := endpointHost(tc.endpoint, tc.useSSL)
		assert.Equal(t, tc.host, host, tc.endpoint)
		assert.Equal(t, tc.secure, secure, tc.endpoint)
	}
}

func TestNewMinioClientValidation(t *testing.T) {
	_, err := NewMinioClient(config.StorageConfig{})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = NewMinioClient(config.StorageConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.EqualError(t, err, "storage credentials must be provided")

	_, err = NewMinioClient(config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"})
	assert.EqualError(t, err, "storage bucket must be provided")

	client, err := NewMinioClient(config.StorageConfig{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "marina",
	})
	require.NoError(t, err)
	assert.Equal(t, "marina", client.bucket)
}

func TestContentType(t *testing.T) {
	assert.Contains(t, contentType("reports/ytd-2024-03-05.html"), "text/html")
	assert.Equal(t, "application/octet-stream", contentType("dados/base"))
}
