// internal/services/storage_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapstudio/marketplace-backend/internal/config"
)

func newTestStorage(t *testing.T, accessKey string) *StorageService {
	t.Helper()

	storage, err := NewStorageService(config.AWSConfig{
		Region:          "us-east-1",
		AccessKeyID:     accessKey,
		SecretAccessKey: "secret",
		S3Bucket:        "assets",
		CloudFrontURL:   "https://cdn.snapstudio.test/",
		PresignTTL:      15,
	})
	require.NoError(t, err)
	return storage
}

func TestObjectKey(t *testing.T) {
	storage := newTestStorage(t, "")

	cases := []struct {
		url string
		key string
		ok  bool
	}{
		{"s3://assets/files/a.zip", "files/a.zip", true},
		{"https://assets.s3.us-east-1.amazonaws.com/files/a.zip", "files/a.zip", true},
		{"https://s3.us-east-1.amazonaws.com/assets/files/a.zip", "files/a.zip", true},
		{"https://cdn.snapstudio.test/files/a.zip", "files/a.zip", true},
		{"s3://other/files/a.zip", "", false},
		{"https://s3.us-east-1.amazonaws.com/other/files/a.zip", "", false},
		{"https://example.com/files/a.zip", "", false},
		{"s3://assets/", "", false},
		{"ftp://assets/files/a.zip", "", false},
	}
	for _, tc := range cases {
		key, ok := storage.ObjectKey(tc.url)
		assert.Equal(t, tc.ok, ok, tc.url)
		assert.Equal(t, tc.key, key, tc.url)
	}
}

func TestDownloadURLWithoutCredentials(t *testing.T) {
	storage := newTestStorage(t, "")

	link, err := storage.DownloadURL("s3://assets/files/a.zip")
	require.NoError(t, err)
	assert.Equal(t, "s3://assets/files/a.zip", link)

	_, err = storage.GeneratePresignedURL("files/a.zip", storage.presignTTL)
	assert.Error(t, err)
}

func TestDownloadURLPresignsBucketObjects(t *testing.T) {
	storage := newTestStorage(t, "AKIDEXAMPLE")

	link, err := storage.DownloadURL("s3://assets/files/a.zip")
	require.NoError(t, err)
	assert.Contains(t, link, "files/a.zip")
	assert.Contains(t, link, "X-Amz-Signature=")
	assert.Contains(t, link, "X-Amz-Expires=900")

	external := "https://example.com/files/a.zip"
	link, err = storage.DownloadURL(external)
	require.NoError(t, err)
	assert.Equal(t, external, link)
}
