// internal/services/storage_service.go
package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/snapstudio/marketplace-backend/internal/config"
)

// StorageService turns stored file URLs into download links. Files are
// uploaded to object storage by clients; only URLs reach this service.
type StorageService struct {
	s3Client   *s3.S3
	bucket     string
	cdnURL     string
	presignTTL time.Duration
}

func NewStorageService(cfg config.AWSConfig) (*StorageService, error) {
	service := &StorageService{
		bucket:     cfg.S3Bucket,
		cdnURL:     strings.TrimSuffix(cfg.CloudFrontURL, "/"),
		presignTTL: time.Duration(cfg.PresignTTL) * time.Minute,
	}

	if cfg.AccessKeyID == "" {
		// Without credentials stored URLs are returned as they are
		return service, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	service.s3Client = s3.New(sess)
	return service, nil
}

// DownloadURL returns a presigned link when fileURL points into the
// configured bucket, otherwise fileURL unchanged.
func (s *StorageService) DownloadURL(fileURL string) (string, error) {
	if s.s3Client == nil {
		return fileURL, nil
	}

	key, ok := s.ObjectKey(fileURL)
	if !ok {
		return fileURL, nil
	}

	return s.GeneratePresignedURL(key, s.presignTTL)
}

func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url, nil
}

// ObjectKey extracts the object key from s3://, virtual-hosted, path-style
// and CDN URLs of the configured bucket.
func (s *StorageService) ObjectKey(fileURL string) (string, bool) {
	if s.bucket == "" {
		return "", false
	}

	if s.cdnURL != "" && strings.HasPrefix(fileURL, s.cdnURL+"/") {
		return nonEmptyKey(strings.TrimPrefix(fileURL, s.cdnURL+"/"))
	}

	u, err := url.Parse(fileURL)
	if err != nil {
		return "", false
	}
	path := strings.TrimPrefix(u.Path, "/")

	switch {
	case u.Scheme == "s3" && u.Host == s.bucket:
		return nonEmptyKey(path)
	case u.Scheme != "https" && u.Scheme != "http":
		return "", false
	case strings.HasPrefix(u.Host, s.bucket+".s3.") && strings.HasSuffix(u.Host, ".amazonaws.com"):
		return nonEmptyKey(path)
	case strings.HasPrefix(u.Host, "s3.") && strings.HasSuffix(u.Host, ".amazonaws.com") && strings.HasPrefix(path, s.bucket+"/"):
		return nonEmptyKey(strings.TrimPrefix(path, s.bucket+"/"))
	}
	return "", false
}

func nonEmptyKey(key string) (string, bool) {
	return key, key != ""
}
