// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/exetool/store-backend/internal/cms"
	"github.com/exetool/store-backend/internal/config"
)

// StorageService handles admin image uploads. The CMS asset endpoint is tried
// first so images live next to the documents that reference them; S3 is the
// fallback when the CMS rejects the upload or is unreachable.
type StorageService struct {
	cms      *cms.Client
	s3Client *s3.S3
	config   *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	AssetID  string `json:"assetId,omitempty"`
	Key      string `json:"key,omitempty"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	Backend  string `json:"backend"`
}

var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

const maxImageSize = 10 * 1024 * 1024 // 10MB

func NewStorageService(cmsClient *cms.Client, config *config.Config) (*StorageService, error) {
	svc := &StorageService{cms: cmsClient, config: config}

	if config.AWS.AccessKeyID == "" {
		// No S3 fallback in local development; CMS uploads still work.
		return svc, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return svc, fmt.Errorf("failed to create AWS session: %w", err)
	}

	svc.s3Client = s3.New(sess)
	return svc, nil
}

// UploadImage validates the file and runs the CMS-then-S3 fallback chain.
func (s *StorageService) UploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > maxImageSize {
		return nil, fmt.Errorf("file size %d bytes exceeds maximum allowed size %d bytes", header.Size, maxImageSize)
	}

	fileExt := strings.ToLower(filepath.Ext(header.Filename))
	allowed := false
	for _, ext := range allowedImageExtensions {
		if fileExt == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("file type %s is not allowed", fileExt)
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	assetID, url, cmsErr := s.cms.UploadAsset(ctx, fileBytes, contentType, header.Filename)
	if cmsErr == nil {
		return &UploadResult{
			URL:      url,
			AssetID:  assetID,
			Size:     int64(len(fileBytes)),
			MimeType: contentType,
			Backend:  "cms",
		}, nil
	}

	logrus.WithError(cmsErr).Warn("CMS asset upload failed, falling back to S3")

	if s.s3Client == nil {
		return nil, fmt.Errorf("upload failed: %w", cmsErr)
	}

	return s.uploadToS3(fileBytes, s.generateFileName(header.Filename), contentType)
}

func (s *StorageService) uploadToS3(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
		ACL:           aws.String("public-read"),
	}

	if _, err := s.s3Client.PutObject(params); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
		Backend:  "s3",
	}, nil
}

func (s *StorageService) DeleteFile(key string) error {
	if s.s3Client == nil {
		logrus.WithField("key", key).Info("S3 not configured, skipping delete")
		return nil
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *StorageService) generateFileName(original string) string {
	ext := filepath.Ext(original)
	return fmt.Sprintf("uploads/%d_%s%s", time.Now().Unix(), uuid.New().String()[:8], ext)
}

func (s *StorageService) getS3URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}
