package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram/backend/config"
)

var ErrInvalidImageData = errors.New("invalid image data")

// ImageStore persists decoded avatar and recipe images and returns the
// URL they are served from.
type ImageStore interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
	Delete(ctx context.Context, url string) error
}

// DecodeBase64Image decodes a "data:image/<type>;base64,<payload>" URI.
// Returns the raw bytes and the file extension.
func DecodeBase64Image(dataURI string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return nil, "", ErrInvalidImageData
	}

	rest := strings.TrimPrefix(dataURI, "data:image/")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return nil, "", ErrInvalidImageData
	}

	ext := rest[:sep]
	switch ext {
	case "jpeg", "jpg", "png", "gif", "webp":
	default:
		return nil, "", ErrInvalidImageData
	}

	data, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil || len(data) == 0 {
		return nil, "", ErrInvalidImageData
	}

	return data, ext, nil
}

// LocalImageStore writes images to a directory on disk
type LocalImageStore struct {
	dir     string
	baseURL string
}

// NewLocalImageStore creates a disk-backed image store rooted at dir
func NewLocalImageStore(dir, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalImageStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, data []byte, ext string) (string, error) {
	name := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// S3ImageStore uploads images to an S3 bucket with public-read URLs
type S3ImageStore struct {
	s3Config *config.S3Config
}

// NewS3ImageStore creates an S3-backed image store
func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte, ext string) (string, error) {
	key := fmt.Sprintf("images/%s.%s", uuid.New().String(), ext)

	contentType := "image/" + ext
	if ext == "jpg" {
		contentType = "image/jpeg"
	}

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	return s.s3Config.ObjectURL(key), nil
}

func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	idx := strings.Index(url, "/images/")
	if idx < 0 {
		return nil
	}
	key := url[idx+1:]

	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from S3: %w", err)
	}
	return nil
}
