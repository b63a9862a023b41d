package services

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	uploadBucket  = "uploads"
	uploadPrefix  = "/uploads/"
	maxImageBytes = 5 * 1024 * 1024
)

var (
	ErrUnsupportedImage = errors.New("only JPEG, JPG and PNG files are allowed")
	ErrImageTooLarge    = errors.New("image exceeds the 5MB limit")
)

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

var allowedImageMimetypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// StorageService stores uploaded meter and project images and resolves them
// for read-only serving.
type StorageService interface {
	UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error)
	PresignedURL(objectName string, expiry time.Duration) (string, error)
	EnsureBucketExists(ctx context.Context) error
}

type minioStorage struct {
	client *minio.Client
}

func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool) (StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStorage{client: client}, nil
}

// ValidateImage gates an upload on extension, declared mimetype and size
// before any bytes are stored. The returned content type follows the
// extension; the client-declared one is only checked, never trusted.
func ValidateImage(file *multipart.FileHeader) (contentType string, err error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return "", ErrUnsupportedImage
	}
	if declared := file.Header.Get("Content-Type"); declared != "" && !allowedImageMimetypes[declared] {
		return "", ErrUnsupportedImage
	}
	if file.Size > maxImageBytes {
		return "", ErrImageTooLarge
	}
	return contentType, nil
}

func (s *minioStorage) UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	contentType, err := ValidateImage(file)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	objectName := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	_, err = s.client.PutObject(ctx, uploadBucket, objectName, src, file.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return uploadPrefix + objectName, nil
}

func (s *minioStorage) PresignedURL(objectName string, expiry time.Duration) (string, error) {
	url, err := s.client.PresignedGetObject(context.Background(), uploadBucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (s *minioStorage) EnsureBucketExists(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, uploadBucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, uploadBucket, minio.MakeBucketOptions{})
	}
	return nil
}
