package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"media-stamp/internal/domain/repositories"
	"media-stamp/pkg/file"
)

var _ repositories.StorageStrategy = (*S3Storage)(nil)

// ObjectAPI is the subset of the S3 client the publisher needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Storage struct {
	client     ObjectAPI
	bucketName string
	region     string
	prefix     string
}

func NewS3Storage(ctx context.Context, bucketName, region, prefix string) (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "load AWS config")
	}
	return NewS3StorageWithClient(s3.NewFromConfig(cfg), bucketName, region, prefix), nil
}

func NewS3StorageWithClient(client ObjectAPI, bucketName, region, prefix string) *S3Storage {
	return &S3Storage{
		client:     client,
		bucketName: bucketName,
		region:     region,
		prefix:     prefix,
	}
}

// Key is the object key used for a file published under folder.
func (s *S3Storage) Key(localPath, folder string) string {
	return path.Join(s.prefix, folder, filepath.Base(localPath))
}

func (s *S3Storage) Publish(ctx context.Context, localPath, folder string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", errors.Wrap(err, "open output for upload")
	}
	defer f.Close()

	key := s.Key(localPath, folder)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(f, localPath)),
	})
	if err != nil {
		return "", errors.Wrapf(err, "upload %s to s3", key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key), nil
}

// contentType sniffs the file header; derived outputs may carry an extension
// that does not match their encoding.
func contentType(f *os.File, localPath string) string {
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return file.MimeTypeFromExtension(localPath)
	}
	if detected := http.DetectContentType(head[:n]); detected != "application/octet-stream" {
		return detected
	}
	return file.MimeTypeFromExtension(localPath)
}
