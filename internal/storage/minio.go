package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
type MinioStorage struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists with a public-read
// policy, and returns a ready-to-use MinioStorage.
func NewMinioStorage(ctx context.Context, endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool, log *zap.Logger) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Info("created bucket", zap.String("bucket", bucket))
	}

	if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &MinioStorage{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Upload streams the file at path into the bucket. An S3 error response
// keeps its HTTP status in the result alongside the error.
func (s *MinioStorage) Upload(ctx context.Context, path, fileName string, opts UploadOptions) (*UploadResult, error) {
	key := objectName(fileName, opts.UniqueFileName)

	putOpts := minio.PutObjectOptions{ContentType: opts.ContentType}
	if len(opts.Tags) > 0 {
		putOpts.UserTags = make(map[string]string, len(opts.Tags))
		for _, t := range opts.Tags {
			putOpts.UserTags[t] = "true"
		}
	}

	info, err := s.client.FPutObject(ctx, s.bucket, key, path, putOpts)
	if err != nil {
		wrapped := fmt.Errorf("%w: put object %q: %w", ErrUploadFailed, key, err)
		if status := minio.ToErrorResponse(err).StatusCode; status != 0 {
			return &UploadResult{Name: key, StatusCode: status}, wrapped
		}
		return nil, wrapped
	}

	return &UploadResult{
		URL:        s.PublicURL(info.Key),
		Name:       info.Key,
		StatusCode: http.StatusOK,
	}, nil
}

// PublicURL returns the browser-accessible URL for the given key.
// For local MinIO: "http://localhost:9000/media/cat_1a2b3c4d.png"
func (s *MinioStorage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
