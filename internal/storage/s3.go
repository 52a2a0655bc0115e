// Package storage keeps note attachments in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	defaultUploadExpiry   = 15 * time.Minute
	defaultDownloadExpiry = time.Hour
	attachmentsRoot       = "attachments"
)

// S3ClientConfig points the client at AWS or any S3-compatible endpoint.
// Zero expiries fall back to 15 minutes for uploads and an hour for
// downloads.
type S3ClientConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
	UploadExpiry    time.Duration
	DownloadExpiry  time.Duration
}

// S3Client presigns attachment transfers and deletes attachment objects.
// Object bytes never pass through the API server.
type S3Client struct {
	api      *s3.Client
	presign  *s3.PresignClient
	bucket   string
	upload   time.Duration
	download time.Duration
}

func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*S3Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Client{
		api:      api,
		presign:  s3.NewPresignClient(api),
		bucket:   cfg.Bucket,
		upload:   orDefault(cfg.UploadExpiry, defaultUploadExpiry),
		download: orDefault(cfg.DownloadExpiry, defaultDownloadExpiry),
	}, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// UploadExpiry is how long an upload URL stays valid.
func (c *S3Client) UploadExpiry() time.Duration { return c.upload }

// DownloadExpiry is how long a download URL stays valid.
func (c *S3Client) DownloadExpiry() time.Duration { return c.download }

// AttachmentKey builds the object key for a user's upload. Keys live under
// the owner's prefix so ownership can be checked from the key alone.
func AttachmentKey(userID, uploadID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "attachment"
	}
	return path.Join(attachmentsRoot, userID, uploadID+"-"+name)
}

// OwnsKey reports whether key was issued under userID's prefix.
func OwnsKey(userID, key string) bool {
	return userID != "" && strings.HasPrefix(key, path.Join(attachmentsRoot, userID)+"/")
}

// GenerateUploadURL presigns a PUT of key with the given content type.
func (c *S3Client) GenerateUploadURL(ctx context.Context, key, contentType string) (string, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(c.upload))
	if err != nil {
		return "", fmt.Errorf("presign upload of %s: %w", key, err)
	}
	return req.URL, nil
}

// GenerateDownloadURL presigns a GET of key.
func (c *S3Client) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.download))
	if err != nil {
		return "", fmt.Errorf("presign download of %s: %w", key, err)
	}
	return req.URL, nil
}

// DeleteObject removes key. S3 reports success for keys that do not exist.
func (c *S3Client) DeleteObject(ctx context.Context, key string) error {
	if _, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// EnsureBucket creates the bucket unless it already exists.
func (c *S3Client) EnsureBucket(ctx context.Context) error {
	if _, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err == nil {
		return nil
	}

	_, err := c.api.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	var exists *types.BucketAlreadyExists
	if err != nil && !errors.As(err, &owned) && !errors.As(err, &exists) {
		return fmt.Errorf("create bucket %s: %w", c.bucket, err)
	}
	return nil
}
