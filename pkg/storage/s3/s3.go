// Package s3 uploads the scraper output to an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/book-scraper/pkg/logging"
)

// ContentType of uploaded objects.
const ContentType = "application/json; charset=utf-8"

// putObjectAPI is the subset of *s3.Client used by Uploader.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes objects into one bucket.
type Uploader struct {
	client putObjectAPI
	bucket string
	logger zerolog.Logger
}

// Options configures New.
type Options struct {
	Bucket string
	// Endpoint overrides the AWS endpoint for S3-compatible stores
	// (MinIO, R2); path-style addressing is used when it is set.
	Endpoint string
	Region   string
}

// New initializes an uploader. Static credentials are taken from
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY when present; otherwise the
// default AWS credential chain applies.
func New(ctx context.Context, opts Options) (*Uploader, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if id := os.Getenv("AWS_ACCESS_KEY_ID"); id != "" {
		creds := credentials.NewStaticCredentialsProvider(id, os.Getenv("AWS_SECRET_ACCESS_KEY"), "")
		loadOpts = append(loadOpts, config.WithCredentialsProvider(creds))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newUploader(client, opts.Bucket), nil
}

func newUploader(client putObjectAPI, bucket string) *Uploader {
	return &Uploader{
		client: client,
		bucket: bucket,
		logger: logging.NewLogger("s3"),
	}
}

// Bucket returns the target bucket.
func (u *Uploader) Bucket() string {
	return u.bucket
}

// Upload stores data under key and returns the object location.
func (u *Uploader) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if key == "" {
		return "", errors.New("s3 object key is required")
	}

	start := time.Now()
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", u.bucket, key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	u.logger.Info().
		Str("location", location).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Uploaded output")

	return location, nil
}
