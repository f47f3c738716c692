package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/mailtrack/internal/models"
)

// seams for tests
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Options configures an S3-compatible store (AWS, MinIO and the like).
type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicBaseURL prefixes returned locations; Endpoint is used when empty.
	PublicBaseURL string
}

// S3Uploader puts objects with PutObject and returns their public URL.
type S3Uploader struct {
	client *s3.Client
	opts   S3Options
}

func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Uploader{client: client, opts: opts}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, up *models.Upload) (string, error) {
	key := ObjectPath(nowFn(), up.Name)
	contentType := up.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := putObject(u.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(up.Data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(up.Size()),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", up.Name, err)
	}
	return u.publicURL(key), nil
}

func (u *S3Uploader) publicURL(key string) string {
	base := u.opts.PublicBaseURL
	if base == "" {
		base = u.opts.Endpoint
	}
	return strings.TrimRight(base, "/") + "/" + u.opts.Bucket + "/" + key
}
