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
)

// R2Options configures an R2Store.
type R2Options struct {
	AccountID string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string // e.g. "https://pub-xxx.r2.dev"

	// Endpoint overrides the account endpoint (S3-compatible test servers).
	Endpoint string
}

// R2Store keeps exports in a Cloudflare R2 bucket so every ward workstation
// shares one archive.
type R2Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewR2Store builds an S3 client against the account's R2 endpoint.
func NewR2Store(ctx context.Context, opts R2Options) (*R2Store, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", opts.AccountID)
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = opts.Endpoint != ""
	})

	return &R2Store{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
	}, nil
}

func (s *R2Store) Save(ctx context.Context, path string, data []byte, contentType string) (*FileInfo, error) {
	key, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentLength:      aws.Int64(int64(len(data))),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", baseName(key))),
	})
	if err != nil {
		return nil, fmt.Errorf("r2 put object: %w", err)
	}

	return &FileInfo{
		URL:      s.URL(key),
		Path:     key,
		FileName: baseName(key),
		FileSize: int64(len(data)),
		FileType: contentType,
	}, nil
}

// Delete removes an object. R2 treats a missing key as success.
func (s *R2Store) Delete(ctx context.Context, path string) error {
	key, err := cleanPath(path)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("r2 delete object: %w", err)
	}
	return nil
}

// URL returns the public URL for key.
func (s *R2Store) URL(path string) string {
	return s.publicURL + "/" + strings.TrimLeft(path, "/")
}
