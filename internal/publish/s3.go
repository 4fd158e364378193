// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config selects a bucket on AWS S3 or an S3-compatible server such as MinIO.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional custom endpoint
	AccessKeyID     string // optional; default credential chain otherwise
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool

	// HTTPClient replaces the SDK transport when set.
	HTTPClient s3.HTTPClient
}

// S3Store writes objects into a single bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3 loads the AWS configuration and returns a store for cfg.Bucket.
func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required: set publish.bucket")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) Driver() Driver { return DriverS3 }

// Put uploads r as key. S3 has no create-only put, so a HEAD runs first and
// an existing key fails with ErrExists.
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	switch {
	case err == nil:
		return Info{}, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrExists)
	case !isNotFound(err):
		return Info{}, fmt.Errorf("checking s3://%s/%s: %w", s.bucket, key, err)
	}

	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: r}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = opts.Metadata
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Info{}, fmt.Errorf("uploading s3://%s/%s: %w", s.bucket, key, err)
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return Info{}, fmt.Errorf("verifying s3://%s/%s: %w", s.bucket, key, err)
	}
	info := Info{
		Key:          key,
		Size:         aws.ToInt64(head.ContentLength),
		ContentType:  aws.ToString(head.ContentType),
		ETag:         strings.Trim(aws.ToString(head.ETag), `"`),
		Metadata:     head.Metadata,
		LastModified: time.Now().UTC(),
		URL:          fmt.Sprintf("s3://%s/%s", s.bucket, key),
	}
	if head.LastModified != nil {
		info.LastModified = *head.LastModified
	}
	return info, nil
}

func isNotFound(err error) bool {
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var status interface{ HTTPStatusCode() int }
	return errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound
}
