// Package objectstore copies workbook backups to an S3 compatible bucket
// (AWS S3, MinIO) and hands out short-lived download links for them.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	defaultPrefix     = "backups"
	defaultPresignTTL = 15 * time.Minute
	contentTypeXLSX   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint is the base URL of a non-AWS service such as MinIO. Empty
	// means AWS.
	Endpoint string
	Bucket   string
	// Prefix is prepended to every object key. Empty means "backups".
	Prefix     string
	PresignTTL time.Duration
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type presignGetAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// Store is a bucket holding workbook backups.
type Store struct {
	bucket  string
	prefix  string
	ttl     time.Duration
	client  putObjectAPI
	presign presignGetAPI
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("objectstore: bucket is required")
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("objectstore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newStore(cfg, client, s3.NewPresignClient(client)), nil
}

func newStore(cfg Config, client putObjectAPI, presign presignGetAPI) *Store {
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = defaultPresignTTL
	}
	return &Store{
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		ttl:     cfg.PresignTTL,
		client:  client,
		presign: presign,
	}
}

// Upload stores body under the backup name.
func (s *Store) Upload(ctx context.Context, name string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.Key(name)),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentTypeXLSX),
	})
	if err != nil {
		return fmt.Errorf("objectstore: put %s: %w", name, err)
	}
	return nil
}

// PresignGetURL returns a time-limited GET link for a backup.
func (s *Store) PresignGetURL(ctx context.Context, name string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(name)),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("objectstore: presign %s: %w", name, err)
	}
	return req.URL, nil
}

func (s *Store) Key(name string) string {
	return path.Join(s.prefix, name)
}
