package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/JaimeStill/webcarros/pkg/lifecycle"
)

// objectAPI is the subset of *s3.Client used by the s3 provider.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// presignAPI is the subset of *s3.PresignClient used to resolve URLs.
type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type objectStore struct {
	client     objectAPI
	presign    presignAPI
	bucket     string
	publicURL  string
	presignTTL time.Duration
	logger     *slog.Logger
}

// NewS3 creates a storage system over an S3-compatible bucket.
// Static credentials are used when configured; otherwise the default AWS chain applies.
func NewS3(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	})

	return newObjectStore(client, s3.NewPresignClient(client), cfg, logger), nil
}

func newObjectStore(client objectAPI, presign presignAPI, cfg *Config, logger *slog.Logger) *objectStore {
	return &objectStore{
		client:     client,
		presign:    presign,
		bucket:     cfg.S3.Bucket,
		publicURL:  cfg.PublicURL,
		presignTTL: cfg.S3.PresignTTLDuration(),
		logger:     logger.With("system", "storage", "provider", ProviderS3),
	}
}

func (o *objectStore) Start(lc *lifecycle.Coordinator) error {
	o.logger.Info("starting storage system", "bucket", o.bucket)

	lc.OnStartup(func() {
		_, err := o.client.HeadBucket(lc.Context(), &s3.HeadBucketInput{
			Bucket: aws.String(o.bucket),
		})
		if err != nil {
			o.logger.Error("bucket check failed", "bucket", o.bucket, "error", err)
			return
		}
		o.logger.Info("bucket reachable", "bucket", o.bucket)
	})

	return nil
}

func (o *objectStore) Store(ctx context.Context, key string, data []byte, contentType string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(o.bucket),
		Key:           aws.String(cleaned),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := o.client.PutObject(ctx, in); err != nil {
		return mapS3Error(err, "put object")
	}
	return nil
}

func (o *objectStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		return nil, mapS3Error(err, "get object")
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

func (o *objectStore) Delete(ctx context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}

	_, err = o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		if errors.Is(mapS3Error(err, ""), ErrNotFound) {
			return nil
		}
		return mapS3Error(err, "delete object")
	}
	return nil
}

func (o *objectStore) Validate(ctx context.Context, key string) (bool, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return false, err
	}

	_, err = o.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		mapped := mapS3Error(err, "head object")
		if errors.Is(mapped, ErrNotFound) {
			return false, nil
		}
		return false, mapped
	}
	return true, nil
}

// URL returns public_url/key when a public URL is configured, otherwise a
// presigned GET URL valid for presign_ttl.
func (o *objectStore) URL(ctx context.Context, key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	if o.publicURL != "" {
		return joinURL(o.publicURL, cleaned), nil
	}

	req, err := o.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(cleaned),
	}, s3.WithPresignExpires(o.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

func mapS3Error(err error, op string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrNotFound
		case "AccessDenied", "Forbidden":
			return ErrPermissionDenied
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
