package minio

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
)

var ErrBucketNotFound = errors.New("bucket not found")

// Internal adapter interface to enable mocking without a real S3 endpoint.
type minioAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	return w.c.ListBuckets(ctx)
}
func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}

type apiFactory func(target model.S3Target) (minioAPI, error)

func newMinioAPI(target model.S3Target) (minioAPI, error) {
	c, err := minio.New(target.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(target.AccessKeyID, target.SecretAccessKey, ""),
		Secure: target.Secure,
		Region: target.Region,
	})
	if err != nil {
		return nil, err
	}
	return minioClientWrapper{c: c}, nil
}

var _ model.CredentialProbe = (*Prober)(nil)

// Prober checks S3 credentials by issuing a read-only request with them.
type Prober struct {
	newAPI apiFactory
	logger *logger.Logger
}

// NewProber creates a prober that dials real S3-compatible endpoints.
func NewProber(logger *logger.Logger) *Prober {
	return NewProberWithFactory(newMinioAPI, logger)
}

// NewProberWithFactory allows injecting a mockable API (used in tests).
func NewProberWithFactory(newAPI apiFactory, logger *logger.Logger) *Prober {
	return &Prober{newAPI: newAPI, logger: logger}
}

// Probe lists buckets, or checks the target bucket when one is named.
func (p *Prober) Probe(ctx context.Context, target model.S3Target) error {
	api, err := p.newAPI(target)
	if err != nil {
		return fmt.Errorf("failed to create s3 client: %w", err)
	}

	if target.Bucket != "" {
		exists, err := api.BucketExists(ctx, target.Bucket)
		if err != nil {
			p.logger.Warn("S3 prober: bucket check failed",
				"endpoint", target.Endpoint,
				"bucket", target.Bucket,
				"code", minio.ToErrorResponse(err).Code)
			return fmt.Errorf("failed to check bucket existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", target.Bucket, ErrBucketNotFound)
		}
		return nil
	}

	if _, err := api.ListBuckets(ctx); err != nil {
		p.logger.Warn("S3 prober: list buckets failed",
			"endpoint", target.Endpoint,
			"code", minio.ToErrorResponse(err).Code)
		return fmt.Errorf("failed to list buckets: %w", err)
	}

	return nil
}
