package model

import "context"

// S3Target describes an S3-compatible endpoint and the credentials to reach it.
type S3Target struct {
	Endpoint        string
	Secure          bool
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// CredentialProbe checks that S3 credentials are accepted by their endpoint.
type CredentialProbe interface {
	Probe(ctx context.Context, target S3Target) error
}
