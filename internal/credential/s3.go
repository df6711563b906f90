package credential

import (
	"slices"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/model"
)

// S3Provider is the flavour of S3-compatible storage.
type S3Provider string

const (
	ProviderAWS   S3Provider = "AWS"
	ProviderMinio S3Provider = "Minio"

	// DefaultRegion is applied when no region is supplied.
	DefaultRegion = "us-east-1"
)

var (
	s3Providers = []string{string(ProviderAWS), string(ProviderMinio)}
	s3Required  = []string{"provider", "awsAccessKeyId", "awsSecretAccessKey"}
	s3Optional  = []string{"region", "folder", "url"}
)

// S3Record is the canonical S3-compatible credential record.
type S3Record struct {
	Provider           S3Provider
	URL                string
	Folder             string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	Region             string
}

func (S3Record) Backend() model.BackendKind { return model.BackendS3 }

func (r S3Record) Fields() map[string]any {
	m := map[string]any{
		"provider":           string(r.Provider),
		"awsAccessKeyId":     r.AWSAccessKeyID,
		"awsSecretAccessKey": r.AWSSecretAccessKey,
		"region":             r.Region,
	}
	putIfSet(m, "url", r.URL)
	putIfSet(m, "folder", r.Folder)
	return m
}

// AssembleS3 validates params against the S3 schema. A missing region
// defaults to us-east-1; Minio additionally requires url.
func (v *Validator) AssembleS3(in Params) (S3Record, error) {
	params := make(Params, len(in)+1)
	for k, val := range in {
		params[k] = val
	}
	if params.str("region") == "" {
		params["region"] = DefaultRegion
	}

	provider := params.str("provider")
	if provider == "" {
		v.logger.Error("Credential validator: missing required param",
			"backend", "s3",
			"missing", "provider")
		return S3Record{}, apiErrors.NewErrMissingRequiredParams("s3", []string{"provider"})
	}
	if !slices.Contains(s3Providers, provider) {
		v.logger.Error("Credential validator: invalid provider",
			"backend", "s3",
			"provider", provider)
		return S3Record{}, apiErrors.NewErrInvalidEnum("provider", provider, s3Providers)
	}

	if err := v.checkParams("s3", params, s3Required, s3Optional); err != nil {
		return S3Record{}, err
	}

	if S3Provider(provider) == ProviderMinio && params.str("url") == "" {
		v.logger.Error("Credential validator: missing required param for Minio",
			"backend", "s3",
			"missing", "url")
		return S3Record{}, apiErrors.NewErrMissingRequiredParams("s3", []string{"url"})
	}

	return S3Record{
		Provider:           S3Provider(provider),
		URL:                params.str("url"),
		Folder:             params.str("folder"),
		AWSAccessKeyID:     params.str("awsAccessKeyId"),
		AWSSecretAccessKey: params.str("awsSecretAccessKey"),
		Region:             params.str("region"),
	}, nil
}
