package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/credential"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
)

// sessionSecretFields are never returned by SessionView.
var sessionSecretFields = []string{
	"access_token",
	"refresh_token",
	"awsAccessKeyId",
	"awsSecretAccessKey",
	"clientSecret",
}

// Configuration manages the backend credential records of user sessions.
type Configuration struct {
	validator   *credential.Validator
	merger      *Merger
	registry    ConfigSource
	probe       model.CredentialProbe
	oauth       model.OAuthExchanger
	awsEndpoint string
	logger      *logger.Logger
}

func NewConfiguration(
	validator *credential.Validator,
	merger *Merger,
	registry ConfigSource,
	probe model.CredentialProbe,
	oauth model.OAuthExchanger,
	awsEndpoint string,
	logger *logger.Logger,
) *Configuration {
	return &Configuration{
		validator:   validator,
		merger:      merger,
		registry:    registry,
		probe:       probe,
		oauth:       oauth,
		awsEndpoint: awsEndpoint,
		logger:      logger,
	}
}

// SaveServiceConfiguration validates params for serviceName and merges the
// resulting record into the session.
func (s *Configuration) SaveServiceConfiguration(ctx context.Context, session model.Session, serviceName string, params credential.Params) error {
	record, err := s.validator.Assemble(model.BackendKind(serviceName), params)
	if err != nil {
		return err
	}

	if err := s.merger.MergeServiceConfiguration(ctx, session.ID, serviceName, record.Fields()); err != nil {
		return fmt.Errorf("failed to merge service configuration: %w", err)
	}

	return nil
}

// PublicServiceConfiguration returns the registry entries for serviceName
// with private fields removed.
func (s *Configuration) PublicServiceConfiguration(serviceName string) ([]model.RegistryEntry, error) {
	entries, ok := s.registry.Current().PublicServiceEntries(serviceName)
	if !ok {
		return nil, apiErrors.NewErrServiceNotFound(serviceName)
	}
	return entries, nil
}

// VerifyServiceConfiguration checks that an S3 record's credentials are accepted
// by its endpoint. Nothing is stored.
func (s *Configuration) VerifyServiceConfiguration(ctx context.Context, serviceName string, params credential.Params) error {
	if model.BackendKind(serviceName) != model.BackendS3 {
		return apiErrors.NewErrBadRequest(fmt.Sprintf("credential verification is not supported for %s", serviceName))
	}

	record, err := s.validator.AssembleS3(params)
	if err != nil {
		return err
	}

	composed, err := s.merger.Compose(serviceName, record.Fields())
	if err != nil {
		return fmt.Errorf("failed to compose s3 record: %w", err)
	}

	target, err := s.s3Target(composed)
	if err != nil {
		return err
	}

	if err := s.probe.Probe(ctx, target); err != nil {
		s.logger.Warn("Configuration service: s3 credentials rejected",
			"endpoint", target.Endpoint,
			"error", err.Error())
		return apiErrors.NewErrBadRequest("S3 credentials were rejected by the endpoint")
	}

	return nil
}

func (s *Configuration) s3Target(record map[string]any) (model.S3Target, error) {
	str := func(key string) string {
		v, _ := record[key].(string)
		return v
	}

	target := model.S3Target{
		Endpoint:        s.awsEndpoint,
		Secure:          true,
		Region:          str("region"),
		AccessKeyID:     str("awsAccessKeyId"),
		SecretAccessKey: str("awsSecretAccessKey"),
		Bucket:          str("bucket"),
	}

	if str("provider") == string(credential.ProviderMinio) {
		u, err := url.Parse(str("url"))
		if err != nil || u.Host == "" {
			return model.S3Target{}, apiErrors.NewErrBadRequest("Minio url must be an absolute http(s) url")
		}
		target.Endpoint = u.Host
		target.Secure = u.Scheme == "https"
	}

	return target, nil
}

// ExchangeOAuthCode trades an ownCloud authorization code issued by host and
// merges the resulting credentials into the session. Every failure is a BadRequest.
func (s *Configuration) ExchangeOAuthCode(ctx context.Context, session model.Session, serviceName, host, code string) error {
	if model.BackendKind(serviceName) != model.BackendOwncloud {
		return apiErrors.NewErrBadRequest(fmt.Sprintf("oauth code exchange is not supported for %s", serviceName))
	}
	if host == "" || code == "" {
		return apiErrors.NewErrBadRequest("host and code are required")
	}

	entry, ok := s.registry.Current().EntryByURL(serviceName, host)
	if !ok {
		s.logger.Error("Configuration service: no registered service for oauth host",
			"service", serviceName,
			"host", host)
		return apiErrors.NewErrBadRequest(fmt.Sprintf("no %s service is registered for %s", serviceName, host))
	}

	params, err := s.oauth.Exchange(ctx, entry, code)
	if err != nil {
		return apiErrors.NewErrBadRequest(err.Error())
	}

	record, err := s.validator.AssembleOwncloud(params)
	if err != nil {
		return err
	}

	if err := s.merger.MergeServiceConfiguration(ctx, session.ID, serviceName, record.Fields()); err != nil {
		return apiErrors.NewErrBadRequest(err.Error())
	}

	return nil
}

// SessionView is the privacy-filtered view of a session returned to its owner.
type SessionView struct {
	EmbeddedSession bool           `json:"embeddedSession"`
	Session         map[string]any `json:"session"`
}

// ViewSession strips secrets from every backend record of session.
// It returns nil when the session has no data.
func ViewSession(session model.Session) *SessionView {
	if session.Data == nil {
		return nil
	}

	view := make(map[string]any, len(session.Data))
	for k, v := range session.Data {
		view[k] = v
	}

	if _, ok := session.Data["service"]; ok {
		services := make(map[string]any)
		for name, record := range session.Data.Services() {
			public := make(map[string]any, len(record))
			for k, v := range record {
				if !slices.Contains(sessionSecretFields, k) {
					public[k] = v
				}
			}
			services[name] = public
		}
		view["service"] = services
	}

	return &SessionView{
		EmbeddedSession: session.Embedded(),
		Session:         view,
	}
}
