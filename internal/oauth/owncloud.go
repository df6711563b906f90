// Package oauth exchanges backend authorization codes for credentials.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
)

const (
	owncloudAuthPath  = "/index.php/apps/oauth2/authorize"
	owncloudTokenPath = "/index.php/apps/oauth2/api/v1/token"
)

var ErrMissingClientCredentials = errors.New("service entry has no clientId or clientSecret")

var _ model.OAuthExchanger = (*Owncloud)(nil)

// Owncloud performs the ownCloud OAuth2 authorization code grant.
type Owncloud struct {
	httpClient *http.Client
	logger     *logger.Logger
}

func NewOwncloud(httpClient *http.Client, logger *logger.Logger) *Owncloud {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Owncloud{httpClient: httpClient, logger: logger}
}

// Exchange trades code at the entry's token endpoint and returns an
// owncloud credential record: url, access_token, refresh_token and user_id.
func (o *Owncloud) Exchange(ctx context.Context, entry model.RegistryEntry, code string) (map[string]any, error) {
	base := strings.TrimSuffix(entry.URL(), "/")
	clientID := entry.String("clientId")
	clientSecret := entry.String("clientSecret")
	if base == "" || clientID == "" || clientSecret == "" {
		return nil, ErrMissingClientCredentials
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  entry.String("redirectUri"),
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + owncloudAuthPath,
			TokenURL:  base + owncloudTokenPath,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		o.logger.Error("OAuth exchanger: code exchange failed",
			"url", base,
			"error", err.Error())
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	record := map[string]any{
		"url":          entry.URL(),
		"access_token": tok.AccessToken,
	}
	if tok.RefreshToken != "" {
		record["refresh_token"] = tok.RefreshToken
	}
	if userID := tok.Extra("user_id"); userID != nil {
		record["user_id"] = fmt.Sprint(userID)
	}

	o.logger.Debug("OAuth exchanger: code exchanged",
		"url", base,
		"has_refresh_token", tok.RefreshToken != "")

	return record, nil
}
