package model

import "context"

// OAuthExchanger trades an authorization code for backend credentials.
type OAuthExchanger interface {
	Exchange(ctx context.Context, entry RegistryEntry, code string) (map[string]any, error)
}
