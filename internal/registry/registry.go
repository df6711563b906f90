// Package registry loads the operator configuration: identity provider
// settings, trusted per-backend service entries and registered applications.
package registry

import (
	"crypto/subtle"
	"fmt"
	"os"
	"slices"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
)

// DefaultOktaAudience is the audience of Okta's default authorization server.
const DefaultOktaAudience = "api://default"

// privateFields are stripped from registry entries before they leave the server.
var privateFields = []string{"clientSecret", "awsAccessKeyId", "awsSecretAccessKey"}

// Configuration is a snapshot of the operator configuration file.
type Configuration struct {
	IdentityProviders IdentityProviders                `yaml:"identityProviders"`
	Services          map[string][]model.RegistryEntry `yaml:"services"`
	Applications      []model.Application              `yaml:"applications"`
}

// IdentityProviders holds per-provider settings.
type IdentityProviders struct {
	Okta OktaConfig `yaml:"okta"`
	Reva RevaConfig `yaml:"reva"`
}

// OktaConfig identifies the Okta authorization server access tokens must come from.
type OktaConfig struct {
	Issuer   string `yaml:"issuer"`
	ClientID string `yaml:"clientId"`
	Audience string `yaml:"audience"`
}

// RevaConfig restricts which CS3 gateways callers may name. Empty allows any.
type RevaConfig struct {
	Gateways []string `yaml:"gateways"`
}

// GatewayAllowed reports whether addr may be used as a Reva gateway.
func (c RevaConfig) GatewayAllowed(addr string) bool {
	return len(c.Gateways) == 0 || slices.Contains(c.Gateways, addr)
}

// Parse decodes a YAML operator configuration.
func Parse(raw []byte) (*Configuration, error) {
	var cfg Configuration
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	if cfg.IdentityProviders.Okta.Audience == "" {
		cfg.IdentityProviders.Okta.Audience = DefaultOktaAudience
	}
	for i, app := range cfg.Applications {
		if app.Name == "" || app.Secret == "" {
			return nil, fmt.Errorf("application %d must define name and secret", i)
		}
	}
	return &cfg, nil
}

// MatchService returns the registry entry for backend that applies to record.
// URL-keyed entries match on record["url"]; entries without a url match on
// record["provider"]. No match yields an empty entry.
func (c *Configuration) MatchService(backend string, record map[string]any) model.RegistryEntry {
	url, _ := record["url"].(string)
	provider, _ := record["provider"].(string)

	for _, entry := range c.Services[backend] {
		if entry.URL() != "" {
			if entry.URL() == url {
				return entry
			}
			continue
		}
		if entry.Provider() != "" && entry.Provider() == provider {
			return entry
		}
	}

	return model.RegistryEntry{}
}

// EntryByURL returns the registry entry for backend whose url equals url.
func (c *Configuration) EntryByURL(backend, url string) (model.RegistryEntry, bool) {
	for _, entry := range c.Services[backend] {
		if entry.URL() == url {
			return entry, true
		}
	}
	return nil, false
}

// PublicServiceEntries returns the entries for backend without private fields.
func (c *Configuration) PublicServiceEntries(backend string) ([]model.RegistryEntry, bool) {
	entries, ok := c.Services[backend]
	if !ok {
		return nil, false
	}

	out := make([]model.RegistryEntry, 0, len(entries))
	for _, entry := range entries {
		public := make(model.RegistryEntry, len(entry))
		for k, v := range entry {
			if !slices.Contains(privateFields, k) {
				public[k] = v
			}
		}
		out = append(out, public)
	}

	return out, true
}

// ApplicationBySecret resolves a bearer secret to its registered application.
func (c *Configuration) ApplicationBySecret(secret string) (model.Application, bool) {
	if secret == "" {
		return model.Application{}, false
	}
	for _, app := range c.Applications {
		if subtle.ConstantTimeCompare([]byte(app.Secret), []byte(secret)) == 1 {
			return app, true
		}
	}
	return model.Application{}, false
}

// Store holds the current configuration snapshot and reloads it on request.
type Store struct {
	path    string
	current atomic.Pointer[Configuration]
	logger  *logger.Logger
}

// NewStore creates a Store reading from path. Call Load before Current.
func NewStore(path string, logger *logger.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// NewStaticStore returns a Store serving cfg that cannot be reloaded from disk.
func NewStaticStore(cfg *Configuration) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Load reads and parses the configuration file and makes it current.
func (s *Store) Load() (*Configuration, error) {
	if s.path == "" {
		return nil, fmt.Errorf("registry store has no file to load")
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	s.current.Store(cfg)

	return cfg, nil
}

// Reload re-reads the file. On failure the previous snapshot stays current.
func (s *Store) Reload() error {
	cfg, err := s.Load()
	if err != nil {
		s.logger.Error("Registry: reload failed, keeping previous configuration",
			"path", s.path,
			"error", err.Error())
		return err
	}

	s.logger.Info("Registry: configuration reloaded",
		"path", s.path,
		"services", len(cfg.Services),
		"applications", len(cfg.Applications))
	return nil
}

// Current returns the active snapshot, or an empty configuration if none was loaded.
func (s *Store) Current() *Configuration {
	if cfg := s.current.Load(); cfg != nil {
		return cfg
	}
	return &Configuration{}
}
