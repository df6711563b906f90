package service

import (
	"sync"
	"time"

	"github.com/dtroode/filegate-session/internal/credential"
	"github.com/dtroode/filegate-session/internal/model"
	"github.com/dtroode/filegate-session/internal/registry"
	"github.com/dtroode/filegate-session/internal/testutil"
)

// spyMetrics counts recorded events by label.
type spyMetrics struct {
	mu       sync.Mutex
	issued   map[string]int
	failures map[string]int
	merges   map[string]int
}

func newTestMetrics() *spyMetrics {
	return &spyMetrics{
		issued:   map[string]int{},
		failures: map[string]int{},
		merges:   map[string]int{},
	}
}

func (s *spyMetrics) RecordSessionIssued(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[provider]++
}

func (s *spyMetrics) RecordVerificationFailure(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[provider]++
}

func (s *spyMetrics) RecordServiceMerge(backend string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merges[backend]++
}

func (s *spyMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}

func newTestValidator() *credential.Validator {
	return credential.NewValidator(testutil.MakeNoopLogger())
}

func staticRegistry(services map[string][]model.RegistryEntry, apps ...model.Application) *registry.Store {
	return registry.NewStaticStore(&registry.Configuration{
		Services:     services,
		Applications: apps,
	})
}
