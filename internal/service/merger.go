package service

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"dario.cat/mergo"
	"github.com/google/uuid"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/metrics"
	"github.com/dtroode/filegate-session/internal/model"
	"github.com/dtroode/filegate-session/internal/registry"
)

// ConfigSource provides the current operator configuration.
type ConfigSource interface {
	Current() *registry.Configuration
}

// Merger folds backend credential records into session data,
// letting operator registry entries win over client-supplied values.
type Merger struct {
	sessions model.SessionStore
	registry ConfigSource
	metrics  metrics.MetricsCollector
	logger   *logger.Logger
}

func NewMerger(
	sessions model.SessionStore,
	registry ConfigSource,
	metrics metrics.MetricsCollector,
	logger *logger.Logger,
) *Merger {
	return &Merger{
		sessions: sessions,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// Compose returns record overlaid with the matching registry entry for backend.
// record itself is not modified.
func (m *Merger) Compose(backend string, record map[string]any) (map[string]any, error) {
	entry := m.registry.Current().MatchService(backend, record)

	merged := make(map[string]any, len(record)+len(entry))
	maps.Copy(merged, record)
	if len(entry) == 0 {
		return merged, nil
	}

	if err := mergo.Merge(&merged, map[string]any(entry), mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge registry entry: %w", err)
	}
	// mergo descends into nested maps; registry keys replace whole values.
	maps.Copy(merged, entry)

	return merged, nil
}

// MergeServiceConfiguration composes record with the registry and stores it
// as the session's data.service[backend]. Other data is carried forward.
func (m *Merger) MergeServiceConfiguration(ctx context.Context, sessionID uuid.UUID, backend string, record map[string]any) error {
	session, err := m.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, model.ErrNotFound) {
		m.logger.Error("Merger service: session not found",
			"session_id", sessionID.String())
		return apiErrors.NewErrSessionNotFound(sessionID.String())
	}
	if err != nil {
		return fmt.Errorf("failed to get session by id: %w", err)
	}

	return m.merge(ctx, session, backend, record)
}

func (m *Merger) merge(ctx context.Context, session model.Session, backend string, record map[string]any) error {
	merged, err := m.Compose(backend, record)
	if err != nil {
		return err
	}

	data := session.Data.WithService(backend, merged)
	if err := m.sessions.UpdateData(ctx, session.ID, data); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.NewErrSessionNotFound(session.ID.String())
		}
		return fmt.Errorf("failed to update session data: %w", err)
	}

	m.metrics.RecordServiceMerge(backend)
	m.logger.Debug("Merger service: service configuration saved",
		"session_id", session.ID.String(),
		"backend", backend)

	return nil
}
