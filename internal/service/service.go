// Package service wires the session manager, schema cache, reference
// resolver, workflow index and search dispatcher into one explicit
// context object constructed at startup and passed to every consumer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/trackline/trackline/internal/auth"
	"github.com/trackline/trackline/internal/client"
	"github.com/trackline/trackline/internal/history"
	"github.com/trackline/trackline/internal/models"
	"github.com/trackline/trackline/internal/resolver"
	"github.com/trackline/trackline/internal/schema"
	"github.com/trackline/trackline/internal/search"
	"github.com/trackline/trackline/internal/workflow"
)

// ErrNotLoggedIn is returned by read operations before a valid session
// exists.
var ErrNotLoggedIn = errors.New("not logged in")

// Service holds the per-process session and cache state. Its lifetime is
// the process lifetime; no package-level singleton exists.
type Service struct {
	client   *client.Client
	sessions *auth.Manager
	schema   *schema.Cache
	resolver *resolver.Resolver
	search   *search.Dispatcher
	history  *history.Store
	logger   *slog.Logger

	mu    sync.RWMutex
	index *workflow.Index
}

// New assembles a service context from its collaborators. The history
// store may be nil.
func New(c *client.Client, sessions *auth.Manager, hist *history.Store, logger *slog.Logger) *Service {
	sc := schema.NewCache(c, logger)
	return &Service{
		client:   c,
		sessions: sessions,
		schema:   sc,
		resolver: resolver.New(c, sc, logger),
		search:   search.NewDispatcher(c, hist, logger),
		history:  hist,
		logger:   logger,
	}
}

// Sessions exposes the session manager for login/logout flows.
func (s *Service) Sessions() *auth.Manager { return s.sessions }

// IsLoggedIn reports whether a valid session exists. Every read operation
// is gated on it.
func (s *Service) IsLoggedIn(ctx context.Context) bool {
	return s.sessions.IsLoggedIn(ctx)
}

// Initialize builds the per-session derived state: the phase/transition
// index. Called once after a session is established; the index is
// read-only afterwards.
func (s *Service) Initialize(ctx context.Context) error {
	if !s.IsLoggedIn(ctx) {
		return ErrNotLoggedIn
	}

	idx, err := workflow.Build(ctx, s.client, s.logger)
	if err != nil {
		return fmt.Errorf("service: building workflow index: %w", err)
	}

	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
	return nil
}

func (s *Service) workflowIndex() *workflow.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// FieldsForType returns the cached visible field descriptors for a type.
func (s *Service) FieldsForType(ctx context.Context, entityType string) ([]models.FieldDescriptor, error) {
	if !s.IsLoggedIn(ctx) {
		return nil, ErrNotLoggedIn
	}
	return s.schema.FieldsForType(ctx, entityType)
}

// GetEntity fetches one entity by its (type, subtype, id) triple and
// hydrates its reference fields.
func (s *Service) GetEntity(ctx context.Context, entityType, subtype, id string) (*models.Entity, error) {
	if !s.IsLoggedIn(ctx) {
		return nil, ErrNotLoggedIn
	}

	stub := &models.Entity{Type: entityType, Subtype: subtype}
	endpoint, ok := client.EndpointForType(stub.EndpointKey())
	if !ok {
		return nil, fmt.Errorf("service: no endpoint for type %q", stub.EndpointKey())
	}

	record, err := s.client.Entity(endpoint).At(id).ExecuteOne(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: fetching %s/%s: %w", endpoint, id, err)
	}

	entity := models.EntityFromWire(record)
	if entity.Subtype == "" {
		entity.Subtype = subtype
	}
	if err := s.resolver.Hydrate(ctx, entity); err != nil {
		return nil, fmt.Errorf("service: hydrating %s/%s: %w", endpoint, id, err)
	}
	return entity, nil
}

// FillEntityWithReferences hydrates an already-fetched entity in place.
func (s *Service) FillEntityWithReferences(ctx context.Context, e *models.Entity) error {
	if !s.IsLoggedIn(ctx) {
		return ErrNotLoggedIn
	}
	return s.resolver.Hydrate(ctx, e)
}

// TransitionsForPhase returns the legal transitions out of a phase.
// Empty before Initialize has run.
func (s *Service) TransitionsForPhase(phaseID string) []models.Transition {
	return s.workflowIndex().TransitionsForPhase(phaseID)
}

// PhaseLabel returns the display label for a phase id, or "".
func (s *Service) PhaseLabel(phaseID string) string {
	return s.workflowIndex().PhaseLabel(phaseID)
}

// Search fans the term out across the tracked subtypes.
func (s *Service) Search(ctx context.Context, term string) ([]search.ResultItem, error) {
	if !s.IsLoggedIn(ctx) {
		return nil, ErrNotLoggedIn
	}
	return s.search.Search(ctx, term)
}

// SearchHistory returns the persisted search terms, newest first.
func (s *Service) SearchHistory() ([]string, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.Terms()
}
