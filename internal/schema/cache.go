// Package schema caches the per-entity-type field metadata the remote
// service exposes. Descriptors are fetched lazily on first access and
// kept for the whole session; a new session rebuilds the cache.
package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/trackline/trackline/internal/client"
	"github.com/trackline/trackline/internal/metrics"
	"github.com/trackline/trackline/internal/models"
)

// ErrSchemaUnavailable is returned when the metadata fetch fails. The
// failure is not cached; the next call retries.
var ErrSchemaUnavailable = errors.New("field metadata unavailable")

// Cache is the lazy, per-entity-type field descriptor cache.
type Cache struct {
	client *client.Client
	logger *slog.Logger

	mu       sync.RWMutex
	byEntity map[string][]models.FieldDescriptor
}

// NewCache creates an empty field metadata cache.
func NewCache(c *client.Client, logger *slog.Logger) *Cache {
	return &Cache{
		client:   c,
		logger:   logger,
		byEntity: make(map[string][]models.FieldDescriptor),
	}
}

// FieldsForType returns the visible field descriptors for the given
// entity type, fetching them on first access. A second call for the same
// type performs no network access.
func (c *Cache) FieldsForType(ctx context.Context, entityType string) ([]models.FieldDescriptor, error) {
	c.mu.RLock()
	fields, ok := c.byEntity[entityType]
	c.mu.RUnlock()
	if ok {
		return fields, nil
	}

	fetched, err := c.fetch(ctx, entityType)
	if err != nil {
		return nil, fmt.Errorf("%w for %q: %w", ErrSchemaUnavailable, entityType, err)
	}

	c.mu.Lock()
	// The batch may cover several entity names; cache every group but
	// never clobber an entry a concurrent fetch already populated.
	for name, group := range fetched {
		if _, exists := c.byEntity[name]; !exists {
			c.byEntity[name] = group
		}
	}
	if _, exists := c.byEntity[entityType]; !exists {
		// The remote reported no visible fields for this type; cache the
		// empty answer so repeat lookups stay local.
		c.byEntity[entityType] = nil
	}
	fields = c.byEntity[entityType]
	c.mu.Unlock()

	return fields, nil
}

// fetch retrieves all visible descriptors whose entity_name matches and
// groups them by entity name.
func (c *Cache) fetch(ctx context.Context, entityType string) (map[string][]models.FieldDescriptor, error) {
	env, err := c.client.Entity("metadata/fields").
		Query(client.Field("entity_name").Equal(entityType)).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	metrics.Inc(metrics.SchemaFetchesTotal)

	grouped := make(map[string][]models.FieldDescriptor)
	for _, raw := range env.Data {
		var desc models.FieldDescriptor
		buf, err := json.Marshal(raw)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(buf, &desc); err != nil {
			c.logger.Warn("skipping undecodable field descriptor", "entity", entityType, "error", err)
			continue
		}
		if !desc.VisibleInUI {
			continue
		}
		grouped[desc.EntityName] = append(grouped[desc.EntityName], desc)
	}

	c.logger.Debug("fetched field metadata", "entity", entityType, "fields", len(grouped[entityType]))
	return grouped, nil
}
