// Package resolver hydrates entities: each reference-typed field's stub
// is replaced with fully-fetched target data, one level deep.
package resolver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/trackline/trackline/internal/client"
	"github.com/trackline/trackline/internal/metrics"
	"github.com/trackline/trackline/internal/models"
	"github.com/trackline/trackline/internal/schema"
)

// ErrUnresolvedReference marks a reference whose target type is absent
// from the endpoint table. Non-fatal: the stub is left in place.
var ErrUnresolvedReference = errors.New("reference target type unknown")

// Resolver fills reference fields using the field metadata cache to know
// which fields are references.
type Resolver struct {
	client *client.Client
	schema *schema.Cache
	logger *slog.Logger
}

// New creates a resolver over the given client and schema cache.
func New(c *client.Client, sc *schema.Cache, logger *slog.Logger) *Resolver {
	return &Resolver{client: c, schema: sc, logger: logger}
}

// Hydrate replaces every reference field stub on the entity with fetched
// target data. A missing type and subtype makes this a no-op. Resolution
// is single level: targets' own references stay as stubs, which keeps
// self-referencing schemas from fanning out without bound.
//
// Individual field failures degrade gracefully: the stub is kept and the
// cause logged. Only a schema fetch failure aborts the whole hydration.
func (r *Resolver) Hydrate(ctx context.Context, e *models.Entity) error {
	if e == nil || (e.Type == "" && e.Subtype == "") {
		return nil
	}

	descriptors, err := r.schema.FieldsForType(ctx, e.SchemaKey())
	if err != nil {
		return err
	}

	for _, desc := range descriptors {
		if !desc.IsReference() {
			continue
		}
		value, ok := e.Fields[desc.Name]
		if !ok || value == nil {
			continue
		}

		if desc.FieldTypeData.Multiple {
			r.resolveMulti(ctx, e, desc, value)
		} else {
			r.resolveSingle(ctx, e, desc, value)
		}
	}

	metrics.Inc(metrics.HydrationsTotal)
	return nil
}

// resolveSingle replaces a {id, type} stub with the full target record.
func (r *Resolver) resolveSingle(ctx context.Context, e *models.Entity, desc models.FieldDescriptor, value any) {
	ref, ok := models.RefFromValue(value)
	if !ok {
		return
	}

	endpoint, ok := client.EndpointForType(ref.Type)
	if !ok {
		metrics.Inc(metrics.UnresolvedRefsTotal)
		r.logger.Warn("leaving reference unresolved", "field", desc.Name, "target_type", ref.Type, "error", ErrUnresolvedReference)
		return
	}

	record, err := r.client.Entity(endpoint).At(ref.ID).Fields(targetFields(ref.Type)...).ExecuteOne(ctx)
	if err != nil {
		r.logger.Warn("fetching reference target", "field", desc.Name, "target", ref.ID, "error", err)
		return
	}
	e.Fields[desc.Name] = record
}

// resolveMulti batch-fetches all targets of a {data: [...]} stub list by
// id. The declared type of the first element selects the endpoint; an
// empty list is left untouched with no fetch issued.
func (r *Resolver) resolveMulti(ctx context.Context, e *models.Entity, desc models.FieldDescriptor, value any) {
	refs, ok := models.RefsFromValue(value)
	if !ok || len(refs) == 0 {
		return
	}

	targetType := refs[0].Type
	endpoint, ok := client.EndpointForType(targetType)
	if !ok {
		metrics.Inc(metrics.UnresolvedRefsTotal)
		r.logger.Warn("leaving references unresolved", "field", desc.Name, "target_type", targetType, "error", ErrUnresolvedReference)
		return
	}

	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}

	env, err := r.client.Entity(endpoint).
		Fields(targetFields(targetType)...).
		Query(client.Field("id").InComparison(ids)).
		Execute(ctx)
	if err != nil {
		r.logger.Warn("fetching reference targets", "field", desc.Name, "count", len(ids), "error", err)
		return
	}

	e.Fields[desc.Name] = map[string]any{
		"total_count": env.TotalCount,
		"data":        anySlice(env.Data),
	}
}

// targetFields picks the projection fetched for a reference target. Users
// carry no useful "name"; list nodes need their logical identity too.
func targetFields(targetType string) []string {
	switch targetType {
	case "user", "workspace_user":
		return []string{"full_name"}
	case "list_node":
		return []string{"name", "logical_name", "index"}
	default:
		return []string{"name"}
	}
}

func anySlice(records []map[string]any) []any {
	out := make([]any, len(records))
	for i, rec := range records {
		out[i] = rec
	}
	return out
}
