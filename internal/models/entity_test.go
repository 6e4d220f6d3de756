package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityFromWire(t *testing.T) {
	e := EntityFromWire(map[string]any{
		"id":      "1001",
		"type":    "work_item",
		"subtype": "defect",
		"name":    "Crash on save",
		"owner":   map[string]any{"id": "42", "type": "workspace_user"},
	})

	assert.Equal(t, "1001", e.ID)
	assert.Equal(t, "work_item", e.Type)
	assert.Equal(t, "defect", e.Subtype)
	assert.Equal(t, "Crash on save", e.Name)
	assert.Contains(t, e.Fields, "owner")
	assert.NotContains(t, e.Fields, "id")
}

func TestEntityFromWire_NumericID(t *testing.T) {
	e := EntityFromWire(map[string]any{"id": float64(1001)})
	assert.Equal(t, "1001", e.ID)
}

// The schema key prefers subtype, the endpoint key prefers type. The two
// rules are not symmetric.
func TestSchemaAndEndpointKeyAsymmetry(t *testing.T) {
	e := &Entity{Type: "work_item", Subtype: "defect"}
	assert.Equal(t, "defect", e.SchemaKey())
	assert.Equal(t, "work_item", e.EndpointKey())

	onlyType := &Entity{Type: "work_item"}
	assert.Equal(t, "work_item", onlyType.SchemaKey())
	assert.Equal(t, "work_item", onlyType.EndpointKey())

	onlySubtype := &Entity{Subtype: "defect"}
	assert.Equal(t, "defect", onlySubtype.SchemaKey())
	assert.Equal(t, "defect", onlySubtype.EndpointKey())
}

func TestRefFromValue(t *testing.T) {
	ref, ok := RefFromValue(map[string]any{"id": "7", "type": "user"})
	require.True(t, ok)
	assert.Equal(t, Ref{ID: "7", Type: "user"}, ref)

	_, ok = RefFromValue("not a ref")
	assert.False(t, ok)

	_, ok = RefFromValue(map[string]any{"type": "user"})
	assert.False(t, ok)
}

func TestRefsFromValue(t *testing.T) {
	refs, ok := RefsFromValue(map[string]any{"data": []any{
		map[string]any{"id": "1", "type": "comment"},
		map[string]any{"id": "2", "type": "comment"},
	}})
	require.True(t, ok)
	assert.Len(t, refs, 2)
	assert.Equal(t, "comment", refs[0].Type)

	// An empty data array is still a multi-valued stub.
	refs, ok = RefsFromValue(map[string]any{"data": []any{}})
	require.True(t, ok)
	assert.Empty(t, refs)

	_, ok = RefsFromValue(map[string]any{"id": "1"})
	assert.False(t, ok)
}
