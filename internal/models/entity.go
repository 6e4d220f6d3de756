package models

import "fmt"

// Entity represents a single work-item record fetched from the remote
// entity service. Fields holds every wire field beyond the identity
// columns, including unresolved reference stubs until hydration.
type Entity struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Subtype string         `json:"subtype"`
	Name    string         `json:"name"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// EntityFromWire builds an Entity from a raw response record. Identity
// columns are lifted out of the map; everything else stays in Fields.
func EntityFromWire(raw map[string]any) *Entity {
	e := &Entity{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case "id":
			e.ID = stringValue(v)
		case "type":
			e.Type = stringValue(v)
		case "subtype":
			e.Subtype = stringValue(v)
		case "name":
			e.Name = stringValue(v)
		default:
			e.Fields[k] = v
		}
	}
	return e
}

// SchemaKey selects which entity name is used for field metadata lookup:
// the subtype when present, otherwise the type. Note this is deliberately
// the reverse preference of EndpointKey.
func (e *Entity) SchemaKey() string {
	if e.Subtype != "" {
		return e.Subtype
	}
	return e.Type
}

// EndpointKey selects which entity name is used to pick the wire endpoint:
// the type when present, otherwise the subtype.
func (e *Entity) EndpointKey() string {
	if e.Type != "" {
		return e.Type
	}
	return e.Subtype
}

// Ref is a shallow pointer to another entity, as it appears inside an
// unresolved reference field.
type Ref struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// RefFromValue extracts a single reference stub from a field value.
// Returns false when the value is not a {id, type} object.
func RefFromValue(v any) (Ref, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Ref{}, false
	}
	id := stringValue(m["id"])
	if id == "" {
		return Ref{}, false
	}
	return Ref{ID: id, Type: stringValue(m["type"])}, true
}

// RefsFromValue extracts the stubs of a multi-valued reference field: a
// {data: [{id, type}, ...]} envelope. Returns ok=false when the value has
// no data array at all; an empty data array returns ok=true with no refs.
func RefsFromValue(v any) ([]Ref, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	list, ok := m["data"].([]any)
	if !ok {
		return nil, false
	}
	refs := make([]Ref, 0, len(list))
	for _, item := range list {
		if r, rok := RefFromValue(item); rok {
			refs = append(refs, r)
		}
	}
	return refs, true
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; ids are integral on the wire.
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
