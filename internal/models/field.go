package models

// FieldType classifies a field descriptor's value kind.
type FieldType string

const (
	FieldTypeString    FieldType = "string"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeDateTime  FieldType = "date_time"
	FieldTypeReference FieldType = "reference"
	FieldTypeMemo      FieldType = "memo"
	FieldTypeComment   FieldType = "comment"
)

// FieldDescriptor describes one field of an entity type as reported by the
// remote metadata endpoint. Descriptors are immutable once fetched.
type FieldDescriptor struct {
	Name          string        `json:"name"`
	Label         string        `json:"label"`
	FieldType     FieldType     `json:"field_type"`
	EntityName    string        `json:"entity_name"`
	Editable      bool          `json:"editable"`
	Final         bool          `json:"final"`
	AccessLevel   string        `json:"access_level"`
	VisibleInUI   bool          `json:"visible_in_ui"`
	FieldTypeData FieldTypeData `json:"field_type_data"`
}

// FieldTypeData carries reference-specific metadata: whether the field
// holds multiple targets and which entity types it may point at.
type FieldTypeData struct {
	Multiple bool          `json:"multiple"`
	Targets  []FieldTarget `json:"targets"`
}

// FieldTarget names one entity type a reference field may point at.
type FieldTarget struct {
	Type string `json:"type"`
}

// IsReference reports whether the descriptor describes a reference field.
func (d FieldDescriptor) IsReference() bool {
	return d.FieldType == FieldTypeReference
}
