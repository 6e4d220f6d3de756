package models

// Phase is one workflow state an entity subtype may be in.
type Phase struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Transition is a directed edge between two phases, scoped to one entity
// subtype.
type Transition struct {
	ID          string `json:"id"`
	Entity      string `json:"entity"`
	LogicalName string `json:"logical_name"`
	SourcePhase Phase  `json:"source_phase"`
	TargetPhase Phase  `json:"target_phase"`
}

// Metaphase groups one or more concrete phases under a display label.
// Legacy concept, consulted only as a label fallback.
type Metaphase struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Phases []Phase `json:"phases,omitempty"`
}
