package service

import (
	"fmt"

	"github.com/trackline/trackline/internal/models"
)

// subtypeLabels maps work-item subtypes to their human commit-message
// labels.
var subtypeLabels = map[string]string{
	"defect":        "defect",
	"story":         "user story",
	"quality_story": "quality story",
	"epic":          "epic",
	"feature":       "feature",
	"task":          "task",
}

// CommitMessagePrefix builds the commit-message label for an entity. For
// a task under a parent work item the parent's label and id come first:
// a task 1000 under user story 10001 yields
// "user story #10001: task #1000: ".
func CommitMessagePrefix(e *models.Entity) string {
	if e == nil {
		return ""
	}

	if e.Subtype == "task" || e.Type == "task" {
		if parent, ok := taskParent(e); ok {
			return fmt.Sprintf("%s #%s: task #%s: ", subtypeLabel(parent.SchemaKey()), parent.ID, e.ID)
		}
		return fmt.Sprintf("task #%s: ", e.ID)
	}

	return fmt.Sprintf("%s #%s: ", subtypeLabel(e.SchemaKey()), e.ID)
}

// taskParent extracts a task's parent work item from its story field.
func taskParent(e *models.Entity) (*models.Entity, bool) {
	raw, ok := e.Fields["story"].(map[string]any)
	if !ok {
		return nil, false
	}
	parent := models.EntityFromWire(raw)
	if parent.ID == "" {
		return nil, false
	}
	return parent, true
}

func subtypeLabel(subtype string) string {
	if label, ok := subtypeLabels[subtype]; ok {
		return label
	}
	return subtype
}
