package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trackline/trackline/internal/models"
)

func TestCommitMessagePrefix_TaskWithStoryParent(t *testing.T) {
	task := &models.Entity{
		ID: "1000", Type: "task",
		Fields: map[string]any{
			"story": map[string]any{"id": "10001", "type": "work_item", "subtype": "story"},
		},
	}
	assert.Equal(t, "user story #10001: task #1000: ", CommitMessagePrefix(task))
}

func TestCommitMessagePrefix_TaskWithDefectParent(t *testing.T) {
	task := &models.Entity{
		ID: "1000", Type: "task",
		Fields: map[string]any{
			"story": map[string]any{"id": "555", "type": "work_item", "subtype": "defect"},
		},
	}
	assert.Equal(t, "defect #555: task #1000: ", CommitMessagePrefix(task))
}

func TestCommitMessagePrefix_TaskWithoutParent(t *testing.T) {
	task := &models.Entity{ID: "1000", Type: "task", Fields: map[string]any{}}
	assert.Equal(t, "task #1000: ", CommitMessagePrefix(task))
}

func TestCommitMessagePrefix_PlainWorkItems(t *testing.T) {
	defect := &models.Entity{ID: "42", Type: "work_item", Subtype: "defect"}
	assert.Equal(t, "defect #42: ", CommitMessagePrefix(defect))

	qs := &models.Entity{ID: "7", Type: "work_item", Subtype: "quality_story"}
	assert.Equal(t, "quality story #7: ", CommitMessagePrefix(qs))

	unknown := &models.Entity{ID: "9", Subtype: "oddity"}
	assert.Equal(t, "oddity #9: ", CommitMessagePrefix(unknown))
}

func TestCommitMessagePrefix_Nil(t *testing.T) {
	assert.Equal(t, "", CommitMessagePrefix(nil))
}
