// Package workflow builds the phase/transition index used to compute the
// legal next phases for an entity. The index is built once per session
// and is read-only afterwards.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/trackline/trackline/internal/client"
	"github.com/trackline/trackline/internal/models"
)

// Index holds the phase map and transition list for one session. The zero
// value is a valid, empty index: lookups answer empty until Build.
type Index struct {
	phases      map[string]models.Phase
	metaphases  map[string]models.Metaphase
	bySource    map[string][]models.Transition
	transitions []models.Transition
}

// Build fetches all phases, transitions and metaphases and assembles the
// index. Transition source/target phase names are resolved from the phase
// map. The returned index is immutable.
func Build(ctx context.Context, c *client.Client, logger *slog.Logger) (*Index, error) {
	idx := &Index{
		phases:     make(map[string]models.Phase),
		metaphases: make(map[string]models.Metaphase),
		bySource:   make(map[string][]models.Transition),
	}

	phasesEnv, err := c.Entity("phases").Fields("id", "name").Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("workflow: fetching phases: %w", err)
	}
	for _, raw := range phasesEnv.Data {
		var p models.Phase
		if err := decodeRecord(raw, &p); err != nil {
			logger.Warn("skipping undecodable phase", "error", err)
			continue
		}
		idx.phases[p.ID] = p
	}

	transEnv, err := c.Entity("transitions").
		Fields("id", "entity", "logical_name", "source_phase", "target_phase").
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("workflow: fetching transitions: %w", err)
	}
	for _, raw := range transEnv.Data {
		var t models.Transition
		if err := decodeRecord(raw, &t); err != nil {
			logger.Warn("skipping undecodable transition", "error", err)
			continue
		}
		if p, ok := idx.phases[t.SourcePhase.ID]; ok {
			t.SourcePhase.Name = p.Name
		}
		if p, ok := idx.phases[t.TargetPhase.ID]; ok {
			t.TargetPhase.Name = p.Name
		}
		idx.transitions = append(idx.transitions, t)
		idx.bySource[t.SourcePhase.ID] = append(idx.bySource[t.SourcePhase.ID], t)
	}

	// Metaphases only matter for display-label fallback; a failure here
	// leaves the rest of the index usable.
	metaEnv, err := c.Entity("metaphases").Fields("id", "name", "phases").Execute(ctx)
	if err != nil {
		logger.Warn("fetching metaphases", "error", err)
	} else {
		for _, raw := range metaEnv.Data {
			var mp models.Metaphase
			if err := decodeRecord(raw, &mp); err != nil {
				continue
			}
			idx.metaphases[mp.ID] = mp
		}
	}

	logger.Info("workflow index built", "phases", len(idx.phases), "transitions", len(idx.transitions))
	return idx, nil
}

// TransitionsForPhase returns the transitions leaving the given phase.
// Empty for unknown phases and before the index is built.
func (i *Index) TransitionsForPhase(phaseID string) []models.Transition {
	if i == nil || i.bySource == nil {
		return nil
	}
	return i.bySource[phaseID]
}

// PhaseLabel returns the display name for a phase id. When the phase is
// not in the direct map the metaphases are consulted; unknown ids answer
// the empty string.
func (i *Index) PhaseLabel(phaseID string) string {
	if i == nil {
		return ""
	}
	if p, ok := i.phases[phaseID]; ok {
		return p.Name
	}
	for _, mp := range i.metaphases {
		for _, p := range mp.Phases {
			if p.ID == phaseID {
				return mp.Name
			}
		}
	}
	return ""
}

// Transitions returns the full transition list.
func (i *Index) Transitions() []models.Transition {
	if i == nil {
		return nil
	}
	return i.transitions
}

func decodeRecord(raw map[string]any, v any) error {
	buf, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, v)
}
