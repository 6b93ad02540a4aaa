// Package store persists diagrams between layout requests.
//
// A [Store] loads a diagram by id and saves it back after a layout's changes
// were applied. [Memory] keeps diagrams in process; package store/mongo
// keeps them in MongoDB.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/ontolayout/pkg/diagram"
	"github.com/matzehuels/ontolayout/pkg/errors"
)

// Store loads and saves diagrams.
type Store interface {
	// Load returns the diagram with the given id, or a DIAGRAM_NOT_FOUND error.
	Load(ctx context.Context, id string) (*diagram.Memory, error)
	// Save creates or replaces the diagram.
	Save(ctx context.Context, d *diagram.Memory) error
	// Close releases the backend's resources.
	Close(ctx context.Context) error
}

// NotFound returns the error stores report for a missing diagram.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeDiagramNotFound, "diagram %q not found", id)
}

// Commit applies layout changes to the stored diagram and saves it.
func Commit(ctx context.Context, s Store, id string, changes map[string]diagram.Converted) (diagram.ApplyStats, error) {
	d, err := s.Load(ctx, id)
	if err != nil {
		return diagram.ApplyStats{}, err
	}
	stats, err := d.Apply(changes)
	if err != nil {
		return diagram.ApplyStats{}, err
	}
	return stats, s.Save(ctx, d)
}

// Memory is an in-process Store. Saved diagrams are copied, so callers may
// keep modifying what they saved or loaded.
type Memory struct {
	mu       sync.RWMutex
	diagrams map[string][]diagram.Entity
}

// NewMemory creates a store holding diagrams.
func NewMemory(diagrams ...*diagram.Memory) *Memory {
	m := &Memory{diagrams: make(map[string][]diagram.Entity, len(diagrams))}
	for _, d := range diagrams {
		m.diagrams[d.ID] = d.Entities()
	}
	return m
}

// Load implements Store.
func (m *Memory) Load(ctx context.Context, id string) (*diagram.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entities, ok := m.diagrams[id]
	if !ok {
		return nil, NotFound(id)
	}
	return diagram.NewMemory(id, entities...), nil
}

// Save implements Store.
func (m *Memory) Save(ctx context.Context, d *diagram.Memory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := errors.ValidateIdentifier(d.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diagrams[d.ID] = d.Entities()
	return nil
}

// IDs returns the stored diagram ids in ascending order.
func (m *Memory) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.diagrams))
	for id := range m.diagrams {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close implements Store.
func (m *Memory) Close(context.Context) error { return nil }
