package diagram

import (
	"slices"

	"github.com/samber/lo"

	"github.com/matzehuels/ontolayout/pkg/errors"
)

// Memory is an in-memory diagram. It implements Reader and commits layout
// reconciliations with Apply. Memory is not safe for concurrent use.
type Memory struct {
	ID       string
	entities map[string]Entity
	byRep    map[string][]string
}

// NewMemory creates a diagram holding entities.
// Later entities replace earlier ones with the same id.
func NewMemory(id string, entities ...Entity) *Memory {
	m := &Memory{
		ID:       id,
		entities: make(map[string]Entity, len(entities)),
		byRep:    make(map[string][]string),
	}
	for _, e := range entities {
		m.Put(e)
	}
	return m
}

// Put inserts or replaces an entity.
func (m *Memory) Put(e Entity) {
	if old, ok := m.entities[e.ID]; ok && old.Represented != e.Represented {
		m.unindex(old)
	}
	_, existed := m.entities[e.ID]
	m.entities[e.ID] = e
	if e.Represented == "" {
		return
	}
	if existed && slices.Contains(m.byRep[e.Represented], e.ID) {
		return
	}
	ids := append(m.byRep[e.Represented], e.ID)
	slices.Sort(ids)
	m.byRep[e.Represented] = ids
}

func (m *Memory) unindex(e Entity) {
	ids := slices.DeleteFunc(m.byRep[e.Represented], func(id string) bool { return id == e.ID })
	if len(ids) == 0 {
		delete(m.byRep, e.Represented)
		return
	}
	m.byRep[e.Represented] = ids
}

// HasEntityForRepresented implements Reader.
func (m *Memory) HasEntityForRepresented(represented string) bool {
	return len(m.byRep[represented]) > 0
}

// EntitiesForRepresented implements Reader.
func (m *Memory) EntitiesForRepresented(represented string) []Entity {
	return lo.Map(m.byRep[represented], func(id string, _ int) Entity { return m.entities[id] })
}

// EntityFor implements Reader.
func (m *Memory) EntityFor(id string) (Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

// Entities returns all entities ordered by id.
func (m *Memory) Entities() []Entity {
	ids := lo.Keys(m.entities)
	slices.Sort(ids)
	return lo.Map(ids, func(id string, _ int) Entity { return m.entities[id] })
}

// Len returns the number of entities.
func (m *Memory) Len() int { return len(m.entities) }

// ApplyStats summarizes a committed reconciliation.
type ApplyStats struct {
	Updated int
	Created int
}

// Apply commits a reconciliation. Existing entities take the converted
// position, anchoring, waypoints and endpoints; outsiders are materialized as
// new entities. An entry that is not an outsider but has no existing entity
// is rejected before anything is written.
func (m *Memory) Apply(changes map[string]Converted) (ApplyStats, error) {
	ids := lo.Keys(changes)
	slices.Sort(ids)

	for _, id := range ids {
		c := changes[id]
		if _, ok := m.entities[id]; !ok && !c.IsOutsider {
			return ApplyStats{}, errors.New(errors.ErrCodeNotFound, "diagram %s has no entity %s", m.ID, id)
		}
	}

	var stats ApplyStats
	for _, id := range ids {
		c := changes[id]
		e := c.Entity
		e.ID = id
		if old, ok := m.entities[id]; ok {
			stats.Updated++
			if e.Label == "" {
				e.Label = old.Label
			}
		} else {
			stats.Created++
		}
		m.Put(e)
	}
	return stats, nil
}
