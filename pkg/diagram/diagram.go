// Package diagram defines the read API the layout engine uses to inspect an
// existing diagram, and the in-memory diagram that commits layout results.
//
// A diagram entity is a visual occurrence of a semantic entity. One semantic
// entity may have several occurrences (fan-out), so lookups by represented
// id return lists. Relationship occurrences name the diagram ids of the nodes
// they connect.
package diagram

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/ontolayout/pkg/geo"
)

// EntityKind classifies diagram entities.
type EntityKind string

const (
	// KindNode is an occurrence of a class or class profile.
	KindNode EntityKind = "node"
	// KindRelationship is an occurrence of a relationship, relationship
	// profile or generalization.
	KindRelationship EntityKind = "relationship"
	// KindProfileEdge connects a class profile occurrence to a profiled class.
	KindProfileEdge EntityKind = "profile-edge"
	// KindGroup is a visual group of other entities.
	KindGroup EntityKind = "group"
)

// IsEdge reports whether entities of kind k connect two nodes.
func (k EntityKind) IsEdge() bool { return k == KindRelationship || k == KindProfileEdge }

// Entity is one visual entity of a diagram.
type Entity struct {
	ID          string     `json:"id" bson:"_id"`
	Kind        EntityKind `json:"kind" bson:"kind"`
	Represented string     `json:"represented,omitempty" bson:"represented,omitempty"`
	Model       string     `json:"model,omitempty" bson:"model,omitempty"`
	Label       string     `json:"label,omitempty" bson:"label,omitempty"`
	Position    geo.Rect   `json:"position" bson:"position"`
	Anchored    bool       `json:"anchored,omitempty" bson:"anchored,omitempty"`

	// Source and Target are the diagram ids connected by an edge entity.
	Source    string   `json:"source,omitempty" bson:"source,omitempty"`
	Target    string   `json:"target,omitempty" bson:"target,omitempty"`
	Waypoints []r2.Vec `json:"waypoints,omitempty" bson:"waypoints,omitempty"`

	// Members are the diagram ids contained in a group entity.
	Members []string `json:"members,omitempty" bson:"members,omitempty"`
}

// Reader is the read side of a diagram.
type Reader interface {
	// HasEntityForRepresented reports whether the semantic entity has at
	// least one occurrence.
	HasEntityForRepresented(represented string) bool
	// EntitiesForRepresented returns all occurrences of the semantic entity,
	// ordered by diagram id.
	EntitiesForRepresented(represented string) []Entity
	// EntityFor returns the diagram entity with the given diagram id.
	EntityFor(id string) (Entity, bool)
}

// Converted is one entry of a layout reconciliation: the entity to commit
// and whether it is new to the diagram.
type Converted struct {
	Entity     Entity `json:"entity"`
	IsOutsider bool   `json:"isOutsider"`
}

// Empty is a Reader for a diagram with no entities.
var Empty Reader = empty{}

type empty struct{}

func (empty) HasEntityForRepresented(string) bool     { return false }
func (empty) EntitiesForRepresented(string) []Entity { return nil }
func (empty) EntityFor(string) (Entity, bool)        { return Entity{}, false }
