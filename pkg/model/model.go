// Package model describes the semantic entities a layout is built from and
// extracts them from one or more model sources.
//
// A semantic model is a vocabulary: classes, class profiles, relationships
// between classes, relationship profiles and generalizations. Layout does not
// care how a model is stored, only that its entities can be enumerated and
// classified. [Extract] sorts the entities of every source into the five
// typed lists the graph builder consumes, tagging each with the id of the
// model it came from.
//
// Entities of an unknown kind are never dropped silently and never turned
// into graph nodes: they are collected in [Extraction.Unclassified] so the
// caller can report them.
package model

import (
	"context"
	"fmt"

	"github.com/matzehuels/ontolayout/pkg/errors"
)

// ErrUnknownKind is wrapped by every Unclassified entry.
var ErrUnknownKind = errors.New(errors.ErrCodeUnknownEntityKind, "unclassifiable semantic entity")

// Kind classifies a semantic entity.
type Kind string

const (
	KindClass               Kind = "class"
	KindClassProfile        Kind = "class-profile"
	KindRelationship        Kind = "relationship"
	KindRelationshipProfile Kind = "relationship-profile"
	KindGeneralization      Kind = "generalization"
)

// Entity is a semantic entity as stored by a model source.
// Only the fields relevant to its Kind are set.
type Entity struct {
	ID    string `json:"id" bson:"_id"`
	Kind  Kind   `json:"kind" bson:"kind"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`

	// Domain and Range are the class ends of relationships and relationship profiles.
	Domain string `json:"domain,omitempty" bson:"domain,omitempty"`
	Range  string `json:"range,omitempty" bson:"range,omitempty"`

	// Child and Parent are the ends of a generalization.
	Child  string `json:"child,omitempty" bson:"child,omitempty"`
	Parent string `json:"parent,omitempty" bson:"parent,omitempty"`

	// ProfileOf lists the entities a profile profiles.
	ProfileOf []string `json:"profileOf,omitempty" bson:"profileOf,omitempty"`
}

// Source provides the entities of one semantic model.
type Source interface {
	// ModelID identifies the model. Every extracted entity is tagged with it.
	ModelID() string
	// Entities returns all entities of the model.
	Entities(ctx context.Context) ([]Entity, error)
}

// Static is an in-memory Source.
type Static struct {
	ID    string   `json:"id"`
	Items []Entity `json:"entities"`
}

// ModelID implements Source.
func (s Static) ModelID() string { return s.ID }

// Entities implements Source.
func (s Static) Entities(context.Context) ([]Entity, error) { return s.Items, nil }

// Class is a class to be drawn as a node.
type Class struct {
	ID    string
	Label string
	Model string
}

// ClassProfile is a profile of one or more classes, drawn as a node with a
// profile edge to every profiled class.
type ClassProfile struct {
	ID        string
	Label     string
	Model     string
	ProfileOf []string
}

// Relationship is an association between two classes, drawn as an edge
// from Domain to Range.
type Relationship struct {
	ID     string
	Label  string
	Model  string
	Domain string
	Range  string
}

// Generalization states that Child specializes Parent.
type Generalization struct {
	ID     string
	Model  string
	Child  string
	Parent string
}

// ProfileRelationship is a relationship profile, drawn as an edge from
// Domain to Range.
type ProfileRelationship struct {
	ID        string
	Label     string
	Model     string
	Domain    string
	Range     string
	ProfileOf []string
}

// Unclassified records an entity Extract could not classify.
type Unclassified struct {
	Entity Entity
	Model  string
	Err    error
}

// Extraction is the classified content of a set of model sources.
type Extraction struct {
	Models               []string // Source model ids in extraction order
	Classes              []Class
	ClassProfiles        []ClassProfile
	Relationships        []Relationship
	Generalizations      []Generalization
	ProfileRelationships []ProfileRelationship
	Unclassified         []Unclassified
}

// Len returns the number of classified entities.
func (e *Extraction) Len() int {
	return len(e.Classes) + len(e.ClassProfiles) + len(e.Relationships) +
		len(e.Generalizations) + len(e.ProfileRelationships)
}

// Label returns the label of the class or class profile with the given id.
func (e *Extraction) Label(id string) string {
	for _, c := range e.Classes {
		if c.ID == id {
			return c.Label
		}
	}
	for _, p := range e.ClassProfiles {
		if p.ID == id {
			return p.Label
		}
	}
	return ""
}

// Extract classifies the entities of every source in order.
// It fails only when a source fails or ctx is done; entities with an unknown
// kind or an invalid identifier are reported in Unclassified.
func Extract(ctx context.Context, sources ...Source) (*Extraction, error) {
	ex := &Extraction{}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entities, err := src.Entities(ctx)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", src.ModelID(), err)
		}
		ex.Models = append(ex.Models, src.ModelID())
		for _, ent := range entities {
			ex.add(src.ModelID(), ent)
		}
	}
	return ex, nil
}

func (ex *Extraction) add(modelID string, ent Entity) {
	if err := errors.ValidateIdentifier(ent.ID); err != nil {
		ex.Unclassified = append(ex.Unclassified, Unclassified{Entity: ent, Model: modelID, Err: err})
		return
	}
	switch ent.Kind {
	case KindClass:
		ex.Classes = append(ex.Classes, Class{ID: ent.ID, Label: ent.Label, Model: modelID})
	case KindClassProfile:
		ex.ClassProfiles = append(ex.ClassProfiles, ClassProfile{
			ID: ent.ID, Label: ent.Label, Model: modelID, ProfileOf: ent.ProfileOf,
		})
	case KindRelationship:
		ex.Relationships = append(ex.Relationships, Relationship{
			ID: ent.ID, Label: ent.Label, Model: modelID, Domain: ent.Domain, Range: ent.Range,
		})
	case KindRelationshipProfile:
		ex.ProfileRelationships = append(ex.ProfileRelationships, ProfileRelationship{
			ID: ent.ID, Label: ent.Label, Model: modelID, Domain: ent.Domain, Range: ent.Range, ProfileOf: ent.ProfileOf,
		})
	case KindGeneralization:
		ex.Generalizations = append(ex.Generalizations, Generalization{
			ID: ent.ID, Model: modelID, Child: ent.Child, Parent: ent.Parent,
		})
	default:
		ex.Unclassified = append(ex.Unclassified, Unclassified{
			Entity: ent,
			Model:  modelID,
			Err:    errors.Wrap(errors.ErrCodeUnknownEntityKind, ErrUnknownKind, "entity %s has kind %q", ent.ID, ent.Kind),
		})
	}
}
