// Package anchor resolves whether a diagram entity is pinned during layout.
//
// An anchored node keeps its position: the layout solver must not move it,
// and reconciliation never writes solver geometry into it. Whether a node is
// anchored depends on the value stored in the diagram (its "original" anchor)
// and on an [Explicit] override supplied once per layout request.
//
// # Modes
//
// The override mode decides how the two identifier sets combine with the
// original value:
//
//	mode                                   in Anchored   in NotAnchored   in neither
//	only-original-anchors                  original      false            original
//	only-given-anchors                     true          false            false
//	merge-with-original-anchors            true          false            original
//	anchor-everything-except-notAnchored   true          false            true
//
// An identifier present in both sets is treated as anchored by the modes that
// consult the Anchored set first (only-given, merge) and as not anchored by the
// modes that only consult NotAnchored.
//
// [Resolve] is pure. It is applied identically to nodes built from existing
// diagram entities (original value from the diagram) and to outsiders
// (original value false).
package anchor

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/ontolayout/pkg/errors"
)

// ErrInvalidMode is returned (wrapped) when an override mode is not one of
// the four known modes. It is a configuration error: layouts must reject it
// before any node or edge is created.
var ErrInvalidMode = errors.New(errors.ErrCodeInvalidAnchorMode, "invalid anchor override mode")

// Mode selects how explicit anchor sets override the diagram's anchors.
type Mode string

const (
	// OnlyOriginal keeps the diagram's value, forcing false for NotAnchored ids.
	OnlyOriginal Mode = "only-original-anchors"
	// OnlyGiven anchors exactly the ids in Anchored.
	OnlyGiven Mode = "only-given-anchors"
	// MergeWithOriginal applies Anchored, then NotAnchored, then the diagram's value.
	MergeWithOriginal Mode = "merge-with-original-anchors"
	// AllExceptNotAnchored anchors everything except the ids in NotAnchored.
	AllExceptNotAnchored Mode = "anchor-everything-except-notAnchored"
)

// DefaultMode is used when a request does not name a mode.
const DefaultMode = MergeWithOriginal

// Modes lists all valid modes in documentation order.
var Modes = []Mode{OnlyOriginal, OnlyGiven, MergeWithOriginal, AllExceptNotAnchored}

// ParseMode converts a mode name into a Mode.
// Matching is exact; an empty string yields DefaultMode.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return DefaultMode, nil
	}
	m := Mode(s)
	if !m.Valid() {
		return "", errors.Wrap(errors.ErrCodeInvalidAnchorMode, ErrInvalidMode,
			"mode %q (must be one of: %s)", s, modeList())
	}
	return m, nil
}

// Valid reports whether m is one of the four known modes.
func (m Mode) Valid() bool { return slices.Contains(Modes, m) }

// String returns the mode's name.
func (m Mode) String() string { return string(m) }

// UnmarshalText implements encoding.TextUnmarshaler so modes can be read
// from TOML, JSON and flag values with validation.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m), nil }

func modeList() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// Explicit is the per-request anchor override: two identifier sets and a mode.
// It is a value object; the zero value uses DefaultMode with empty sets.
type Explicit struct {
	Mode        Mode
	Anchored    Set
	NotAnchored Set
}

// New creates an Explicit override from identifier slices.
func New(mode Mode, anchored, notAnchored []string) Explicit {
	return Explicit{
		Mode:        mode,
		Anchored:    NewSet(anchored...),
		NotAnchored: NewSet(notAnchored...),
	}
}

// Validate reports a configuration error for an unknown mode.
// An empty mode is valid and means DefaultMode.
func (e Explicit) Validate() error {
	if e.Mode == "" {
		return nil
	}
	_, err := ParseMode(string(e.Mode))
	return err
}

// Resolve returns whether the entity identified by id is anchored.
// defaultAnchored is the diagram's stored value (false for outsiders).
// It returns ErrInvalidMode for unknown modes.
func Resolve(id string, defaultAnchored bool, anchors Explicit) (bool, error) {
	mode := anchors.Mode
	if mode == "" {
		mode = DefaultMode
	}
	switch mode {
	case OnlyOriginal:
		if anchors.NotAnchored.Has(id) {
			return false, nil
		}
		return defaultAnchored, nil
	case OnlyGiven:
		return anchors.Anchored.Has(id), nil
	case MergeWithOriginal:
		if anchors.Anchored.Has(id) {
			return true, nil
		}
		if anchors.NotAnchored.Has(id) {
			return false, nil
		}
		return defaultAnchored, nil
	case AllExceptNotAnchored:
		return !anchors.NotAnchored.Has(id), nil
	default:
		return false, errors.Wrap(errors.ErrCodeInvalidAnchorMode, ErrInvalidMode, "mode %q", string(mode))
	}
}

// Set is a set of entity identifiers. The nil Set is empty and safe to query.
type Set map[string]struct{}

// NewSet creates a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the ids in ascending order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) { return json.Marshal(s.Sorted()) }

// UnmarshalJSON decodes the set from an array of ids.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("decode anchor set: %w", err)
	}
	*s = NewSet(ids...)
	return nil
}
