package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/matzehuels/ontolayout/pkg/anchor"
	"github.com/matzehuels/ontolayout/pkg/diagram"
	"github.com/matzehuels/ontolayout/pkg/model"
)

// BuildOptions controls Main Graph construction.
type BuildOptions struct {
	// Anchors overrides the diagram's anchoring. An invalid mode fails the
	// build before anything is created.
	Anchors anchor.Explicit

	// Outsiders lists semantic entity ids without a diagram occurrence that
	// should be laid out anyway. AllOutsiders includes every such entity.
	Outsiders    []string
	AllOutsiders bool

	// Dimensions sizes nodes without a stored size. Nil uses DefaultEstimator.
	Dimensions DimensionProvider

	// Logger receives per-entity diagnostics. Nil discards them.
	Logger *log.Logger
}

// BuildReport collects per-entity problems found while building.
// Warnings are dropped edges; Errors are entities that could not be built.
type BuildReport struct {
	Nodes     int
	Outsiders int
	Edges     int
	Warnings  []error
	Errors    []error
}

// Err joins all Errors, or returns nil when there are none.
func (r *BuildReport) Err() error { return errors.Join(r.Errors...) }

func (r *BuildReport) warn(err error) { r.Warnings = append(r.Warnings, err) }
func (r *BuildReport) fail(err error) { r.Errors = append(r.Errors, err) }

type builder struct {
	mg     *MainGraph
	ex     *model.Extraction
	d      diagram.Reader
	opts   BuildOptions
	report *BuildReport
	logger *log.Logger
	want   map[string]bool
}

// Build constructs a Main Graph from extracted model data and the diagram.
//
// Every class and class profile becomes one node per diagram occurrence;
// requested outsiders become one node each. Relationships, relationship
// profiles and generalizations become edges from domain to range (child to
// parent), and every class profile gets an edge to each profiled class.
// Existing diagram edges are reused with their ids. Otherwise one outsider
// edge is synthesized per pair of endpoint occurrences, ordered by source
// id then target id, whenever the semantic edge is requested or one of its
// ends is an outsider.
//
// Build fails only for configuration errors and cancellation. Dropped
// edges and unbuildable entities are recorded in the report.
func Build(ctx context.Context, ex *model.Extraction, d diagram.Reader, opts BuildOptions) (*MainGraph, *BuildReport, error) {
	if err := opts.Anchors.Validate(); err != nil {
		return nil, nil, err
	}
	if d == nil {
		d = diagram.Empty
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	b := &builder{
		mg:     NewMainGraph(),
		ex:     ex,
		d:      d,
		opts:   opts,
		report: &BuildReport{},
		logger: logger,
		want:   lo.SliceToMap(opts.Outsiders, func(id string) (string, bool) { return id, true }),
	}

	for _, u := range ex.Unclassified {
		b.report.fail(fmt.Errorf("model %s: %w", u.Model, u.Err))
		logger.Debug("skipped unclassified entity", "entity", u.Entity.ID, "kind", u.Entity.Kind)
	}

	for _, c := range ex.Classes {
		if err := b.addOccurrences(c.ID, c.Model, c.Label); err != nil {
			return nil, nil, err
		}
	}
	for _, p := range ex.ClassProfiles {
		if err := b.addOccurrences(p.ID, p.Model, p.Label); err != nil {
			return nil, nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	for _, r := range ex.Relationships {
		b.addSemanticEdge(Relationship, r.ID, r.Model, diagram.KindRelationship, [][2]string{{r.Domain, r.Range}})
	}
	for _, r := range ex.ProfileRelationships {
		b.addSemanticEdge(ProfileOfRelationship, r.ID, r.Model, diagram.KindRelationship, [][2]string{{r.Domain, r.Range}})
	}
	for _, g := range ex.Generalizations {
		b.addSemanticEdge(Generalization, g.ID, g.Model, diagram.KindRelationship, [][2]string{{g.Child, g.Parent}})
	}
	for _, p := range ex.ClassProfiles {
		ends := lo.Map(p.ProfileOf, func(target string, _ int) [2]string { return [2]string{p.ID, target} })
		b.addSemanticEdge(ProfileOfClass, p.ID, p.Model, diagram.KindProfileEdge, ends)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	b.report.Edges = len(b.mg.edgeOrder)
	logger.Debug("built main graph",
		"nodes", b.report.Nodes,
		"outsiders", b.report.Outsiders,
		"edges", b.report.Edges,
		"warnings", len(b.report.Warnings),
		"errors", len(b.report.Errors))
	return b.mg, b.report, nil
}

func (b *builder) wanted(semantic string) bool {
	return b.opts.AllOutsiders || b.want[semantic]
}

// addOccurrences adds one node per diagram occurrence of a semantic entity,
// or an outsider node when it has none and is wanted.
func (b *builder) addOccurrences(semantic, modelID, label string) error {
	occurrences := lo.Filter(b.d.EntitiesForRepresented(semantic), func(e diagram.Entity, _ int) bool {
		return e.Kind == diagram.KindNode
	})

	for _, ent := range occurrences {
		anchored, err := anchor.Resolve(ent.ID, ent.Anchored, b.opts.Anchors)
		if err != nil {
			return err
		}
		n := &Node{
			ID:               ent.ID,
			Semantic:         semantic,
			Model:            modelID,
			Label:            lo.CoalesceOrEmpty(ent.Label, label),
			Geometry:         ent.Position,
			Anchored:         anchored,
			OriginalAnchored: ent.Anchored,
		}
		if n.Geometry.Width <= 0 || n.Geometry.Height <= 0 {
			n.Geometry.Width, n.Geometry.Height = Dimensions(b.opts.Dimensions, n)
		}
		if err := b.mg.AddNode(n); err != nil {
			b.report.fail(fmt.Errorf("node %s: %w", ent.ID, err))
			continue
		}
		b.report.Nodes++
	}
	if len(occurrences) > 0 || !b.wanted(semantic) {
		return nil
	}

	anchored, err := anchor.Resolve(semantic, false, b.opts.Anchors)
	if err != nil {
		return err
	}
	n := &Node{
		ID:         MintID("node", semantic),
		Semantic:   semantic,
		Model:      modelID,
		Label:      label,
		Anchored:   anchored,
		IsOutsider: true,
	}
	n.Geometry.Width, n.Geometry.Height = Dimensions(b.opts.Dimensions, n)
	if err := b.mg.AddNode(n); err != nil {
		b.report.fail(fmt.Errorf("outsider %s: %w", semantic, err))
		return nil
	}
	b.report.Nodes++
	b.report.Outsiders++
	return nil
}

// addSemanticEdge materializes one semantic edge. ends lists the semantic
// (start, end) pairs to connect when no diagram edge exists.
func (b *builder) addSemanticEdge(kind EdgeKind, semantic, modelID string, visualKind diagram.EntityKind, ends [][2]string) {
	existing := lo.Filter(b.d.EntitiesForRepresented(semantic), func(e diagram.Entity, _ int) bool {
		return e.Kind == visualKind
	})
	if len(existing) > 0 {
		for _, ent := range existing {
			b.addEdge(EdgeSpec{
				Visual:     ent.ID,
				Semantic:   semantic,
				Model:      modelID,
				Start:      ent.Source,
				End:        ent.Target,
				Kind:       kind,
				BendPoints: ent.Waypoints,
			})
		}
		return
	}

	for _, pair := range ends {
		sources := b.occurrenceIDs(pair[0])
		targets := b.occurrenceIDs(pair[1])
		if len(sources) == 0 {
			b.drop(semantic, fmt.Errorf("%w: %s has no node (edge %s)", ErrUnknownSourceNode, pair[0], semantic))
			continue
		}
		if len(targets) == 0 {
			b.drop(semantic, fmt.Errorf("%w: %s has no node (edge %s)", ErrUnknownTargetNode, pair[1], semantic))
			continue
		}
		for _, src := range sources {
			for _, tgt := range targets {
				if !b.wanted(semantic) && !b.isOutsider(src) && !b.isOutsider(tgt) {
					continue
				}
				b.addEdge(EdgeSpec{
					Semantic:   semantic,
					Model:      modelID,
					Start:      src,
					End:        tgt,
					Kind:       kind,
					IsOutsider: true,
				})
			}
		}
	}
}

func (b *builder) addEdge(spec EdgeSpec) {
	if _, err := b.mg.AddEdge(spec); err != nil {
		if errors.Is(err, ErrUnknownSourceNode) || errors.Is(err, ErrUnknownTargetNode) {
			b.drop(spec.Semantic, err)
			return
		}
		b.report.fail(err)
	}
}

func (b *builder) drop(semantic string, err error) {
	b.report.warn(err)
	b.logger.Debug("dropped edge", "edge", semantic, "err", err)
}

func (b *builder) occurrenceIDs(semantic string) []string {
	ids := lo.Map(b.mg.semanticNodes[semantic], func(r Ref, _ int) string { return r.ID })
	slices.Sort(ids)
	return ids
}

func (b *builder) isOutsider(id string) bool {
	n, ok := b.mg.nodes[id]
	return ok && n.IsOutsider
}
