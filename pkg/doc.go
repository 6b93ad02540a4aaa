// Package pkg provides the core libraries of ontolayout, the diagram layout
// engine of an ontology editor.
//
// # Overview
//
// An ontology diagram shows classes as boxes and relationships, profiles and
// generalizations as lines between them. Ontolayout turns semantic model data
// and an existing diagram into a layout graph, asks a solver for positions and
// reconciles the answer back into diagram changes. Entities the user anchored
// never move.
//
// # Architecture
//
// The data flow of one layout request:
//
//	Semantic models + diagram
//	         ↓
//	    [model] package (classify entities)
//	         ↓
//	    [graph] package (Main Graph, generalization subgraphs, boundary splits)
//	         ↓
//	    [solver] package (grid, graphviz, or any registered solver)
//	         ↓
//	    [graph] Convert (diagram changes) + [metrics] (layout scores)
//
// [pipeline] runs these stages with caching and hooks; the CLI and the HTTP
// API both go through it.
//
// # Quick Start
//
//	ex, _ := model.Extract(ctx, model.Static{ID: "m1", Items: entities})
//	d := diagram.NewMemory("d1", occurrences...)
//
//	runner := pipeline.NewRunner(nil, nil, nil, logger)
//	res, err := runner.Execute(ctx, ex, d, pipeline.Options{
//	    AnchorMode:           anchor.MergeWithOriginal,
//	    GroupGeneralizations: true,
//	    AllOutsiders:         true,
//	})
//	if err != nil {
//	    return err
//	}
//	stats, _ := d.Apply(res.Changes)
//
// # Main Packages
//
// ## Layout Domain
//
// [anchor] - Explicit anchor overrides in four modes and their resolution
// against a node's stored anchoring.
//
// [model] - Semantic entities and their extraction from model sources.
//
// [diagram] - The diagram read API, an in-memory diagram and the writer that
// commits reconciliation output.
//
// [graph] - Nodes, edges, subgraphs and the Main Graph: building, grouping,
// SPLIT-0-/SPLIT-1- boundary edges, snapshots and reconciliation.
//
// [geo] - Rectangles and segments over gonum's r2 vectors.
//
// [metrics] - Edge crossings, edge-node collisions, area and orthogonality.
//
// [solver] - The solver contract, a registry and the identity and grid
// solvers. [solver/graphviz] lays out through Graphviz.
//
// ## Infrastructure
//
// [pipeline] - Build → solve → reconcile with solution caching.
//
// [cache] - File, Redis and null caches with hashed keys and retries.
//
// [config] - The TOML configuration file.
//
// [io] - JSON layout request and response documents.
//
// [store] - Diagram persistence, in memory or in MongoDB ([store/mongo]).
//
// [observability] - Hooks for metrics and tracing integrations.
//
// [errors] - Structured error codes shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./...                 # All tests
//	go test ./pkg/graph/...       # Specific package
//	go test -run Example ./pkg/.. # Examples only
//
// The MongoDB store tests skip unless ONTOLAYOUT_MONGO_URI is set.
//
// [anchor]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/anchor
// [model]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/model
// [diagram]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/diagram
// [graph]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/graph
// [geo]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/geo
// [metrics]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/metrics
// [solver]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/solver
// [solver/graphviz]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/solver/graphviz
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/io
// [store]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/store
// [store/mongo]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/store/mongo
// [observability]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/ontolayout/pkg/errors
package pkg
