package graph

import (
	"github.com/matzehuels/ontolayout/pkg/errors"
)

var (
	// ErrUnknownSourceNode is returned by [MainGraph.AddEdge] when the start
	// endpoint is not in the flat node index. The edge is not created.
	ErrUnknownSourceNode = errors.New(errors.ErrCodeMissingEndpoint, "unknown source node")

	// ErrUnknownTargetNode is returned by [MainGraph.AddEdge] when the end
	// endpoint is not in the flat node index. The edge is not created.
	ErrUnknownTargetNode = errors.New(errors.ErrCodeMissingEndpoint, "unknown target node")

	// ErrDuplicateID is returned when a node, edge or subgraph id is already
	// used in the Main Graph. Nodes and subgraphs share one namespace.
	ErrDuplicateID = errors.New(errors.ErrCodeInvalidIdentifier, "duplicate id")

	// ErrInvalidSubgraph is returned by [MainGraph.CreateSubgraph] when the
	// members are empty, repeated, or not all in the parent graph.
	ErrInvalidSubgraph = errors.New(errors.ErrCodeInvalidSubgraph, "invalid subgraph")

	// ErrUnknownGraph is returned when a parent graph id does not exist.
	ErrUnknownGraph = errors.New(errors.ErrCodeNotFound, "unknown graph")

	// ErrGraphBusy is returned by every mutator while a solve is outstanding
	// (between [MainGraph.BeginSolve] and its settlement).
	ErrGraphBusy = errors.New(errors.ErrCodeGraphBusy, "graph is being solved")

	// ErrNotSolving is returned by [MainGraph.ApplySolution] and
	// [MainGraph.AbortSolve] when no solve is outstanding.
	ErrNotSolving = errors.New(errors.ErrCodeInvalidInput, "no solve in progress")
)
