// Package metrics scores the quality of a layout.
//
// Every metric is a pure function of a [graph.Snapshot] and returns a
// [Value]: the absolute measurement and a relative score in [0, 1] where 1
// is best. Metrics are diagnostics for offline evaluation; the layout
// pipeline never calls them.
//
//   - [EdgeCrossings]: straight-line crossings between edges clipped to node
//     borders, normalized by the number of edge pairs that could cross
//   - [EdgeNodeCollisions]: edges passing through nodes they do not connect,
//     normalized by (nodes-2) × edges
//   - [Area]: bounding box of the nodes against a square-ish ideal area
//   - [Orthogonality]: fraction of nodes that line up with another node
//
// [Evaluate] computes all four.
package metrics
