package graph

import (
	"unicode/utf8"
)

// DimensionProvider returns the rendered size of a node. Implementations
// must be pure reads: they must not create nodes or modify the graph.
type DimensionProvider interface {
	Width(n *Node) float64
	Height(n *Node) float64
}

// StaticEstimator estimates node sizes from label length. It is the fallback
// when no provider is configured or a provider returns a non-positive size.
type StaticEstimator struct {
	CharWidth float64 // Average glyph advance
	Padding   float64 // Horizontal padding on each side
	MinWidth  float64
	RowHeight float64
}

// DefaultEstimator matches the editor's default node style.
var DefaultEstimator = StaticEstimator{CharWidth: 7.5, Padding: 16, MinWidth: 120, RowHeight: 48}

// Width implements DimensionProvider.
func (s StaticEstimator) Width(n *Node) float64 {
	label := n.Label
	if label == "" {
		label = n.Semantic
	}
	return max(s.MinWidth, float64(utf8.RuneCountInString(label))*s.CharWidth+2*s.Padding)
}

// Height implements DimensionProvider.
func (s StaticEstimator) Height(*Node) float64 { return s.RowHeight }

// Dimensions returns n's size from p, falling back to DefaultEstimator.
func Dimensions(p DimensionProvider, n *Node) (width, height float64) {
	if p != nil {
		width, height = p.Width(n), p.Height(n)
	}
	if width <= 0 {
		width = DefaultEstimator.Width(n)
	}
	if height <= 0 {
		height = DefaultEstimator.Height(n)
	}
	return width, height
}
