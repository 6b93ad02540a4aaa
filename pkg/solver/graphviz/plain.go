package graphviz

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/geo"
)

// plainLayout is Graphviz "plain" output converted to diagram units with the
// y axis pointing down.
type plainLayout struct {
	Width, Height float64
	Nodes         map[string]geo.Rect
	Edges         []plainEdge
}

type plainEdge struct {
	Tail, Head string
	Points     []r2.Vec
}

// parsePlain reads Graphviz plain output:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge tail head n x1 y1 ... xn yn [label xl yl] style color
//	stop
//
// Coordinates are inches with the origin at the bottom left; node x and y
// are the center.
func parsePlain(data []byte) (plainLayout, error) {
	out := plainLayout{Nodes: make(map[string]geo.Rect)}
	var scale, height float64
	seenGraph := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; sc.Scan(); line++ {
		fields, err := tokenize(sc.Text())
		if err != nil {
			return plainLayout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "plain output line %d", line)
		}
		if len(fields) == 0 {
			continue
		}
		bad := func(what string) error {
			return errors.New(errors.ErrCodeInvalidFormat, "plain output line %d: malformed %s", line, what)
		}
		switch fields[0] {
		case "graph":
			f, ok := floats(fields[1:], 3)
			if !ok {
				return plainLayout{}, bad("graph statement")
			}
			scale, height = f[0], f[2]
			if scale == 0 {
				scale = 1
			}
			out.Width = f[1] * scale * pointsPerInch
			out.Height = f[2] * scale * pointsPerInch
			seenGraph = true
		case "node":
			if !seenGraph || len(fields) < 6 {
				return plainLayout{}, bad("node statement")
			}
			f, ok := floats(fields[2:], 4)
			if !ok {
				return plainLayout{}, bad("node statement")
			}
			w, h := f[2]*pointsPerInch, f[3]*pointsPerInch
			cx := f[0] * scale * pointsPerInch
			cy := (height - f[1]) * scale * pointsPerInch
			out.Nodes[fields[1]] = geo.Rect{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
		case "edge":
			if !seenGraph || len(fields) < 4 {
				return plainLayout{}, bad("edge statement")
			}
			n, err := strconv.Atoi(fields[3])
			if err != nil || n < 0 {
				return plainLayout{}, bad("edge point count")
			}
			f, ok := floats(fields[4:], 2*n)
			if !ok {
				return plainLayout{}, bad("edge points")
			}
			e := plainEdge{Tail: fields[1], Head: fields[2], Points: make([]r2.Vec, n)}
			for i := range n {
				e.Points[i] = r2.Vec{
					X: f[2*i] * scale * pointsPerInch,
					Y: (height - f[2*i+1]) * scale * pointsPerInch,
				}
			}
			out.Edges = append(out.Edges, e)
		case "stop":
			return out, nil
		}
	}
	if err := sc.Err(); err != nil {
		return plainLayout{}, err
	}
	if !seenGraph {
		return plainLayout{}, errors.New(errors.ErrCodeInvalidFormat, "plain output has no graph statement")
	}
	return out, nil
}

func floats(fields []string, n int) ([]float64, bool) {
	if len(fields) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// tokenize splits a plain-output line on whitespace, keeping double-quoted
// strings (with backslash escapes) together and unquoted.
func tokenize(line string) ([]string, error) {
	var out []string
	var cur strings.Builder
	inQuote, escaped, inToken := false, false, false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			inToken = true
		case !inQuote && (r == ' ' || r == '\t'):
			if inToken {
				out = append(out, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inToken {
		out = append(out, cur.String())
	}
	return out, nil
}
