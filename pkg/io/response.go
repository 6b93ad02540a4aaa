package io

import (
	"encoding/json"
	"io"

	"github.com/samber/lo"

	"github.com/matzehuels/ontolayout/pkg/diagram"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/metrics"
	"github.com/matzehuels/ontolayout/pkg/pipeline"
)

// Response is a layout response document.
type Response struct {
	Changes     map[string]diagram.Converted `json:"changes"`
	Metrics     *metrics.Report              `json:"metrics,omitempty"` // Set only when scoring was requested
	Stats       Stats                        `json:"stats"`
	Fallback    bool                         `json:"fallback,omitempty"`
	SolverError string                       `json:"solverError,omitempty"`
	Warnings    []string                     `json:"warnings,omitempty"`
	Errors      []string                     `json:"errors,omitempty"`
}

// Stats is the serialized form of pipeline statistics.
type Stats struct {
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	Subgraphs   int     `json:"subgraphs"`
	Moved       int     `json:"moved"`
	Pinned      int     `json:"pinned"`
	CacheHit    bool    `json:"cacheHit"`
	BuildMillis float64 `json:"buildMs"`
	SolveMillis float64 `json:"solveMs"`
}

// NewResponse converts a pipeline result into a response document.
func NewResponse(res *pipeline.Result) *Response {
	out := &Response{
		Changes:  res.Changes,
		Fallback: res.Fallback,
		Stats: Stats{
			Nodes:       res.Stats.NodeCount,
			Edges:       res.Stats.EdgeCount,
			Subgraphs:   res.Stats.SubgraphCount,
			Moved:       res.Stats.Moved,
			Pinned:      res.Stats.Pinned,
			CacheHit:    res.CacheInfo.SolutionHit,
			BuildMillis: float64(res.Stats.BuildTime.Microseconds()) / 1000,
			SolveMillis: float64(res.Stats.SolveTime.Microseconds()) / 1000,
		},
	}
	if res.SolverErr != nil {
		out.SolverError = errors.UserMessage(res.SolverErr)
	}
	if res.Report != nil {
		out.Warnings = lo.Map(res.Report.Warnings, func(err error, _ int) string { return err.Error() })
		out.Errors = lo.Map(res.Report.Errors, func(err error, _ int) string { return err.Error() })
	}
	return out
}

// ReadResponse decodes a JSON layout response from r.
func ReadResponse(r io.Reader) (*Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout response")
	}
	return &resp, nil
}

// ImportResponse reads a JSON layout response from the file at path.
func ImportResponse(path string) (*Response, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadResponse(f)
}

// WriteResponse encodes a layout response as indented JSON.
func WriteResponse(resp *Response, w io.Writer) error {
	return writeJSON(resp, w)
}

// ExportResponse writes a layout response to the file at path.
func ExportResponse(resp *Response, path string) error {
	return export(path, func(w io.Writer) error { return WriteResponse(resp, w) })
}
