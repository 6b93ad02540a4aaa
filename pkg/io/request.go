package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"

	"github.com/matzehuels/ontolayout/pkg/diagram"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/model"
	"github.com/matzehuels/ontolayout/pkg/pipeline"
)

// Request is a layout request document.
type Request struct {
	Models  []model.Static   `json:"models"`
	Diagram Diagram          `json:"diagram"`
	Options pipeline.Options `json:"options"`
}

// Diagram is the serialized form of a diagram.
type Diagram struct {
	ID       string           `json:"id"`
	Entities []diagram.Entity `json:"entities"`
}

// Sources returns the request's models as extraction sources.
func (r *Request) Sources() []model.Source {
	return lo.Map(r.Models, func(m model.Static, _ int) model.Source { return m })
}

// Memory returns the request's diagram as an in-memory diagram.
func (d Diagram) Memory() *diagram.Memory {
	return diagram.NewMemory(d.ID, d.Entities...)
}

// FromMemory serializes an in-memory diagram.
func FromMemory(m *diagram.Memory) Diagram {
	return Diagram{ID: m.ID, Entities: m.Entities()}
}

// ReadRequest decodes a JSON layout request from r.
//
// The document must have a "models" array; "diagram" and "options" are
// optional. Unknown fields are rejected. ReadRequest returns an
// INVALID_FORMAT error for malformed documents and does not close r.
func ReadRequest(r io.Reader) (*Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout request")
	}
	if len(req.Models) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout request has no models")
	}
	for _, m := range req.Models {
		if err := errors.ValidateIdentifier(m.ID); err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
	}
	for _, e := range req.Diagram.Entities {
		if err := errors.ValidateIdentifier(e.ID); err != nil {
			return nil, fmt.Errorf("diagram entity: %w", err)
		}
	}
	return &req, nil
}

// ImportRequest reads a JSON layout request from the file at path.
func ImportRequest(path string) (*Request, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRequest(f)
}

// WriteRequest encodes a layout request as indented JSON.
func WriteRequest(req *Request, w io.Writer) error {
	return writeJSON(req, w)
}

// ExportRequest writes a layout request to the file at path.
func ExportRequest(req *Request, path string) error {
	return export(path, func(w io.Writer) error { return WriteRequest(req, w) })
}

// ReadDiagram decodes a JSON diagram from r.
func ReadDiagram(r io.Reader) (Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Diagram{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	return d, nil
}

// ImportDiagram reads a JSON diagram from the file at path.
func ImportDiagram(path string) (Diagram, error) {
	f, err := open(path)
	if err != nil {
		return Diagram{}, err
	}
	defer f.Close()
	return ReadDiagram(f)
}

// WriteDiagram encodes a diagram as indented JSON.
func WriteDiagram(d Diagram, w io.Writer) error {
	return writeJSON(d, w)
}

// ExportDiagram writes a diagram to the file at path.
func ExportDiagram(d Diagram, path string) error {
	return export(path, func(w io.Writer) error { return WriteDiagram(d, w) })
}

func open(path string) (*os.File, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func export(path string, write func(io.Writer) error) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
