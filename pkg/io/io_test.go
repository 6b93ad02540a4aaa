package io

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/ontolayout/pkg/anchor"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/model"
	"github.com/matzehuels/ontolayout/pkg/pipeline"
)

const requestJSON = `{
  "models": [
    {"id": "m1", "entities": [
      {"id": "Dog", "kind": "class", "label": "Dog"},
      {"id": "Animal", "kind": "class", "label": "Animal"},
      {"id": "dog-animal", "kind": "generalization", "child": "Dog", "parent": "Animal"}
    ]}
  ],
  "diagram": {"id": "d1", "entities": [
    {"id": "v1", "kind": "node", "represented": "Dog",
     "position": {"x": 10, "y": 20, "width": 120, "height": 48}, "anchored": true}
  ]},
  "options": {"anchorMode": "only-original-anchors", "allOutsiders": true}
}`

func TestReadRequest(t *testing.T) {
	req, err := ReadRequest(strings.NewReader(requestJSON))
	if err != nil {
		t.Fatal(err)
	}
	if len(req.Models) != 1 || len(req.Models[0].Items) != 3 {
		t.Fatalf("models = %+v", req.Models)
	}
	if req.Options.AnchorMode != anchor.OnlyOriginal || !req.Options.AllOutsiders {
		t.Errorf("options = %+v", req.Options)
	}
	m := req.Diagram.Memory()
	if e, ok := m.EntityFor("v1"); !ok || !e.Anchored || e.Position.Width != 120 {
		t.Errorf("diagram entity = %+v, %v", e, ok)
	}
	if got := req.Sources(); len(got) != 1 || got[0].ModelID() != "m1" {
		t.Errorf("sources = %v", got)
	}
}

func TestReadRequestErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed", `{"models": [`, errors.ErrCodeInvalidFormat},
		{"unknown field", `{"models": [{"id": "m"}], "colour": 1}`, errors.ErrCodeInvalidFormat},
		{"no models", `{"models": []}`, errors.ErrCodeInvalidInput},
		{"bad model id", `{"models": [{"id": ""}]}`, errors.ErrCodeInvalidIdentifier},
		{"bad entity id", `{"models": [{"id": "m"}], "diagram": {"entities": [{"id": " x"}]}}`, errors.ErrCodeInvalidIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRequest(strings.NewReader(tt.in))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	reqPath := filepath.Join(dir, "request.json")
	if err := os.WriteFile(reqPath, []byte(requestJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	req, err := ImportRequest(reqPath)
	if err != nil {
		t.Fatal(err)
	}
	ex, err := model.Extract(context.Background(), req.Sources()...)
	if err != nil {
		t.Fatal(err)
	}
	d := req.Diagram.Memory()
	res, err := pipeline.NewRunner(nil, nil, nil, nil).Execute(context.Background(), ex, d, req.Options)
	if err != nil {
		t.Fatal(err)
	}

	respPath := filepath.Join(dir, "response.json")
	if err := ExportResponse(NewResponse(res), respPath); err != nil {
		t.Fatal(err)
	}
	resp, err := ImportResponse(respPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Changes) != len(res.Changes) || resp.Stats.Nodes != 2 || resp.Stats.Edges != 1 {
		t.Errorf("response = %+v", resp)
	}
	if got := resp.Changes["v1"].Entity.Position; got.X != 10 || got.Y != 20 {
		t.Errorf("anchored v1 moved to %+v", got)
	}

	if _, err := d.Apply(resp.Changes); err != nil {
		t.Fatal(err)
	}
	diagPath := filepath.Join(dir, "diagram.json")
	if err := ExportDiagram(FromMemory(d), diagPath); err != nil {
		t.Fatal(err)
	}
	back, err := ImportDiagram(diagPath)
	if err != nil {
		t.Fatal(err)
	}
	if back.ID != "d1" || len(back.Entities) != d.Len() || d.Len() != 3 {
		t.Errorf("diagram = %d entities, memory = %d", len(back.Entities), d.Len())
	}
}

func TestWriteRequest(t *testing.T) {
	req, err := ReadRequest(strings.NewReader(requestJSON))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteRequest(req, &buf); err != nil {
		t.Fatal(err)
	}
	again, err := ReadRequest(&buf)
	if err != nil {
		t.Fatalf("re-read: %v\n%s", err, buf.String())
	}
	if again.Diagram.ID != "d1" || again.Options.AnchorMode != anchor.OnlyOriginal {
		t.Errorf("re-read = %+v", again)
	}
}

func TestImportMissing(t *testing.T) {
	_, err := ImportRequest(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExampleRequest(t *testing.T) {
	req, err := ImportRequest(filepath.Join("..", "..", "examples", "requests", "animals.json"))
	if err != nil {
		t.Fatal(err)
	}
	ex, err := model.Extract(context.Background(), req.Sources()...)
	if err != nil {
		t.Fatal(err)
	}
	if len(ex.Classes) != 5 || len(ex.ClassProfiles) != 1 || len(ex.Generalizations) != 3 || len(ex.Relationships) != 1 {
		t.Errorf("extraction = %+v", ex)
	}
	if len(ex.Unclassified) != 0 {
		t.Errorf("unclassified = %v", ex.Unclassified)
	}
	if req.Options.AnchorMode != anchor.MergeWithOriginal || !req.Options.GroupGeneralizations {
		t.Errorf("options = %+v", req.Options)
	}
	if got := req.Diagram.Memory().Len(); got != 4 {
		t.Errorf("diagram has %d entities, want 4", got)
	}
}
