package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ontolayout/pkg/cache"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/io"
	"github.com/matzehuels/ontolayout/pkg/pipeline"
	"github.com/matzehuels/ontolayout/pkg/solver"
	"github.com/matzehuels/ontolayout/pkg/store"
)

const models = `[
  {"id": "m1", "entities": [
    {"id": "Dog", "kind": "class", "label": "Dog"},
    {"id": "Animal", "kind": "class", "label": "Animal"},
    {"id": "dog-animal", "kind": "generalization", "child": "Dog", "parent": "Animal"}
  ]}
]`

const diagramJSON = `{"id": "d1", "entities": [
  {"id": "v1", "kind": "node", "represented": "Dog",
   "position": {"x": 10, "y": 20, "width": 120, "height": 48}, "anchored": true}
]}`

const layoutBody = `{"models": ` + models + `, "diagram": ` + diagramJSON + `,
  "options": {"anchorMode": "only-original-anchors", "allOutsiders": true}}`

func testServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(pipeline.NewRunner(fc, nil, solver.Default(), nil), st, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func testStore(t *testing.T) *store.Memory {
	t.Helper()
	d, err := io.ReadDiagram(strings.NewReader(diagramJSON))
	if err != nil {
		t.Fatal(err)
	}
	return store.NewMemory(d.Memory())
}

func post(t *testing.T, url, body string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func get(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := testServer(t, nil)
	var h HealthResponse
	if code := get(t, ts.URL+"/healthz", &h); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if h.Status != "healthy" || h.Service != "ontolayout" || h.Details["store"] != "disabled" {
		t.Errorf("health = %+v", h)
	}
}

func TestSolvers(t *testing.T) {
	ts := testServer(t, nil)
	var body map[string][]string
	if code := get(t, ts.URL+"/v1/solvers", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got := strings.Join(body["solvers"], ","); got != "grid,identity" {
		t.Errorf("solvers = %s", got)
	}
}

func TestLayout(t *testing.T) {
	ts := testServer(t, nil)
	var resp io.Response
	if code := post(t, ts.URL+"/v1/layout", layoutBody, &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(resp.Changes) != 3 || resp.Stats.Nodes != 2 || resp.Stats.Edges != 1 {
		t.Errorf("response = %+v", resp)
	}
	if got := resp.Changes["v1"].Entity.Position; got.X != 10 || got.Y != 20 {
		t.Errorf("anchored v1 moved to %+v", got)
	}
	created := 0
	for _, c := range resp.Changes {
		if c.IsOutsider {
			created++
		}
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
	if resp.Metrics != nil {
		t.Errorf("metrics computed without being requested: %+v", resp.Metrics)
	}
}

func TestLayoutWithMetrics(t *testing.T) {
	ts := testServer(t, nil)
	var resp io.Response
	if code := post(t, ts.URL+"/v1/layout?metrics=true", layoutBody, &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Metrics == nil {
		t.Fatal("metrics missing")
	}
	if resp.Metrics.Crossings.Relative != 1 {
		t.Errorf("one edge cannot cross: %+v", resp.Metrics.Crossings)
	}

	var body errorBody
	if code := post(t, ts.URL+"/v1/layout?metrics=maybe", layoutBody, &body); code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
	if body.Error.Code != errors.ErrCodeInvalidInput {
		t.Errorf("error = %+v", body.Error)
	}
}

func TestBodyLimit(t *testing.T) {
	s := New(pipeline.NewRunner(nil, nil, solver.Default(), nil), testStore(t), nil)
	s.MaxBodyBytes = 64
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	for _, path := range []string{"/v1/layout", "/v1/metrics", "/v1/diagrams/d1/layout"} {
		t.Run(path, func(t *testing.T) {
			var body errorBody
			if code := post(t, ts.URL+path, layoutBody, &body); code != http.StatusRequestEntityTooLarge {
				t.Errorf("status = %d, want 413", code)
			}
			if body.Error.Code != errors.ErrCodeTooLarge {
				t.Errorf("error = %+v", body.Error)
			}
		})
	}
}

func TestLayoutErrors(t *testing.T) {
	ts := testServer(t, nil)
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", `{"models": [`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"no models", `{"models": []}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad mode", `{"models": ` + models + `, "options": {"anchorMode": "pin-all"}}`, http.StatusBadRequest, errors.ErrCodeInvalidAnchorMode},
		{"unknown solver", `{"models": ` + models + `, "options": {"solver": "magic"}}`, http.StatusNotFound, errors.ErrCodeSolverNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			if code := post(t, ts.URL+"/v1/layout", tt.body, &body); code != tt.status {
				t.Errorf("status = %d, want %d", code, tt.status)
			}
			if body.Error.Code != tt.code || body.Error.Message == "" {
				t.Errorf("error = %+v, want %s", body.Error, tt.code)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	ts := testServer(t, nil)
	var first, second MetricsResponse
	if code := post(t, ts.URL+"/v1/metrics", layoutBody, &first); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if code := post(t, ts.URL+"/v1/metrics", layoutBody, &second); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if first.CacheHit || !second.CacheHit || first.Metrics != second.Metrics {
		t.Errorf("first = %+v, second = %+v", first, second)
	}
}

func TestDiagramLayout(t *testing.T) {
	st := testStore(t)
	ts := testServer(t, st)
	body := `{"models": ` + models + `, "options": {"allOutsiders": true}}`

	var dry DiagramLayoutResponse
	if code := post(t, ts.URL+"/v1/diagrams/d1/layout", `{"dryRun": true, "models": `+models+`}`, &dry); code != http.StatusOK {
		t.Fatalf("dry run status = %d", code)
	}
	if dry.Committed || dry.Response == nil {
		t.Errorf("dry run = %+v", dry)
	}
	if d, _ := st.Load(context.Background(), "d1"); d.Len() != 1 {
		t.Errorf("dry run wrote %d entities", d.Len())
	}

	var out DiagramLayoutResponse
	if code := post(t, ts.URL+"/v1/diagrams/d1/layout", body, &out); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !out.Committed || out.Updated != 1 || out.Created != 2 {
		t.Errorf("commit = %+v", out)
	}

	var d io.Diagram
	if code := get(t, ts.URL+"/v1/diagrams/d1", &d); code != http.StatusOK {
		t.Fatalf("get status = %d", code)
	}
	if len(d.Entities) != 3 {
		t.Errorf("stored entities = %d, want 3", len(d.Entities))
	}
}

func TestDiagramErrors(t *testing.T) {
	tests := []struct {
		name   string
		store  store.Store
		path   string
		status int
		code   errors.Code
	}{
		{"no store", nil, "/v1/diagrams/d1", http.StatusNotImplemented, errors.ErrCodeUnsupported},
		{"missing", store.NewMemory(), "/v1/diagrams/nope", http.StatusNotFound, errors.ErrCodeDiagramNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testServer(t, tt.store)
			var body errorBody
			if code := get(t, ts.URL+tt.path, &body); code != tt.status {
				t.Errorf("status = %d, want %d", code, tt.status)
			}
			if body.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.code)
			}
		})
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(pipeline.NewRunner(nil, nil, nil, nil), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
