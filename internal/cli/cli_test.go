package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ontolayout/pkg/anchor"
	"github.com/matzehuels/ontolayout/pkg/config"
	"github.com/matzehuels/ontolayout/pkg/diagram"
	"github.com/matzehuels/ontolayout/pkg/io"
	"github.com/matzehuels/ontolayout/pkg/metrics"
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
    {"id": "v1", "kind": "node", "represented": "Dog", "label": "Dog",
     "position": {"x": 10, "y": 20, "width": 120, "height": 48}, "anchored": true}
  ]},
  "options": {"allOutsiders": true}
}`

// setup isolates the user dirs, captures command output and writes a request.
func setup(t *testing.T) (dir, request string, out *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	out = &bytes.Buffer{}
	prev := stdout
	stdout = out
	t.Cleanup(func() { stdout = prev })

	request = filepath.Join(dir, "request.json")
	if err := os.WriteFile(request, []byte(requestJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, request, out
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestLayoutCommand(t *testing.T) {
	dir, request, out := setup(t)
	response := filepath.Join(dir, "out.json")
	updated := filepath.Join(dir, "diagram.json")

	if err := execute(t, "layout", request, "-o", response, "--apply", updated); err != nil {
		t.Fatal(err)
	}
	resp, err := io.ImportResponse(response)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Changes) != 3 || resp.Stats.Nodes != 2 {
		t.Errorf("response = %+v", resp)
	}
	d, err := io.ImportDiagram(updated)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Entities) != 3 {
		t.Errorf("updated diagram has %d entities, want 3", len(d.Entities))
	}
	if !strings.Contains(out.String(), "Layout complete") || !strings.Contains(out.String(), "1 updated · 2 created") {
		t.Errorf("output = %q", out.String())
	}
}

func TestLayoutCommandDefaultOutput(t *testing.T) {
	dir, request, _ := setup(t)
	if err := execute(t, "layout", request, "--solver", "identity", "--no-cache"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "request.response.json")); err != nil {
		t.Errorf("default response file: %v", err)
	}
}

func TestLayoutCommandMetrics(t *testing.T) {
	dir, request, out := setup(t)
	plain := filepath.Join(dir, "plain.json")
	scored := filepath.Join(dir, "scored.json")

	if err := execute(t, "layout", request, "-o", plain); err != nil {
		t.Fatal(err)
	}
	if resp, err := io.ImportResponse(plain); err != nil || resp.Metrics != nil {
		t.Errorf("unrequested metrics = %+v, %v", resp.Metrics, err)
	}

	if err := execute(t, "layout", request, "-o", scored, "--metrics"); err != nil {
		t.Fatal(err)
	}
	resp, err := io.ImportResponse(scored)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metrics == nil || resp.Metrics.Crossings.Relative != 1 {
		t.Errorf("metrics = %+v", resp.Metrics)
	}
	if !strings.Contains(out.String(), "edge crossings") {
		t.Errorf("metrics table not printed: %q", out.String())
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	_, request, _ := setup(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"layout", "nope.json"}},
		{"bad mode", []string{"layout", request, "--anchor-mode", "pin-all"}},
		{"unknown solver", []string{"layout", request, "-s", "magic"}},
		{"missing config", []string{"layout", request, "--config", "nope.toml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestMetricsCommand(t *testing.T) {
	_, request, out := setup(t)
	if err := execute(t, "metrics", request, "--json", "--solved"); err != nil {
		t.Fatal(err)
	}
	var report metrics.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if report.Crossings.Relative != 1 {
		t.Errorf("two nodes cannot cross: %+v", report.Crossings)
	}

	out.Reset()
	if err := execute(t, "metrics", request); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Current layout") || !strings.Contains(out.String(), "orthogonality") {
		t.Errorf("output = %q", out.String())
	}
}

func TestConfigCommands(t *testing.T) {
	dir, _, out := setup(t)
	path := filepath.Join(dir, "ontolayout.toml")

	if err := execute(t, "config", "init", path); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "config", "init", path); err == nil {
		t.Error("init without --force overwrote the file")
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("written config does not load: %v", err)
	}

	out.Reset()
	if err := execute(t, "--config", path, "config", "show"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[cache]") {
		t.Errorf("show = %q", out.String())
	}

	out.Reset()
	if err := execute(t, "config", "path"); err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "config", appName, configFile); strings.TrimSpace(out.String()) != want {
		t.Errorf("path = %q, want %q", out.String(), want)
	}
}

func TestCacheClear(t *testing.T) {
	dir, request, out := setup(t)
	if err := execute(t, "layout", request); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := execute(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Cleared") {
		t.Errorf("output = %q", out.String())
	}
	n, err := clearDir(filepath.Join(dir, "cache", appName))
	if err != nil || n != 0 {
		t.Errorf("second clear = %d, %v", n, err)
	}
}

func TestAnchorsList(t *testing.T) {
	_, request, out := setup(t)
	if err := execute(t, "anchors", request, "--list"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "v1") {
		t.Errorf("output = %q", out.String())
	}
}

func TestAnchorPicker(t *testing.T) {
	entities := []diagram.Entity{
		{ID: "v1", Kind: diagram.KindNode, Represented: "Dog", Anchored: true},
		{ID: "v2", Kind: diagram.KindNode, Represented: "Cat"},
		{ID: "e1", Kind: diagram.KindRelationship, Source: "v1", Target: "v2"},
	}
	press := func(m tea.Model, keys ...string) tea.Model {
		for _, k := range keys {
			var msg tea.KeyMsg
			switch k {
			case "down":
				msg = tea.KeyMsg{Type: tea.KeyDown}
			case "enter":
				msg = tea.KeyMsg{Type: tea.KeyEnter}
			case " ":
				msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
			default:
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
			}
			m, _ = m.Update(msg)
		}
		return m
	}

	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"stored", []string{"enter"}, "v1"},
		{"toggle second", []string{"down", " ", "enter"}, "v1,v2"},
		{"none", []string{"n", "enter"}, ""},
		{"all then reset", []string{"a", "r", "enter"}, "v1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(NewAnchorPickerModel(entities, nil), tt.keys...).(AnchorPickerModel)
			if len(m.Items) != 2 {
				t.Fatalf("items = %d, want 2 nodes", len(m.Items))
			}
			if got := strings.Join(m.Anchored(), ","); got != tt.want || !m.Confirmed {
				t.Errorf("anchored = %q (confirmed %v), want %q", got, m.Confirmed, tt.want)
			}
		})
	}

	quit := press(NewAnchorPickerModel(entities, nil), "q").(AnchorPickerModel)
	if quit.Confirmed {
		t.Error("q should not confirm")
	}
	if view := quit.View(); !strings.Contains(view, "v2") || !strings.Contains(view, "1 anchored") {
		t.Errorf("view = %q", view)
	}
}

func TestOptionFlags(t *testing.T) {
	var f optionFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)
	if err := cmd.Flags().Parse([]string{
		"--anchor-mode", "only-given-anchors", "--anchor", "a,b", "--no-split",
		"-p", "engine=neato", "-p", "gap=12", "--all-outsiders",
	}); err != nil {
		t.Fatal(err)
	}

	opts := pipeline.Options{Solver: "graphviz", Anchored: []string{"z"}}
	f.apply(cmd, &opts)
	if opts.AnchorMode != anchor.OnlyGiven || strings.Join(opts.Anchored, ",") != "a,b" {
		t.Errorf("anchors = %s %v", opts.AnchorMode, opts.Anchored)
	}
	if opts.Split() || !opts.AllOutsiders || opts.Solver != "graphviz" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.SolverParams["engine"] != "neato" || opts.SolverParams["gap"] != 12.0 {
		t.Errorf("params = %v", opts.SolverParams)
	}
}

func TestParseParam(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"12", 12.0},
		{"0.5", 0.5},
		{"true", true},
		{"LR", "LR"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseParam(tt.in); got != tt.want {
				t.Errorf("parseParam(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
			}
		})
	}
}
