package anchor

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/matzehuels/ontolayout/pkg/errors"
)

func TestResolve(t *testing.T) {
	anchors := func(m Mode) Explicit {
		return New(m, []string{"a"}, []string{"n"})
	}

	tests := []struct {
		mode Mode
		id   string
		def  bool
		want bool
	}{
		{OnlyOriginal, "a", true, true},
		{OnlyOriginal, "n", true, false},
		{OnlyOriginal, "x", true, true},

		{OnlyGiven, "a", false, true},
		{OnlyGiven, "n", true, false},
		{OnlyGiven, "x", true, false},

		{MergeWithOriginal, "a", false, true},
		{MergeWithOriginal, "n", true, false},
		{MergeWithOriginal, "x", true, true},

		{AllExceptNotAnchored, "a", false, true},
		{AllExceptNotAnchored, "n", true, false},
		{AllExceptNotAnchored, "x", false, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.mode, tt.id), func(t *testing.T) {
			got, err := Resolve(tt.id, tt.def, anchors(tt.mode))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %v) = %v, want %v", tt.id, tt.def, got, tt.want)
			}
		})
	}
}

func TestResolveKeepsDefault(t *testing.T) {
	for _, def := range []bool{true, false} {
		for _, m := range []Mode{OnlyOriginal, MergeWithOriginal} {
			got, err := Resolve("other", def, New(m, nil, nil))
			if err != nil {
				t.Fatal(err)
			}
			if got != def {
				t.Errorf("%s: got %v, want default %v", m, got, def)
			}
		}
	}
}

func TestResolveEmptyModeIsMerge(t *testing.T) {
	e := Explicit{Anchored: NewSet("a")}
	got, err := Resolve("a", false, e)
	if err != nil || !got {
		t.Fatalf("Resolve = %v, %v; want true, nil", got, err)
	}
	got, _ = Resolve("b", true, e)
	if !got {
		t.Error("empty mode should keep default true")
	}
}

func TestResolveInvalidMode(t *testing.T) {
	_, err := Resolve("a", true, Explicit{Mode: "anchor-some"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !stderrors.Is(err, ErrInvalidMode) {
		t.Errorf("error should wrap ErrInvalidMode: %v", err)
	}
	if !errors.Is(err, errors.ErrCodeInvalidAnchorMode) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidAnchorMode)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", MergeWithOriginal, false},
		{"only-original-anchors", OnlyOriginal, false},
		{"only-given-anchors", OnlyGiven, false},
		{"merge-with-original-anchors", MergeWithOriginal, false},
		{"anchor-everything-except-notAnchored", AllExceptNotAnchored, false},
		{"anchor-everything-except-notanchored", "", true},
		{"merge", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExplicitValidate(t *testing.T) {
	if err := (Explicit{}).Validate(); err != nil {
		t.Errorf("zero value should validate: %v", err)
	}
	if err := New(OnlyGiven, nil, nil).Validate(); err != nil {
		t.Errorf("valid mode rejected: %v", err)
	}
	if err := New("bogus", nil, nil).Validate(); !stderrors.Is(err, ErrInvalidMode) {
		t.Errorf("Validate(bogus) = %v, want ErrInvalidMode", err)
	}
}

func TestModeJSON(t *testing.T) {
	var doc struct {
		Mode     Mode `json:"mode"`
		Anchored Set  `json:"anchored"`
	}
	if err := json.Unmarshal([]byte(`{"mode":"only-given-anchors","anchored":["b","a"]}`), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Mode != OnlyGiven {
		t.Errorf("mode = %q", doc.Mode)
	}
	if !doc.Anchored.Has("a") || !doc.Anchored.Has("b") || doc.Anchored.Len() != 2 {
		t.Errorf("anchored = %v", doc.Anchored.Sorted())
	}
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"mode":"only-given-anchors","anchored":["a","b"]}` {
		t.Errorf("marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"mode":"nope"}`), &doc); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestNilSet(t *testing.T) {
	var s Set
	if s.Has("x") || s.Len() != 0 || len(s.Sorted()) != 0 {
		t.Error("nil set should be empty")
	}
}

func ExampleResolve() {
	anchors := New(MergeWithOriginal, []string{"Dog"}, []string{"Cat"})

	dog, _ := Resolve("Dog", false, anchors)
	cat, _ := Resolve("Cat", true, anchors)
	fish, _ := Resolve("Fish", true, anchors)
	fmt.Println(dog, cat, fish)
	// Output: true false true
}
