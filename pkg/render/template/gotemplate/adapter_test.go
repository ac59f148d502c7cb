package gotemplate_test

import (
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-jobform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-jobform/pkg/testsupport"
)

var templatesFS = fstest.MapFS{
	"hello.tmpl":      {Data: []byte(`Hello {{ name }}!`)},
	"use-global.tmpl": {Data: []byte(`env={{ settings.env }} name={{ name }}`)},
	"use-filter.tmpl": {Data: []byte(`{{ name|shout }}`)},
	"skills.tmpl":     {Data: []byte(`{{ skills|joinlist }}|{{ title }}`)},
	"escape.tmpl":     {Data: []byte(`{{ value }}`)},
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	const want = "Hello Ada!"
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestEngine_GlobalData(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "staging"},
		"name":     "global",
	}))

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging name=global" {
		t.Fatalf("unexpected output %q", result)
	}

	result, err = engine.RenderTemplate("use-global", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging name=Ada" {
		t.Fatalf("per-call data should shadow globals, got %q", result)
	}
}

func TestEngine_WithFilter(t *testing.T) {
	shout := func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(strings.ToUpper(in.String()) + "!"), nil
	}
	engine := newEngine(t, gotemplate.WithFilter("shout", shout))

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!" {
		t.Fatalf("unexpected output %q", result)
	}

	// A second engine asking for the same filter reuses the registration.
	if _, err := gotemplate.New(gotemplate.WithFS(templatesFS), gotemplate.WithFilter("shout", shout)); err != nil {
		t.Fatalf("second engine: %v", err)
	}
}

func TestEngine_DefaultFiltersAndStructData(t *testing.T) {
	engine := newEngine(t)

	data := struct {
		Skills []string `json:"skills"`
		Title  string   `json:"title"`
	}{Skills: []string{"JavaScript", "Python"}, Title: "Apply"}

	result, err := engine.RenderTemplate("skills", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "JavaScript, Python|Apply" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_JoinListEdgeCases(t *testing.T) {
	engine := newEngine(t)

	cases := []struct {
		name   string
		skills any
		want   string
	}{
		{name: "single", skills: []string{"Python"}, want: "Python|"},
		{name: "empty", skills: []string{}, want: "|"},
		{name: "plain string", skills: "CSS", want: "CSS|"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := engine.RenderTemplate("skills", map[string]any{"skills": tc.skills})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if result != tc.want {
				t.Fatalf("want %q, got %q", tc.want, result)
			}
		})
	}
}

func TestEngine_Escaping(t *testing.T) {
	engine := newEngine(t)

	escaped, err := engine.RenderTemplate("escape", map[string]any{"value": `<script>"x"</script>`})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(escaped, "<script>") {
		t.Fatalf("value not escaped: %q", escaped)
	}
}

func TestEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

func newEngine(t *testing.T, options ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(templatesFS)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
