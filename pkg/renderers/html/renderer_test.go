package html_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-jobform/pkg/form"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/renderers/html"
	"github.com/goliatone/go-jobform/pkg/testsupport"
	"github.com/goliatone/go-jobform/pkg/validation"
)

func TestRenderer_EditingShowsRoleFieldsAndErrors(t *testing.T) {
	renderer := newRenderer(t)

	state := model.FormState{FullName: "Ada <Lovelace>", ApplyingFor: model.RoleDesigner, AdditionalSkills: []model.Skill{model.SkillCSS}}
	view := form.NewView(state, validation.Validate(state))

	output := render_(t, renderer, view, render.RenderOptions{
		Action:       "/apply",
		HiddenFields: render.MergeHiddenFields(nil, render.CSRFToken("_csrf", "tok")),
	})

	mustContain(t, output,
		`<form method="post" action="/apply" novalidate>`,
		`<input type="hidden" name="_csrf" value="tok">`,
		`name="fullName" value="Ada &lt;Lovelace&gt;"`,
		`<option value="Designer" selected>Designer</option>`,
		`<option value="">Select Position</option>`,
		`name="relevantExperience"`,
		`name="portfolioUrl"`,
		`value="CSS" checked`,
		`<span class="error">`+validation.MsgPortfolioRequired+`</span>`,
		`<span class="error">`+validation.MsgEmailRequired+`</span>`,
		`value="refresh"`,
		`<title>Job Application Form</title>`,
	)
	mustNotContain(t, output,
		`name="managementExperience"`,
		`value="JavaScript" checked`,
		`<span class="error">`+validation.MsgFullNameRequired+`</span>`,
		`Edit Application`,
	)
}

func TestRenderer_ManagerShowsTextareaOnly(t *testing.T) {
	renderer := newRenderer(t)
	view := form.NewView(model.FormState{ApplyingFor: model.RoleManager, ManagementExperience: "Led 4 teams"}, nil)

	output := render_(t, renderer, view, render.RenderOptions{})
	mustContain(t, output, `<textarea id="managementExperience" name="managementExperience">Led 4 teams</textarea>`)
	mustNotContain(t, output, `name="relevantExperience"`, `name="portfolioUrl"`, `class="error"`)
}

func TestRenderer_SummaryRoundTrip(t *testing.T) {
	renderer := newRenderer(t)
	session := form.New()

	state := testsupport.DesignerState()
	state.FullName = "  Grace   Hopper  "
	applyAll(t, session, state)
	if _, ok, err := session.Submit(); err != nil || !ok {
		t.Fatalf("submit: ok=%v err=%v errors=%v", ok, err, session.Errors())
	}

	output := render_(t, renderer, session.View(), render.RenderOptions{EditAction: "/edit"})

	mustContain(t, output,
		`<h2 class="heading">Submitted Data</h2>`,
		`<p><strong>Full Name:</strong>   Grace   Hopper  </p>`,
		`<p><strong>Relevant Experience:</strong> 5 years</p>`,
		`href="https://grace.example.com/work"`,
		`target="_blank"`,
		`rel="noopener noreferrer"`,
		`<p><strong>Additional Skills:</strong> CSS</p>`,
		`<p><strong>Preferred Interview Time:</strong> 2026-11-03T14:00</p>`,
		`<form method="post" action="/edit">`,
		`Edit Application`,
	)
	mustNotContain(t, output, `Management Experience`, `value="refresh"`)
}

func TestRenderer_SummaryManagerLineBreak(t *testing.T) {
	renderer := newRenderer(t)
	session := form.New()
	applyAll(t, session, testsupport.ManagerState())
	if _, ok, _ := session.Submit(); !ok {
		t.Fatalf("expected acceptance, errors=%v", session.Errors())
	}

	output := render_(t, renderer, session.View(), render.RenderOptions{})
	mustContain(t, output,
		`<p><strong>Management Experience:</strong><br/>Led a team of 8 engineers</p>`,
		`<p><strong>Additional Skills:</strong> Python</p>`,
	)
	mustNotContain(t, output, `Relevant Experience`, `Portfolio URL`)
}

func TestRenderer_SummaryKeepsSkillOrder(t *testing.T) {
	renderer := newRenderer(t)
	session := form.New()

	state := testsupport.DeveloperState()
	state.AdditionalSkills = []model.Skill{model.SkillPython, model.SkillCSS, model.SkillJavaScript}
	applyAll(t, session, state)
	if _, ok, _ := session.Submit(); !ok {
		t.Fatalf("expected acceptance, errors=%v", session.Errors())
	}

	output := render_(t, renderer, session.View(), render.RenderOptions{})
	mustContain(t, output, `<p><strong>Additional Skills:</strong> Python, CSS, JavaScript</p>`)
}

func TestRenderer_SummaryLinkSurvivesUnparseableEscape(t *testing.T) {
	renderer := newRenderer(t)
	session := form.New()

	state := testsupport.DesignerState()
	state.PortfolioURL = "http://a%zz"
	applyAll(t, session, state)
	if _, ok, _ := session.Submit(); !ok {
		t.Fatalf("expected acceptance, errors=%v", session.Errors())
	}

	output := render_(t, renderer, session.View(), render.RenderOptions{})
	mustContain(t, output,
		`<a href="http://a%zz" target="_blank" rel="noopener noreferrer">http://a%zz</a>`,
	)
}

func TestRenderer_ThemeStyleBlock(t *testing.T) {
	renderer := newRenderer(t)
	manifest := &theme.Manifest{
		Name:   "acme",
		Tokens: map[string]string{"brand": "#123456"},
		Assets: theme.Assets{
			Prefix: "/assets/acme",
			Files:  map[string]string{html.StylesheetAsset: "jobform.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"brand": "#654321"}},
		},
	}

	output := render_(t, renderer, form.NewView(model.FormState{}, nil), render.RenderOptions{
		Theme: html.ThemeFromManifest(manifest, "dark"),
	})
	mustContain(t, output,
		`<style data-theme="acme">`,
		"--brand: #654321;",
		`data-theme-variant="dark"`,
		`<link rel="stylesheet" href="/assets/acme/jobform.css">`,
	)
}

func TestRenderer_BaseStylesheet(t *testing.T) {
	renderer, err := html.New(html.WithStylesheet("/assets/" + html.DefaultStylesheet))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	output := render_(t, renderer, form.NewView(model.FormState{}, nil), render.RenderOptions{})
	mustContain(t, output, `<link rel="stylesheet" href="/assets/jobform.css">`)
	mustNotContain(t, output, `<style data-theme`)
}

func TestRenderer_CustomTemplatesAndFragment(t *testing.T) {
	templates := fstest.MapFS{
		"form.tmpl":    {Data: []byte(`FORM {{ fields|length }} {{ action }}`)},
		"summary.tmpl": {Data: []byte(`SUMMARY {{ snapshot_id }}`)},
		"layout.tmpl":  {Data: []byte(`<main>{{ body|safe }}</main>`)},
	}
	renderer, err := html.New(html.WithTemplatesFS(templates), html.WithFragment())
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output := render_(t, renderer, form.NewView(model.FormState{}, nil), render.RenderOptions{})
	if output != "FORM 6 /" {
		t.Fatalf("unexpected fragment %q", output)
	}
}

func TestRenderer_Metadata(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != "html" || !strings.HasPrefix(renderer.ContentType(), "text/html") {
		t.Fatalf("unexpected metadata %s %s", renderer.Name(), renderer.ContentType())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, form.NewView(model.FormState{}, nil), render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func newRenderer(t *testing.T) *html.Renderer {
	t.Helper()
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func render_(t *testing.T, renderer *html.Renderer, view form.View, options render.RenderOptions) string {
	t.Helper()
	output, err := renderer.Render(testsupport.Context(), view, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(output)
}

func applyAll(t *testing.T, session *form.Session, state model.FormState) {
	t.Helper()
	for _, name := range model.FieldNames() {
		if name == model.FieldAdditionalSkills {
			continue
		}
		if err := session.Change(name, state.Value(name)); err != nil {
			t.Fatalf("change %s: %v", name, err)
		}
	}
	for _, skill := range state.AdditionalSkills {
		if err := session.ToggleSkill(skill, true); err != nil {
			t.Fatalf("toggle %s: %v", skill, err)
		}
	}
}

func mustContain(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Fatalf("output missing %q\n%s", fragment, output)
		}
	}
}

func mustNotContain(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(output, fragment) {
			t.Fatalf("output unexpectedly contains %q\n%s", fragment, output)
		}
	}
}
