package server

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jobform/pkg/form"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/renderers/jsonview"
	"github.com/goliatone/go-jobform/pkg/testsupport"
	"github.com/goliatone/go-jobform/pkg/validation"
)

var csrfPattern = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *testClient) {
	t.Helper()
	opts = append([]Option{WithSnapshotIDs(testsupport.SequenceIDs("app"))}, opts...)
	srv, err := New(opts...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, newClient(t, ts.URL)
}

func newClient(t *testing.T, base string) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &testClient{
		t:    t,
		base: base,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) do(method, path, contentType, body string) (int, http.Header, string) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	res, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return res.StatusCode, res.Header, string(data)
}

func (c *testClient) postForm(path string, values url.Values) (int, http.Header, string) {
	c.t.Helper()
	return c.do(http.MethodPost, path, "application/x-www-form-urlencoded", values.Encode())
}

func (c *testClient) api(method, path, body string) (int, jsonview.Payload) {
	c.t.Helper()
	code, _, raw := c.do(method, path, "application/json", body)
	var payload jsonview.Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		c.t.Fatalf("decode %s %s (%d): %v\n%s", method, path, code, err, raw)
	}
	return code, payload
}

func csrfToken(t *testing.T, page string) string {
	t.Helper()
	match := csrfPattern.FindStringSubmatch(page)
	if match == nil {
		t.Fatalf("page has no csrf token:\n%s", page)
	}
	return match[1]
}

func formValues(state model.FormState, csrf, action string) url.Values {
	values := url.Values{CSRFField: {csrf}, "action": {action}}
	for _, name := range model.FieldNames() {
		if name == model.FieldAdditionalSkills {
			continue
		}
		values.Set(name, state.Value(name))
	}
	for _, skill := range state.SkillList() {
		values.Add(model.FieldAdditionalSkills, string(skill))
	}
	return values
}

func TestHTML_FullFlow(t *testing.T) {
	_, client := newTestServer(t)

	code, _, page := client.do(http.MethodGet, "/", "", "")
	if code != http.StatusOK || !strings.Contains(page, `<form method="post" action="/" novalidate>`) || !strings.Contains(page, `href="/assets/jobform.css"`) {
		t.Fatalf("unexpected first page %d:\n%s", code, page)
	}
	csrf := csrfToken(t, page)

	refresh := url.Values{CSRFField: {csrf}, "action": {"refresh"}, model.FieldApplyingFor: {"Designer"}}
	code, _, page = client.postForm("/", refresh)
	if code != http.StatusOK || !strings.Contains(page, `name="portfolioUrl"`) || strings.Contains(page, `class="error"`) {
		t.Fatalf("refresh should reveal designer fields without errors (%d):\n%s", code, page)
	}

	code, _, page = client.postForm("/", url.Values{CSRFField: {csrf}, "action": {"submit"}, model.FieldFullName: {"Ada"}})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	if !strings.Contains(page, validation.MsgEmailRequired) || !strings.Contains(page, validation.MsgPortfolioRequired) {
		t.Fatalf("rejected page missing errors:\n%s", page)
	}
	if !strings.Contains(page, `name="fullName" value="Ada"`) {
		t.Fatalf("rejected page lost values:\n%s", page)
	}

	code, header, _ := client.postForm("/", formValues(testsupport.DeveloperState(), csrf, "submit"))
	if code != http.StatusSeeOther || header.Get("Location") != "/" {
		t.Fatalf("expected redirect after accept, got %d %v", code, header)
	}

	_, _, page = client.do(http.MethodGet, "/", "", "")
	for _, want := range []string{"Submitted Data", "Ada Lovelace", "3 years", "JavaScript, Python", "Edit Application"} {
		if !strings.Contains(page, want) {
			t.Fatalf("summary missing %q:\n%s", want, page)
		}
	}

	code, _, _ = client.postForm("/edit", url.Values{CSRFField: {csrf}})
	if code != http.StatusSeeOther {
		t.Fatalf("expected redirect after edit, got %d", code)
	}
	_, _, page = client.do(http.MethodGet, "/", "", "")
	if strings.Contains(page, "Submitted Data") || !strings.Contains(page, `name="fullName" value=""`) {
		t.Fatalf("expected blank form after edit:\n%s", page)
	}
}

func TestHTML_RejectsMissingCSRF(t *testing.T) {
	_, client := newTestServer(t)
	client.do(http.MethodGet, "/", "", "")

	code, _, _ := client.postForm("/", url.Values{"action": {"submit"}})
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	code, _, _ = client.postForm("/edit", url.Values{CSRFField: {"stale"}})
	if code != http.StatusForbidden {
		t.Fatalf("expected 403 for stale token, got %d", code)
	}
}

func TestHTML_UnknownRoleIsBadRequest(t *testing.T) {
	_, client := newTestServer(t)
	_, _, page := client.do(http.MethodGet, "/", "", "")

	values := url.Values{CSRFField: {csrfToken(t, page)}, "action": {"refresh"}, model.FieldApplyingFor: {"Pilot"}}
	if code, _, _ := client.postForm("/", values); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAPI_Flow(t *testing.T) {
	_, client := newTestServer(t)

	code, view := client.api(http.MethodGet, "/api/form", "")
	if code != http.StatusOK || view.Mode != "editing" || len(view.Fields) != 6 {
		t.Fatalf("unexpected initial view %d %+v", code, view)
	}

	code, _, raw := client.do(http.MethodPatch, "/api/form", "application/json", `{"applyingFor":"Pilot"}`)
	if code != http.StatusBadRequest || !strings.Contains(raw, `"field":"applyingFor"`) {
		t.Fatalf("expected 400 naming applyingFor, got %d %s", code, raw)
	}
	code, _, raw = client.do(http.MethodPatch, "/api/form", "application/json", ``)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty patch, got %d %s", code, raw)
	}

	code, view = client.api(http.MethodPatch, "/api/form", `{"fullName":"Katherine Johnson","applyingFor":"Manager"}`)
	if code != http.StatusOK || view.State.FullName != "Katherine Johnson" || view.State.ApplyingFor != model.RoleManager {
		t.Fatalf("unexpected patched view %d %+v", code, view.State)
	}

	code, view = client.api(http.MethodPost, "/api/form/submit", "")
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	wantFields := []string{model.FieldEmail, model.FieldPhoneNumber, model.FieldManagementExperience, model.FieldAdditionalSkills, model.FieldPreferredInterviewTime}
	if diff := cmp.Diff(wantFields, view.Errors.Fields()); diff != "" {
		t.Fatalf("error fields mismatch (-want +got):\n%s", diff)
	}

	body, err := json.Marshal(testsupport.ManagerState())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	code, view = client.api(http.MethodPost, "/api/form/submit", string(body))
	if code != http.StatusOK || view.Mode != "submitted" {
		t.Fatalf("expected accepted submit, got %d %+v", code, view)
	}
	if view.Snapshot == nil || view.Snapshot.ID != "app-1" {
		t.Fatalf("unexpected snapshot %+v", view.Snapshot)
	}
	if !view.State.IsZero() {
		t.Fatalf("expected live state reset, got %+v", view.State)
	}

	code, _, raw = client.do(http.MethodPatch, "/api/form", "application/json", `{"fullName":"Late"}`)
	if code != http.StatusConflict {
		t.Fatalf("expected 409 after submit, got %d %s", code, raw)
	}

	code, view = client.api(http.MethodPost, "/api/form/edit", "")
	if code != http.StatusOK || view.Mode != "editing" || view.Snapshot != nil {
		t.Fatalf("unexpected view after edit %d %+v", code, view)
	}
	if code, _, _ := client.do(http.MethodPost, "/api/form/edit", "", ""); code != http.StatusConflict {
		t.Fatalf("expected 409 for edit while editing, got %d", code)
	}

	client.api(http.MethodPatch, "/api/form", `{"fullName":"Someone"}`)
	code, view = client.api(http.MethodPost, "/api/form/reset", "")
	if code != http.StatusOK || !view.State.IsZero() {
		t.Fatalf("expected blank state after reset, got %d %+v", code, view.State)
	}
}

func TestAPI_SkillOrderFollowsPayload(t *testing.T) {
	_, client := newTestServer(t)

	client.api(http.MethodPatch, "/api/form", `{"additionalSkills":["JavaScript"]}`)

	state := testsupport.ManagerState()
	state.AdditionalSkills = []model.Skill{model.SkillPython, model.SkillJavaScript}
	body, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	code, view := client.api(http.MethodPost, "/api/form/submit", string(body))
	if code != http.StatusOK || view.Snapshot == nil {
		t.Fatalf("expected accepted submit, got %d %+v", code, view)
	}
	want := []model.Skill{model.SkillPython, model.SkillJavaScript}
	if diff := cmp.Diff(want, view.Snapshot.State.AdditionalSkills); diff != "" {
		t.Fatalf("skills mismatch (-want +got):\n%s", diff)
	}

	_, _, page := client.do(http.MethodGet, "/", "", "")
	if !strings.Contains(page, "<p><strong>Additional Skills:</strong> Python, JavaScript</p>") {
		t.Fatalf("summary lost skill order:\n%s", page)
	}
}

func TestChangesFromPayload(t *testing.T) {
	payload := map[string]any{
		model.FieldEmail:            "ada@example.com",
		model.FieldAdditionalSkills: []any{"Python", "JavaScript"},
	}
	want := []form.Change{
		form.SetField(model.FieldEmail, "ada@example.com"),
		form.SetSkill(model.SkillJavaScript, false),
		form.SetSkill(model.SkillCSS, false),
		form.SetSkill(model.SkillPython, false),
		form.SetSkill(model.SkillPython, true),
		form.SetSkill(model.SkillJavaScript, true),
	}
	if diff := cmp.Diff(want, changesFromPayload(payload)); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestAPI_SessionsAreIsolated(t *testing.T) {
	_, first := newTestServer(t)
	second := newClient(t, first.base)

	first.api(http.MethodPatch, "/api/form", `{"fullName":"First"}`)
	_, view := second.api(http.MethodGet, "/api/form", "")
	if view.State.FullName != "" {
		t.Fatalf("second client saw first client's state %+v", view.State)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, client := newTestServer(t)

	client.api(http.MethodPost, "/api/form/submit", "")
	body, _ := json.Marshal(testsupport.DeveloperState())
	client.api(http.MethodPost, "/api/form/submit", string(body))

	code, _, metrics := client.do(http.MethodGet, "/metrics", "", "")
	if code != http.StatusOK {
		t.Fatalf("metrics status %d", code)
	}
	for _, want := range []string{
		`jobform_submissions_total{outcome="accepted"} 1`,
		`jobform_submissions_total{outcome="rejected"} 1`,
		`jobform_validation_errors_total{field="email"} 1`,
		`jobform_sessions_active 1`,
	} {
		if !strings.Contains(metrics, want) {
			t.Fatalf("metrics missing %q:\n%s", want, metrics)
		}
	}
}

func TestRateLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	_, client := newTestServer(t, WithRateLimit(1, 1), WithClock(clock.Now))

	if code, _, _ := client.do(http.MethodGet, "/api/form", "", ""); code != http.StatusOK {
		t.Fatalf("first request limited: %d", code)
	}
	code, header, _ := client.do(http.MethodGet, "/api/form", "", "")
	if code != http.StatusTooManyRequests || header.Get("Retry-After") != "1" {
		t.Fatalf("expected 429 with Retry-After, got %d %v", code, header)
	}
	if code, _, _ := client.do(http.MethodGet, "/healthz", "", ""); code != http.StatusOK {
		t.Fatalf("healthz must not be limited, got %d", code)
	}

	clock.Advance(time.Second)
	if code, _, _ := client.do(http.MethodGet, "/api/form", "", ""); code != http.StatusOK {
		t.Fatalf("expected refill, got %d", code)
	}
}

func TestSessionExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	srv, client := newTestServer(t, WithClock(clock.Now), WithSessionTTL(time.Minute))

	client.api(http.MethodPatch, "/api/form", `{"fullName":"Ada"}`)
	clock.Advance(30 * time.Second)
	if _, view := client.api(http.MethodGet, "/api/form", ""); view.State.FullName != "Ada" {
		t.Fatalf("session lost before ttl: %+v", view.State)
	}

	clock.Advance(2 * time.Minute)
	if n := srv.SweepSessions(); n != 1 {
		t.Fatalf("expected one swept session, got %d", n)
	}
	if _, view := client.api(http.MethodGet, "/api/form", ""); view.State.FullName != "" {
		t.Fatalf("expected fresh session after expiry, got %+v", view.State)
	}
}

func TestMaxSessions(t *testing.T) {
	_, first := newTestServer(t, WithMaxSessions(1))
	first.do(http.MethodGet, "/api/form", "", "")

	second := newClient(t, first.base)
	code, _, raw := second.do(http.MethodGet, "/api/form", "", "")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d %s", code, raw)
	}
}

func TestOpenAPIAndHealth(t *testing.T) {
	_, client := newTestServer(t)

	code, header, body := client.do(http.MethodGet, "/openapi.json", "", "")
	if code != http.StatusOK || !strings.HasPrefix(header.Get("Content-Type"), "application/json") {
		t.Fatalf("unexpected openapi response %d %v", code, header)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("decode openapi: %v", err)
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/api/form/submit"]; !ok {
		t.Fatalf("openapi missing submit path: %v", paths)
	}

	code, header, body = client.do(http.MethodGet, "/assets/jobform.css", "", "")
	if code != http.StatusOK || !strings.HasPrefix(header.Get("Content-Type"), "text/css") {
		t.Fatalf("unexpected stylesheet response %d %v", code, header)
	}

	if code, _, body := client.do(http.MethodGet, "/healthz", "", ""); code != http.StatusOK || body != "ok" {
		t.Fatalf("unexpected health %d %q", code, body)
	}
}

func TestChangesFromForm(t *testing.T) {
	values := url.Values{
		model.FieldFullName:         {"Ada"},
		model.FieldAdditionalSkills: {"CSS", "Cobol"},
	}
	want := []form.Change{
		form.SetField(model.FieldFullName, "Ada"),
		form.SetSkill(model.SkillJavaScript, false),
		form.SetSkill(model.SkillCSS, true),
		form.SetSkill(model.SkillPython, false),
	}
	if diff := cmp.Diff(want, changesFromForm(values)); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
}
