package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/gichat/agent/mock"
	"github.com/tailored-agentic-units/gichat/core/config"
	"github.com/tailored-agentic-units/gichat/core/protocol"
	"github.com/tailored-agentic-units/gichat/kernel"
	"github.com/tailored-agentic-units/gichat/observability"
	"github.com/tailored-agentic-units/gichat/prompt"
	"github.com/tailored-agentic-units/gichat/session"
	"github.com/tailored-agentic-units/gichat/web"
)

// --- Test helpers ---

type fixture struct {
	handler  http.Handler
	kernel   *kernel.Kernel
	sessions *session.Manager
	cookie   *http.Cookie
}

func newFixture(t *testing.T, a *mock.Agent, cfg config.ServerConfig) *fixture {
	t.Helper()

	kcfg := kernel.DefaultConfig()
	k, err := kernel.New(&kcfg, kernel.WithAgent(a), kernel.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("kernel.New failed: %v", err)
	}

	scfg := session.DefaultConfig()
	sessions, err := session.NewManager(&scfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	srv, err := web.New(k, sessions, cfg, nil)
	if err != nil {
		t.Fatalf("web.New failed: %v", err)
	}

	return &fixture{handler: srv.Handler(), kernel: k, sessions: sessions}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == web.CookieName {
			f.cookie = c
		}
	}
	return rec
}

func (f *fixture) ask(t *testing.T, question string, stream bool) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"question": {question}}
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	return f.do(t, req)
}

func (f *fixture) history(t *testing.T) []protocol.Message {
	t.Helper()
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/history", nil))

	var body struct {
		Session  string             `json:"session"`
		Messages []protocol.Message `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	return body.Messages
}

func (f *fixture) session(t *testing.T) session.Session {
	t.Helper()
	if f.cookie == nil {
		f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	}
	sess, ok := f.sessions.Get(f.cookie.Value)
	if !ok {
		t.Fatal("session not found for cookie")
	}
	return sess
}

// --- Tests ---

func TestIndex_Empty(t *testing.T) {
	f := newFixture(t, mock.NewAgent(), config.DefaultServerConfig())

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"GI Emergency Care", "Envoyer 📤", "Commencez par poser une question", "Effacer la conversation", "Votre Logo Ici"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	if f.cookie == nil || !f.cookie.HttpOnly {
		t.Fatalf("expected an HttpOnly %s cookie, got %+v", web.CookieName, f.cookie)
	}
}

func TestAsk_Stream(t *testing.T) {
	f := newFixture(t, mock.NewAgent("Hel", "lo"), config.DefaultServerConfig())

	rec := f.ask(t, "Bonjour", true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	want := []string{
		"event: fragment\ndata: {\"display\":\"Hel▌\"}\n\n",
		"event: fragment\ndata: {\"display\":\"Hello▌\"}\n\n",
		"event: done\ndata: {",
	}
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("stream missing %q in:\n%s", w, body)
		}
	}

	msgs := f.history(t)
	if len(msgs) != 2 || msgs[0].Content != "Bonjour" || msgs[1].Content != "Hello" {
		t.Errorf("history = %+v", msgs)
	}
}

func TestAsk_StreamFailure(t *testing.T) {
	a := &mock.Agent{Fragments: []string{"Hel"}, Err: errors.New("stream reset")}
	f := newFixture(t, a, config.DefaultServerConfig())

	body := f.ask(t, "question", true).Body.String()

	if !strings.Contains(body, "event: notice\n") || !strings.Contains(body, "stream reset") {
		t.Errorf("expected a notice event, got:\n%s", body)
	}
	if strings.Contains(body, "event: done") {
		t.Error("failure should not emit done")
	}

	msgs := f.history(t)
	if len(msgs) != 2 || msgs[1].Content != prompt.Apology {
		t.Errorf("history = %+v, want user + apology", msgs)
	}
}

func TestAsk_Redirect(t *testing.T) {
	f := newFixture(t, mock.NewAgent("**gras**\n\n<script>alert(1)</script>"), config.DefaultServerConfig())

	rec := f.ask(t, "question", false)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("got %d %q, want 303 to /", rec.Code, rec.Header().Get("Location"))
	}

	page := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	if !strings.Contains(page, "<strong>gras</strong>") {
		t.Error("answer Markdown was not rendered")
	}
	if strings.Contains(page, "alert(1)") {
		t.Error("raw HTML from the answer reached the page")
	}
	if !strings.Contains(page, "Historique de la conversation") {
		t.Error("history heading missing")
	}
}

func TestAsk_UnsafeLinks(t *testing.T) {
	answer := "[voir le protocole](javascript:alert(document.cookie)) " +
		"[schéma](data:text/html;base64,PHNjcmlwdD5hbGVydCgxKTwvc2NyaXB0Pg==) " +
		"[HAS](https://www.has-sante.fr/)"

	tests := []struct {
		name   string
		stream bool
	}{
		{"page", false},
		{"stream", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, mock.NewAgent(answer), config.DefaultServerConfig())

			body := f.ask(t, "question", tt.stream).Body.String()
			if !tt.stream {
				body = f.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
			}

			for _, unsafe := range []string{`href="javascript:`, `href="data:`, `href=\"javascript:`, `href=\"data:`} {
				if strings.Contains(body, unsafe) {
					t.Errorf("rendered answer contains %s", unsafe)
				}
			}
			if !strings.Contains(body, "www.has-sante.fr/") {
				t.Error("safe link destination missing")
			}
		})
	}
}

func TestAsk_FailureFlash(t *testing.T) {
	f := newFixture(t, &mock.Agent{StartErr: errors.New("invalid api key")}, config.DefaultServerConfig())

	f.ask(t, "question", false)

	first := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	if !strings.Contains(first, "❌ Erreur lors de la génération de la réponse") {
		t.Error("failure notice not shown")
	}
	if !strings.Contains(first, "Désolé, une erreur") {
		t.Error("apology turn not shown")
	}

	second := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	if strings.Contains(second, "❌ Erreur") {
		t.Error("notice should be shown once")
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	a := mock.NewAgent("unused")
	f := newFixture(t, a, config.DefaultServerConfig())

	if rec := f.ask(t, "   ", true); rec.Code != http.StatusNoContent {
		t.Errorf("stream status = %d, want 204", rec.Code)
	}
	if rec := f.ask(t, "", false); rec.Code != http.StatusSeeOther {
		t.Errorf("form status = %d, want 303", rec.Code)
	}

	if msgs := f.history(t); len(msgs) != 0 {
		t.Errorf("history = %+v, want empty", msgs)
	}
	if len(a.Calls()) != 0 {
		t.Error("agent should not be called")
	}
}

func TestAsk_Busy(t *testing.T) {
	gate := make(chan struct{})
	f := newFixture(t, &mock.Agent{Fragments: []string{"ok"}, Gate: gate}, config.DefaultServerConfig())

	sess := f.session(t)
	ex, err := f.kernel.Submit(context.Background(), sess, "en cours")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	page := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	if !strings.Contains(page, "disabled") {
		t.Error("submit control should be disabled while answering")
	}

	if rec := f.ask(t, "deuxième", true); rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}

	close(gate)
	ex.Commit()

	if msgs := f.history(t); len(msgs) != 2 {
		t.Errorf("got %d turns, want 2", len(msgs))
	}
}

func TestClear(t *testing.T) {
	f := newFixture(t, mock.NewAgent("réponse"), config.DefaultServerConfig())
	f.ask(t, "question", false)

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/clear", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if msgs := f.history(t); len(msgs) != 0 {
		t.Errorf("history = %+v, want empty", msgs)
	}

	req := httptest.NewRequest(http.MethodPost, "/clear", nil)
	req.Header.Set("X-Requested-With", "fetch")
	if rec := f.do(t, req); rec.Code != http.StatusNoContent {
		t.Errorf("fetch clear status = %d, want 204", rec.Code)
	}
}

func TestClear_Busy(t *testing.T) {
	gate := make(chan struct{})
	f := newFixture(t, &mock.Agent{Fragments: []string{"ok"}, Gate: gate}, config.DefaultServerConfig())

	sess := f.session(t)
	ex, err := f.kernel.Submit(context.Background(), sess, "en cours")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	page := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	if !strings.Contains(page, `id="clear" type="submit" class="wide" disabled`) {
		t.Error("clear control should be disabled while answering")
	}

	if rec := f.do(t, httptest.NewRequest(http.MethodPost, "/clear", nil)); rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if sess.Len() != 1 {
		t.Errorf("rejected clear changed the session: %d turns", sess.Len())
	}

	close(gate)
	ex.Commit()

	msgs := f.history(t)
	if len(msgs) != 2 || msgs[0].Role != protocol.RoleUser || msgs[1].Role != protocol.RoleAssistant {
		t.Errorf("history = %+v, want one user/assistant pair", msgs)
	}
}

func TestSessions_Isolated(t *testing.T) {
	f := newFixture(t, mock.NewAgent("réponse"), config.DefaultServerConfig())
	f.ask(t, "question", false)

	other := &fixture{handler: f.handler, sessions: f.sessions}
	if msgs := other.history(t); len(msgs) != 0 {
		t.Errorf("a new browser saw %d turns", len(msgs))
	}
}

func TestAsk_RateLimited(t *testing.T) {
	cfg := config.DefaultServerConfig()
	cfg.RatePerMinute = 1
	cfg.RateBurst = 1
	f := newFixture(t, mock.NewAgent("ok"), cfg)

	if rec := f.ask(t, "première", false); rec.Code != http.StatusSeeOther {
		t.Fatalf("first status = %d, want 303", rec.Code)
	}
	if rec := f.ask(t, "deuxième", false); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", rec.Code)
	}
}

func TestAsk_RateLimitedByClientHeader(t *testing.T) {
	cfg := config.DefaultServerConfig()
	cfg.RatePerMinute = 1
	cfg.RateBurst = 1
	cfg.ClientHeader = "X-Forwarded-For"
	f := newFixture(t, mock.NewAgent("ok"), cfg)

	ask := func(forwarded string) int {
		form := url.Values{"question": {"question"}}
		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", forwarded)
		return f.do(t, req).Code
	}

	tests := []struct {
		name      string
		forwarded string
		want      int
	}{
		{"first client", "203.0.113.7", http.StatusSeeOther},
		{"second client behind the same proxy", "198.51.100.20, 10.0.0.1", http.StatusSeeOther},
		{"first client again", "203.0.113.7, 10.0.0.1", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		if got := ask(tt.forwarded); got != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, mock.NewAgent(), config.DefaultServerConfig())

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
		Agents   []struct {
			Name     string `json:"name"`
			Provider string `json:"provider"`
			Model    string `json:"model"`
		} `json:"agents"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("status = %q", body.Status)
	}
	if len(body.Agents) != 1 || body.Agents[0].Provider != "mock" || body.Agents[0].Model != "mock-model" {
		t.Errorf("agents = %+v", body.Agents)
	}
}

func TestLogo_NotConfigured(t *testing.T) {
	f := newFixture(t, mock.NewAgent(), config.DefaultServerConfig())

	if rec := f.do(t, httptest.NewRequest(http.MethodGet, "/logo", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStatic(t *testing.T) {
	f := newFixture(t, mock.NewAgent(), config.DefaultServerConfig())

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "text/event-stream") {
		t.Errorf("got %d", rec.Code)
	}
}
