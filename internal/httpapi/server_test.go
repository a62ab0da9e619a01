package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kenmarkitan/concierge/internal/brain"
	"github.com/kenmarkitan/concierge/internal/chat"
	"github.com/kenmarkitan/concierge/internal/config"
	"github.com/kenmarkitan/concierge/internal/observability"
	"github.com/kenmarkitan/concierge/internal/retriever"
	"github.com/kenmarkitan/concierge/internal/store"
)

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	cfg := config.Config{
		SessionCookieMaxAge: 168 * time.Hour,
		CompanyName:         "Acme Tech",
		WebsiteURL:          "acme.example.com",
	}
	st := store.NewInMemoryStore()
	metrics := observability.NewMetrics(fmt.Sprintf("test_httpapi_%d", time.Now().UnixNano()))
	chain := brain.NewChainWithProviders(time.Second, metrics, slog.Default(),
		brain.NewRuleBasedProvider(cfg.CompanyName, cfg.WebsiteURL))
	gen := brain.NewGenerator(chain, cfg.CompanyName, cfg.WebsiteURL)
	orch := chat.NewOrchestrator(st, retriever.New(st), gen, metrics, slog.Default())
	return New(cfg, orch, st, metrics, slog.Default()), st
}

func seedServices(t *testing.T, st store.Store) {
	t.Helper()
	if _, err := st.InsertEntries(context.Background(), []store.Entry{{
		Category: "Services",
		Question: "What services do you offer?",
		Answer:   "We offer AI solutions, consulting services, and training programs.",
	}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	res, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	return res
}

func TestChatMessageEndToEnd(t *testing.T) {
	srv, st := newTestServer(t)
	seedServices(t, st)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res := postJSON(t, ts.URL+"/v1/chat/message", map[string]any{
		"message": "What services do you offer?",
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var payload chatResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Response != "We offer AI solutions, consulting services, and training programs." {
		t.Fatalf("response = %q, want the seeded answer", payload.Response)
	}
	if payload.SessionID == "" {
		t.Fatalf("missing session_id in response")
	}

	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == sessionCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != payload.SessionID {
		t.Fatalf("session cookie not set to %q: %+v", payload.SessionID, res.Cookies())
	}
}

func TestChatMessageMissingMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	for _, body := range []any{map[string]any{}, map[string]any{"message": "   "}} {
		res := postJSON(t, ts.URL+"/v1/chat/message", body)
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
		}
	}
}

func TestChatHistoryRoundTrip(t *testing.T) {
	srv, st := newTestServer(t)
	seedServices(t, st)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res := postJSON(t, ts.URL+"/v1/chat/message", map[string]any{"message": "What services do you offer?"})
	res.Body.Close()

	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == sessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("no session cookie set")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/chat/history", nil)
	req.AddCookie(cookie)
	histRes, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET history error = %v", err)
	}
	defer histRes.Body.Close()
	if histRes.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d, want %d", histRes.StatusCode, http.StatusOK)
	}

	var payload struct {
		Turns []store.Turn `json:"turns"`
	}
	if err := json.NewDecoder(histRes.Body).Decode(&payload); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(payload.Turns) != 2 {
		t.Fatalf("len(turns) = %d, want user + assistant", len(payload.Turns))
	}
	if payload.Turns[0].Role != "user" || payload.Turns[1].Role != "assistant" {
		t.Fatalf("turn order wrong: %+v", payload.Turns)
	}
}

func TestImportKnowledgeAndAnalytics(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res := postJSON(t, ts.URL+"/v1/admin/knowledge", []map[string]string{
		{"category": "FAQ", "question": "Do you offer refunds?", "answer": "Contact support about refunds."},
		{"category": "", "answer": "orphan"},
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var imported struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&imported); err != nil {
		t.Fatalf("decode import response: %v", err)
	}
	if imported.Count != 1 {
		t.Fatalf("imported count = %d, want 1", imported.Count)
	}

	msgRes := postJSON(t, ts.URL+"/v1/chat/message", map[string]any{"message": "Do you offer refunds?"})
	msgRes.Body.Close()

	aRes, err := http.Get(ts.URL + "/v1/admin/analytics?limit=5")
	if err != nil {
		t.Fatalf("GET analytics error = %v", err)
	}
	defer aRes.Body.Close()
	var analytics struct {
		Questions []store.QuestionStat `json:"questions"`
	}
	if err := json.NewDecoder(aRes.Body).Decode(&analytics); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if len(analytics.Questions) != 1 || analytics.Questions[0].Count != 1 {
		t.Fatalf("analytics = %+v, want the asked question counted once", analytics.Questions)
	}
}

func TestChatWebsocket(t *testing.T) {
	srv, st := newTestServer(t)
	seedServices(t, st)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/chat/ws"
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	if res != nil {
		res.Body.Close()
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsClientMessage{Message: "What services do you offer?"}); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	var reply wsServerMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if reply.Response != "We offer AI solutions, consulting services, and training programs." {
		t.Fatalf("ws response = %q, want the seeded answer", reply.Response)
	}
	if reply.SessionID == "" {
		t.Fatalf("ws reply missing session_id")
	}

	if err := conn.WriteJSON(wsClientMessage{Message: "  "}); err != nil {
		t.Fatalf("write blank frame: %v", err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if reply.Code != "message_required" {
		t.Fatalf("ws error code = %q, want message_required", reply.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, res.StatusCode, http.StatusOK)
		}
	}
}
