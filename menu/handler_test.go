package menu

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/menustream/logger"
)

func newTestServer(t *testing.T) (*gin.Engine, pipelineFixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fx := newFixture(t)
	p := newPipeline(t, fx)

	engine := gin.New()
	NewHandler(fx.reg, p, logger.NewDefault("test")).RegisterRoutes(engine)
	return engine, fx
}

func postJSON(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/menus", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestSubmit_Accepted(t *testing.T) {
	engine, fx := newTestServer(t)

	w := postJSON(engine, `{"items":[{"name":"寿司"},{"name":"天ぷら"}]}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		SessionID  string `json:"session_id"`
		TotalItems int    `json:"total_items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.SessionID == "" || resp.TotalItems != 2 {
		t.Errorf("unexpected response %+v", resp)
	}

	sess, ok := fx.reg.Get(resp.SessionID)
	if !ok {
		t.Fatal("session must exist before the response is sent")
	}

	// The background run terminates the session's stream.
	deadline := time.Now().Add(2 * time.Second)
	for !sess.PendingClose() {
		if time.Now().After(deadline) {
			t.Fatal("pipeline never produced a terminal event")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubmit_CallerSuppliedSessionID(t *testing.T) {
	engine, fx := newTestServer(t)

	w := postJSON(engine, `{"session_id":"my-session","items":[{"name":"うどん"}]}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"session_id":"my-session"`) {
		t.Errorf("session id not echoed: %s", w.Body.String())
	}
	if !fx.reg.Exists("my-session") {
		t.Error("caller-supplied session must be created")
	}
}

func TestSubmit_ValidationErrors(t *testing.T) {
	engine, fx := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"items":`},
		{"neither items nor image", `{}`},
		{"item without name", `{"items":[{"price":"¥500"}]}`},
	}
	for _, tc := range cases {
		w := postJSON(engine, tc.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", tc.name, w.Code, w.Body.String())
		}
	}
	if fx.reg.Count() != 0 {
		t.Error("invalid input must not create sessions")
	}
}
