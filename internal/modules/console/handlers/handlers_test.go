package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/audit"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/backend"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/export"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/report"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/transport"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
	"github.com/MuhamadAgungGumelar/agent-console/internal/shared/database"
)

// fakeBackend answers the support backend's REST surface from memory
type fakeBackend struct {
	mu       sync.Mutex
	toggleOK bool
	enabled  bool
	marked   []string
	sent     []map[string]string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/api/health":
		writeJSON(w, map[string]interface{}{"status": "ok"})
	case path == "/api/stats":
		writeJSON(w, map[string]interface{}{"totalConversations": 3})
	case path == "/api/auto-response/status":
		writeJSON(w, map[string]interface{}{"enabled": f.enabled})
	case path == "/api/auto-response/toggle":
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if f.toggleOK {
			if _, perConversation := req["conversationId"]; !perConversation {
				f.enabled, _ = req["enabled"].(bool)
			}
		}
		writeJSON(w, map[string]interface{}{"success": f.toggleOK})
	case path == "/api/conversations":
		writeJSON(w, map[string]interface{}{
			"success": true,
			"conversations": []map[string]interface{}{
				{"phoneNumber": "+57300", "contactName": "Juan", "isActive": true, "status": "open"},
				{"phoneNumber": "+57301", "contactName": "Ana", "isActive": false, "status": "closed"},
			},
		})
	case strings.HasSuffix(path, "/read"):
		f.marked = append(f.marked, strings.TrimSuffix(strings.TrimPrefix(path, "/api/conversations/"), "/read"))
		writeJSON(w, map[string]interface{}{"success": true})
	case strings.HasPrefix(path, "/api/conversations/"):
		writeJSON(w, map[string]interface{}{
			"success":  true,
			"messages": []map[string]interface{}{},
		})
	case path == "/api/send-message":
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.sent = append(f.sent, req)
		writeJSON(w, map[string]interface{}{"success": true, "messageId": "m1", "timestamp": "2024-01-15T10:30:00Z"})
	case path == "/api/knowledge-base" && r.Method == http.MethodGet:
		writeJSON(w, map[string]interface{}{"success": true, "entries": []interface{}{}})
	case path == "/api/knowledge-base" && r.Method == http.MethodPost:
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		req["id"] = "kb1"
		writeJSON(w, map[string]interface{}{"success": true, "entry": req})
	case strings.HasPrefix(path, "/api/knowledge-base/") && r.Method == http.MethodDelete:
		http.Error(w, "not found", http.StatusNotFound)
	case path == "/api/reports":
		writeJSON(w, map[string]interface{}{
			"success": true,
			"report": map[string]interface{}{
				"total_conversations":      150,
				"classified_conversations": map[string]int{"closed_sale": 45},
				"average_response_time":    2.5,
				"customer_satisfaction":    4.2,
			},
		})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestApp(t *testing.T) (*fiber.App, *fakeBackend, *services.ConsoleService) {
	t.Helper()
	fake := &fakeBackend{toggleOK: true}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "console.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	history := audit.NewService(db.GORM)
	require.NoError(t, history.Migrate())

	client := backend.NewClient(transport.NewClient(server.URL, time.Second))
	reports := report.NewService(client, export.NewService())
	console := services.NewConsoleService(client, reports, nil, history, services.Options{
		ConversationPollInterval: time.Hour,
		MessagePollInterval:      time.Hour,
		AutomationPollInterval:   time.Hour,
		SearchDebounce:           10 * time.Millisecond,
	})
	t.Cleanup(console.Stop)

	app := fiber.New()
	Register(app, console)
	return app, fake, console
}

func do(t *testing.T, app *fiber.App, method, target string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestStatusPanel(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	health := body["health"].(map[string]interface{})
	assert.Equal(t, "ok", health["status"])
	stats := body["stats"].(map[string]interface{})
	assert.EqualValues(t, 3, stats["totalConversations"])
}

func TestListConversations_Refresh(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, body := do(t, app, http.MethodGet, "/conversations", nil)
	assert.Equal(t, false, body["loaded"])

	resp, body := do(t, app, http.MethodGet, "/conversations?refresh=true", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["loaded"])
	convs := body["conversations"].([]interface{})
	require.Len(t, convs, 2)
	assert.Equal(t, "+57300", convs[0].(map[string]interface{})["id"])
}

func TestSetFilter(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := do(t, app, http.MethodPut, "/conversations/filter", map[string]string{"status": "archived"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPut, "/conversations/filter", map[string]string{"status": "open", "search": "juan"})
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	_, body := do(t, app, http.MethodGet, "/conversations", nil)
	filter := body["filter"].(map[string]interface{})
	assert.Equal(t, "open", filter["status"])
	assert.Equal(t, "juan", filter["search"])
}

func TestSelectConversation(t *testing.T) {
	app, fake, _ := newTestApp(t)

	resp, _ := do(t, app, http.MethodPost, "/conversations/+57300/select", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "unknown before the first refresh")

	do(t, app, http.MethodGet, "/conversations?refresh=true", nil)

	resp, body := do(t, app, http.MethodPost, "/conversations/+57300/select", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "+57300", body["id"])

	fake.mu.Lock()
	assert.Equal(t, []string{"+57300"}, fake.marked)
	fake.mu.Unlock()

	_, body = do(t, app, http.MethodGet, "/conversations/selected", nil)
	assert.Equal(t, "+57300", body["id"])

	_, body = do(t, app, http.MethodGet, "/messages", nil)
	assert.Equal(t, "+57300", body["conversation_id"])

	resp, _ = do(t, app, http.MethodDelete, "/conversations/selected", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/conversations/selected", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSendMessage(t *testing.T) {
	app, fake, _ := newTestApp(t)

	resp, _ := do(t, app, http.MethodPost, "/messages", map[string]string{"content": "hola"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, "nothing selected")

	do(t, app, http.MethodGet, "/conversations?refresh=true", nil)
	do(t, app, http.MethodPost, "/conversations/+57300/select", nil)

	resp, _ = do(t, app, http.MethodPost, "/messages", map[string]string{"content": "   "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, app, http.MethodPost, "/messages", map[string]string{"content": "Hola Juan"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "m1", body["id"])
	assert.Equal(t, "human_agent", body["sender_type"])

	fake.mu.Lock()
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "+57300", fake.sent[0]["to"])
	assert.Equal(t, "Hola Juan", fake.sent[0]["message"])
	fake.mu.Unlock()

	_, body = do(t, app, http.MethodGet, "/conversations", nil)
	first := body["conversations"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Hola Juan", first["last_message"])

	_, body = do(t, app, http.MethodGet, "/history?action=send_message", nil)
	entries := body["entries"].([]interface{})
	require.Len(t, entries, 3, "rejected sends are recorded too")
	assert.Equal(t, true, entries[0].(map[string]interface{})["succeeded"])
	assert.Equal(t, false, entries[1].(map[string]interface{})["succeeded"])
}

func TestSetConversationAutomation(t *testing.T) {
	app, fake, _ := newTestApp(t)
	do(t, app, http.MethodGet, "/conversations?refresh=true", nil)

	resp, _ := do(t, app, http.MethodPost, "/conversations/+57300/automation", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/conversations/+59999/automation", map[string]bool{"enabled": false})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := do(t, app, http.MethodPost, "/conversations/+57300/automation", map[string]bool{"enabled": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["ai_active"])

	fake.mu.Lock()
	fake.toggleOK = false
	fake.mu.Unlock()

	resp, body = do(t, app, http.MethodPost, "/conversations/+57300/automation", map[string]bool{"enabled": true})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, false, body["ai_active"], "reverted after the backend refused")
}

func TestToggleAutomation(t *testing.T) {
	app, fake, _ := newTestApp(t)

	resp, body := do(t, app, http.MethodPost, "/automation", map[string]bool{"enabled": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["enabled"])

	fake.mu.Lock()
	fake.toggleOK = false
	fake.mu.Unlock()

	resp, _ = do(t, app, http.MethodPost, "/automation", map[string]bool{"enabled": false})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	_, body = do(t, app, http.MethodGet, "/automation", nil)
	assert.Equal(t, true, body["enabled"])
}

func TestKnowledgeBase(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := do(t, app, http.MethodPost, "/knowledge-base", map[string]string{"key_question": "horario"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, app, http.MethodPost, "/knowledge-base", map[string]interface{}{
		"key_question": "¿Cuál es el horario?",
		"answer":       "Lunes a viernes de 8am a 6pm",
		"tags":         []string{"horario"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "kb1", body["id"])

	_, body = do(t, app, http.MethodGet, "/knowledge-base?q=HORARIO", nil)
	assert.Len(t, body["entries"], 1)

	_, body = do(t, app, http.MethodGet, "/knowledge-base?q=envio", nil)
	assert.Len(t, body["entries"], 0)

	resp, _ = do(t, app, http.MethodDelete, "/knowledge-base/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReports(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := do(t, app, http.MethodGet, "/reports", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/reports/export", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/reports?start=2024-02-01&end=2024-01-01", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, app, http.MethodGet, "/reports?start=2024-01-01&end=2024-01-31", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 150, body["total_conversations"])

	_, body = do(t, app, http.MethodGet, "/reports/chart", nil)
	assert.Equal(t, []interface{}{45.0, 0.0, 0.0, 0.0}, body["values"])

	resp, _ = do(t, app, http.MethodGet, "/reports?period=fortnight", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/reports/export?format=docx", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/reports/export?format=csv", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "report-2024-01-01-2024-01-31.csv")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Total Conversations,150")

	_, body = do(t, app, http.MethodGet, "/history?entity=report", nil)
	assert.EqualValues(t, 1, body["total_count"])

	_, body = do(t, app, http.MethodGet, "/reports/exports", nil)
	assert.Len(t, body["exports"], 0)

	resp, _ = do(t, app, http.MethodDelete, "/reports", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, app, http.MethodGet, "/reports", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", services.ErrConversationNotFound, fiber.StatusNotFound},
		{"no report", report.ErrNoReport, fiber.StatusConflict},
		{"remote", &transport.RemoteError{Status: 500, Body: "boom"}, fiber.StatusBadGateway},
		{"timeout", transport.ErrTimeout, fiber.StatusGatewayTimeout},
		{"other", io.EOF, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
