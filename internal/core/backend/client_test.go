package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/transport"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(transport.NewClient(server.URL, time.Second))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_ListConversations_Filters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/conversations", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		assert.Equal(t, "juan", r.URL.Query().Get("search"))
		writeJSON(w, map[string]interface{}{
			"success": true,
			"conversations": []map[string]interface{}{
				{"phoneNumber": "+57300", "contactName": "Juan", "isActive": true, "status": "open"},
			},
		})
	})

	convs, err := client.ListConversations(context.Background(), models.ConversationFilter{Status: models.StatusOpen, Search: "juan"})
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "+57300", convs[0].ID)
	assert.True(t, convs[0].AIActive)
}

func TestClient_ListConversations_OnePerPhone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"success": true,
			"conversations": []map[string]interface{}{
				{"id": "db1", "phoneNumber": "+57300"},
				{"id": "db2", "phoneNumber": "+57300"},
			},
		})
	})

	convs, err := client.ListConversations(context.Background(), models.ConversationFilter{})
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "+57300", convs[0].ID)
}

func TestClient_ListConversations_InvalidShape(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]interface{}
		field string
	}{
		{"missing success", map[string]interface{}{"conversations": []interface{}{}}, "success"},
		{"missing conversations", map[string]interface{}{"success": true}, "conversations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.body)
			})
			_, err := client.ListConversations(context.Background(), models.ConversationFilter{})
			var invalid *transport.InvalidResponseError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestClient_ListConversations_SuccessFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"success": false, "error": "db down"})
	})
	_, err := client.ListConversations(context.Background(), models.ConversationFilter{})
	var remote *transport.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "db down", remote.Body)
}

func TestClient_SearchConversations_EscapesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/conversations/search/juan pérez", r.URL.Path)
		writeJSON(w, map[string]interface{}{"success": true, "conversations": []interface{}{}})
	})
	convs, err := client.SearchConversations(context.Background(), "juan pérez")
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestClient_GetConversation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/conversations/c1", r.URL.Path)
		writeJSON(w, map[string]interface{}{
			"success":      true,
			"conversation": map[string]interface{}{"id": "c1", "status": "pending"},
			"messages": []map[string]interface{}{
				{"id": "m1", "type": "incoming", "text": "hola", "timestamp": "2024-01-15T10:30:00Z"},
				{"id": "m2", "type": "outgoing", "text": "hi", "timestamp": "2024-01-15T10:31:00Z", "status": "read"},
			},
		})
	})

	conv, msgs, err := client.GetConversation(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, conv.Status)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderCustomer, msgs[0].SenderType)
	assert.Equal(t, models.SenderHumanAgent, msgs[1].SenderType)
	assert.Equal(t, models.DeliveryRead, msgs[1].Status)
	assert.Equal(t, "c1", msgs[1].ConversationID)
}

func TestClient_SendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/send-message", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"to": "c1", "message": "Hello"}, body)
		writeJSON(w, map[string]interface{}{"success": true, "messageId": "m99", "timestamp": "2024-01-15T10:30:00Z"})
	})

	res, err := client.SendMessage(context.Background(), "c1", "Hello")
	require.NoError(t, err)
	assert.Equal(t, "m99", res.ID)
	assert.False(t, res.Timestamp.IsZero())
}

func TestClient_SendMessage_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"success": false, "error": "outside 24h window"})
	})
	_, err := client.SendMessage(context.Background(), "c1", "Hello")
	var remote *transport.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Contains(t, remote.Body, "24h")
}

func TestClient_SendAIMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "c1", body["to"])
		assert.Equal(t, "offer discount", body["prompt"])
		assert.Equal(t, "customer asked price", body["context"])
		writeJSON(w, map[string]interface{}{
			"success": true,
			"message": map[string]interface{}{"id": "m5", "text": "We have 10% off today"},
		})
	})

	res, err := client.SendAIMessage(context.Background(), "c1", "offer discount", "customer asked price")
	require.NoError(t, err)
	assert.Equal(t, "m5", res.ID)
	assert.Equal(t, "We have 10% off today", res.Content)
}

func TestClient_Toggle(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = nil
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, map[string]interface{}{"success": true})
	})

	ok, err := client.ToggleConversationAutomation(context.Background(), "c1", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, false, got["enabled"])
	assert.Equal(t, "c1", got["conversationId"])

	ok, err = client.ToggleAutomation(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, ok)
	_, hasID := got["conversationId"]
	assert.False(t, hasID)
}

func TestClient_AutomationStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"enabled": true})
	})
	enabled, err := client.AutomationStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{})
	})
	_, err = client.AutomationStatus(context.Background())
	var invalid *transport.InvalidResponseError
	assert.True(t, errors.As(err, &invalid))
}

func TestClient_Health_PlainText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("healthy\n"))
	})
	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
}

func TestClient_MarkRead(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/conversations/c1/read", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, client.MarkRead(context.Background(), "c1"))
	assert.True(t, called)
}

func TestClient_KnowledgeBase(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, map[string]interface{}{
				"success": true,
				"entries": []map[string]interface{}{{"id": "1", "question": "precio", "answer": "varía", "tags": []string{"precios"}}},
			})
		case http.MethodPost:
			writeJSON(w, map[string]interface{}{"success": true, "entry": map[string]interface{}{"id": "9", "key_question": "envío", "answer": "3-5 días", "active": true}})
		case http.MethodDelete:
			if r.URL.Path == "/api/knowledge-base/missing" {
				http.NotFound(w, r)
				return
			}
			writeJSON(w, map[string]interface{}{"success": true})
		}
	})

	entries, err := client.ListKnowledgeBase(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "precio", entries[0].KeyQuestion)
	assert.True(t, entries[0].Active)

	created, err := client.CreateKnowledgeEntry(context.Background(), models.KnowledgeBaseEntry{KeyQuestion: "envío", Answer: "3-5 días", Active: true})
	require.NoError(t, err)
	assert.Equal(t, "9", created.ID)

	ok, err := client.DeleteKnowledgeEntry(context.Background(), "9")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.DeleteKnowledgeEntry(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_GetReport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("start"))
		assert.Equal(t, "2024-01-31", r.URL.Query().Get("end"))
		writeJSON(w, map[string]interface{}{
			"success": true,
			"report": map[string]interface{}{
				"id":                       "1",
				"total_conversations":      150,
				"classified_conversations": map[string]int{"closed_sale": 45},
				"average_response_time":    2.5,
			},
		})
	})

	report, err := client.GetReport(context.Background(), "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, 150, report.TotalConversations)
	assert.Equal(t, 45, report.Classified.ClosedSale)
	assert.Equal(t, "2024-01-01", report.StartDate)
	assert.Equal(t, "2024-01-31", report.EndDate)
}
