package backend

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

func TestToConversation_ChannelFields(t *testing.T) {
	raw := `{
		"phoneNumber": "+573001234567",
		"contactName": "Juan Pérez",
		"isActive": true,
		"status": "open",
		"createdAt": "2024-01-15T10:30:00Z",
		"lastMessage": {"text": "¿Cuál es el precio?", "timestamp": 1705328400000}
	}`

	var w wireConversation
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	conv := toConversation(w)

	assert.Equal(t, "+573001234567", conv.ID)
	assert.True(t, conv.AIActive)
	assert.Equal(t, models.StatusOpen, conv.Status)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), conv.StartTimestamp)
	assert.Equal(t, "¿Cuál es el precio?", conv.LastMessage)
	require.NotNil(t, conv.LastTimestamp)
	assert.Equal(t, time.UnixMilli(1705328400000).UTC(), *conv.LastTimestamp)
	require.NotNil(t, conv.Customer)
	assert.Equal(t, "Juan Pérez", conv.Customer.Name)
	assert.Equal(t, "+573001234567", conv.Customer.Phone)
}

func TestToConversation_InternalFields(t *testing.T) {
	raw := `{
		"id": "c1",
		"status": "cerrada",
		"ai_active": false,
		"isActive": true,
		"start_timestamp": "2024-01-14T09:15:00Z",
		"end_timestamp": "2024-01-14T16:45:00Z",
		"ai_classification": "Venta Cerrada",
		"ai_summary": "Cliente interesado",
		"last_message": "Perfecto",
		"customer": {"id": "2", "name": "María", "phone": "+573007654321"}
	}`

	var w wireConversation
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	conv := toConversation(w)

	assert.Equal(t, "c1", conv.ID)
	assert.False(t, conv.AIActive, "ai_active takes precedence over isActive")
	assert.Equal(t, models.StatusClosed, conv.Status)
	require.NotNil(t, conv.EndTimestamp)
	assert.Equal(t, "Venta Cerrada", conv.AIClassification)
	assert.Equal(t, "Cliente interesado", conv.AISummary)
	assert.Equal(t, "Perfecto", conv.LastMessage)
	assert.Nil(t, conv.LastTimestamp)
	assert.Equal(t, "María", conv.Customer.Name)
}

func TestToConversations_CollapsesSharedIdentity(t *testing.T) {
	raw := `[
		{"id": "db1", "phoneNumber": "+57300", "lastMessage": {"text": "hola", "timestamp": 1705328400000}},
		{"id": "db9", "phoneNumber": "+57311"},
		{"id": "db2", "phoneNumber": "+57300", "lastMessage": {"text": "sigo aqui", "timestamp": 1705328500000}},
		{"id": "db3", "phoneNumber": "+57300"}
	]`

	var ws []wireConversation
	require.NoError(t, json.Unmarshal([]byte(raw), &ws))
	convs := toConversations(ws)

	require.Len(t, convs, 2)
	assert.Equal(t, "+57300", convs[0].ID)
	assert.Equal(t, "sigo aqui", convs[0].LastMessage)
	assert.Equal(t, "+57311", convs[1].ID)
}

func TestToMessage_SenderMapping(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		sender models.SenderType
		ai     bool
	}{
		{"incoming customer", `{"id":"1","type":"incoming","text":"hola"}`, models.SenderCustomer, false},
		{"outgoing ai metadata", `{"id":"2","type":"outgoing","body":"hi","metadata":{"isAiGenerated":true}}`, models.SenderBot, true},
		{"outgoing human", `{"id":"3","type":"outgoing","content":"hello"}`, models.SenderHumanAgent, false},
		{"internal sender_type", `{"id":"4","sender_type":"human_agent","content":"x"}`, models.SenderHumanAgent, false},
		{"bot type", `{"id":"5","type":"bot","message":"auto"}`, models.SenderBot, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w wireMessage
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &w))
			msg := toMessage("c1", w)
			assert.Equal(t, tt.sender, msg.SenderType)
			assert.Equal(t, tt.ai, msg.AIGenerated)
			assert.Equal(t, "c1", msg.ConversationID)
			assert.NotEmpty(t, msg.Content)
		})
	}
}

func TestToDeliveryStatus(t *testing.T) {
	assert.Equal(t, models.DeliveryRead, toDeliveryStatus("READ"))
	assert.Equal(t, models.DeliveryDelivered, toDeliveryStatus("delivered"))
	assert.Equal(t, models.DeliverySent, toDeliveryStatus("queued"))
	assert.Equal(t, models.DeliveryStatus(""), toDeliveryStatus(""))
}

func TestWireTime_Formats(t *testing.T) {
	var out struct {
		A wireTime `json:"a"`
		B wireTime `json:"b"`
		C wireTime `json:"c"`
		D wireTime `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2024-01-15T10:30:00Z","b":1705314600,"c":null,"d":"1705314600000"}`), &out))

	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.True(t, want.Equal(out.A.Time))
	assert.True(t, want.Equal(out.B.Time))
	assert.True(t, out.C.IsZero())
	assert.True(t, want.Equal(out.D.Time))

	var bad struct {
		A wireTime `json:"a"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"a":"yesterday"}`), &bad))
}
