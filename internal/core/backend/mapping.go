package backend

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

// toConversation maps the backend shape onto the internal model. The phone
// number is the external identity, so it wins over any backend-local id.
func toConversation(w wireConversation) models.Conversation {
	id := w.PhoneNumber
	if id == "" {
		id = w.ID
	}

	conv := models.Conversation{
		ID:               id,
		Status:           toStatus(w.Status),
		StartTimestamp:   firstTime(w.CreatedAt, w.StartTimestamp).Time,
		EndTimestamp:     firstTime(w.EndedAt, w.EndTimestamp).ptr(),
		AIClassification: firstString(w.AIClassification, w.Classification),
		AISummary:        firstString(w.AISummary, w.Summary),
		LastMessage:      w.LastMessageV2,
		LastTimestamp:    w.LastTimestamp.ptr(),
	}

	switch {
	case w.AIActive != nil:
		conv.AIActive = *w.AIActive
	case w.IsActive != nil:
		conv.AIActive = *w.IsActive
	}

	if text, ts, ok := decodeLastMessage(w.LastMessage); ok {
		conv.LastMessage = text
		if ts != nil {
			conv.LastTimestamp = ts
		}
	}

	switch {
	case w.Customer != nil:
		conv.Customer = &models.Customer{
			ID:    firstString(w.Customer.ID, w.CustomerID, w.PhoneNumber),
			Name:  firstString(w.Customer.Name, w.ContactName),
			Phone: firstString(w.Customer.Phone, w.PhoneNumber),
		}
	case w.PhoneNumber != "" || w.ContactName != "":
		conv.Customer = &models.Customer{
			ID:    firstString(w.CustomerID, w.PhoneNumber),
			Name:  firstString(w.ContactName, w.PhoneNumber),
			Phone: w.PhoneNumber,
		}
	}

	return conv
}

func decodeLastMessage(raw json.RawMessage) (string, *time.Time, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", nil, false
		}
		return s, nil, true
	}
	var lm wireLastMessage
	if err := json.Unmarshal(raw, &lm); err != nil {
		return "", nil, false
	}
	return lm.Text, lm.Timestamp.ptr(), true
}

// toConversations maps a listing and collapses rows that share an identity.
// The most recently active row wins and keeps the first row's position.
func toConversations(ws []wireConversation) []models.Conversation {
	out := make([]models.Conversation, 0, len(ws))
	seen := make(map[string]int, len(ws))
	for _, w := range ws {
		conv := toConversation(w)
		i, dup := seen[conv.ID]
		if !dup {
			seen[conv.ID] = len(out)
			out = append(out, conv)
			continue
		}
		if newer(conv.LastTimestamp, out[i].LastTimestamp) {
			out[i] = conv
		}
	}
	return out
}

func newer(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	return b == nil || a.After(*b)
}

func toStatus(s string) models.ConversationStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "closed", "cerrada", "resolved", "ended":
		return models.StatusClosed
	case "pending", "pendiente", "waiting":
		return models.StatusPending
	default:
		return models.StatusOpen
	}
}

func toMessage(conversationID string, w wireMessage) models.Message {
	msg := models.Message{
		ID:             firstString(w.ID, w.SID),
		ConversationID: firstString(w.ConversationID, conversationID),
		Content:        firstString(w.Content, w.Text, w.Body, w.Message),
		Timestamp:      w.Timestamp.Time,
		Status:         toDeliveryStatus(w.Status),
		AIGenerated:    w.IsAIGenerated || (w.Metadata != nil && w.Metadata.IsAIGenerated),
	}
	msg.SenderType = toSenderType(firstString(w.SenderType, w.Type), msg.AIGenerated)
	return msg
}

func toMessages(conversationID string, ws []wireMessage) []models.Message {
	out := make([]models.Message, 0, len(ws))
	for _, w := range ws {
		out = append(out, toMessage(conversationID, w))
	}
	return out
}

func toSenderType(t string, aiGenerated bool) models.SenderType {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "customer", "incoming", "inbound", "user", "cliente_final":
		return models.SenderCustomer
	case "bot", "ai", "assistant", "auto":
		return models.SenderBot
	case "human_agent", "agent", "human", "manual", "agente_humano":
		return models.SenderHumanAgent
	case "outgoing", "outbound":
		if aiGenerated {
			return models.SenderBot
		}
		return models.SenderHumanAgent
	default:
		if aiGenerated {
			return models.SenderBot
		}
		return models.SenderCustomer
	}
}

func toDeliveryStatus(s string) models.DeliveryStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delivered":
		return models.DeliveryDelivered
	case "read", "seen":
		return models.DeliveryRead
	case "":
		return ""
	default:
		return models.DeliverySent
	}
}

func toKnowledgeEntry(w wireKnowledgeEntry) models.KnowledgeBaseEntry {
	entry := models.KnowledgeBaseEntry{
		ID:          w.ID,
		KeyQuestion: firstString(w.KeyQuestion, w.Question),
		Answer:      w.Answer,
		Active:      true,
		Tags:        w.Tags,
	}
	if w.Active != nil {
		entry.Active = *w.Active
	}
	return entry
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstTime(values ...wireTime) wireTime {
	for _, v := range values {
		if !v.IsZero() {
			return v
		}
	}
	return wireTime{}
}
