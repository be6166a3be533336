package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// wireTime accepts RFC3339 strings, unix seconds or unix milliseconds
type wireTime struct {
	time.Time
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed
				return nil
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			t.Time = fromUnix(n)
			return nil
		}
		return fmt.Errorf("unrecognized timestamp %q", s)
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("unrecognized timestamp %s", string(data))
	}
	t.Time = fromUnix(int64(n))
	return nil
}

// fromUnix guesses seconds vs milliseconds by magnitude
func fromUnix(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

func (t wireTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type wireLastMessage struct {
	Text      string   `json:"text"`
	Timestamp wireTime `json:"timestamp"`
}

// wireConversation is the backend's conversation shape. Both the channel-style
// names (phoneNumber, isActive, contactName) and internal names are accepted.
type wireConversation struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phoneNumber"`
	ContactName string `json:"contactName"`
	CustomerID  string `json:"customerId"`

	Status   string `json:"status"`
	IsActive *bool  `json:"isActive"`
	AIActive *bool  `json:"ai_active"`

	CreatedAt      wireTime `json:"createdAt"`
	StartTimestamp wireTime `json:"start_timestamp"`
	EndedAt        wireTime `json:"endedAt"`
	EndTimestamp   wireTime `json:"end_timestamp"`

	Classification   string `json:"classification"`
	AIClassification string `json:"ai_classification"`
	Summary          string `json:"summary"`
	AISummary        string `json:"ai_summary"`

	// lastMessage is either {text,timestamp} or a bare string
	LastMessage   json.RawMessage `json:"lastMessage"`
	LastMessageV2 string          `json:"last_message"`
	LastTimestamp wireTime        `json:"last_timestamp"`

	Customer *struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"customer"`
}

type wireMetadata struct {
	IsAIGenerated bool `json:"isAiGenerated"`
}

type wireMessage struct {
	ID             string        `json:"id"`
	SID            string        `json:"twilioSid"`
	ConversationID string        `json:"conversation_id"`
	Type           string        `json:"type"`
	SenderType     string        `json:"sender_type"`
	Text           string        `json:"text"`
	Body           string        `json:"body"`
	Content        string        `json:"content"`
	Message        string        `json:"message"`
	Timestamp      wireTime      `json:"timestamp"`
	Status         string        `json:"status"`
	IsAIGenerated  bool          `json:"isAiGenerated"`
	Metadata       *wireMetadata `json:"metadata"`
}

type listConversationsResponse struct {
	Success       *bool               `json:"success"`
	Error         string              `json:"error"`
	Conversations *[]wireConversation `json:"conversations"`
}

type getConversationResponse struct {
	Success      *bool             `json:"success"`
	Error        string            `json:"error"`
	Conversation *wireConversation `json:"conversation"`
	Messages     *[]wireMessage    `json:"messages"`
}

type sendMessageRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type sendAIMessageRequest struct {
	To      string `json:"to"`
	Prompt  string `json:"prompt"`
	Context string `json:"context"`
}

type sendMessageResponse struct {
	Success   *bool        `json:"success"`
	Error     string       `json:"error"`
	MessageID string       `json:"messageId"`
	SID       string       `json:"sid"`
	Timestamp wireTime     `json:"timestamp"`
	Response  string       `json:"response"`
	AIMessage string       `json:"aiMessage"`
	Message   *wireMessage `json:"message"`
}

type toggleRequest struct {
	Enabled        bool   `json:"enabled"`
	ConversationID string `json:"conversationId,omitempty"`
}

type toggleResponse struct {
	Success *bool  `json:"success"`
	Enabled *bool  `json:"enabled"`
	Error   string `json:"error"`
}

type statusResponse struct {
	Enabled *bool `json:"enabled"`
}

type wireKnowledgeEntry struct {
	ID          string   `json:"id"`
	KeyQuestion string   `json:"key_question"`
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Active      *bool    `json:"active"`
	Tags        []string `json:"tags"`
}

type knowledgeListResponse struct {
	Success *bool                 `json:"success"`
	Error   string                `json:"error"`
	Entries *[]wireKnowledgeEntry `json:"entries"`
}

type knowledgeEntryResponse struct {
	Success *bool               `json:"success"`
	Error   string              `json:"error"`
	Entry   *wireKnowledgeEntry `json:"entry"`
}

type knowledgeEntryRequest struct {
	KeyQuestion string   `json:"key_question"`
	Answer      string   `json:"answer"`
	Active      bool     `json:"active"`
	Tags        []string `json:"tags,omitempty"`
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}
