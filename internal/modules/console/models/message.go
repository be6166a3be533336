package models

import "time"

// SenderType identifies who authored a message
type SenderType string

const (
	SenderBot        SenderType = "bot"
	SenderHumanAgent SenderType = "human_agent"
	SenderCustomer   SenderType = "customer"
)

// DeliveryStatus tracks an outbound message through the channel
type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
)

// Message is a single entry in a conversation history
type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	SenderType     SenderType     `json:"sender_type"`
	Content        string         `json:"content"`
	Timestamp      time.Time      `json:"timestamp"`
	Status         DeliveryStatus `json:"status,omitempty"`
	AIGenerated    bool           `json:"ai_generated"`
}
