package models

import "time"

// ConversationStatus is the lifecycle state of a conversation on the backend
type ConversationStatus string

const (
	StatusOpen    ConversationStatus = "open"
	StatusClosed  ConversationStatus = "closed"
	StatusPending ConversationStatus = "pending"
)

// Valid reports whether s is one of the known statuses
func (s ConversationStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusPending:
		return true
	}
	return false
}

// Customer is the end customer on the other side of a conversation
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Conversation is a summary of one customer thread, keyed by the customer's phone-derived id
type Conversation struct {
	ID               string             `json:"id"`
	Status           ConversationStatus `json:"status"`
	AIActive         bool               `json:"ai_active"`
	StartTimestamp   time.Time          `json:"start_timestamp"`
	EndTimestamp     *time.Time         `json:"end_timestamp,omitempty"`
	AIClassification string             `json:"ai_classification,omitempty"`
	AISummary        string             `json:"ai_summary,omitempty"`
	LastMessage      string             `json:"last_message,omitempty"`
	LastTimestamp    *time.Time         `json:"last_timestamp,omitempty"`
	Customer         *Customer          `json:"customer,omitempty"`
}

// Clone returns a deep copy so callers can't mutate cache-owned pointers
func (c Conversation) Clone() Conversation {
	out := c
	if c.EndTimestamp != nil {
		t := *c.EndTimestamp
		out.EndTimestamp = &t
	}
	if c.LastTimestamp != nil {
		t := *c.LastTimestamp
		out.LastTimestamp = &t
	}
	if c.Customer != nil {
		cust := *c.Customer
		out.Customer = &cust
	}
	return out
}

// ConversationFilter narrows the conversation listing
type ConversationFilter struct {
	Status ConversationStatus `json:"status,omitempty"`
	Search string             `json:"search,omitempty"`
}

// IsZero reports whether no filtering is requested
func (f ConversationFilter) IsZero() bool {
	return f.Status == "" && f.Search == ""
}
