package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Actions recorded by the console
const (
	ActionSendMessage      = "send_message"
	ActionSendAIMessage    = "send_ai_message"
	ActionToggleAutomation = "toggle_automation"
	ActionCreate           = "create"
	ActionUpdate           = "update"
	ActionDelete           = "delete"
	ActionExport           = "export"
)

// Entities an action can touch
const (
	EntityConversation  = "conversation"
	EntityAutomation    = "automation"
	EntityKnowledgeBase = "knowledge_base"
	EntityReport        = "report"
)

// Entry is one agent action taken through the console
type Entry struct {
	ID uuid.UUID `json:"id" gorm:"type:varchar(36);primaryKey"`

	Action   string `json:"action" gorm:"type:varchar(32);not null;index"`
	Entity   string `json:"entity" gorm:"type:varchar(32);not null;index"`
	EntityID string `json:"entity_id,omitempty" gorm:"type:varchar(64);index"`

	// Change tracking
	OldValue datatypes.JSON `json:"old_value,omitempty"`
	NewValue datatypes.JSON `json:"new_value,omitempty"`

	Succeeded   bool   `json:"succeeded" gorm:"not null;default:true"`
	Description string `json:"description,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (Entry) TableName() string {
	return "audit_logs"
}

// Filter narrows a history query
type Filter struct {
	Action   string
	Entity   string
	EntityID string
	Page     int
	PageSize int
}

// Page is one page of history, newest first
type Page struct {
	Entries    []Entry `json:"entries"`
	TotalCount int64   `json:"total_count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}
