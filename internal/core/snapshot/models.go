package snapshot

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConversationRecord is one row of the last successfully fetched conversation list
type ConversationRecord struct {
	ID        string         `gorm:"type:varchar(64);primaryKey"`
	Position  int            `gorm:"not null;index"`
	Status    string         `gorm:"type:varchar(20);not null"`
	AIActive  bool           `gorm:"not null;default:false"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (ConversationRecord) TableName() string {
	return "conversation_snapshots"
}

// ExportRecord logs a report file produced by an export
type ExportRecord struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primaryKey"`
	Format    string         `gorm:"type:varchar(10);not null"`
	StartDate string         `gorm:"type:varchar(10);not null"`
	EndDate   string         `gorm:"type:varchar(10);not null"`
	Location  string         `gorm:"type:text;not null"`
	Size      int64          `gorm:"not null;default:0"`
	Report    datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"index"`
}

func (ExportRecord) TableName() string {
	return "report_exports"
}
