package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

// Store persists what the console needs to show something useful right after
// a restart, before the backend has answered.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the snapshot tables
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&ConversationRecord{}, &ExportRecord{}); err != nil {
		return fmt.Errorf("failed to migrate snapshot tables: %w", err)
	}
	return nil
}

// SaveConversations replaces the stored list with convs, preserving order
func (s *Store) SaveConversations(ctx context.Context, convs []models.Conversation) error {
	now := time.Now()
	records := make([]ConversationRecord, 0, len(convs))
	for i, conv := range convs {
		payload, err := json.Marshal(conv)
		if err != nil {
			return fmt.Errorf("failed to serialize conversation %s: %w", conv.ID, err)
		}
		records = append(records, ConversationRecord{
			ID:        conv.ID,
			Position:  i,
			Status:    string(conv.Status),
			AIActive:  conv.AIActive,
			Payload:   payload,
			UpdatedAt: now,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ConversationRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear conversation snapshot: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("failed to store conversation snapshot: %w", err)
		}
		return nil
	})
}

// LoadConversations returns the stored list in its original order
func (s *Store) LoadConversations(ctx context.Context) ([]models.Conversation, error) {
	var records []ConversationRecord
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load conversation snapshot: %w", err)
	}

	convs := make([]models.Conversation, 0, len(records))
	for _, r := range records {
		var conv models.Conversation
		if err := json.Unmarshal(r.Payload, &conv); err != nil {
			return nil, fmt.Errorf("failed to decode conversation %s: %w", r.ID, err)
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

// RecordExport logs a produced report file
func (s *Store) RecordExport(ctx context.Context, format, location string, size int64, report models.Report) (*ExportRecord, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}

	rec := &ExportRecord{
		ID:        uuid.New(),
		Format:    format,
		StartDate: report.StartDate,
		EndDate:   report.EndDate,
		Location:  location,
		Size:      size,
		Report:    payload,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to record export: %w", err)
	}
	return rec, nil
}

// ListExports returns the most recent exports first
func (s *Store) ListExports(ctx context.Context, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []ExportRecord
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return records, nil
}
