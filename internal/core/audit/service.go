package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Change describes one action to record
type Change struct {
	Action      string
	Entity      string
	EntityID    string
	Old         interface{}
	New         interface{}
	Err         error
	Description string
}

// Service keeps the history of agent actions
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Migrate() error {
	if err := s.db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate audit log: %w", err)
	}
	return nil
}

// Record stores a change. A failed action is recorded with its error as description.
func (s *Service) Record(ctx context.Context, c Change) error {
	entry := &Entry{
		ID:          uuid.New(),
		Action:      c.Action,
		Entity:      c.Entity,
		EntityID:    c.EntityID,
		OldValue:    toJSON(c.Old),
		NewValue:    toJSON(c.New),
		Succeeded:   c.Err == nil,
		Description: c.Description,
	}
	if c.Err != nil && entry.Description == "" {
		entry.Description = c.Err.Error()
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// List returns history matching filter, newest first
func (s *Service) List(ctx context.Context, filter Filter) (*Page, error) {
	query := s.db.WithContext(ctx).Model(&Entry{})

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" {
		query = query.Where("entity = ?", filter.Entity)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}

	entries := []Entry{}
	if err := query.
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}

	pages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		pages++
	}

	return &Page{
		Entries:    entries,
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: pages,
	}, nil
}

func toJSON(value interface{}) datatypes.JSON {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Msg("audit value not serializable")
		return nil
	}
	return datatypes.JSON(raw)
}
