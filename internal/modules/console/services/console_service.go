package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/audit"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/automation"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/backend"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/conversation"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/export"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/kb"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/message"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/report"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/snapshot"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
	"github.com/MuhamadAgungGumelar/agent-console/internal/shared/utils"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Options carries the polling cadence of every cache
type Options struct {
	ConversationPollInterval time.Duration
	MessagePollInterval      time.Duration
	AutomationPollInterval   time.Duration
	AutomationSuppressWindow time.Duration
	SearchDebounce           time.Duration
}

// ConsoleService owns every cache of the agent console for the lifetime of
// the process and composes them into the actions the console exposes.
type ConsoleService struct {
	backend       *backend.Client
	conversations *conversation.Cache
	selection     *conversation.Selection
	messages      *message.Cache
	automation    *automation.Reconciler
	kb            *kb.Store
	reports       *report.Service
	snapshots     *snapshot.Store
	history       *audit.Service
}

// NewConsoleService wires the caches. snapshots and history may be nil.
func NewConsoleService(client *backend.Client, reports *report.Service, snapshots *snapshot.Store, history *audit.Service, opts Options) *ConsoleService {
	s := &ConsoleService{
		backend:   client,
		reports:   reports,
		snapshots: snapshots,
		history:   history,
		kb:        kb.NewStore(client),
	}

	s.conversations = conversation.NewCache(client, conversation.Options{
		PollInterval: opts.ConversationPollInterval,
		Debounce:     opts.SearchDebounce,
		OnRefresh:    s.persistConversations,
	})
	s.selection = conversation.NewSelection(s.conversations)
	s.messages = message.NewCache(client, message.Options{PollInterval: opts.MessagePollInterval})
	s.automation = automation.NewReconciler(client, automation.Options{
		PollInterval:   opts.AutomationPollInterval,
		SuppressWindow: opts.AutomationSuppressWindow,
	})
	return s
}

// Start seeds from the last snapshot and begins polling
func (s *ConsoleService) Start(ctx context.Context) {
	log.Println("🔧 Starting console caches...")

	if s.snapshots != nil {
		convs, err := s.snapshots.LoadConversations(ctx)
		if err != nil {
			utils.LogWarn("could not read conversation snapshot", map[string]interface{}{"error": err.Error()})
		} else if len(convs) > 0 && s.conversations.Seed(convs) {
			utils.LogInfo("seeded conversations from snapshot", map[string]interface{}{"count": len(convs)})
		}
	}

	s.messages.Bind(ctx)
	s.conversations.Start(ctx)
	s.automation.Start(ctx)

	go func() {
		if err := s.kb.Load(ctx); err != nil {
			utils.LogError("initial knowledge base load failed", err, nil)
		}
	}()

	log.Println("✅ Console caches started")
}

// Stop halts every poller
func (s *ConsoleService) Stop() {
	s.messages.Stop()
	s.conversations.Stop()
	s.automation.Stop()
	log.Println("✅ Console caches stopped")
}

func (s *ConsoleService) persistConversations(convs []models.Conversation) {
	if s.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.snapshots.SaveConversations(ctx, convs); err != nil {
		utils.LogWarn("could not persist conversation snapshot", map[string]interface{}{"error": err.Error()})
	}
}

// ConversationsView is the conversation list panel
type ConversationsView struct {
	Conversations []models.Conversation     `json:"conversations"`
	Filter        models.ConversationFilter `json:"filter"`
	Loaded        bool                      `json:"loaded"`
	Error         string                    `json:"error,omitempty"`
}

func (s *ConsoleService) Conversations() ConversationsView {
	return ConversationsView{
		Conversations: s.conversations.Conversations(),
		Filter:        s.conversations.Filter(),
		Loaded:        s.conversations.Loaded(),
		Error:         errString(s.conversations.Err()),
	}
}

// Conversation returns one cached conversation
func (s *ConsoleService) Conversation(id string) (models.Conversation, bool) {
	return s.conversations.Get(id)
}

// RefreshConversations forces an immediate refresh
func (s *ConsoleService) RefreshConversations(ctx context.Context) error {
	return s.conversations.Refresh(ctx)
}

// SetFilter updates the list filter; the refresh is debounced
func (s *ConsoleService) SetFilter(filter models.ConversationFilter) error {
	if filter.Status != "" && !filter.Status.Valid() {
		return fmt.Errorf("invalid status filter: %s", filter.Status)
	}
	s.conversations.SetFilter(filter)
	return nil
}

// SelectConversation opens a conversation: binds it, starts polling its
// messages and marks it read. Marking read is best effort.
func (s *ConsoleService) SelectConversation(ctx context.Context, id string) (models.Conversation, error) {
	conv, ok := s.conversations.Get(id)
	if !ok {
		return models.Conversation{}, ErrConversationNotFound
	}

	s.selection.Select(conv)
	s.messages.Select(id)

	if err := s.backend.MarkRead(ctx, id); err != nil {
		utils.LogWarn("mark read failed", map[string]interface{}{"conversation_id": id, "error": err.Error()})
	}
	return conv, nil
}

func (s *ConsoleService) ClearSelection() {
	s.selection.Clear()
	s.messages.Select("")
}

// SelectedConversation is the freshest copy of the open conversation
func (s *ConsoleService) SelectedConversation() (models.Conversation, bool) {
	return s.selection.Current()
}

// SetConversationAutomation toggles the automated agent of one conversation
func (s *ConsoleService) SetConversationAutomation(ctx context.Context, id string, active bool) (bool, error) {
	conv, ok := s.conversations.Get(id)
	if !ok {
		return false, ErrConversationNotFound
	}

	applied := s.conversations.SetAutomation(ctx, id, active)
	change := audit.Change{
		Action:   audit.ActionToggleAutomation,
		Entity:   audit.EntityConversation,
		EntityID: id,
		Old:      map[string]interface{}{"ai_active": conv.AIActive},
		New:      map[string]interface{}{"ai_active": active},
	}
	if !applied {
		change.Err = errors.New("backend refused the toggle")
	}
	s.record(ctx, change)
	return applied, nil
}

// MessagesView is the chat panel of the open conversation
type MessagesView struct {
	ConversationID string           `json:"conversation_id"`
	Messages       []models.Message `json:"messages"`
	Error          string           `json:"error,omitempty"`
}

func (s *ConsoleService) Messages() MessagesView {
	return MessagesView{
		ConversationID: s.messages.Selected(),
		Messages:       s.messages.Messages(),
		Error:          errString(s.messages.Err()),
	}
}

// SendMessage sends a human-authored message to the open conversation and
// updates the conversation's last message right away.
func (s *ConsoleService) SendMessage(ctx context.Context, content string) (models.Message, error) {
	id := s.messages.Selected()
	msg, err := s.messages.Send(ctx, content)
	if msg.ConversationID != "" {
		id = msg.ConversationID
	}
	s.record(ctx, audit.Change{
		Action:   audit.ActionSendMessage,
		Entity:   audit.EntityConversation,
		EntityID: id,
		New:      map[string]interface{}{"content": content},
		Err:      err,
	})
	if err != nil {
		return models.Message{}, err
	}
	s.conversations.RecordSentMessage(msg.ConversationID, msg.Content, msg.Timestamp)
	return msg, nil
}

// SendAssistedMessage has the backend generate and send a reply
func (s *ConsoleService) SendAssistedMessage(ctx context.Context, prompt, contextText string) (models.Message, error) {
	id := s.messages.Selected()
	msg, err := s.messages.SendAssisted(ctx, prompt, contextText)
	if msg.ConversationID != "" {
		id = msg.ConversationID
	}
	s.record(ctx, audit.Change{
		Action:   audit.ActionSendAIMessage,
		Entity:   audit.EntityConversation,
		EntityID: id,
		New:      map[string]interface{}{"prompt": prompt, "content": msg.Content},
		Err:      err,
	})
	if err != nil {
		return models.Message{}, err
	}
	s.conversations.RecordSentMessage(msg.ConversationID, msg.Content, msg.Timestamp)
	return msg, nil
}

// AutomationView is the global auto-response switch
type AutomationView struct {
	Enabled bool   `json:"enabled"`
	Loaded  bool   `json:"loaded"`
	Error   string `json:"error,omitempty"`
}

func (s *ConsoleService) Automation() AutomationView {
	return AutomationView{
		Enabled: s.automation.Enabled(),
		Loaded:  s.automation.Loaded(),
		Error:   errString(s.automation.Err()),
	}
}

func (s *ConsoleService) ToggleAutomation(ctx context.Context, enabled bool) (bool, error) {
	prev := s.automation.Enabled()
	ok, err := s.automation.Toggle(ctx, enabled)
	s.record(ctx, audit.Change{
		Action: audit.ActionToggleAutomation,
		Entity: audit.EntityAutomation,
		Old:    map[string]interface{}{"enabled": prev},
		New:    map[string]interface{}{"enabled": enabled},
		Err:    err,
	})
	return ok, err
}

// StatusPanel combines backend health and counters. Each half fails alone.
type StatusPanel struct {
	Health      *models.Health `json:"health,omitempty"`
	HealthError string         `json:"health_error,omitempty"`
	Stats       models.Stats   `json:"stats,omitempty"`
	StatsError  string         `json:"stats_error,omitempty"`
	Automation  AutomationView `json:"automation"`
}

func (s *ConsoleService) Status(ctx context.Context) StatusPanel {
	panel := StatusPanel{Automation: s.Automation()}

	if health, err := s.backend.Health(ctx); err != nil {
		panel.HealthError = err.Error()
	} else {
		panel.Health = &health
	}

	if stats, err := s.backend.Stats(ctx); err != nil {
		panel.StatsError = err.Error()
	} else {
		panel.Stats = stats
	}
	return panel
}

func (s *ConsoleService) KnowledgeBase() *kb.Store {
	return s.kb
}

func (s *ConsoleService) CreateKnowledgeEntry(ctx context.Context, entry models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error) {
	created, err := s.kb.Create(ctx, entry)
	s.record(ctx, audit.Change{
		Action:   audit.ActionCreate,
		Entity:   audit.EntityKnowledgeBase,
		EntityID: created.ID,
		New:      entry,
		Err:      err,
	})
	return created, err
}

func (s *ConsoleService) UpdateKnowledgeEntry(ctx context.Context, id string, entry models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error) {
	var old interface{}
	for _, e := range s.kb.Entries() {
		if e.ID == id {
			old = e
			break
		}
	}

	updated, err := s.kb.Update(ctx, id, entry)
	s.record(ctx, audit.Change{
		Action:   audit.ActionUpdate,
		Entity:   audit.EntityKnowledgeBase,
		EntityID: id,
		Old:      old,
		New:      entry,
		Err:      err,
	})
	return updated, err
}

func (s *ConsoleService) DeleteKnowledgeEntry(ctx context.Context, id string) error {
	err := s.kb.Delete(ctx, id)
	s.record(ctx, audit.Change{
		Action:   audit.ActionDelete,
		Entity:   audit.EntityKnowledgeBase,
		EntityID: id,
		Err:      err,
	})
	return err
}

func (s *ConsoleService) Reports() *report.Service {
	return s.reports
}

// ExportReport renders the current report and records the download
func (s *ConsoleService) ExportReport(ctx context.Context, format export.Format) (*export.File, string, error) {
	file, name, err := s.reports.Export(format)
	if err != nil {
		return nil, "", err
	}
	s.record(ctx, audit.Change{
		Action:   audit.ActionExport,
		Entity:   audit.EntityReport,
		EntityID: name,
		New:      map[string]interface{}{"format": string(format), "size": len(file.Data)},
	})
	return file, name, nil
}

// ExportHistory lists files written by the scheduled export
func (s *ConsoleService) ExportHistory(ctx context.Context, limit int) ([]snapshot.ExportRecord, error) {
	if s.snapshots == nil {
		return []snapshot.ExportRecord{}, nil
	}
	return s.snapshots.ListExports(ctx, limit)
}

// History pages through recorded agent actions
func (s *ConsoleService) History(ctx context.Context, filter audit.Filter) (*audit.Page, error) {
	if s.history == nil {
		return &audit.Page{Entries: []audit.Entry{}, Page: 1}, nil
	}
	return s.history.List(ctx, filter)
}

// record is best effort; a lost history row never fails the action
func (s *ConsoleService) record(ctx context.Context, change audit.Change) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(context.WithoutCancel(ctx), change); err != nil {
		utils.LogWarn("could not record agent action", map[string]interface{}{
			"action": change.Action,
			"error":  err.Error(),
		})
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
