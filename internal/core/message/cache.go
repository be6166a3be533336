package message

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/backend"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/poll"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

const DefaultPollInterval = 3 * time.Second

var (
	ErrNoSelection  = errors.New("no conversation selected")
	ErrEmptyMessage = errors.New("message content is empty")
)

// Source is the part of the backend client the cache depends on
type Source interface {
	GetMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	SendMessage(ctx context.Context, to, message string) (backend.SendResult, error)
	SendAIMessage(ctx context.Context, to, prompt, contextText string) (backend.SendResult, error)
}

type Options struct {
	PollInterval time.Duration
	// Now and NewID fill in what the backend leaves out of a send result
	Now   func() time.Time
	NewID func() string
}

// Cache holds the ordered history of the selected conversation. Only one
// conversation is tracked at a time; selecting another one resets the list.
type Cache struct {
	src          Source
	pollInterval time.Duration
	now          func() time.Time
	newID        func() string

	mu       sync.RWMutex
	selected string
	gen      uint64
	seq      uint64
	applied  uint64
	items    []models.Message
	err      error

	// selectMu serializes Select so poller handoff is never interleaved
	selectMu sync.Mutex
	parent   context.Context
	task     *poll.Task
}

func NewCache(src Source, opts Options) *Cache {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Cache{
		src:          src,
		pollInterval: opts.PollInterval,
		now:          opts.Now,
		newID:        opts.NewID,
		parent:       context.Background(),
	}
}

// Bind sets the context pollers started by later Select calls run under
func (c *Cache) Bind(ctx context.Context) {
	c.selectMu.Lock()
	c.parent = ctx
	c.selectMu.Unlock()
}

// Select switches the tracked conversation. The previous conversation's
// poller is stopped and its list cleared before polling starts for id. An
// empty id only stops polling.
func (c *Cache) Select(id string) {
	c.selectMu.Lock()
	defer c.selectMu.Unlock()

	c.mu.Lock()
	if id == c.selected && (id == "" || c.task != nil) {
		c.mu.Unlock()
		return
	}
	c.selected = id
	c.gen++
	c.items = nil
	c.err = nil
	c.mu.Unlock()

	// the old body may be blocked in Refresh waiting on mu, so stop outside it
	c.task.Stop()
	c.task = nil

	if id == "" {
		return
	}
	log.Debug().Str("conversation_id", id).Msg("polling messages")
	c.task = poll.Start(c.parent, "messages:"+id, c.pollInterval, func(ctx context.Context) {
		_ = c.Refresh(ctx)
	})
}

// Stop halts polling and drops the selection
func (c *Cache) Stop() {
	c.Select("")
}

// Refresh replaces the list with the backend's history of the selected
// conversation. A result for a conversation that is no longer selected is
// dropped, and so is one overtaken by a later fetch that already landed.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	id, gen, seq := c.selected, c.gen, c.seq
	c.mu.Unlock()

	if id == "" {
		return nil
	}

	msgs, err := c.src.GetMessages(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		log.Debug().Str("conversation_id", id).Msg("dropping messages fetched for a previous selection")
		return nil
	}
	if seq < c.applied {
		log.Debug().Str("conversation_id", id).Uint64("seq", seq).Msg("dropping messages overtaken by a newer refresh")
		return nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		c.err = err
		log.Warn().Err(err).Str("conversation_id", id).Msg("message refresh failed, keeping previous list")
		return err
	}
	c.items = msgs
	c.applied = seq
	c.err = nil
	return nil
}

// Append adds msg to the end of the list. Messages for a conversation other
// than the selected one are ignored.
func (c *Cache) Append(msg models.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == "" {
		return false
	}
	if msg.ConversationID == "" {
		msg.ConversationID = c.selected
	}
	if msg.ConversationID != c.selected {
		return false
	}
	c.items = append(c.items, msg)
	return true
}

// Send delivers a human-authored message to the selected conversation and
// appends it once the backend accepted it. On failure nothing is appended.
func (c *Cache) Send(ctx context.Context, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, ErrEmptyMessage
	}
	id := c.Selected()
	if id == "" {
		return models.Message{}, ErrNoSelection
	}

	res, err := c.src.SendMessage(ctx, id, content)
	if err != nil {
		c.recordErr(err)
		return models.Message{}, err
	}

	msg := c.build(id, res, content, models.SenderHumanAgent, false)
	c.Append(msg)
	return msg, nil
}

// SendAssisted asks the backend to generate a reply from prompt and context,
// then appends the generated message marked as AI-authored.
func (c *Cache) SendAssisted(ctx context.Context, prompt, contextText string) (models.Message, error) {
	if strings.TrimSpace(prompt) == "" {
		return models.Message{}, ErrEmptyMessage
	}
	id := c.Selected()
	if id == "" {
		return models.Message{}, ErrNoSelection
	}

	res, err := c.src.SendAIMessage(ctx, id, prompt, contextText)
	if err != nil {
		c.recordErr(err)
		return models.Message{}, err
	}

	content := res.Content
	if content == "" {
		content = prompt
	}
	msg := c.build(id, res, content, models.SenderBot, true)
	c.Append(msg)
	return msg, nil
}

func (c *Cache) build(id string, res backend.SendResult, content string, sender models.SenderType, ai bool) models.Message {
	msg := models.Message{
		ID:             res.ID,
		ConversationID: id,
		SenderType:     sender,
		Content:        content,
		Timestamp:      res.Timestamp,
		Status:         models.DeliverySent,
		AIGenerated:    ai,
	}
	if msg.ID == "" {
		msg.ID = c.newID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = c.now()
	}
	return msg
}

func (c *Cache) recordErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// Messages returns a copy of the current list
func (c *Cache) Messages() []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Message, len(c.items))
	copy(out, c.items)
	return out
}

// Selected returns the tracked conversation id
func (c *Cache) Selected() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// Err is the last refresh or send failure
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}
