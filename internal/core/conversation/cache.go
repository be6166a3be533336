package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/optimistic"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/poll"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultDebounce     = 500 * time.Millisecond
)

// Source is the part of the backend client the cache depends on
type Source interface {
	ListConversations(ctx context.Context, filter models.ConversationFilter) ([]models.Conversation, error)
	ToggleConversationAutomation(ctx context.Context, conversationID string, enabled bool) (bool, error)
}

// Options tunes polling. Zero values fall back to the defaults.
type Options struct {
	PollInterval time.Duration
	Debounce     time.Duration
	// OnRefresh receives a copy of every successfully fetched collection
	OnRefresh func([]models.Conversation)
}

// Cache holds the local view of the backend's conversation collection. Every
// successful Refresh replaces the collection wholesale.
type Cache struct {
	src          Source
	pollInterval time.Duration
	onRefresh    func([]models.Conversation)

	mu     sync.RWMutex
	items  []models.Conversation
	filter models.ConversationFilter
	gen    uint64
	// seq numbers fetches as they start. applied is the seq of the result
	// currently held, so an overlapping fetch that lands late is dropped.
	seq     uint64
	applied uint64
	err     error
	loaded  bool

	runMu    sync.Mutex
	runCtx   context.Context
	task     *poll.Task
	debounce *poll.Debouncer
}

func NewCache(src Source, opts Options) *Cache {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	c := &Cache{
		src:          src,
		pollInterval: opts.PollInterval,
		onRefresh:    opts.OnRefresh,
		runCtx:       context.Background(),
	}
	c.debounce = poll.NewDebouncer(opts.Debounce, c.refreshAfterDebounce)
	return c
}

// Refresh fetches the collection for the current filter and replaces the local
// copy. On failure the previous collection stays and Err reports the failure.
// A result fetched for a filter that has since changed is dropped, as is one
// that started before the result already applied.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	filter, gen, seq := c.filter, c.gen, c.seq
	c.mu.Unlock()

	convs, err := c.src.ListConversations(ctx, filter)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		log.Debug().Msg("dropping conversation list fetched for a stale filter")
		return nil
	}
	if seq < c.applied {
		c.mu.Unlock()
		log.Debug().Uint64("seq", seq).Msg("dropping conversation list overtaken by a newer refresh")
		return nil
	}
	if err != nil {
		if ctx.Err() != nil {
			c.mu.Unlock()
			return err
		}
		c.err = err
		c.mu.Unlock()
		log.Warn().Err(err).Msg("conversation refresh failed, keeping previous list")
		return err
	}
	c.items = convs
	c.applied = seq
	c.err = nil
	c.loaded = true
	snapshot := cloneAll(convs)
	c.mu.Unlock()

	if c.onRefresh != nil {
		c.onRefresh(snapshot)
	}
	return nil
}

// Seed installs a previously persisted collection. It is ignored once a
// refresh has succeeded.
func (c *Cache) Seed(convs []models.Conversation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return false
	}
	c.items = cloneAll(convs)
	return true
}

// SetFilter changes the filter and schedules a refresh once the debounce
// delay passes without another change.
func (c *Cache) SetFilter(filter models.ConversationFilter) {
	c.mu.Lock()
	c.filter = filter
	c.gen++
	c.mu.Unlock()

	c.debounce.Trigger()
}

// Filter returns the active filter
func (c *Cache) Filter() models.ConversationFilter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *Cache) refreshAfterDebounce() {
	c.runMu.Lock()
	ctx := c.runCtx
	c.runMu.Unlock()

	_ = c.Refresh(ctx)
}

// SetAutomation switches the automated agent of one conversation. The local
// flag changes before the remote call and is restored if the call fails or is
// rejected. Unknown ids are a no-op returning false.
func (c *Cache) SetAutomation(ctx context.Context, id string, active bool) bool {
	if _, ok := c.Get(id); !ok {
		return false
	}

	err := optimistic.Apply(
		func() bool {
			conv, _ := c.Get(id)
			return conv.AIActive
		},
		func() { c.setAIActive(id, active) },
		func() (bool, error) {
			return c.src.ToggleConversationAutomation(ctx, id, active)
		},
		func(prev bool) { c.setAIActive(id, prev) },
	)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", id).Bool("ai_active", active).Msg("automation toggle rolled back")
		return false
	}
	return true
}

func (c *Cache) setAIActive(id string, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(id); i >= 0 {
		c.items[i].AIActive = active
	}
}

// RecordSentMessage updates the denormalized last message of a conversation
// without waiting for the next poll.
func (c *Cache) RecordSentMessage(id, content string, timestamp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(id); i >= 0 {
		ts := timestamp
		c.items[i].LastMessage = content
		c.items[i].LastTimestamp = &ts
	}
}

func (c *Cache) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Conversations returns a copy of the current collection
func (c *Cache) Conversations() []models.Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.items)
}

// Get returns the conversation with the given id
func (c *Cache) Get(id string) (models.Conversation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.items[i].Clone(), true
	}
	return models.Conversation{}, false
}

// Err is the failure of the last refresh, nil after a success
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Loaded reports whether at least one refresh succeeded
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Start begins polling. Calling Start on a running cache is a no-op.
func (c *Cache) Start(ctx context.Context) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.task != nil {
		return
	}
	c.runCtx = ctx
	c.task = poll.Start(ctx, "conversations", c.pollInterval, func(ctx context.Context) {
		_ = c.Refresh(ctx)
	})
}

// Stop halts polling and drops any pending debounced refresh
func (c *Cache) Stop() {
	c.debounce.Stop()

	c.runMu.Lock()
	task := c.task
	c.task = nil
	c.runCtx = context.Background()
	c.runMu.Unlock()

	task.Stop()
}

func cloneAll(convs []models.Conversation) []models.Conversation {
	out := make([]models.Conversation, len(convs))
	for i, conv := range convs {
		out[i] = conv.Clone()
	}
	return out
}
