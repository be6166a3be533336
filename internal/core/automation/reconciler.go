package automation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/optimistic"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/poll"
)

const (
	DefaultPollInterval   = 5 * time.Second
	DefaultSuppressWindow = 2 * time.Second
)

// Source is the part of the backend client the reconciler depends on
type Source interface {
	AutomationStatus(ctx context.Context) (bool, error)
	ToggleAutomation(ctx context.Context, enabled bool) (bool, error)
}

type Options struct {
	PollInterval   time.Duration
	SuppressWindow time.Duration
	Now            func() time.Time
}

// Reconciler owns the process-wide auto-response flag. Load and Toggle are
// its only mutators.
type Reconciler struct {
	src            Source
	pollInterval   time.Duration
	suppressWindow time.Duration
	now            func() time.Time

	mu                 sync.Mutex
	enabled            bool
	loaded             bool
	lastManualToggleAt time.Time
	err                error

	runMu sync.Mutex
	task  *poll.Task
}

func NewReconciler(src Source, opts Options) *Reconciler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SuppressWindow <= 0 {
		opts.SuppressWindow = DefaultSuppressWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Reconciler{
		src:            src,
		pollInterval:   opts.PollInterval,
		suppressWindow: opts.SuppressWindow,
		now:            opts.Now,
	}
}

// Load adopts the backend's flag unless a manual toggle happened within the
// suppression window. The window is checked when the fetch returns.
func (r *Reconciler) Load(ctx context.Context) error {
	enabled, err := r.src.AutomationStatus(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.err = err
		log.Warn().Err(err).Msg("automation status fetch failed")
		return err
	}
	r.err = nil

	if !r.lastManualToggleAt.IsZero() && r.now().Sub(r.lastManualToggleAt) < r.suppressWindow {
		log.Debug().Bool("fetched", enabled).Bool("local", r.enabled).Msg("automation status suppressed after manual toggle")
		return nil
	}
	r.enabled = enabled
	r.loaded = true
	return nil
}

// Toggle sets the flag locally, then remotely, and reverts the local flag if
// the backend call fails or is rejected.
func (r *Reconciler) Toggle(ctx context.Context, enabled bool) (bool, error) {
	err := optimistic.Apply(
		r.snapshotToggle,
		func() {
			r.mu.Lock()
			r.enabled = enabled
			r.lastManualToggleAt = r.now()
			r.mu.Unlock()
		},
		func() (bool, error) {
			return r.src.ToggleAutomation(ctx, enabled)
		},
		func(prev toggleState) {
			r.mu.Lock()
			r.enabled = prev.enabled
			r.lastManualToggleAt = prev.at
			r.mu.Unlock()
		},
	)
	if err != nil {
		log.Warn().Err(err).Bool("enabled", enabled).Msg("automation toggle rolled back")
		return false, err
	}
	log.Info().Bool("enabled", enabled).Msg("automation toggled")
	return true, nil
}

// toggleState is what a rolled back toggle puts back. The toggle time is part
// of it so a failed toggle does not suppress the next Load.
type toggleState struct {
	enabled bool
	at      time.Time
}

func (r *Reconciler) snapshotToggle() toggleState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return toggleState{enabled: r.enabled, at: r.lastManualToggleAt}
}

// Enabled returns the local flag
func (r *Reconciler) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Loaded reports whether the backend's value was adopted at least once
func (r *Reconciler) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Err is the last fetch failure
func (r *Reconciler) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Start polls Load until Stop. A second Start is a no-op.
func (r *Reconciler) Start(ctx context.Context) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.task != nil {
		return
	}
	r.task = poll.Start(ctx, "automation", r.pollInterval, func(ctx context.Context) {
		_ = r.Load(ctx)
	})
}

func (r *Reconciler) Stop() {
	r.runMu.Lock()
	task := r.task
	r.task = nil
	r.runMu.Unlock()

	task.Stop()
}
