package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Func is the body of a periodic task. ctx is cancelled when the task stops.
type Func func(ctx context.Context)

// Task runs a Func on a fixed interval until stopped
type Task struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start runs fn once immediately and then every interval until Stop is called
// or parent is cancelled.
func Start(parent context.Context, name string, interval time.Duration, fn Func) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go t.run(ctx, interval, fn)
	return t
}

func (t *Task) run(ctx context.Context, interval time.Duration, fn Func) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Debug().Str("task", t.name).Dur("interval", interval).Msg("poller started")

	fn(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("task", t.name).Msg("poller stopped")
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			fn(ctx)
		}
	}
}

// Stop cancels the task and waits for an in-flight run to return. Safe to call
// more than once; must not be called from inside the task body.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the task loop has exited
func (t *Task) Done() <-chan struct{} {
	return t.done
}
