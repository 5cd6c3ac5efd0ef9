// Package notify implements the zero-payload change signal the catalog store
// emits after every write. Subscribers re-read the store; they never receive a diff.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/pageturn/storefront/internal/logger"
)

// Listener is invoked synchronously on Publish.
type Listener func()

// Notifier fans a "something changed" signal out to registered listeners.
// Delivery order across listeners is unspecified.
type Notifier struct {
	logger *slog.Logger

	mu        sync.RWMutex
	listeners map[string]Listener
}

// New creates a notifier. A nil logger discards output.
func New(log *slog.Logger) *Notifier {
	return &Notifier{
		logger:    logger.OrDiscard(log),
		listeners: make(map[string]Listener),
	}
}

// Subscribe registers l and returns the function that revokes it. Revoking
// is idempotent. A Publish that starts after the revoke returns never calls
// l, but one already running on another goroutine may still call it once.
func (n *Notifier) Subscribe(l Listener) (unsubscribe func()) {
	subID := uuid.New().String()

	n.mu.Lock()
	n.listeners[subID] = l
	total := len(n.listeners)
	n.mu.Unlock()

	n.logger.Debug("change listener subscribed",
		slog.String("subscription_id", subID),
		slog.Int("total_listeners", total))

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.listeners, subID)
			total := len(n.listeners)
			n.mu.Unlock()

			n.logger.Debug("change listener unsubscribed",
				slog.String("subscription_id", subID),
				slog.Int("total_listeners", total))
		})
	}
}

// Publish invokes every listener registered at call time. A listener revoked
// by an earlier listener during the same Publish is skipped.
func (n *Notifier) Publish() {
	n.mu.RLock()
	ids := make([]string, 0, len(n.listeners))
	for subID := range n.listeners {
		ids = append(ids, subID)
	}
	n.mu.RUnlock()

	var delivered int
	for _, subID := range ids {
		n.mu.RLock()
		l, ok := n.listeners[subID]
		n.mu.RUnlock()
		if !ok {
			continue
		}
		if n.invoke(subID, l) {
			delivered++
		}
	}

	n.logger.Debug("change published", slog.Int("delivered", delivered))
}

// invoke runs l, containing a panic so the remaining listeners still hear
// about the change.
func (n *Notifier) invoke(subID string, l Listener) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Warn("change listener panicked",
				slog.String("subscription_id", subID),
				slog.Any("panic", r))
			ok = false
		}
	}()
	l()
	return true
}

// Watch returns a channel that receives a value after each Publish. Signals
// that arrive while one is already pending are coalesced, so a slow reader
// never blocks publishers and always sees at least one signal after the
// latest change. The subscription ends and the channel is closed when ctx is done.
func (n *Notifier) Watch(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	var closeMu sync.Mutex
	closed := false

	unsubscribe := n.Subscribe(func() {
		closeMu.Lock()
		defer closeMu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		closeMu.Lock()
		closed = true
		close(ch)
		closeMu.Unlock()
	}()

	return ch
}

// Len reports how many listeners are registered.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
