package notify

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Listener handles one notification. A returned error is logged by the Bus
// and otherwise ignored.
type Listener func(Notification) error

// Bus fans notifications out to its listeners synchronously, in subscription
// order. A failing or panicking listener never affects the caller or the
// remaining listeners.
type Bus struct {
	log *zap.Logger

	mu        sync.RWMutex
	nextID    int
	listeners []subscription
}

type subscription struct {
	id     int
	name   string
	listen Listener
}

var _ Emitter = (*Bus)(nil)

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{log: logger.Named("notify")}
}

// Subscribe registers a listener and returns a function that removes it.
func (b *Bus) Subscribe(name string, l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, name: name, listen: l})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.listeners {
			if sub.id == id {
				b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

func (b *Bus) Emit(n Notification) {
	b.mu.RLock()
	subs := make([]subscription, len(b.listeners))
	copy(subs, b.listeners)
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := b.deliver(sub, n); err != nil {
			b.log.Error("notification listener failed",
				zap.String("listener", sub.name),
				zap.String("kind", string(n.Kind())),
				zap.String("game_id", n.Game()),
				zap.Error(err),
			)
		}
	}
}

func (b *Bus) deliver(sub subscription, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return sub.listen(n)
}
