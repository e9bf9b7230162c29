// internal/realtime/hub.go
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const notifyChannel = "table_changes"

// Event is one change notification from the database, as emitted by the
// pg_notify triggers installed at migration time.
type Event struct {
	Table  string `json:"table"`
	Action string `json:"action"`
}

type subscriber struct {
	tables map[string]bool // empty means all tables
	ch     chan Event
}

// Hub fans database change notifications out to SSE subscribers. Clients use
// the events as invalidation signals and refetch; no row data travels through
// the hub.
type Hub struct {
	listener *pq.Listener

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub(dsn string) *Hub {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logrus.WithError(err).Warn("Realtime listener event")
		}
	})

	return &Hub{
		listener: listener,
		subs:     make(map[*subscriber]struct{}),
	}
}

// Start listens for notifications until the context is cancelled. A dropped
// connection is handled by lib/pq's reconnect; the periodic Ping verifies the
// link during quiet periods.
func (h *Hub) Start(ctx context.Context) error {
	if err := h.listener.Listen(notifyChannel); err != nil {
		return err
	}

	go h.run(ctx)
	return nil
}

func (h *Hub) run(ctx context.Context) {
	defer h.listener.Close()

	pingTicker := time.NewTicker(90 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-h.listener.Notify:
			if n == nil {
				// nil notification signals a reconnect; subscribers refetch on
				// the next real event, nothing to replay
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				logrus.WithError(err).Warn("Malformed change notification")
				continue
			}
			h.broadcast(ev)
		case <-pingTicker.C:
			if err := h.listener.Ping(); err != nil {
				logrus.WithError(err).Warn("Realtime listener ping failed")
			}
		}
	}
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if len(sub.tables) > 0 && !sub.tables[ev.Table] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// slow subscriber; drop rather than block the notify loop
		}
	}
}

// Subscribe registers interest in change events for the given tables (all
// tables when the list is empty). The returned cancel func must be called when
// the client disconnects.
func (h *Hub) Subscribe(tables []string) (<-chan Event, func()) {
	sub := &subscriber{
		tables: make(map[string]bool, len(tables)),
		ch:     make(chan Event, 16),
	}
	for _, t := range tables {
		sub.tables[t] = true
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub.ch)
		}
		h.mu.Unlock()
	}

	return sub.ch, cancel
}
