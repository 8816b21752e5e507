// Package notify fans out list change events to live subscribers.
package notify

import (
	"io"
	"log/slog"
	"sync"

	"tasktrack/internal/models"
)

// Conn is a subscriber handle. Send must be safe to call from any goroutine.
type Conn interface {
	Send(event models.ChangeEvent) error
}

// Registry maps list ids to the connections watching them.
type Registry struct {
	mu     sync.Mutex
	lists  map[string]map[Conn]struct{}
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		lists:  make(map[string]map[Conn]struct{}),
		logger: logger,
	}
}

// Subscribe adds conn to the set for listID.
func (r *Registry) Subscribe(listID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.lists[listID]
	if !ok {
		conns = make(map[Conn]struct{})
		r.lists[listID] = conns
	}
	conns[conn] = struct{}{}
}

// Unsubscribe removes conn from listID. Unknown lists and connections are ignored.
func (r *Registry) Unsubscribe(listID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.lists[listID]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(r.lists, listID)
	}
}

// Broadcast delivers event to every subscriber of listID. Deliveries happen
// outside the lock; connections that fail are dropped afterwards.
func (r *Registry) Broadcast(listID string, event models.ChangeEvent) {
	r.mu.Lock()
	snapshot := make([]Conn, 0, len(r.lists[listID]))
	for conn := range r.lists[listID] {
		snapshot = append(snapshot, conn)
	}
	r.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}

	var stale []Conn
	for _, conn := range snapshot {
		if err := conn.Send(event); err != nil {
			r.logger.Debug("dropping stale subscriber", slog.String("list_id", listID), slog.String("error", err.Error()))
			stale = append(stale, conn)
		}
	}
	if len(stale) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.lists[listID]
	if !ok {
		return
	}
	for _, conn := range stale {
		delete(conns, conn)
	}
	if len(conns) == 0 {
		delete(r.lists, listID)
	}
}

// Subscribers returns the number of live connections for listID.
func (r *Registry) Subscribers(listID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lists[listID])
}

// Lists returns how many lists currently have at least one subscriber.
func (r *Registry) Lists() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lists)
}
