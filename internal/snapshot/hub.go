package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
)

var ErrTooManySubscribers = errors.New("too many live subscribers")

// WriteFunc delivers one encoded frame. It must not block.
type WriteFunc func(frame []byte) error

// CloseFunc tears down the subscriber's transport.
type CloseFunc func()

type subscriber struct {
	id    uint64
	write WriteFunc
	close CloseFunc
}

// Hub fans change events out to live subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]*subscriber
	nextID      uint64
	limit       int
}

// NewHub creates a hub that admits at most limit subscribers; limit <= 0
// means unbounded.
func NewHub(limit int) *Hub {
	return &Hub{
		subscribers: make(map[uint64]*subscriber),
		limit:       limit,
	}
}

// Subscribe registers a subscriber and returns its handle. Handles increase
// monotonically and are never reused.
func (h *Hub) Subscribe(write WriteFunc, closeFn CloseFunc) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.limit > 0 && len(h.subscribers) >= h.limit {
		return 0, ErrTooManySubscribers
	}

	h.nextID++
	id := h.nextID
	h.subscribers[id] = &subscriber{id: id, write: write, close: closeFn}
	slog.Info("stream subscriber connected", "subscriber_id", id, "total", len(h.subscribers))
	return id, nil
}

// Unsubscribe removes the subscriber and invokes its close function.
// Unknown or already removed ids are ignored.
func (h *Hub) Unsubscribe(id uint64) {
	h.remove(id, true)
}

// Release removes the subscriber without closing it, for transports that
// are already shutting down.
func (h *Hub) Release(id uint64) {
	h.remove(id, false)
}

func (h *Hub) remove(id uint64, closeIt bool) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	total := len(h.subscribers)
	h.mu.Unlock()

	if !ok {
		return
	}
	if closeIt && sub.close != nil {
		safeClose(sub)
	}
	slog.Info("stream subscriber disconnected", "subscriber_id", id, "total", total)
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Broadcast encodes the event once and writes it to every subscriber.
// Failing subscribers are pruned; the error never reaches the caller.
func (h *Hub) Broadcast(event dto.StreamEvent) {
	frame, err := EncodeFrame(event)
	if err != nil {
		slog.Error("failed to encode stream event", "action", string(event.Type), "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	var dead []uint64
	for _, sub := range targets {
		if err := safeWrite(sub, frame); err != nil {
			slog.Warn("dropping stream subscriber after failed write", "subscriber_id", sub.id, "error", err)
			dead = append(dead, sub.id)
		}
	}
	for _, id := range dead {
		h.Unsubscribe(id)
	}
}

// EncodeFrame renders an event as a single SSE data frame.
func EncodeFrame(event dto.StreamEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, "\n\n"...)
	return frame, nil
}

func safeWrite(sub *subscriber, frame []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber write panicked: %v", r)
		}
	}()
	return sub.write(frame)
}

func safeClose(sub *subscriber) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("subscriber close panicked", "subscriber_id", sub.id, "panic", fmt.Sprint(r))
		}
	}()
	sub.close()
}
