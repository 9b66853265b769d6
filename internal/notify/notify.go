// Package notify provides a broadcast hub for user-facing notifications.
// Toast surfaces and log sinks subscribe; controllers publish.
package notify

import (
	"fmt"
	"sync"
)

// Level classifies a notification for presentation.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Message is one user-facing notification.
type Message struct {
	Level Level
	Text  string
}

// Hub broadcasts messages to all subscribed listeners.
type Hub struct {
	mu        sync.RWMutex
	listeners map[chan Message]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[chan Message]struct{})}
}

// Subscribe returns a buffered channel that receives published messages.
// The caller must call Unsubscribe when done to prevent leaks.
func (h *Hub) Subscribe() chan Message {
	ch := make(chan Message, 8)
	h.mu.Lock()
	h.listeners[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (h *Hub) Unsubscribe(ch chan Message) {
	h.mu.Lock()
	delete(h.listeners, ch)
	h.mu.Unlock()
	close(ch)
}

// Publish delivers msg to every listener.
// Non-blocking: if a listener's buffer is full the message is dropped
// for that listener.
func (h *Hub) Publish(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.listeners {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Infof publishes an info-level message.
func (h *Hub) Infof(format string, args ...any) {
	h.Publish(Message{Level: LevelInfo, Text: fmt.Sprintf(format, args...)})
}

// Successf publishes a success-level message.
func (h *Hub) Successf(format string, args ...any) {
	h.Publish(Message{Level: LevelSuccess, Text: fmt.Sprintf(format, args...)})
}

// Errorf publishes an error-level message.
func (h *Hub) Errorf(format string, args ...any) {
	h.Publish(Message{Level: LevelError, Text: fmt.Sprintf(format, args...)})
}
