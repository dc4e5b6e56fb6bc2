// Package notify carries transient user-facing notifications out of the
// request gateway. The web surface collects them per request and returns
// them with the JSON response; background callers sink them into the log.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Notifier receives transient, user-facing error messages.
type Notifier interface {
	Notify(message string)
}

// Buffer accumulates notifications for one request.
type Buffer struct {
	mu       sync.Mutex
	messages []string
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Notify(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
}

// Drain returns the collected messages and resets the buffer.
func (b *Buffer) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.messages
	b.messages = nil
	return out
}

type logNotifier struct {
	log *zap.Logger
}

// NewLog returns a Notifier that writes messages to the log. Used where no
// user is watching, such as background variant fetches.
func NewLog(log *zap.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(message string) {
	n.log.Warn("notification", zap.String("message", message))
}
