package websockets

import (
	"context"
	"sync"
)

// NoOpPublisher drops every message. It is used when no hub is running,
// e.g. inside the lambdas.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, message Message) error {
	return nil
}

// RecordingPublisher keeps published messages in memory.
type RecordingPublisher struct {
	mu       sync.Mutex
	messages []Message
	// Err is returned from every Publish call when set.
	Err error
}

func (p *RecordingPublisher) Publish(ctx context.Context, message Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	return p.Err
}

// Messages returns a copy of everything published so far.
func (p *RecordingPublisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.messages...)
}
