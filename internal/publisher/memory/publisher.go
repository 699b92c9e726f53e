// Package memory records job notifications in process, for tests and the
// one-shot CLI.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// Publisher stores published payloads for inspection.
type Publisher struct {
	mu       sync.RWMutex
	messages []PublishedMessage
}

// PublishedMessage captures one publish call.
type PublishedMessage struct {
	ID      string
	Topic   string
	Payload any
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the message and returns a pseudo ID.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("publish canceled: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	id := fmt.Sprintf("memory-%d", len(p.messages)+1)
	p.messages = append(p.messages, PublishedMessage{ID: id, Topic: topic, Payload: payload})
	return id, nil
}

// Messages returns the recorded publishes.
func (p *Publisher) Messages() []PublishedMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]PublishedMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

// Events returns the recorded payloads that are job events, in publish order.
func (p *Publisher) Events() []styleguide.JobEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []styleguide.JobEvent
	for _, m := range p.messages {
		switch ev := m.Payload.(type) {
		case styleguide.JobEvent:
			out = append(out, ev)
		case *styleguide.JobEvent:
			out = append(out, *ev)
		}
	}
	return out
}
