// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/Sk16er/Scholar-chat/domain/events"
	"github.com/stretchr/testify/mock"
)

// MockModelClient is a mock implementation of ports.ModelClient
type MockModelClient struct {
	mock.Mock
}

var _ ports.ModelClient = (*MockModelClient)(nil)

func (m *MockModelClient) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.GenerateResponse), args.Error(1)
}

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

var _ ports.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// RecordingPublisher keeps every published event in memory
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

var _ ports.EventPublisher = (*RecordingPublisher)(nil)

func (r *RecordingPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return r.PublishBatch(ctx, []events.DomainEvent{event})
}

func (r *RecordingPublisher) PublishBatch(_ context.Context, evts []events.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evts...)
	return nil
}

// Types lists the recorded event types in publish order
func (r *RecordingPublisher) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.GetEventType()
	}
	return out
}

// StaticPrompts serves fixed templates keyed by name
type StaticPrompts map[string]string

var _ ports.PromptStore = StaticPrompts(nil)

func (s StaticPrompts) Get(name string) (string, error) {
	t, ok := s[name]
	if !ok {
		return "", ErrPromptNotFound
	}
	return t, nil
}

// ErrPromptNotFound is returned by StaticPrompts for unknown names
var ErrPromptNotFound = errors.New("prompt not found")
