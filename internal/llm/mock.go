package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ErrMockExhausted is returned by MockProvider when no reply is queued.
var ErrMockExhausted = errors.New("mock provider has no queued reply")

// MockReply is a canned reply.
type MockReply struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays canned replies. Replies queued for a purpose with
// Script are used first; the rest are served in order to any request.
type MockProvider struct {
	mu       sync.Mutex
	queue    []MockReply
	scripted map[Purpose][]MockReply
	calls    []Request
}

// NewMockProvider returns a mock serving replies in order.
func NewMockProvider(replies ...MockReply) *MockProvider {
	return &MockProvider{queue: replies, scripted: make(map[Purpose][]MockReply)}
}

// Script queues replies for requests with purpose p.
func (m *MockProvider) Script(p Purpose, replies ...MockReply) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted[p] = append(m.scripted[p], replies...)
	return m
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)

	var reply MockReply
	switch {
	case len(m.scripted[req.Purpose]) > 0:
		reply, m.scripted[req.Purpose] = m.scripted[req.Purpose][0], m.scripted[req.Purpose][1:]
	case len(m.queue) > 0:
		reply, m.queue = m.queue[0], m.queue[1:]
	default:
		return nil, &Error{Kind: KindUnavailable, Provider: "mock", Err: ErrMockExhausted}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &Response{Content: reply.Content, Usage: reply.Usage, Model: "mock", StopReason: stopEnd}, nil
}

func (m *MockProvider) Name() string    { return "mock" }
func (m *MockProvider) ModelID() string { return "mock" }

// Calls returns a copy of every request received.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

// LastCall returns the most recent request.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Request{}, false
	}
	return m.calls[len(m.calls)-1], true
}
