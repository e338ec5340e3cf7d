package test

import (
	"context"
	"fmt"
	"sync"

	"github.com/polkiloo/foodorder/internal/adapter/whatsapp"
)

// MessengerStub records outbound messages instead of calling the provider.
type MessengerStub struct {
	SendFn func(context.Context, whatsapp.Message) (*whatsapp.SendResult, error)
	Err    error

	mu   sync.Mutex
	sent []whatsapp.Message
}

// Send records the message and answers with a sequential SID or the configured error.
func (m *MessengerStub) Send(ctx context.Context, msg whatsapp.Message) (*whatsapp.SendResult, error) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	n := len(m.sent)
	m.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, msg)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &whatsapp.SendResult{SID: fmt.Sprintf("SM%04d", n), Status: "queued"}, nil
}

// Sent returns a snapshot of the recorded messages.
func (m *MessengerStub) Sent() []whatsapp.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]whatsapp.Message(nil), m.sent...)
}

var _ whatsapp.Client = (*MessengerStub)(nil)
