package notify

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/mysociety/internal/logging"
)

const (
	ProviderMock   = "mock"
	ProviderTwilio = "twilio"
)

// Transport delivers one message and returns the provider's confirmation id.
type Transport interface {
	Name() string
	Send(ctx context.Context, text, from, to string) (string, error)
}

// NewTransport picks the transport named by cfg.Provider. Unknown names
// fall back to the mock transport.
func NewTransport(cfg Config, log logging.Logger) Transport {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderTwilio:
		return NewTwilioTransport(cfg.Twilio)
	case ProviderMock, "":
		return NewMockTransport(log)
	default:
		log.Warn(context.Background(), "unknown notification provider, using mock", "provider", cfg.Provider)
		return NewMockTransport(log)
	}
}

// MockTransport only logs the message. It never fails.
type MockTransport struct {
	log logging.Logger
}

func NewMockTransport(log logging.Logger) *MockTransport {
	if log == nil {
		log = logging.Nop()
	}
	return &MockTransport{log: log}
}

func (m *MockTransport) Name() string { return ProviderMock }

func (m *MockTransport) Send(ctx context.Context, text, _, _ string) (string, error) {
	id := "mock-" + uuid.NewString()
	m.log.Info(ctx, "[MOCK WhatsApp] "+text, "message_id", id)
	return id, nil
}
