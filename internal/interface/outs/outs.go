package outs

import (
	"context"
	"fmt"
	"log"
	"sync"

	"happyBot/internal/domain"
)

// Sender is implemented by the outbound side of every chat adapter.
type Sender interface {
	SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error
}

// MultiSender routes a reply to the sender registered for its platform.
type MultiSender struct {
	mu      sync.RWMutex
	senders map[domain.Platform]Sender
}

func NewMultiSender() *MultiSender {
	return &MultiSender{
		senders: make(map[domain.Platform]Sender),
	}
}

func (m *MultiSender) Register(platform domain.Platform, sender Sender) {
	if m == nil || sender == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.senders[platform] = sender
}

func (m *MultiSender) Unregister(platform domain.Platform) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.senders, platform)
}

// Detach unregisters every sender so no further replies go out.
func (m *MultiSender) Detach() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for platform := range m.senders {
		delete(m.senders, platform)
	}
	log.Println("outs: all senders detached")
}

func (m *MultiSender) SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error {
	if m == nil {
		return fmt.Errorf("outs: no multi sender configured")
	}
	m.mu.RLock()
	sender, ok := m.senders[platform]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("outs: no sender registered for platform %s", platform)
	}

	return sender.SendMessage(ctx, platform, channelID, text)
}
