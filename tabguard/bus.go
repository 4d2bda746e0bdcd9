// Package tabguard discourages operating the application from two tabs at
// once. Credentials are shared across every tab of a browser profile, so a
// second tab would race the first on state mutations; the guard detects the
// situation over a broadcast channel and blocks the newer tab. The protocol
// is advisory and racy by construction: a probe and its replies are not
// transactional, first reply wins, and tab age is irrelevant.
package tabguard

import "sync"

type Kind string

const (
	// CheckExisting is the probe a freshly mounted tab broadcasts.
	CheckExisting Kind = "CHECK_EXISTING"
	// IExist is the reply an established tab sends back.
	IExist Kind = "I_EXIST"
)

type Message struct {
	Kind  Kind
	TabID string
}

// Bus is an ephemeral broadcast channel shared by every tab of one browsing
// profile. A publisher never receives its own message. Nothing is persisted;
// absence of a reply is the only signal a new tab relies on.
type Bus interface {
	// Subscribe registers a handler for messages published by other tabs and
	// returns the matching unsubscribe.
	Subscribe(tabID string, fn func(Message)) (cancel func())
	Publish(msg Message)
}

type subscriber struct {
	tabID string
	fn    func(Message)
}

// MemoryBus is the in-process Bus. Delivery is asynchronous, one goroutine
// per recipient, matching the fire-and-forget nature of the real channel.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[int]subscriber
	next int
}

var _ Bus = (*MemoryBus)(nil)

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]subscriber)}
}

func (b *MemoryBus) Subscribe(tabID string, fn func(Message)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = subscriber{tabID: tabID, fn: fn}
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *MemoryBus) Publish(msg Message) {
	b.mu.Lock()
	recipients := make([]func(Message), 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.tabID == msg.TabID {
			continue
		}
		recipients = append(recipients, sub.fn)
	}
	b.mu.Unlock()

	for _, fn := range recipients {
		go fn(msg)
	}
}
