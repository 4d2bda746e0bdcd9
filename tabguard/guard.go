package tabguard

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultProbeTimeout bounds the wait for an I_EXIST reply. The channel has
// no completion signal, so "no reply within the budget" is the sole-tab case.
const DefaultProbeTimeout = 200 * time.Millisecond

type Guard struct {
	bus     Bus
	timeout time.Duration
	exempt  func(route string) bool
	log     zerolog.Logger
}

type GuardOption func(*Guard)

func WithProbeTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		g.timeout = d
	}
}

// WithExemptRoutes marks routes the guard ignores entirely. The live preview
// is the expected one: it is opened in a second tab deliberately.
func WithExemptRoutes(routes ...string) GuardOption {
	set := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		set[r] = struct{}{}
	}
	return func(g *Guard) {
		g.exempt = func(route string) bool {
			_, ok := set[route]
			return ok
		}
	}
}

func WithLogger(log zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.log = log
	}
}

func NewGuard(bus Bus, options ...GuardOption) *Guard {
	g := &Guard{
		bus:     bus,
		timeout: DefaultProbeTimeout,
		exempt:  func(string) bool { return false },
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Tab is one armed browsing context. Duplicate status is resolved within one
// probe round trip of Arm and held only in memory.
type Tab struct {
	id    string
	guard *Guard

	mu        sync.Mutex
	route     string
	duplicate bool
	cancel    func()
	replies   chan struct{}
}

// Arm mounts a tab on the given route: subscribe, probe, and wait out the
// reply budget. On the exempt route the tab neither probes nor replies.
func (g *Guard) Arm(route string) *Tab {
	t := &Tab{id: uuid.NewString(), guard: g, route: route}
	t.arm()
	return t
}

func (t *Tab) arm() {
	t.mu.Lock()
	if t.guard.exempt(t.route) || t.cancel != nil {
		t.mu.Unlock()
		return
	}
	replies := make(chan struct{}, 1)
	t.replies = replies
	t.cancel = t.guard.bus.Subscribe(t.id, t.onMessage)
	t.mu.Unlock()

	t.guard.bus.Publish(Message{Kind: CheckExisting, TabID: t.id})

	select {
	case <-replies:
		t.mu.Lock()
		t.duplicate = true
		cancel := t.cancel
		t.cancel = nil
		t.mu.Unlock()
		// A blocked tab closes its subscription: it neither replies to later
		// probes nor re-announces itself.
		cancel()
		t.guard.log.Info().Str("tab", t.id).Msg("duplicate tab detected")
	case <-time.After(t.guard.timeout):
		// No reply: presumed sole active tab.
	}
}

func (t *Tab) onMessage(msg Message) {
	switch msg.Kind {
	case CheckExisting:
		t.mu.Lock()
		silent := t.duplicate || t.guard.exempt(t.route)
		t.mu.Unlock()
		if silent {
			return
		}
		t.guard.bus.Publish(Message{Kind: IExist, TabID: t.id})
	case IExist:
		t.mu.Lock()
		replies := t.replies
		t.mu.Unlock()
		if replies == nil {
			return
		}
		select {
		case replies <- struct{}{}:
		default:
		}
	}
}

// SetRoute re-evaluates the guard on a route change. Navigating into an
// exempt route stops guarding; navigating out re-arms with a fresh probe.
func (t *Tab) SetRoute(route string) {
	t.mu.Lock()
	wasExempt := t.guard.exempt(t.route)
	t.route = route
	nowExempt := t.guard.exempt(route)
	cancel := t.cancel
	t.mu.Unlock()

	switch {
	case nowExempt && !wasExempt:
		if cancel != nil {
			cancel()
		}
		t.mu.Lock()
		t.cancel = nil
		t.duplicate = false
		t.mu.Unlock()
	case !nowExempt && wasExempt:
		t.arm()
	}
}

// Duplicate reports whether this tab lost the probe: another tab answered
// I_EXIST and this one should render a blocking notice instead of the page.
func (t *Tab) Duplicate() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duplicate
}

func (t *Tab) Route() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.route
}

// Close unsubscribes on teardown. No leave broadcast is sent; absence of a
// reply is the only signal the protocol uses.
func (t *Tab) Close() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
