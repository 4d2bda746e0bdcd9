package portal

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/plateful/partner-portal/tabguard"
)

// guardSet maps the portal's cookies onto the tab guard: each browser profile
// gets its own broadcast bus, and each browsing session is treated as one
// tab on that bus.
type guardSet struct {
	mu      sync.Mutex
	timeout time.Duration
	log     zerolog.Logger
	guards  map[string]*tabguard.Guard
	tabs    map[string]*tabguard.Tab
}

func newGuardSet(timeout time.Duration, log zerolog.Logger) *guardSet {
	return &guardSet{
		timeout: timeout,
		log:     log,
		guards:  make(map[string]*tabguard.Guard),
		tabs:    make(map[string]*tabguard.Tab),
	}
}

// evaluate arms or re-routes the session's tab and reports whether it is a
// duplicate that should see the blocking notice instead of the page.
func (g *guardSet) evaluate(profileID, sessionID, route string) bool {
	g.mu.Lock()
	guard, ok := g.guards[profileID]
	if !ok {
		guard = tabguard.NewGuard(
			tabguard.NewMemoryBus(),
			tabguard.WithProbeTimeout(g.timeout),
			tabguard.WithExemptRoutes(RouteLive),
			tabguard.WithLogger(g.log),
		)
		g.guards[profileID] = guard
	}
	tab, armed := g.tabs[sessionID]
	g.mu.Unlock()

	if !armed {
		// Arm waits out the probe budget, so it runs outside the lock.
		tab = guard.Arm(route)
		g.mu.Lock()
		g.tabs[sessionID] = tab
		g.mu.Unlock()
	} else {
		tab.SetRoute(route)
	}
	return tab.Duplicate()
}

// drop tears a session's tab down, e.g. on logout.
func (g *guardSet) drop(sessionID string) {
	g.mu.Lock()
	tab, ok := g.tabs[sessionID]
	delete(g.tabs, sessionID)
	g.mu.Unlock()
	if ok {
		tab.Close()
	}
}
