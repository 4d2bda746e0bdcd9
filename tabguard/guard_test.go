package tabguard_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plateful/partner-portal/tabguard"
)

const (
	routeDeals   = "/deals"
	routePreview = "/live"
)

// Replies arrive within two goroutine hops, so a 300ms probe budget keeps
// the duplicate-detection cases deterministic while the sole-tab cases use a
// small budget to stay fast.
const (
	replyBudget   = 300 * time.Millisecond
	soleTabBudget = 30 * time.Millisecond
)

func newGuard(timeout time.Duration) *tabguard.Guard {
	return tabguard.NewGuard(
		tabguard.NewMemoryBus(),
		tabguard.WithProbeTimeout(timeout),
		tabguard.WithExemptRoutes(routePreview),
	)
}

func TestSoleTabIsNotDuplicate(t *testing.T) {
	g := newGuard(soleTabBudget)
	tab := g.Arm(routeDeals)
	defer tab.Close()

	require.False(t, tab.Duplicate())
}

func TestSecondTabIsBlocked(t *testing.T) {
	g := newGuard(replyBudget)

	tabA := g.Arm(routeDeals)
	defer tabA.Close()
	require.False(t, tabA.Duplicate())

	tabB := g.Arm(routeDeals)
	defer tabB.Close()

	require.True(t, tabB.Duplicate())
	require.False(t, tabA.Duplicate())
}

func TestBlockedTabStopsReplying(t *testing.T) {
	g := newGuard(replyBudget)

	tabA := g.Arm(routeDeals)
	tabB := g.Arm(routeDeals)
	require.True(t, tabB.Duplicate())

	// With A gone, only the silent blocked tab remains; a third tab must be
	// treated as sole active.
	tabA.Close()

	tabC := g.Arm(routeDeals)
	defer tabC.Close()
	defer tabB.Close()

	require.False(t, tabC.Duplicate())
}

func TestExemptRouteNeverBlocks(t *testing.T) {
	g := newGuard(replyBudget)

	tabA := g.Arm(routeDeals)
	defer tabA.Close()

	// Mounting on the preview route ignores the established tab entirely.
	tabB := g.Arm(routePreview)
	defer tabB.Close()
	require.False(t, tabB.Duplicate())
}

func TestExemptTabDoesNotReply(t *testing.T) {
	g := newGuard(soleTabBudget)

	preview := g.Arm(routePreview)
	defer preview.Close()

	// A legitimately separate primary tab must not be blocked by the
	// preview-only tab.
	primary := g.Arm(routeDeals)
	defer primary.Close()
	require.False(t, primary.Duplicate())
}

func TestNavigatingOutOfExemptRouteRearms(t *testing.T) {
	g := newGuard(replyBudget)

	tabA := g.Arm(routeDeals)
	defer tabA.Close()

	tabB := g.Arm(routePreview)
	defer tabB.Close()
	require.False(t, tabB.Duplicate())

	// Leaving the exempt route re-arms the guard; A answers the new probe.
	tabB.SetRoute(routeDeals)
	require.True(t, tabB.Duplicate())
}

func TestNavigatingIntoExemptRouteStopsBlocking(t *testing.T) {
	g := newGuard(replyBudget)

	tabA := g.Arm(routeDeals)
	defer tabA.Close()

	tabB := g.Arm(routeDeals)
	defer tabB.Close()
	require.True(t, tabB.Duplicate())

	tabB.SetRoute(routePreview)
	require.False(t, tabB.Duplicate())
}

func TestMemoryBusDoesNotEchoToPublisher(t *testing.T) {
	bus := tabguard.NewMemoryBus()

	var mu sync.Mutex
	received := map[string][]tabguard.Kind{}
	record := func(tabID string) func(tabguard.Message) {
		return func(msg tabguard.Message) {
			mu.Lock()
			defer mu.Unlock()
			received[tabID] = append(received[tabID], msg.Kind)
		}
	}

	cancelA := bus.Subscribe("a", record("a"))
	defer cancelA()
	cancelB := bus.Subscribe("b", record("b"))
	defer cancelB()

	bus.Publish(tabguard.Message{Kind: tabguard.CheckExisting, TabID: "a"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received["b"]) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, received["a"])
}

func TestUnsubscribedTabReceivesNothing(t *testing.T) {
	bus := tabguard.NewMemoryBus()

	var mu sync.Mutex
	var got int
	cancel := bus.Subscribe("a", func(tabguard.Message) {
		mu.Lock()
		got++
		mu.Unlock()
	})
	cancel()

	bus.Publish(tabguard.Message{Kind: tabguard.CheckExisting, TabID: "b"})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Zero(t, got)
}
