// Package e2e exercises the onboarding journey end to end: a real HTTP
// round trip through the backend client, the credential store, and the flow
// resolver against the dev backend.
package e2e

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/plateful/partner-portal/backend"
	"github.com/plateful/partner-portal/deals"
	"github.com/plateful/partner-portal/devbackend"
	"github.com/plateful/partner-portal/flow"
	"github.com/plateful/partner-portal/session"
)

type journeyFixture struct {
	backend   *devbackend.Server
	api       *backend.Client
	sessions  *session.Manager
	scoped    session.ScopedStore
	resolver  *flow.Resolver
	publisher *deals.Publisher

	profileID string
	sessionID string
}

func newJourneyFixture(t *testing.T) *journeyFixture {
	t.Helper()

	dev := devbackend.New()
	srv := httptest.NewServer(dev)
	t.Cleanup(srv.Close)

	api := backend.New(srv.URL, session.TokenFromContext)
	sessions := session.NewManager(session.NewInMemoryCredentialStore(), session.WithLogger(zerolog.Nop()))
	scoped := session.NewInMemoryScopedStore()
	resolver := flow.NewResolver(api, sessions, scoped)

	return &journeyFixture{
		backend:   dev,
		api:       api,
		sessions:  sessions,
		scoped:    scoped,
		resolver:  resolver,
		publisher: deals.NewPublisher(api, resolver),
		profileID: "profile-1",
		sessionID: "session-1",
	}
}

// signIn logs the account in over HTTP and stores the credential the way the
// portal's login handler does, returning a ctx carrying the bearer token.
func (f *journeyFixture) signIn(t *testing.T, email, password string) context.Context {
	t.Helper()
	result, err := f.api.Login(context.Background(), email, password)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Establish(f.profileID, session.Credential{
		Token: result.Token,
		Email: result.Email,
		Name:  result.Name,
	}))
	return session.ContextWithToken(context.Background(), result.Token)
}

func (f *journeyFixture) resolve(t *testing.T, ctx context.Context) flow.Destination {
	t.Helper()
	dest, err := f.resolver.Resolve(ctx, f.profileID, f.sessionID)
	require.NoError(t, err)
	return dest
}

func TestOnboardingJourney(t *testing.T) {
	f := newJourneyFixture(t)

	// A brand new account, created over the registration endpoint.
	require.NoError(t, f.api.Register(context.Background(), "Asha", "owner@spice.example", "pass1234"))
	ctx := f.signIn(t, "owner@spice.example", "pass1234")

	// Zero restaurants: the funnel starts at registration.
	require.Equal(t, flow.Register, f.resolve(t, ctx))

	// The restaurant exists but has no images or menu yet.
	id := f.backend.SeedRestaurant(devbackend.Restaurant{
		Name:       "Spice Route",
		OwnerEmail: "owner@spice.example",
	})
	require.Equal(t, flow.UploadAssets, f.resolve(t, ctx))
	require.Equal(t, id, f.scoped.IncompleteRestaurant(f.sessionID))

	// Images without a menu still count as incomplete assets.
	f.backend.SeedRestaurant(devbackend.Restaurant{
		ID:         id,
		Name:       "Spice Route",
		OwnerEmail: "owner@spice.example",
		Images:     []string{"front.jpg"},
	})
	require.Equal(t, flow.UploadAssets, f.resolve(t, ctx))

	// Full assets, no deals: the legacy no-deals signal maps here.
	f.backend.SeedRestaurant(devbackend.Restaurant{
		ID:         id,
		Name:       "Spice Route",
		OwnerEmail: "owner@spice.example",
		Images:     []string{"front.jpg"},
		MenuPDFs:   []string{"menu.pdf"},
	})
	require.Equal(t, flow.PublishDeals, f.resolve(t, ctx))

	// Publishing the first deal advances the funnel to the live preview.
	board := deals.NewBoard()
	board.Add(deals.NewCustomDraft("Lunch special", deals.TypePercentage, "lunch", 20))
	dest, err := f.publisher.Publish(ctx, f.profileID, f.sessionID, id, board)
	require.NoError(t, err)
	require.Equal(t, flow.Live, dest)
	require.Zero(t, board.Len())

	// And the answer is stable on the next visit.
	require.Equal(t, flow.Live, f.resolve(t, ctx))
}

func TestFullyOnboardedAccountResolvesToLive(t *testing.T) {
	f := newJourneyFixture(t)
	require.NoError(t, f.backend.SeedUser("Asha", "owner@spice.example", "pass1234", devbackend.RolePartner))
	f.backend.SeedRestaurant(devbackend.Restaurant{
		Name:       "Spice Route",
		OwnerEmail: "owner@spice.example",
		Images:     []string{"front.jpg"},
		MenuPDFs:   []string{"menu.pdf"},
		Deals:      []devbackend.Deal{{Title: "Lunch special"}},
	})

	ctx := f.signIn(t, "owner@spice.example", "pass1234")
	require.Equal(t, flow.Live, f.resolve(t, ctx))
}

func TestAdminAccountSkipsTheFunnel(t *testing.T) {
	f := newJourneyFixture(t)
	require.NoError(t, f.backend.SeedUser("Root", "admin@plateful.example", "admin123", devbackend.RoleAdmin))

	ctx := f.signIn(t, "admin@plateful.example", "admin123")
	require.Equal(t, flow.AdminHome, f.resolve(t, ctx))
}

func TestExpiredCredentialClearsAndFallsBackToAuth(t *testing.T) {
	f := newJourneyFixture(t)
	require.NoError(t, f.backend.SeedUser("Asha", "owner@spice.example", "pass1234", devbackend.RolePartner))

	// A credential the backend will reject: signed with the wrong secret.
	other := devbackend.New(devbackend.WithSecret("some-other-secret"))
	require.NoError(t, other.SeedUser("Asha", "owner@spice.example", "pass1234", devbackend.RolePartner))
	otherSrv := httptest.NewServer(other)
	t.Cleanup(otherSrv.Close)

	foreign := backend.New(otherSrv.URL, session.TokenFromContext)
	result, err := foreign.Login(context.Background(), "owner@spice.example", "pass1234")
	require.NoError(t, err)

	require.NoError(t, f.sessions.Establish(f.profileID, session.Credential{
		Token: result.Token,
		Email: result.Email,
	}))
	ctx := session.ContextWithToken(context.Background(), result.Token)

	require.Equal(t, flow.Auth, f.resolve(t, ctx))

	// The stored credential was cleared, so the next resolution does not
	// touch the backend at all.
	_, err = f.sessions.Current(f.profileID)
	require.ErrorIs(t, err, session.ErrNoSession)
}
