// Package flow decides where an authenticated partner should be in the
// onboarding funnel. It is the one authority for that decision; pages act on
// its answer instead of re-deriving it.
package flow

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/plateful/partner-portal/backend"
	"github.com/plateful/partner-portal/session"
)

// Backend is the slice of the API client the resolver needs.
type Backend interface {
	Ping(ctx context.Context) (backend.Identity, error)
	MyRestaurants(ctx context.Context) ([]backend.Restaurant, error)
	RestaurantPreview(ctx context.Context, restaurantID string) (backend.Preview, error)
}

type Resolver struct {
	api      Backend
	sessions *session.Manager
	scoped   session.ScopedStore
	log      zerolog.Logger
}

type ResolverOption func(*Resolver)

func WithLogger(log zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.log = log
	}
}

func NewResolver(api Backend, sessions *session.Manager, scoped session.ScopedStore, options ...ResolverOption) *Resolver {
	r := &Resolver{
		api:      api,
		sessions: sessions,
		scoped:   scoped,
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Resolve computes the destination for the given profile. It is a pure
// function of the credential and the backend's reported state: calling it
// twice against unchanged state yields the same answer.
//
// Failures fail closed: the returned destination is Auth whenever an error is
// also returned, and auth-class failures additionally clear the stored
// credential. ctx must already carry the profile's bearer token.
func (r *Resolver) Resolve(ctx context.Context, profileID, sessionID string) (Destination, error) {
	sess, err := r.sessions.Current(profileID)
	if err != nil {
		// No usable credential: no backend call is issued at all.
		return Auth, nil
	}

	// Admins never enter the partner funnel.
	if sess.Admin() {
		return AdminHome, nil
	}

	if _, err := r.api.Ping(ctx); err != nil {
		return r.failClosed(profileID, errors.Wrap(err, "[Resolve] credential validation"))
	}

	restaurants, err := r.api.MyRestaurants(ctx)
	if err != nil {
		return r.failClosed(profileID, errors.Wrap(err, "[Resolve] restaurant list"))
	}

	state := State{}
	var restaurantID string
	if len(restaurants) > 0 {
		state.HasRestaurant = true
		// A partner owns at most one restaurant in this flow.
		restaurantID = restaurants[0].ID

		preview, err := r.api.RestaurantPreview(ctx, restaurantID)
		switch {
		case err == nil:
			state.HasAssets = preview.HasAssets()
			state.HasDeals = preview.HasDeals()
		case errors.Is(err, backend.ErrNoDeals):
			// The legacy backend emits this signal only once the asset step
			// is complete; deals are the sole missing piece.
			state.HasAssets = true
			state.HasDeals = false
		default:
			return r.failClosed(profileID, errors.Wrap(err, "[Resolve] restaurant preview"))
		}
	}

	dest := DestinationFor(state)

	// Funnel pages require this flag; a visitor who typed the URL directly
	// will not have it and bounces to the auth page.
	r.scoped.PermitNavigation(sessionID)
	if state.HasRestaurant && dest != Live {
		r.scoped.SetIncompleteRestaurant(sessionID, restaurantID)
	}

	r.log.Debug().
		Str("destination", dest.String()).
		Bool("has_restaurant", state.HasRestaurant).
		Bool("has_assets", state.HasAssets).
		Bool("has_deals", state.HasDeals).
		Msg("resolved destination")
	return dest, nil
}

func (r *Resolver) failClosed(profileID string, err error) (Destination, error) {
	if backend.IsAuthError(err) {
		r.sessions.Invalidate(profileID)
		r.log.Info().Msg("backend rejected credential, session cleared")
		return Auth, nil
	}
	r.log.Error().Err(err).Msg("resolution failed, falling back to auth")
	return Auth, err
}
