package portal

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/plateful/partner-portal/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyProfileID identifies the browser profile (durable cookie).
	ContextKeyProfileID ContextKey = "profile_id"
	// ContextKeySessionID identifies the browsing session (session cookie).
	ContextKeySessionID ContextKey = "session_id"
	// ContextKeyRequestID tags log lines of one request.
	ContextKeyRequestID ContextKey = "request_id"
)

const (
	profileCookie = "pp_profile"
	navCookie     = "pp_nav"

	profileCookieTTL = 365 * 24 * time.Hour
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
	}
}

func (s *Server) RequestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestID, uuid.NewString())
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) MetricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		s.metrics.ObserveRequest(r.Method, r.URL.Path, start)
	}
}

// IdentityMiddleware establishes the two cookie identities and, when the
// profile has a stored credential, carries its bearer token to the backend
// client. The durable cookie plays the part of per-profile storage; the
// session cookie ends with the browsing session.
func (s *Server) IdentityMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := s.ensureCookie(w, r, profileCookie, int(profileCookieTTL.Seconds()))
		sessionID := s.ensureCookie(w, r, navCookie, 0)

		ctx := context.WithValue(r.Context(), ContextKeyProfileID, profileID)
		ctx = context.WithValue(ctx, ContextKeySessionID, sessionID)
		if sess, err := s.sessions.Current(profileID); err == nil {
			ctx = session.ContextWithToken(ctx, sess.Token)
		}
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) ensureCookie(w http.ResponseWriter, r *http.Request, name string, maxAge int) string {
	if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	value := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return value
}

// GuardMiddleware runs the single-tab guard on every state-sensitive page.
// Route changes re-evaluate the per-route exemption; the live preview never
// guards. A duplicate gets the blocking notice instead of the page.
func (s *Server) GuardMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := ProfileID(r.Context())
		sessionID := SessionID(r.Context())
		if s.guards.evaluate(profileID, sessionID, r.URL.Path) {
			s.metrics.DuplicateTabs.Inc()
			s.renderDuplicateNotice(w)
			return
		}
		next(w, r)
	}
}

// RequireNavPermitted bounces direct URL entry. The flag is only ever set by
// the flow resolver, so a visitor without it did not arrive through a
// resolution and is treated as unauthenticated.
func (s *Server) RequireNavPermitted(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.scoped.NavigationPermitted(SessionID(r.Context())) {
			http.Redirect(w, r, RouteAuthPage, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func ProfileID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyProfileID).(string)
	return id
}

func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeySessionID).(string)
	return id
}
