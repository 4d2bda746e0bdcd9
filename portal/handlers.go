package portal

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/plateful/partner-portal/admin"
	"github.com/plateful/partner-portal/deals"
	"github.com/plateful/partner-portal/flow"
	"github.com/plateful/partner-portal/session"
)

func routeFor(dest flow.Destination) string {
	switch dest {
	case flow.Register:
		return RouteRegister
	case flow.UploadAssets:
		return RouteUpload
	case flow.PublishDeals:
		return RouteDeals
	case flow.Live:
		return RouteLive
	case flow.AdminHome:
		return RouteAdminHome
	default:
		return RouteAuthPage
	}
}

// resolveAndRedirect asks the resolver where the visitor belongs and sends
// them there. Resolution failures fail closed: the credential is cleared and
// the visitor lands back on the auth page rather than on a guessed state.
func (s *Server) resolveAndRedirect(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileID(r.Context())
	dest, err := s.resolver.Resolve(r.Context(), profileID, SessionID(r.Context()))
	if err != nil {
		s.sessions.Invalidate(profileID)
		s.redirectWithToast(w, r, RouteAuthPage, "Something went wrong, please sign in again")
		return
	}
	s.metrics.ObserveResolution(dest.String())
	http.Redirect(w, r, routeFor(dest), http.StatusSeeOther)
}

// resolveOnMount enforces the funnel position on a state-sensitive page.
// Returns true when the visitor belongs here; otherwise they have been
// redirected to the right step already.
func (s *Server) resolveOnMount(w http.ResponseWriter, r *http.Request, page flow.Destination) bool {
	profileID := ProfileID(r.Context())
	dest, err := s.resolver.Resolve(r.Context(), profileID, SessionID(r.Context()))
	if err != nil {
		s.sessions.Invalidate(profileID)
		s.redirectWithToast(w, r, RouteAuthPage, "Something went wrong, please sign in again")
		return false
	}
	if dest != page {
		s.metrics.ObserveResolution(dest.String())
		http.Redirect(w, r, routeFor(dest), http.StatusSeeOther)
		return false
	}
	return true
}

func (s *Server) redirectWithToast(w http.ResponseWriter, r *http.Request, route, toast string) {
	http.Redirect(w, r, route+"?toast="+url.QueryEscape(toast), http.StatusSeeOther)
}

func (s *Server) AuthPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.sessions.Current(ProfileID(r.Context())); err == nil {
			// Already signed in: the resolver owns the next step.
			s.resolveAndRedirect(w, r)
			return
		}
		s.renderPage(w, http.StatusOK, pageData{
			Title: "Sign in",
			Toast: r.URL.Query().Get("toast"),
			Lines: []string{"Sign in or create a partner account to continue."},
		})
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		fieldErrs := map[string]string{}
		if email == "" {
			fieldErrs["email"] = "email is required"
		}
		if password == "" {
			fieldErrs["password"] = "password is required"
		}
		if len(fieldErrs) > 0 {
			s.renderPage(w, http.StatusUnprocessableEntity, pageData{Title: "Sign in", FieldErrors: fieldErrs})
			return
		}

		result, err := s.api.Login(r.Context(), email, password)
		if err != nil {
			s.redirectWithToast(w, r, RouteAuthPage, "Sign in failed, check your email and password")
			return
		}

		profileID := ProfileID(r.Context())
		if err := s.sessions.Establish(profileID, session.Credential{
			Token: result.Token,
			Email: result.Email,
			Name:  result.Name,
		}); err != nil {
			s.log.Error().Err(err).Msg("failed to store credential")
			s.redirectWithToast(w, r, RouteAuthPage, "Something went wrong, please try again")
			return
		}

		r = r.WithContext(session.ContextWithToken(r.Context(), result.Token))
		s.resolveAndRedirect(w, r)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.FormValue("name"))
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		fieldErrs := map[string]string{}
		if name == "" {
			fieldErrs["name"] = "name is required"
		}
		if email == "" {
			fieldErrs["email"] = "email is required"
		}
		if len(password) < 8 {
			fieldErrs["password"] = "password must be at least 8 characters long"
		}
		if len(fieldErrs) > 0 {
			s.renderPage(w, http.StatusUnprocessableEntity, pageData{Title: "Sign in", FieldErrors: fieldErrs})
			return
		}

		if err := s.api.Register(r.Context(), name, email, password); err != nil {
			s.redirectWithToast(w, r, RouteAuthPage, "Account creation failed")
			return
		}

		// Account creation is followed by a login with the same credentials.
		result, err := s.api.Login(r.Context(), email, password)
		if err != nil {
			s.redirectWithToast(w, r, RouteAuthPage, "Account created, please sign in")
			return
		}
		if err := s.sessions.Establish(ProfileID(r.Context()), session.Credential{
			Token: result.Token,
			Email: result.Email,
			Name:  result.Name,
		}); err != nil {
			s.log.Error().Err(err).Msg("failed to store credential")
			s.redirectWithToast(w, r, RouteAuthPage, "Something went wrong, please try again")
			return
		}

		r = r.WithContext(session.ContextWithToken(r.Context(), result.Token))
		s.resolveAndRedirect(w, r)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := SessionID(r.Context())
		s.sessions.Invalidate(ProfileID(r.Context()))
		s.scoped.EndSession(sessionID)
		s.guards.drop(sessionID)
		http.Redirect(w, r, RouteAuthPage, http.StatusSeeOther)
	}
}

func (s *Server) RegisterPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.resolveOnMount(w, r, flow.Register) {
			return
		}
		s.renderPage(w, http.StatusOK, pageData{
			Title: "Register your restaurant",
			Toast: r.URL.Query().Get("toast"),
			Lines: []string{"Tell us about your restaurant to get started."},
		})
	}
}

func (s *Server) UploadPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.resolveOnMount(w, r, flow.UploadAssets) {
			return
		}
		restaurantID := s.scoped.IncompleteRestaurant(SessionID(r.Context()))
		s.renderPage(w, http.StatusOK, pageData{
			Title: "Upload images and menu",
			Toast: r.URL.Query().Get("toast"),
			Lines: []string{
				"Add at least one photo and your menu to go live.",
				"Restaurant: " + restaurantID,
			},
		})
	}
}

func (s *Server) DealsPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.resolveOnMount(w, r, flow.PublishDeals) {
			return
		}

		lines := []string{"Publish your first deal to go live."}
		restaurantID := s.scoped.IncompleteRestaurant(SessionID(r.Context()))
		suggestions, err := s.api.DealSuggestions(r.Context(), restaurantID)
		if err != nil {
			s.log.Error().Err(err).Msg("suggestion fetch failed")
			lines = append(lines, "Suggestions are unavailable right now.")
		}
		for _, sg := range suggestions {
			lines = append(lines, fmt.Sprintf("Suggested: %s (%s, %s)", sg.Title, sg.Type, sg.Category))
		}

		s.renderPage(w, http.StatusOK, pageData{
			Title: "Publish deals",
			Toast: r.URL.Query().Get("toast"),
			Lines: lines,
		})
	}
}

func (s *Server) PublishHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		discount, _ := strconv.ParseFloat(r.FormValue("discount_value"), 64)
		draft := deals.Draft{
			Title:         strings.TrimSpace(r.FormValue("title")),
			Type:          deals.Type(r.FormValue("type")),
			Category:      strings.TrimSpace(r.FormValue("category")),
			DiscountValue: discount,
			Source:        deals.Source(r.FormValue("source")),
		}
		if draft.Source == "" {
			draft.Source = deals.SourceCustom
		}
		board := deals.NewBoard()
		board.Add(draft)

		sessionID := SessionID(r.Context())
		restaurantID := s.scoped.IncompleteRestaurant(sessionID)

		dest, err := s.publisher.Publish(r.Context(), ProfileID(r.Context()), sessionID, restaurantID, board)
		if err != nil {
			var fieldErrs deals.FieldErrors
			if errors.As(err, &fieldErrs) {
				s.renderPage(w, http.StatusUnprocessableEntity, pageData{
					Title:       "Publish deals",
					FieldErrors: fieldErrs,
				})
				return
			}
			// The draft survives on the board; the user retries from the page.
			s.log.Error().Err(err).Msg("deal publish failed")
			s.redirectWithToast(w, r, RouteDeals, "Publishing failed, please try again")
			return
		}

		s.metrics.ObserveResolution(dest.String())
		http.Redirect(w, r, routeFor(dest), http.StatusSeeOther)
	}
}

func (s *Server) LivePageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.resolveOnMount(w, r, flow.Live) {
			return
		}

		lines := []string{"Your restaurant is live."}
		if restaurants, err := s.api.MyRestaurants(r.Context()); err == nil && len(restaurants) > 0 {
			if preview, err := s.api.RestaurantPreview(r.Context(), restaurants[0].ID); err == nil {
				lines = append(lines,
					fmt.Sprintf("%s: %d images, %d deals", preview.Restaurant.Name, len(preview.Images), len(preview.Deals)),
				)
			}
		}
		s.renderPage(w, http.StatusOK, pageData{
			Title: "Live preview",
			Lines: lines,
		})
	}
}

func (s *Server) AdminHomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Current(ProfileID(r.Context()))
		if err != nil {
			http.Redirect(w, r, RouteAuthPage, http.StatusSeeOther)
			return
		}

		pending, err := s.admin.Pending(r.Context(), sess)
		if err != nil {
			if errors.Is(err, admin.ErrNotAdmin) {
				s.resolveAndRedirect(w, r)
				return
			}
			s.renderPage(w, http.StatusOK, pageData{
				Title: "Approvals",
				Toast: "Could not load pending approvals",
			})
			return
		}

		lines := []string{fmt.Sprintf("%d restaurants awaiting approval.", len(pending))}
		for _, rest := range pending {
			lines = append(lines, "Pending: "+rest.Name)
		}
		s.renderPage(w, http.StatusOK, pageData{
			Title: "Approvals",
			Lines: lines,
		})
	}
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
