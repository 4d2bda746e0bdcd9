package devbackend

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	s.mu.RLock()
	u, ok := s.users[strings.ToLower(req.Email)]
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid email or password", "")
		return
	}

	token, err := s.mintToken(u)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to issue token", "")
		return
	}
	s.log.Debug().Str("email", u.Email).Msg("credential issued")
	s.writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"email": u.Email,
		"name":  u.Name,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "email and password are required", "")
		return
	}

	s.mu.RLock()
	_, exists := s.users[strings.ToLower(req.Email)]
	s.mu.RUnlock()
	if exists {
		s.writeError(w, http.StatusConflict, "account already exists", "")
		return
	}

	if err := s.SeedUser(req.Name, req.Email, req.Password, RolePartner); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to create account", "")
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	s.mu.RLock()
	registered := len(s.ownedBy(u.Email)) > 0
	s.mu.RUnlock()

	// Field casing matches the production backend's ping payload.
	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":           u.ID,
		"email":        u.Email,
		"role":         u.Role,
		"isRegistered": registered,
	})
}

// ownedBy must be called with the lock held.
func (s *Server) ownedBy(email string) []*Restaurant {
	var out []*Restaurant
	for _, r := range s.restaurants {
		if strings.EqualFold(r.OwnerEmail, email) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) handleMyRestaurants(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	s.mu.RLock()
	owned := s.ownedBy(u.Email)
	s.mu.RUnlock()

	// The production backend capitalizes these keys; kept that way so the
	// portal's normalization boundary stays honest.
	list := make([]map[string]any, 0, len(owned))
	for _, rest := range owned {
		list = append(list, map[string]any{"ID": rest.ID, "Name": rest.Name})
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	s.mu.RLock()
	rest, found := s.restaurants[r.PathValue("id")]
	s.mu.RUnlock()
	if !found || !strings.EqualFold(rest.OwnerEmail, u.Email) {
		s.writeError(w, http.StatusNotFound, "restaurant not found", "")
		return
	}

	hasAssets := len(rest.Images) > 0 && len(rest.MenuPDFs) > 0
	if hasAssets && len(rest.Deals) == 0 {
		// The deal-less state past the asset step is an error on this
		// endpoint, with a structured code alongside the legacy message.
		s.writeError(w, http.StatusNotFound, "restaurant has no deals yet", "no_deals")
		return
	}

	deals := rest.Deals
	if deals == nil {
		deals = []Deal{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ID":           rest.ID,
		"Name":         rest.Name,
		"Images":       rest.Images,
		"menu_pdfs":    rest.MenuPDFs,
		"deals":        deals,
		"cost_for_two": rest.CostForTwo,
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	s.mu.RLock()
	rest, found := s.restaurants[r.PathValue("id")]
	s.mu.RUnlock()
	if !found || !strings.EqualFold(rest.OwnerEmail, u.Email) {
		s.writeError(w, http.StatusNotFound, "restaurant not found", "")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"Suggestions": s.suggestions})
}

func (s *Server) handlePublishDeal(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var deal Deal
	if err := json.NewDecoder(r.Body).Decode(&deal); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if deal.Title == "" || deal.DiscountValue <= 0 {
		s.writeError(w, http.StatusBadRequest, "deal title and discount are required", "")
		return
	}
	deal.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	rest, found := s.restaurants[r.PathValue("id")]
	if !found || !strings.EqualFold(rest.OwnerEmail, u.Email) {
		s.writeError(w, http.StatusNotFound, "restaurant not found", "")
		return
	}
	rest.Deals = append(rest.Deals, deal)
	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "published"})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if !strings.EqualFold(u.Role, RoleAdmin) {
		// Enforced here regardless of what the portal decided from its
		// unverified claim decode.
		s.writeError(w, http.StatusForbidden, "admin role required", "")
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]map[string]any, 0)
	for _, rest := range s.restaurants {
		if !rest.Approved {
			list = append(list, map[string]any{"ID": rest.ID, "Name": rest.Name})
		}
	}
	s.writeJSON(w, http.StatusOK, list)
}
