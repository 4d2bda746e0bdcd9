// Package devbackend is an in-process stand-in for the partner backend,
// implementing every endpoint the portal consumes. It exists for local
// development and end-to-end tests; the real backend is a separate service.
//
// It deliberately mirrors the production backend's quirks: capitalized JSON
// keys on some endpoints, the no-deals error envelope on the preview route,
// and bearer tokens whose role claim the portal reads without verification.
package devbackend

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	RolePartner = "PARTNER"
	RoleAdmin   = "ADMIN"

	tokenTTL = 24 * time.Hour
)

type user struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Role         string
}

type Deal struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	DiscountValue float64 `json:"discount_value"`
	Source        string  `json:"source"`
}

type Restaurant struct {
	ID         string
	Name       string
	OwnerEmail string
	Images     []string
	MenuPDFs   []string
	Deals      []Deal
	CostForTwo float64
	Approved   bool
}

type Server struct {
	mu          sync.RWMutex
	secret      []byte
	users       map[string]*user       // keyed by email
	restaurants map[string]*Restaurant // keyed by id
	suggestions []Deal
	mux         *http.ServeMux
	log         zerolog.Logger
}

type ServerOption func(*Server)

func WithSecret(secret string) ServerOption {
	return func(s *Server) {
		s.secret = []byte(secret)
	}
}

func WithLogger(log zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.log = log
	}
}

func New(options ...ServerOption) *Server {
	s := &Server{
		secret:      []byte("dev-only-secret"),
		users:       make(map[string]*user),
		restaurants: make(map[string]*Restaurant),
		suggestions: defaultSuggestions(),
		mux:         http.NewServeMux(),
		log:         zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.mux.HandleFunc("POST /auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /auth/register", s.handleRegister)
	s.mux.HandleFunc("GET /protected/ping", s.handlePing)
	s.mux.HandleFunc("GET /restaurants/me", s.handleMyRestaurants)
	s.mux.HandleFunc("GET /restaurants/pending", s.handlePending)
	s.mux.HandleFunc("GET /restaurants/{id}/preview", s.handlePreview)
	s.mux.HandleFunc("GET /restaurants/{id}/deals/suggestion", s.handleSuggestions)
	s.mux.HandleFunc("POST /restaurants/{id}/deals", s.handlePublishDeal)
}

// SeedUser registers an account directly, bypassing the HTTP surface.
func (s *Server) SeedUser(name, email, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(email)] = &user{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	return nil
}

// SeedRestaurant attaches a restaurant to an owner and returns its id.
func (s *Server) SeedRestaurant(r Restaurant) string {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants[r.ID] = &r
	return r.ID
}

func defaultSuggestions() []Deal {
	return []Deal{
		{Title: "Flat 20% off on lunch", Type: "percentage", Category: "lunch", DiscountValue: 20},
		{Title: "100 off on orders above 500", Type: "flat", Category: "dinner", DiscountValue: 100},
		{Title: "Happy hour drinks", Type: "percentage", Category: "drinks", DiscountValue: 30},
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, code string) {
	envelope := map[string]string{"error": message}
	if code != "" {
		envelope["code"] = code
	}
	s.writeJSON(w, status, envelope)
}

func (s *Server) mintToken(u *user) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  u.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
		"jti":   uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// authenticate resolves the bearer token to a user, or writes a 401.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*user, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		s.writeError(w, http.StatusUnauthorized, "missing bearer token", "")
		return nil, false
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid token", "")
		return nil, false
	}

	email, _ := claims["email"].(string)
	s.mu.RLock()
	u, ok := s.users[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "unknown account", "")
		return nil, false
	}
	return u, true
}
