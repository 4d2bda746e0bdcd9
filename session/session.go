// Package session owns all reads and writes of the client-side credential
// state. Pages never touch the stores directly; they go through the Manager,
// which is the single place that invalidates on logout, 401, or a token that
// will not decode.
package session

import (
	"context"

	"github.com/rs/zerolog"
)

// Session is an established, decodable credential plus its routing hint.
type Session struct {
	Token string
	Email string
	Name  string
	Role  string
}

func (s *Session) Admin() bool {
	return IsAdmin(s.Role)
}

type Manager struct {
	creds CredentialStore
	log   zerolog.Logger
}

type ManagerOption func(*Manager)

func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

func NewManager(creds CredentialStore, options ...ManagerOption) *Manager {
	m := &Manager{creds: creds, log: zerolog.Nop()}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Establish stores the credential issued on login or registration success.
func (m *Manager) Establish(profileID string, cred Credential) error {
	return m.creds.Save(profileID, cred)
}

// Current loads the profile's credential and decodes its role claim. A
// malformed token is indistinguishable from an auth failure: the credential
// is cleared and ErrNoSession returned.
func (m *Manager) Current(profileID string) (*Session, error) {
	cred, err := m.creds.Load(profileID)
	if err != nil {
		return nil, ErrNoSession
	}
	role, err := DecodeRole(cred.Token)
	if err != nil {
		m.log.Warn().Err(err).Msg("clearing malformed credential")
		m.Invalidate(profileID)
		return nil, ErrNoSession
	}
	return &Session{
		Token: cred.Token,
		Email: cred.Email,
		Name:  cred.Name,
		Role:  role,
	}, nil
}

// Invalidate destroys the stored credential. Called on logout, on a 401 from
// the backend, and on malformed-token detection.
func (m *Manager) Invalidate(profileID string) {
	if err := m.creds.Clear(profileID); err != nil {
		m.log.Error().Err(err).Msg("failed to clear credential")
	}
}

type contextKey string

const contextKeyToken contextKey = "bearer_token"

// ContextWithToken carries the request's bearer token to the backend client.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyToken, token)
}

// TokenFromContext is the CredentialSource used by the portal: the token of
// whichever profile the current request belongs to.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(contextKeyToken).(string)
	return token
}
