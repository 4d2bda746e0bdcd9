// Package admin backs the approval console: listing restaurants that wait
// for review. Rendering is the portal's concern; this is the data access.
package admin

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/plateful/partner-portal/backend"
	"github.com/plateful/partner-portal/session"
)

// ErrNotAdmin gates the console locally. This is a UX hint only: the decoded
// role claim is unverified, and the backend enforces the real check on
// /restaurants/pending itself.
var ErrNotAdmin = errors.New("admin role required")

type Backend interface {
	PendingRestaurants(ctx context.Context) ([]backend.Restaurant, error)
}

type Service struct {
	api Backend
	log zerolog.Logger
}

type ServiceOption func(*Service)

func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

func NewService(api Backend, options ...ServiceOption) *Service {
	s := &Service{api: api, log: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Pending lists restaurants awaiting approval.
func (s *Service) Pending(ctx context.Context, sess *session.Session) ([]backend.Restaurant, error) {
	if sess == nil || !sess.Admin() {
		return nil, ErrNotAdmin
	}
	pending, err := s.api.PendingRestaurants(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Pending]")
	}
	return pending, nil
}
