package deals

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/plateful/partner-portal/backend"
	"github.com/plateful/partner-portal/flow"
)

// Backend is the slice of the API client the publisher needs.
type Backend interface {
	PublishDeal(ctx context.Context, restaurantID string, deal backend.DealSubmission) error
}

// Publisher posts a board's drafts and then re-resolves the funnel position,
// advancing PUBLISH_DEALS to LIVE once at least one deal exists.
type Publisher struct {
	api      Backend
	resolver *flow.Resolver
	log      zerolog.Logger
}

type PublisherOption func(*Publisher)

func WithLogger(log zerolog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.log = log
	}
}

func NewPublisher(api Backend, resolver *flow.Resolver, options ...PublisherOption) *Publisher {
	p := &Publisher{api: api, resolver: resolver, log: zerolog.Nop()}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Publish validates every draft, posts them one by one, and re-invokes the
// resolver. A post failure stops the run and leaves the failed draft (and any
// after it) on the board for retry; successfully posted drafts are removed.
// When at least one post succeeded the resolver is still consulted, since the
// backend state has advanced regardless of the trailing failure.
func (p *Publisher) Publish(ctx context.Context, profileID, sessionID, restaurantID string, board *Board) (flow.Destination, error) {
	drafts := board.Drafts()
	if len(drafts) == 0 {
		return flow.PublishDeals, errors.New("[Publish] nothing to publish")
	}
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			return flow.PublishDeals, err
		}
	}

	published := 0
	var publishErr error
	for _, d := range drafts {
		if err := p.api.PublishDeal(ctx, restaurantID, d.submission()); err != nil {
			publishErr = errors.Wrapf(err, "[Publish] deal %q", d.Title)
			break
		}
		board.Discard(d.ID)
		published++
	}

	if published == 0 {
		return flow.PublishDeals, publishErr
	}
	p.log.Info().Int("published", published).Str("restaurant", restaurantID).Msg("deals published")

	dest, err := p.resolver.Resolve(ctx, profileID, sessionID)
	if err != nil {
		return dest, err
	}
	return dest, publishErr
}
