package deals_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/plateful/partner-portal/backend"
	"github.com/plateful/partner-portal/deals"
	"github.com/plateful/partner-portal/flow"
	"github.com/plateful/partner-portal/session"
)

func TestDraftValidation(t *testing.T) {
	tests := []struct {
		name      string
		draft     deals.Draft
		badFields []string
	}{
		{
			name:  "valid percentage deal",
			draft: deals.NewCustomDraft("Lunch special", deals.TypePercentage, "lunch", 20),
		},
		{
			name:  "valid flat deal",
			draft: deals.NewCustomDraft("Flat hundred off", deals.TypeFlat, "dinner", 100),
		},
		{
			name:      "missing title",
			draft:     deals.NewCustomDraft("  ", deals.TypePercentage, "lunch", 20),
			badFields: []string{"title"},
		},
		{
			name:      "missing category",
			draft:     deals.NewCustomDraft("Lunch special", deals.TypePercentage, "", 20),
			badFields: []string{"category"},
		},
		{
			name:      "percentage above 100",
			draft:     deals.NewCustomDraft("Too good", deals.TypePercentage, "lunch", 120),
			badFields: []string{"discount_value"},
		},
		{
			name:      "zero flat discount",
			draft:     deals.NewCustomDraft("Nothing off", deals.TypeFlat, "lunch", 0),
			badFields: []string{"discount_value"},
		},
		{
			name:      "unknown type",
			draft:     deals.Draft{Title: "x", Type: "bogo", Category: "lunch", DiscountValue: 1, Source: deals.SourceCustom},
			badFields: []string{"type"},
		},
		{
			name:      "unknown source",
			draft:     deals.Draft{Title: "x", Type: deals.TypeFlat, Category: "lunch", DiscountValue: 1, Source: "imported"},
			badFields: []string{"source"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if len(tc.badFields) == 0 {
				require.NoError(t, err)
				return
			}
			var fieldErrs deals.FieldErrors
			require.True(t, errors.As(err, &fieldErrs))
			for _, field := range tc.badFields {
				require.Contains(t, fieldErrs, field)
			}
		})
	}
}

func TestFromSuggestion(t *testing.T) {
	draft := deals.FromSuggestion(backend.Suggestion{
		Title:         "Happy hour",
		Type:          "flat",
		Category:      "drinks",
		DiscountValue: 100,
	})
	require.NotEmpty(t, draft.ID)
	require.Equal(t, deals.SourceSuggested, draft.Source)
	require.NoError(t, draft.Validate())
}

func TestBoardDiscard(t *testing.T) {
	board := deals.NewBoard()
	a := deals.NewCustomDraft("a", deals.TypeFlat, "lunch", 10)
	b := deals.NewCustomDraft("b", deals.TypeFlat, "lunch", 20)
	board.Add(a)
	board.Add(b)

	board.Discard(a.ID)
	require.Equal(t, 1, board.Len())
	require.Equal(t, "b", board.Drafts()[0].Title)
}

// publishBackend serves the resolver and the publisher from one fake: deals
// posted through PublishDeal show up in the next preview fetch.
type publishBackend struct {
	preview    backend.Preview
	publishErr error
	posted     []backend.DealSubmission
}

func (f *publishBackend) Ping(context.Context) (backend.Identity, error) {
	return backend.Identity{ID: "u-1", Role: "PARTNER"}, nil
}

func (f *publishBackend) MyRestaurants(context.Context) ([]backend.Restaurant, error) {
	return []backend.Restaurant{{ID: "r-1", Name: "Spice Route"}}, nil
}

func (f *publishBackend) RestaurantPreview(context.Context, string) (backend.Preview, error) {
	return f.preview, nil
}

func (f *publishBackend) PublishDeal(_ context.Context, _ string, deal backend.DealSubmission) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.posted = append(f.posted, deal)
	f.preview.Deals = append(f.preview.Deals, backend.Deal{Title: deal.Title})
	return nil
}

func newPublisherFixture(t *testing.T, api *publishBackend) (*deals.Publisher, *session.Manager) {
	t.Helper()
	manager := session.NewManager(session.NewInMemoryCredentialStore())
	resolver := flow.NewResolver(api, manager, session.NewInMemoryScopedStore())
	return deals.NewPublisher(api, resolver), manager
}

func partnerToken(t *testing.T) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]any{"role": "PARTNER"})
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestPublishAdvancesToLive(t *testing.T) {
	api := &publishBackend{
		preview: backend.Preview{
			Restaurant: backend.Restaurant{ID: "r-1"},
			Images:     []string{"front.jpg"},
			MenuPDFs:   []string{"menu.pdf"},
		},
	}
	publisher, manager := newPublisherFixture(t, api)
	require.NoError(t, manager.Establish("p1", session.Credential{Token: partnerToken(t)}))

	board := deals.NewBoard()
	board.Add(deals.NewCustomDraft("Lunch special", deals.TypePercentage, "lunch", 20))

	dest, err := publisher.Publish(context.Background(), "p1", "sid", "r-1", board)
	require.NoError(t, err)
	require.Equal(t, flow.Live, dest)
	require.Zero(t, board.Len())
	require.Len(t, api.posted, 1)
}

func TestPublishFailureKeepsDraft(t *testing.T) {
	api := &publishBackend{
		preview: backend.Preview{
			Restaurant: backend.Restaurant{ID: "r-1"},
			Images:     []string{"front.jpg"},
			MenuPDFs:   []string{"menu.pdf"},
		},
		publishErr: errors.New("backend unavailable"),
	}
	publisher, manager := newPublisherFixture(t, api)
	require.NoError(t, manager.Establish("p1", session.Credential{Token: partnerToken(t)}))

	board := deals.NewBoard()
	board.Add(deals.NewCustomDraft("Lunch special", deals.TypePercentage, "lunch", 20))

	dest, err := publisher.Publish(context.Background(), "p1", "sid", "r-1", board)
	require.Error(t, err)
	require.Equal(t, flow.PublishDeals, dest)
	// The draft survives for retry.
	require.Equal(t, 1, board.Len())
}

func TestPublishRejectsInvalidDraftBeforeAnyNetworkCall(t *testing.T) {
	api := &publishBackend{}
	publisher, manager := newPublisherFixture(t, api)
	require.NoError(t, manager.Establish("p1", session.Credential{Token: partnerToken(t)}))

	board := deals.NewBoard()
	board.Add(deals.Draft{Title: "", Type: deals.TypeFlat, Category: "lunch", DiscountValue: 5, Source: deals.SourceCustom})

	_, err := publisher.Publish(context.Background(), "p1", "sid", "r-1", board)
	var fieldErrs deals.FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	require.Empty(t, api.posted)
}
