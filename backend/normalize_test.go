package backend_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plateful/partner-portal/backend"
)

// The backend is observed serving the same fields under capitalized and
// lowercase keys depending on the endpoint. Both spellings must land in the
// one canonical shape.

func TestMyRestaurantsAcceptsCapitalizedKeys(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"ID":"r-1","Name":"Spice Route"},{"id":"r-2","name":"Noodle Bar"}]`))
	})

	restaurants, err := client.MyRestaurants(context.Background())
	require.NoError(t, err)
	require.Len(t, restaurants, 2)
	require.Equal(t, backend.Restaurant{ID: "r-1", Name: "Spice Route"}, restaurants[0])
	require.Equal(t, backend.Restaurant{ID: "r-2", Name: "Noodle Bar"}, restaurants[1])
}

func TestMyRestaurantsAcceptsNumericIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"ID":42,"Name":"Spice Route"}]`))
	})

	restaurants, err := client.MyRestaurants(context.Background())
	require.NoError(t, err)
	require.Equal(t, "42", restaurants[0].ID)
}

func TestRestaurantPreviewNormalization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"ID": "r-1",
			"Name": "Spice Route",
			"Images": ["a.jpg", "b.jpg"],
			"menu_pdfs": ["menu.pdf"],
			"deals": [{"id":"d-1","title":"Lunch special","type":"percentage","category":"lunch","discount_value":20,"source":"custom"}],
			"cost_for_two": 450
		}`))
	})

	preview, err := client.RestaurantPreview(context.Background(), "r-1")
	require.NoError(t, err)
	require.Equal(t, "Spice Route", preview.Restaurant.Name)
	require.True(t, preview.HasAssets())
	require.True(t, preview.HasDeals())
	require.Equal(t, float64(450), preview.CostForTwo)
	require.Equal(t, "Lunch special", preview.Deals[0].Title)
}

func TestPreviewWithoutMenuReferenceHasNoAssets(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ID":"r-1","Name":"Spice Route","Images":["a.jpg"],"menu_pdfs":[],"deals":[]}`))
	})

	preview, err := client.RestaurantPreview(context.Background(), "r-1")
	require.NoError(t, err)
	require.False(t, preview.HasAssets())
	require.False(t, preview.HasDeals())
}

func TestDealSuggestionsAcceptsCapitalizedWrapper(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Suggestions":[{"title":"Happy hour","type":"flat","category":"drinks","discount_value":100}]}`))
	})

	suggestions, err := client.DealSuggestions(context.Background(), "r-1")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	require.Equal(t, "Happy hour", suggestions[0].Title)
	require.Equal(t, "flat", suggestions[0].Type)
}

func TestPingFallsBackToEmailIdentity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email":"owner@spice.example","role":"PARTNER","isRegistered":true}`))
	})

	identity, err := client.Ping(context.Background())
	require.NoError(t, err)
	require.Equal(t, "owner@spice.example", identity.ID)
	require.Equal(t, "PARTNER", identity.Role)
	require.True(t, identity.Registered)
}
