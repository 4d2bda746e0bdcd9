package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Login issues a credential for an existing partner account.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	raw, err := c.Call(ctx, http.MethodPost, "/auth/login", body)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "[Login]")
	}
	var result rawLoginResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return LoginResult{}, errors.Wrap(err, "[Login] failed to decode response")
	}
	return result.normalize(), nil
}

// Register creates a partner account. The backend issues no credential here;
// callers follow up with Login.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	if _, err := c.Call(ctx, http.MethodPost, "/auth/register", body); err != nil {
		return errors.Wrap(err, "[Register]")
	}
	return nil
}

// Ping validates the stored credential against the backend and returns the
// caller's identity.
func (c *Client) Ping(ctx context.Context) (Identity, error) {
	raw, err := c.Call(ctx, http.MethodGet, "/protected/ping", nil)
	if err != nil {
		return Identity{}, errors.Wrap(err, "[Ping]")
	}
	var identity rawIdentity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return Identity{}, errors.Wrap(err, "[Ping] failed to decode response")
	}
	return identity.normalize(), nil
}

// MyRestaurants lists the restaurants owned by the authenticated partner.
func (c *Client) MyRestaurants(ctx context.Context) ([]Restaurant, error) {
	raw, err := c.Call(ctx, http.MethodGet, "/restaurants/me", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[MyRestaurants]")
	}
	var list []rawRestaurant
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrap(err, "[MyRestaurants] failed to decode response")
	}
	return normalizeRestaurants(list), nil
}

// RestaurantPreview fetches the asset/deal completeness record. A restaurant
// with nothing published yet yields ErrNoDeals, a valid empty state.
func (c *Client) RestaurantPreview(ctx context.Context, restaurantID string) (Preview, error) {
	endpoint := fmt.Sprintf("/restaurants/%s/preview", url.PathEscape(restaurantID))
	raw, err := c.Call(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Preview{}, errors.Wrap(err, "[RestaurantPreview]")
	}
	var preview rawPreview
	if err := json.Unmarshal(raw, &preview); err != nil {
		return Preview{}, errors.Wrap(err, "[RestaurantPreview] failed to decode response")
	}
	return preview.normalize(), nil
}

// DealSuggestions fetches backend-suggested deals for the restaurant.
func (c *Client) DealSuggestions(ctx context.Context, restaurantID string) ([]Suggestion, error) {
	endpoint := fmt.Sprintf("/restaurants/%s/deals/suggestion", url.PathEscape(restaurantID))
	raw, err := c.Call(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[DealSuggestions]")
	}
	var list rawSuggestionList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrap(err, "[DealSuggestions] failed to decode response")
	}
	return list.normalize(), nil
}

// PublishDeal publishes a single deal for the restaurant.
func (c *Client) PublishDeal(ctx context.Context, restaurantID string, deal DealSubmission) error {
	endpoint := fmt.Sprintf("/restaurants/%s/deals", url.PathEscape(restaurantID))
	if _, err := c.Call(ctx, http.MethodPost, endpoint, deal); err != nil {
		return errors.Wrap(err, "[PublishDeal]")
	}
	return nil
}

// PendingRestaurants lists restaurants awaiting approval. Admin only; the
// backend enforces the role server-side.
func (c *Client) PendingRestaurants(ctx context.Context) ([]Restaurant, error) {
	raw, err := c.Call(ctx, http.MethodGet, "/restaurants/pending", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[PendingRestaurants]")
	}
	var list []rawRestaurant
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrap(err, "[PendingRestaurants] failed to decode response")
	}
	return normalizeRestaurants(list), nil
}
