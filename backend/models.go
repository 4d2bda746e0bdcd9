package backend

import (
	"encoding/json"
	"strings"
)

// Identity is the caller's identity as reported by /protected/ping.
type Identity struct {
	ID         string
	Email      string
	Role       string
	Registered bool
}

type Restaurant struct {
	ID   string
	Name string
}

// Preview is the completeness record behind a restaurant's live view: what
// the onboarding funnel derives hasAssets and hasDeals from.
type Preview struct {
	Restaurant Restaurant
	Images     []string
	MenuPDFs   []string
	Deals      []Deal
	CostForTwo float64
}

// HasAssets reports at least one image and a non-empty menu reference.
func (p Preview) HasAssets() bool {
	return len(p.Images) > 0 && len(p.MenuPDFs) > 0
}

func (p Preview) HasDeals() bool {
	return len(p.Deals) > 0
}

type Deal struct {
	ID            string
	Title         string
	Type          string
	Category      string
	DiscountValue float64
	Source        string
}

type Suggestion struct {
	Title         string
	Type          string
	Category      string
	DiscountValue float64
}

// DealSubmission is the publish payload for POST /restaurants/{id}/deals.
type DealSubmission struct {
	Title         string  `json:"title"`
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	DiscountValue float64 `json:"discount_value"`
	Source        string  `json:"source"`
}

type LoginResult struct {
	Token string
	Email string
	Name  string
}

// flexID tolerates the backend serving ids as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string {
	return strings.TrimSpace(string(f))
}
