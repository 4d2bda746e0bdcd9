package backend

// The backend serves the same fields under capitalized and lowercase keys
// depending on the endpoint. encoding/json matches keys case-insensitively,
// which covers the casing drift; the raw types below exist so that every
// remaining irregularity (numeric-or-string ids, menu_pdfs naming, optional
// wrapper objects) is resolved here and nowhere else. Nothing outside this
// file touches a raw payload.

type rawIdentity struct {
	ID         flexID `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Registered bool   `json:"isRegistered"`
}

func (r rawIdentity) normalize() Identity {
	id := r.ID.String()
	if id == "" {
		// Older backend builds report only the email as the identity key.
		id = r.Email
	}
	return Identity{
		ID:         id,
		Email:      r.Email,
		Role:       r.Role,
		Registered: r.Registered,
	}
}

type rawRestaurant struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

func (r rawRestaurant) normalize() Restaurant {
	return Restaurant{ID: r.ID.String(), Name: r.Name}
}

func normalizeRestaurants(raw []rawRestaurant) []Restaurant {
	out := make([]Restaurant, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.normalize())
	}
	return out
}

type rawDeal struct {
	ID            flexID  `json:"id"`
	Title         string  `json:"title"`
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	DiscountValue float64 `json:"discount_value"`
	Source        string  `json:"source"`
}

type rawPreview struct {
	ID         flexID    `json:"id"`
	Name       string    `json:"name"`
	Images     []string  `json:"images"`
	MenuPDFs   []string  `json:"menu_pdfs"`
	Deals      []rawDeal `json:"deals"`
	CostForTwo float64   `json:"cost_for_two"`
}

func (r rawPreview) normalize() Preview {
	deals := make([]Deal, 0, len(r.Deals))
	for _, d := range r.Deals {
		deals = append(deals, Deal{
			ID:            d.ID.String(),
			Title:         d.Title,
			Type:          d.Type,
			Category:      d.Category,
			DiscountValue: d.DiscountValue,
			Source:        d.Source,
		})
	}
	return Preview{
		Restaurant: Restaurant{ID: r.ID.String(), Name: r.Name},
		Images:     r.Images,
		MenuPDFs:   r.MenuPDFs,
		Deals:      deals,
		CostForTwo: r.CostForTwo,
	}
}

type rawSuggestion struct {
	Title         string  `json:"title"`
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	DiscountValue float64 `json:"discount_value"`
}

// The suggestion endpoint wraps its list; some builds capitalize the key,
// which the case-insensitive match absorbs.
type rawSuggestionList struct {
	Suggestions []rawSuggestion `json:"suggestions"`
}

func (r rawSuggestionList) normalize() []Suggestion {
	out := make([]Suggestion, 0, len(r.Suggestions))
	for _, s := range r.Suggestions {
		out = append(out, Suggestion{
			Title:         s.Title,
			Type:          s.Type,
			Category:      s.Category,
			DiscountValue: s.DiscountValue,
		})
	}
	return out
}

type rawLoginResult struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (r rawLoginResult) normalize() LoginResult {
	return LoginResult(r)
}
