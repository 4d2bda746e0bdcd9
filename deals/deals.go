// Package deals holds the ephemeral draft-deal state of the publisher page.
// Drafts live in memory only: they have no identity beyond the page and are
// destroyed on navigation away without publishing.
package deals

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/plateful/partner-portal/backend"
)

type Type string

const (
	TypePercentage Type = "percentage"
	TypeFlat       Type = "flat"
)

type Source string

const (
	SourceSuggested Source = "suggested"
	SourceCustom    Source = "custom"
)

type Draft struct {
	ID            string
	Title         string
	Type          Type
	Category      string
	DiscountValue float64
	Source        Source
}

// FieldErrors carries per-field validation messages for the form. A draft
// that fails validation is never sent to the server.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	return fmt.Sprintf("invalid deal fields: %s", strings.Join(fields, ", "))
}

func (d Draft) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(d.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(d.Category) == "" {
		errs["category"] = "category is required"
	}
	switch d.Type {
	case TypePercentage:
		if d.DiscountValue <= 0 || d.DiscountValue > 100 {
			errs["discount_value"] = "percentage discount must be between 1 and 100"
		}
	case TypeFlat:
		if d.DiscountValue <= 0 {
			errs["discount_value"] = "flat discount must be greater than zero"
		}
	default:
		errs["type"] = "type must be percentage or flat"
	}
	switch d.Source {
	case SourceSuggested, SourceCustom:
	default:
		errs["source"] = "source must be suggested or custom"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (d Draft) submission() backend.DealSubmission {
	return backend.DealSubmission{
		Title:         d.Title,
		Type:          string(d.Type),
		Category:      d.Category,
		DiscountValue: d.DiscountValue,
		Source:        string(d.Source),
	}
}

// FromSuggestion turns a backend suggestion into an editable draft.
func FromSuggestion(s backend.Suggestion) Draft {
	return Draft{
		ID:            uuid.NewString(),
		Title:         s.Title,
		Type:          Type(s.Type),
		Category:      s.Category,
		DiscountValue: s.DiscountValue,
		Source:        SourceSuggested,
	}
}

// NewCustomDraft builds a partner-authored draft.
func NewCustomDraft(title string, dealType Type, category string, discount float64) Draft {
	return Draft{
		ID:            uuid.NewString(),
		Title:         title,
		Type:          dealType,
		Category:      category,
		DiscountValue: discount,
		Source:        SourceCustom,
	}
}

// Board is the deals page's working set of drafts.
type Board struct {
	mu     sync.Mutex
	drafts []Draft
}

func NewBoard() *Board {
	return &Board{}
}

func (b *Board) Add(d Draft) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drafts = append(b.drafts, d)
}

func (b *Board) Discard(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, d := range b.drafts {
		if d.ID == id {
			b.drafts = append(b.drafts[:i], b.drafts[i+1:]...)
			return
		}
	}
}

func (b *Board) Drafts() []Draft {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Draft, len(b.drafts))
	copy(out, b.drafts)
	return out
}

func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.drafts)
}
