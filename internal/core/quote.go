package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"
)

// MaxQuoteNoteLength is the longest note accepted, in characters.
const MaxQuoteNoteLength = 2000

// QuoteInfo is the quote a client is drafting: a free-text note and the
// products collected so far.
type QuoteInfo struct {
	Note      string            `json:"note"`
	Products  []AcceptedProduct `json:"products"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// QuoteStore persists quote info per client. LoadQuote returns an empty
// QuoteInfo, not an error, when the client has none.
type QuoteStore interface {
	LoadQuote(ctx context.Context, client string) (QuoteInfo, error)
	SaveQuote(ctx context.Context, client string, info QuoteInfo) error
}

func (s *Service) quotes() (QuoteStore, error) {
	if s.deps.Quotes == nil {
		return nil, errors.New("quotes are not configured")
	}
	return s.deps.Quotes, nil
}

// Quote returns the client's quote info.
func (s *Service) Quote(ctx context.Context, client string) (QuoteInfo, error) {
	store, err := s.quotes()
	if err != nil {
		return QuoteInfo{}, err
	}
	info, err := store.LoadQuote(ctx, client)
	if err != nil {
		return QuoteInfo{}, fmt.Errorf("load quote for %s: %w", client, err)
	}
	if info.Products == nil {
		info.Products = []AcceptedProduct{}
	}
	return info, nil
}

// QuoteNote returns the client's note, empty if none was saved.
func (s *Service) QuoteNote(ctx context.Context, client string) (string, error) {
	info, err := s.Quote(ctx, client)
	if err != nil {
		return "", err
	}
	return info.Note, nil
}

// SetQuoteNote stores the note into the client's quote info, leaving the
// rest of it as it was.
func (s *Service) SetQuoteNote(ctx context.Context, client, note string) (QuoteInfo, error) {
	if utf8.RuneCountInString(note) > MaxQuoteNoteLength {
		return QuoteInfo{}, fmt.Errorf("%w: %d characters", ErrNoteTooLong, utf8.RuneCountInString(note))
	}
	return s.updateQuote(ctx, client, func(info *QuoteInfo) {
		info.Note = note
	})
}

// updateQuote is a read-modify-write of one client's quote info.
func (s *Service) updateQuote(ctx context.Context, client string, fn func(*QuoteInfo)) (QuoteInfo, error) {
	store, err := s.quotes()
	if err != nil {
		return QuoteInfo{}, err
	}

	s.quoteMu.Lock()
	defer s.quoteMu.Unlock()

	info, err := store.LoadQuote(ctx, client)
	if err != nil {
		return QuoteInfo{}, fmt.Errorf("load quote for %s: %w", client, err)
	}
	fn(&info)
	if info.Products == nil {
		info.Products = []AcceptedProduct{}
	}
	info.UpdatedAt = s.now()

	if err := store.SaveQuote(ctx, client, info); err != nil {
		return QuoteInfo{}, fmt.Errorf("save quote for %s: %w", client, err)
	}
	return info, nil
}

// mergeProducts adds incoming products to existing ones. A product with the
// same variant and options as an existing line increases its quantity.
func mergeProducts(existing, incoming []AcceptedProduct) []AcceptedProduct {
	out := slices.Clone(existing)
	for _, p := range incoming {
		i := slices.IndexFunc(out, func(e AcceptedProduct) bool {
			return e.ProductID == p.ProductID &&
				e.VariantID == p.VariantID &&
				slices.Equal(e.OptionList, p.OptionList)
		})
		if i >= 0 {
			out[i].Quantity += p.Quantity
			continue
		}
		p.OptionList = slices.Clone(p.OptionList)
		out = append(out, p)
	}
	return out
}

// quoteDraftTarget adds accepted upload rows to the requesting client's
// quote draft. ref is ignored.
type quoteDraftTarget struct {
	svc *Service
}

func (t *quoteDraftTarget) Key() string   { return TargetQuoteDraft }
func (t *quoteDraftTarget) Label() string { return "quote" }

func (t *quoteDraftTarget) AddItems(ctx context.Context, _ string, addition ListAddition) (int, error) {
	client := ClientIDFromContext(ctx)
	_, err := t.svc.updateQuote(ctx, client, func(info *QuoteInfo) {
		info.Products = mergeProducts(info.Products, addition.Items)
	})
	if err != nil {
		return 0, err
	}
	return len(addition.Items), nil
}
