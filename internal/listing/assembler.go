package listing

import (
	"cmp"
	"context"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
)

// DefaultWordLimit is the number of words kept in a brand's short description.
const DefaultWordLimit = 20

// Links builds storefront URLs for term archive pages.
type Links struct {
	BaseURL      string // e.g. https://shop.example.sk
	CategoryBase string // path segment of category archives, e.g. product-category
	BrandBase    string // path segment of brand archives, e.g. brand
}

// For returns the archive URL of a term of the given kind.
func (l Links) For(kind domain.Kind, slug string) string {
	base := l.BrandBase
	if kind == domain.KindTypes {
		base = l.CategoryBase
	}

	link, err := url.JoinPath(l.BaseURL, base, slug)
	if err != nil {
		return ""
	}
	return link + "/"
}

// Assembler maps eligible terms to display-ready listing entries.
type Assembler struct {
	links     Links
	wordLimit int
	logger    *slog.Logger
}

// NewAssembler creates an assembler. A non-positive wordLimit falls back to
// DefaultWordLimit.
func NewAssembler(links Links, wordLimit int, logger *slog.Logger) *Assembler {
	if wordLimit <= 0 {
		wordLimit = DefaultWordLimit
	}
	return &Assembler{links: links, wordLimit: wordLimit, logger: logger}
}

// Brands maps eligible brand terms to entries, preserving their order.
func (a *Assembler) Brands(terms []domain.Term) []domain.ListingEntry {
	out := make([]domain.ListingEntry, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))

	for _, t := range terms {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}

		full := StripMarkup(t.Description)
		short, truncated := TruncateWords(full, a.wordLimit)

		out = append(out, domain.ListingEntry{
			ID:               t.ID,
			Name:             t.Name,
			Slug:             t.Slug,
			Link:             a.links.For(domain.KindBrands, t.Slug),
			ImageURL:         firstImage(t.ImageURL, t.AltImageURL),
			Count:            t.Count,
			ShortDescription: short,
			FullDescription:  full,
			NeedsExpand:      truncated,
		})
	}
	return out
}

// Categories maps eligible category terms to entries sorted by name, with ties
// broken by ID. all is the complete taxonomy used to resolve ancestors.
func (a *Assembler) Categories(ctx context.Context, eligible, all []domain.Term) []domain.ListingEntry {
	idx := NewIndex(all)
	out := make([]domain.ListingEntry, 0, len(eligible))
	seen := make(map[string]struct{}, len(eligible))

	for _, t := range eligible {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}

		entry := domain.ListingEntry{
			ID:       t.ID,
			Name:     t.Name,
			Slug:     t.Slug,
			Link:     a.links.For(domain.KindTypes, t.Slug),
			ImageURL: firstImage(t.ImageURL),
			Count:    t.Count,
		}

		name, complete := RootAncestorName(t, idx)
		if !complete {
			a.logger.WarnContext(ctx, "category hierarchy is inconsistent, using partial ancestor",
				slog.String("term_id", t.ID),
				slog.String("parent_id", *t.ParentID),
				slog.String("ancestor", name),
			)
		}
		if name != "" {
			entry.AncestorName = &name
		}

		out = append(out, entry)
	}

	slices.SortStableFunc(out, func(x, y domain.ListingEntry) int {
		return cmp.Or(strings.Compare(x.Name, y.Name), strings.Compare(x.ID, y.ID))
	})
	return out
}

func firstImage(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil && strings.TrimSpace(*c) != "" {
			v := *c
			return &v
		}
	}
	return nil
}
