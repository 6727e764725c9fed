package listing

import (
	"context"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
)

// Predicate reports whether a term has at least one published, in-stock item.
type Predicate func(ctx context.Context, term domain.Term) (bool, error)

// EligibleCategories keeps the leaf terms that are not reserved and whose
// own items satisfy pred. The input order is preserved. A predicate error
// aborts the whole listing.
func EligibleCategories(ctx context.Context, terms []domain.Term, reserved map[string]struct{}, pred Predicate) ([]domain.Term, error) {
	parents := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if t.HasParent() {
			parents[*t.ParentID] = struct{}{}
		}
	}

	out := make([]domain.Term, 0, len(terms))
	for _, t := range terms {
		if _, ok := reserved[t.Slug]; ok {
			continue
		}
		if _, ok := parents[t.ID]; ok {
			continue
		}

		ok, err := pred(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("check items of category %s: %w", t.ID, err)
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// EligibleBrands keeps the brand terms whose items satisfy pred, in input
// order.
func EligibleBrands(ctx context.Context, terms []domain.Term, pred Predicate) ([]domain.Term, error) {
	out := make([]domain.Term, 0, len(terms))
	for _, t := range terms {
		ok, err := pred(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("check items of brand %s: %w", t.ID, err)
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}
