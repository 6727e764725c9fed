package listing

import (
	"context"
	"io"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
)

func strPtr(s string) *string {
	return &s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func term(id, name, slug string, parent *string) domain.Term {
	return domain.Term{ID: id, Name: name, Slug: slug, ParentID: parent, Taxonomy: "product_cat"}
}

// predicateFor returns a predicate that is true for the given IDs and records
// which terms were asked about.
func predicateFor(asked *[]string, ids ...string) Predicate {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(_ context.Context, t domain.Term) (bool, error) {
		if asked != nil {
			*asked = append(*asked, t.ID)
		}
		_, ok := set[t.ID]
		return ok, nil
	}
}
