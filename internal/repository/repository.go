package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// CatalogRepository is the read-only view of the store's catalog that the
// listing service needs. Implementations exist for the WordPress database
// and for the WooCommerce REST API.
type CatalogRepository interface {
	// TaxonomyExists reports whether the store has a taxonomy registered
	// under the given name.
	TaxonomyExists(ctx context.Context, taxonomy string) (bool, error)

	// ListTerms returns every term of the taxonomy in the store's natural
	// order, including terms without items.
	ListTerms(ctx context.Context, taxonomy string) ([]domain.Term, error)

	// HasPublishedInStockItems reports whether at least one published,
	// in-stock product is directly assigned to the term.
	HasPublishedInStockItems(ctx context.Context, term domain.Term) (bool, error)

	// Ping checks that the catalog is reachable.
	Ping(ctx context.Context) error
}
