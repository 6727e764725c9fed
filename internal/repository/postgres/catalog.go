package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/slug"
)

// DefaultTablePrefix is the WordPress table prefix used when none is configured.
const DefaultTablePrefix = "wp_"

var validPrefix = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// catalogQueries holds the SQL statements with the table prefix applied.
type catalogQueries struct {
	taxonomyExists string
	listTerms      string
	hasItems       string
}

func buildQueries(p string) catalogQueries {
	return catalogQueries{
		taxonomyExists: fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %sterm_taxonomy WHERE taxonomy = $1)`, p),

		// Attachment URLs live in the guid column of the attachment post that
		// the thumbnail_id / pwb_brand_image term meta points to.
		listTerms: fmt.Sprintf(`
		SELECT t.term_id, t.name, t.slug, tt.parent, tt.count, tt.description,
		       img.guid, alt.guid
		FROM %[1]sterms t
		JOIN %[1]sterm_taxonomy tt ON tt.term_id = t.term_id
		LEFT JOIN %[1]stermmeta thumb ON thumb.term_id = t.term_id AND thumb.meta_key = 'thumbnail_id'
		LEFT JOIN %[1]sposts img ON img.id::text = thumb.meta_value AND img.post_type = 'attachment'
		LEFT JOIN %[1]stermmeta pwb ON pwb.term_id = t.term_id AND pwb.meta_key = 'pwb_brand_image'
		LEFT JOIN %[1]sposts alt ON alt.id::text = pwb.meta_value AND alt.post_type = 'attachment'
		WHERE tt.taxonomy = $1
		ORDER BY t.name, t.term_id`, p),

		hasItems: fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1
			FROM %[1]sterm_relationships tr
			JOIN %[1]sterm_taxonomy tt ON tt.term_taxonomy_id = tr.term_taxonomy_id
			JOIN %[1]sposts p ON p.id = tr.object_id
			JOIN %[1]spostmeta stock ON stock.post_id = p.id AND stock.meta_key = '_stock_status'
			WHERE tt.term_id = $1 AND tt.taxonomy = $2
			  AND p.post_type = 'product' AND p.post_status = 'publish'
			  AND stock.meta_value = 'instock'
		)`, p),
	}
}

// CatalogRepository reads taxonomy terms and product availability from a
// WordPress/WooCommerce database.
type CatalogRepository struct {
	pool    database.DBTX
	queries catalogQueries
}

// NewCatalogRepository creates a repository over the given pool. An empty
// prefix selects DefaultTablePrefix.
func NewCatalogRepository(pool database.DBTX, tablePrefix string) (*CatalogRepository, error) {
	if tablePrefix == "" {
		tablePrefix = DefaultTablePrefix
	}
	if !validPrefix.MatchString(tablePrefix) {
		return nil, fmt.Errorf("invalid table prefix %q", tablePrefix)
	}
	return &CatalogRepository{pool: pool, queries: buildQueries(tablePrefix)}, nil
}

// TaxonomyExists reports whether any term is registered under the taxonomy.
func (r *CatalogRepository) TaxonomyExists(ctx context.Context, taxonomy string) (exists bool, err error) {
	ctx, end := database.TraceQuery(ctx, "TaxonomyExists", r.queries.taxonomyExists)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, r.queries.taxonomyExists, taxonomy).Scan(&exists); err != nil {
		return false, fmt.Errorf("check taxonomy %s: %w", taxonomy, err)
	}
	return exists, nil
}

// ListTerms returns every term of the taxonomy ordered by name.
func (r *CatalogRepository) ListTerms(ctx context.Context, taxonomy string) (terms []domain.Term, err error) {
	ctx, end := database.TraceQuery(ctx, "ListTerms", r.queries.listTerms)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, r.queries.listTerms, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("list terms of %s: %w", taxonomy, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, parent  int64
			t           domain.Term
			description *string
		)
		if err = rows.Scan(&id, &t.Name, &t.Slug, &parent, &t.Count, &description, &t.ImageURL, &t.AltImageURL); err != nil {
			return nil, fmt.Errorf("scan term row: %w", err)
		}

		t.ID = strconv.FormatInt(id, 10)
		if parent != 0 {
			p := strconv.FormatInt(parent, 10)
			t.ParentID = &p
		}
		if description != nil {
			t.Description = *description
		}
		if t.Slug == "" {
			t.Slug = slug.Generate(t.Name)
		}
		t.Taxonomy = taxonomy
		terms = append(terms, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate term rows: %w", err)
	}

	return terms, nil
}

// HasPublishedInStockItems reports whether a published, in-stock product is
// directly assigned to the term.
func (r *CatalogRepository) HasPublishedInStockItems(ctx context.Context, term domain.Term) (has bool, err error) {
	termID, parseErr := strconv.ParseInt(term.ID, 10, 64)
	if parseErr != nil {
		return false, apperrors.InvalidInput(fmt.Sprintf("term id %q is not numeric", term.ID))
	}

	ctx, end := database.TraceQuery(ctx, "HasPublishedInStockItems", r.queries.hasItems)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, r.queries.hasItems, termID, term.Taxonomy).Scan(&has); err != nil {
		return false, fmt.Errorf("check items of term %s: %w", term.ID, err)
	}
	return has, nil
}

// Ping runs a trivial query against the catalog database.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ping catalog database: %w", err)
	}
	return nil
}
