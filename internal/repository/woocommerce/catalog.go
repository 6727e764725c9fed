package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/slug"
)

const (
	serviceName = "woocommerce"

	// perPage is the largest page size the WordPress REST API accepts.
	perPage = 100

	// maxPages bounds term pagination against a misbehaving X-WP-TotalPages.
	maxPages = 100
)

// Getter issues GET requests. *httpclient.Client and
// *httpclient.CircuitBreakerClient both satisfy it.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

var (
	_ Getter = (*httpclient.Client)(nil)
	_ Getter = (*httpclient.CircuitBreakerClient)(nil)
)

// restTerm is the subset of a WooCommerce or WordPress term object we read.
// WooCommerce categories and brands carry an image object; plain WordPress
// terms do not.
type restTerm struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Parent      int64  `json:"parent"`
	Description string `json:"description"`
	Count       int    `json:"count"`
	Image       *struct {
		Src string `json:"src"`
	} `json:"image"`
	// Meta is an object, or [] when the term has no registered meta.
	Meta json.RawMessage `json:"meta"`
}

// CatalogRepository reads the catalog through the WooCommerce REST API.
type CatalogRepository struct {
	client  Getter
	baseURL string
}

// NewCatalogRepository creates a REST-backed repository for the store at
// baseURL, e.g. https://shop.example.sk.
func NewCatalogRepository(client Getter, baseURL string) *CatalogRepository {
	return &CatalogRepository{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// TaxonomyExists asks the WordPress REST API whether the taxonomy is
// registered.
func (r *CatalogRepository) TaxonomyExists(ctx context.Context, taxonomy string) (bool, error) {
	resp, err := r.get(ctx, "/wp-json/wp/v2/taxonomies/"+url.PathEscape(taxonomy), nil)
	if err != nil {
		return false, err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, httpclient.ParseResponseError(resp, serviceName)
	}
}

// ListTerms fetches every term of the taxonomy, following pagination.
func (r *CatalogRepository) ListTerms(ctx context.Context, taxonomy string) ([]domain.Term, error) {
	path := termsPath(taxonomy)

	var terms []domain.Term
	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("hide_empty", "false")

		batch, totalPages, err := r.fetchTerms(ctx, path, q)
		if err != nil {
			return nil, fmt.Errorf("list terms of %s: %w", taxonomy, err)
		}
		for _, rt := range batch {
			terms = append(terms, toDomain(rt, taxonomy))
		}

		if page >= totalPages || len(batch) < perPage {
			break
		}
	}
	return terms, nil
}

// HasPublishedInStockItems asks for at most one published, in-stock product
// assigned to the term.
func (r *CatalogRepository) HasPublishedInStockItems(ctx context.Context, term domain.Term) (bool, error) {
	path, q := productsQuery(term)

	resp, err := r.get(ctx, path, q)
	if err != nil {
		return false, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return false, httpclient.ParseResponseError(resp, serviceName)
	}

	if total := resp.Header.Get("X-WP-Total"); total != "" {
		if n, err := strconv.Atoi(total); err == nil {
			return n > 0, nil
		}
	}

	var products []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return false, apperrors.Unavailable(serviceName, fmt.Errorf("decode products: %w", err))
	}
	return len(products) > 0, nil
}

// Ping checks that the REST API index responds.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	resp, err := r.get(ctx, "/wp-json/", nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	return nil
}

func (r *CatalogRepository) fetchTerms(ctx context.Context, path string, q url.Values) ([]restTerm, int, error) {
	resp, err := r.get(ctx, path, q)
	if err != nil {
		return nil, 0, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, 0, httpclient.ParseResponseError(resp, serviceName)
	}

	var batch []restTerm
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, 0, apperrors.Unavailable(serviceName, fmt.Errorf("decode terms: %w", err))
	}

	totalPages := 1
	if v, err := strconv.Atoi(resp.Header.Get("X-WP-TotalPages")); err == nil && v > 0 {
		totalPages = v
	}
	return batch, totalPages, nil
}

func (r *CatalogRepository) get(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	u := r.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	resp, err := r.client.Get(ctx, u)
	if err != nil {
		return nil, apperrors.Unavailable(serviceName, err)
	}
	return resp, nil
}

// termsPath maps a taxonomy to its REST collection. WooCommerce serves its
// own taxonomies; anything else goes through the WordPress term routes.
func termsPath(taxonomy string) string {
	switch taxonomy {
	case "product_cat":
		return "/wp-json/wc/v3/products/categories"
	case "product_brand":
		return "/wp-json/wc/v3/products/brands"
	default:
		return "/wp-json/wp/v2/" + url.PathEscape(taxonomy)
	}
}

// productsQuery builds the product lookup for a term. WooCommerce filters
// stock status itself; for other taxonomies only published products are
// visible through the WordPress route and stock is not filtered.
func productsQuery(term domain.Term) (string, url.Values) {
	q := url.Values{}
	q.Set("per_page", "1")

	switch term.Taxonomy {
	case "product_cat", "product_brand":
		param := "category"
		if term.Taxonomy == "product_brand" {
			param = "brand"
		}
		q.Set(param, term.ID)
		q.Set("status", "publish")
		q.Set("stock_status", "instock")
		return "/wp-json/wc/v3/products", q
	default:
		q.Set(term.Taxonomy, term.ID)
		return "/wp-json/wp/v2/product", q
	}
}

func toDomain(rt restTerm, taxonomy string) domain.Term {
	t := domain.Term{
		ID:          strconv.FormatInt(rt.ID, 10),
		Name:        rt.Name,
		Slug:        rt.Slug,
		Count:       rt.Count,
		Description: rt.Description,
		Taxonomy:    taxonomy,
	}
	if rt.Parent != 0 {
		p := strconv.FormatInt(rt.Parent, 10)
		t.ParentID = &p
	}
	if rt.Image != nil && rt.Image.Src != "" {
		src := rt.Image.Src
		t.ImageURL = &src
	}
	if src := metaString(rt.Meta, "pwb_brand_image_url"); src != "" {
		t.AltImageURL = &src
	}
	if t.Slug == "" {
		t.Slug = slug.Generate(t.Name)
	}
	return t
}

// metaString reads a string field of a term's meta object. Anything other
// than an object yields "".
func metaString(raw json.RawMessage, key string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return ""
	}
	var meta map[string]json.RawMessage
	if err := json.Unmarshal(raw, &meta); err != nil {
		return ""
	}
	var v string
	if err := json.Unmarshal(meta[key], &v); err != nil {
		return ""
	}
	return v
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
