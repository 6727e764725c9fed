package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/listing"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/tracing"
)

const catalogSource = "catalog"

// Config holds the listing rules.
type Config struct {
	CategoryTaxonomy string
	BrandCandidates  []string
	ReservedSlugs    map[string]struct{}
	PageSize         int
	MaxLimit         int
}

// ListingService builds brand and product type listings and pages through
// them. It keeps no listing data between requests; only the resolved
// taxonomy names are remembered.
type ListingService struct {
	repo      repository.CatalogRepository
	assembler *listing.Assembler
	publisher event.Publisher
	cfg       Config
	logger    *slog.Logger
	tracer    trace.Tracer

	mu         sync.Mutex
	taxonomies map[domain.Kind]string
}

// NewListingService creates a new listing service.
func NewListingService(
	repo repository.CatalogRepository,
	assembler *listing.Assembler,
	publisher event.Publisher,
	cfg Config,
	logger *slog.Logger,
) *ListingService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &ListingService{
		repo:       repo,
		assembler:  assembler,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger,
		tracer:     tracing.Tracer("service"),
		taxonomies: make(map[domain.Kind]string, len(domain.Kinds)),
	}
}

// PageSize returns the default page size.
func (s *ListingService) PageSize() int {
	return s.cfg.PageSize
}

// MaxLimit returns the largest page size a caller may request.
func (s *ListingService) MaxLimit() int {
	return s.cfg.MaxLimit
}

// Taxonomy returns the taxonomy backing kind, probing the store the first
// time. A successful probe is remembered for the life of the service, even
// when no candidate exists; a failed probe is retried on the next call.
func (s *ListingService) Taxonomy(ctx context.Context, kind domain.Kind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name, ok := s.taxonomies[kind]; ok {
		return name, nil
	}

	candidates := s.cfg.BrandCandidates
	if kind == domain.KindTypes {
		candidates = []string{s.cfg.CategoryTaxonomy}
	}

	name, err := listing.ResolveTaxonomy(ctx, candidates, s.repo.TaxonomyExists)
	if err != nil {
		return "", apperrors.Unavailable(catalogSource, err)
	}
	if name == "" {
		s.logger.WarnContext(ctx, "no taxonomy found, listing will be empty",
			slog.String("kind", string(kind)),
			slog.Any("candidates", candidates),
		)
	}
	s.taxonomies[kind] = name
	return name, nil
}

// WarmUp resolves the taxonomies of every kind. Failures are logged and
// retried lazily by later requests.
func (s *ListingService) WarmUp(ctx context.Context) {
	for _, kind := range domain.Kinds {
		name, err := s.Taxonomy(ctx, kind)
		if err != nil {
			s.logger.WarnContext(ctx, "taxonomy probe failed, will retry on demand",
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.logger.InfoContext(ctx, "taxonomy resolved",
			slog.String("kind", string(kind)),
			slog.String("taxonomy", name),
		)
	}
}

// Listing builds the full, ordered listing for kind.
func (s *ListingService) Listing(ctx context.Context, kind domain.Kind) (entries []domain.ListingEntry, err error) {
	ctx, span := s.tracer.Start(ctx, "ListingService.Listing",
		trace.WithAttributes(attribute.String("listing.kind", string(kind))),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if _, ok := domain.ParseKind(string(kind)); !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown listing kind %q", kind))
	}

	taxonomy, err := s.Taxonomy(ctx, kind)
	if err != nil {
		return nil, err
	}
	if taxonomy == "" {
		return []domain.ListingEntry{}, nil
	}

	terms, err := s.repo.ListTerms(ctx, taxonomy)
	if err != nil {
		return nil, apperrors.Unavailable(catalogSource, err)
	}

	switch kind {
	case domain.KindBrands:
		eligible, err := listing.EligibleBrands(ctx, terms, s.repo.HasPublishedInStockItems)
		if err != nil {
			return nil, apperrors.Unavailable(catalogSource, err)
		}
		entries = s.assembler.Brands(eligible)
	default:
		eligible, err := listing.EligibleCategories(ctx, terms, s.cfg.ReservedSlugs, s.repo.HasPublishedInStockItems)
		if err != nil {
			return nil, apperrors.Unavailable(catalogSource, err)
		}
		entries = s.assembler.Categories(ctx, eligible, terms)
	}

	span.SetAttributes(
		attribute.String("listing.taxonomy", taxonomy),
		attribute.Int("listing.terms", len(terms)),
		attribute.Int("listing.entries", len(entries)),
	)
	listingItems.WithLabelValues(string(kind)).Observe(float64(len(entries)))

	return entries, nil
}

// Page returns the window [offset, offset+limit) of the listing for kind.
func (s *ListingService) Page(ctx context.Context, kind domain.Kind, offset, limit int) (page pagination.Page[domain.ListingEntry], err error) {
	defer func() {
		listingRequestsTotal.WithLabelValues(string(kind), outcomeFor(page, err)).Inc()
	}()

	if offset < 0 {
		return page, apperrors.InvalidInput("offset must be zero or greater")
	}
	if limit <= 0 || (s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit) {
		return page, apperrors.InvalidInput(fmt.Sprintf("limit must be between 1 and %d", s.cfg.MaxLimit))
	}

	entries, err := s.Listing(ctx, kind)
	if err != nil {
		return page, err
	}

	return pagination.Window(entries, offset, limit), nil
}

// InitialPage returns the first page of the listing for kind.
func (s *ListingService) InitialPage(ctx context.Context, kind domain.Kind) (pagination.Page[domain.ListingEntry], error) {
	return s.Page(ctx, kind, 0, s.cfg.PageSize)
}

// LoadMore returns a follow-up page and announces it on the event stream.
// Publishing failures are logged and never fail the request.
func (s *ListingService) LoadMore(ctx context.Context, kind domain.Kind, offset, limit int) (pagination.Page[domain.ListingEntry], error) {
	page, err := s.Page(ctx, kind, offset, limit)
	if err != nil {
		return page, err
	}

	s.mu.Lock()
	taxonomy := s.taxonomies[kind]
	s.mu.Unlock()

	slugs := make([]string, 0, len(page.Items))
	for _, e := range page.Items {
		slugs = append(slugs, e.Slug)
	}

	data := event.PageServedData{
		Kind:      kind,
		Taxonomy:  taxonomy,
		Offset:    page.Offset,
		Limit:     page.Limit,
		Items:     len(page.Items),
		Total:     page.Total,
		HasMore:   page.HasMore,
		SessionID: logger.SessionIDFromContext(ctx),
		ItemSlugs: slugs,
	}
	if err := s.publisher.PublishPageServed(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish page served event",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}

	return page, nil
}

// Ping checks that the catalog is reachable.
func (s *ListingService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func outcomeFor(page pagination.Page[domain.ListingEntry], err error) string {
	switch {
	case err == nil && page.Total == 0:
		return outcomeEmpty
	case err == nil:
		return outcomeOK
	case apperrors.HTTPStatus(err) == 400:
		return outcomeInvalid
	default:
		return outcomeUnavailable
	}
}
