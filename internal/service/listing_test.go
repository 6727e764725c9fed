package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/listing"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// --- Mocks ---

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) TaxonomyExists(ctx context.Context, taxonomy string) (bool, error) {
	args := m.Called(ctx, taxonomy)
	return args.Bool(0), args.Error(1)
}

func (m *mockCatalogRepository) ListTerms(ctx context.Context, taxonomy string) ([]domain.Term, error) {
	args := m.Called(ctx, taxonomy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Term), args.Error(1)
}

func (m *mockCatalogRepository) HasPublishedInStockItems(ctx context.Context, term domain.Term) (bool, error) {
	args := m.Called(ctx, term.ID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCatalogRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishPageServed(ctx context.Context, data event.PageServedData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(repo *mockCatalogRepository, pub event.Publisher) *ListingService {
	log := newTestLogger()
	assembler := listing.NewAssembler(listing.Links{BaseURL: "https://shop.example"}, listing.DefaultWordLimit, log)
	return NewListingService(repo, assembler, pub, Config{
		CategoryTaxonomy: "product_cat",
		BrandCandidates:  []string{"product_brand", "pwb-brand"},
		ReservedSlugs:    map[string]struct{}{"nezaradene": {}},
		PageSize:         9,
		MaxLimit:         100,
	}, log)
}

func strPtr(s string) *string {
	return &s
}

func brandTerms(n int) []domain.Term {
	letters := "abcdefghijklmnopqrstuvwxyz"
	terms := make([]domain.Term, 0, n)
	for i := 0; i < n; i++ {
		l := string(letters[i])
		terms = append(terms, domain.Term{ID: l, Name: "Brand " + l, Slug: "brand-" + l, Taxonomy: "pwb-brand"})
	}
	return terms
}

func expectAllInStock(repo *mockCatalogRepository) {
	repo.On("HasPublishedInStockItems", mock.Anything, mock.Anything).Return(true, nil)
}

// --- Tests ---

func TestTaxonomy_ResolvesFirstExistingCandidateOnce(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, "product_brand").Return(false, nil).Once()
	repo.On("TaxonomyExists", mock.Anything, "pwb-brand").Return(true, nil).Once()
	svc := newTestService(repo, nil)

	for i := 0; i < 3; i++ {
		name, err := svc.Taxonomy(context.Background(), domain.KindBrands)
		require.NoError(t, err)
		assert.Equal(t, "pwb-brand", name)
	}
	repo.AssertExpectations(t)
}

func TestTaxonomy_ProbeErrorIsNotRemembered(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, "product_cat").Return(false, errors.New("timeout")).Once()
	repo.On("TaxonomyExists", mock.Anything, "product_cat").Return(true, nil).Once()
	svc := newTestService(repo, nil)

	_, err := svc.Taxonomy(context.Background(), domain.KindTypes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))

	name, err := svc.Taxonomy(context.Background(), domain.KindTypes)
	require.NoError(t, err)
	assert.Equal(t, "product_cat", name)
	repo.AssertExpectations(t)
}

func TestListing_NoBrandTaxonomyYieldsEmpty(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, mock.Anything).Return(false, nil)
	svc := newTestService(repo, nil)

	entries, err := svc.Listing(context.Background(), domain.KindBrands)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	repo.AssertNotCalled(t, "ListTerms", mock.Anything, mock.Anything)
}

func TestListing_UnknownKind(t *testing.T) {
	svc := newTestService(new(mockCatalogRepository), nil)

	_, err := svc.Listing(context.Background(), domain.Kind("tags"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestListing_CategoriesScenario(t *testing.T) {
	terms := []domain.Term{
		{ID: "1", Name: "Skin", Slug: "skin", Taxonomy: "product_cat"},
		{ID: "2", Name: "Serums", Slug: "serums", ParentID: strPtr("1"), Taxonomy: "product_cat"},
		{ID: "3", Name: "Creams", Slug: "creams", ParentID: strPtr("1"), Taxonomy: "product_cat"},
		{ID: "4", Name: "Nezaradené", Slug: "nezaradene", Taxonomy: "product_cat"},
	}
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, "product_cat").Return(true, nil)
	repo.On("ListTerms", mock.Anything, "product_cat").Return(terms, nil)
	repo.On("HasPublishedInStockItems", mock.Anything, "2").Return(true, nil)
	repo.On("HasPublishedInStockItems", mock.Anything, "3").Return(false, nil)
	svc := newTestService(repo, nil)

	entries, err := svc.Listing(context.Background(), domain.KindTypes)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Serums", entries[0].Name)
	require.NotNil(t, entries[0].AncestorName)
	assert.Equal(t, "Skin", *entries[0].AncestorName)

	// Parents and reserved slugs never reach the predicate.
	repo.AssertNotCalled(t, "HasPublishedInStockItems", mock.Anything, "1")
	repo.AssertNotCalled(t, "HasPublishedInStockItems", mock.Anything, "4")
}

func TestListing_PredicateErrorIsUnavailable(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, "product_brand").Return(true, nil)
	repo.On("ListTerms", mock.Anything, "product_brand").Return(brandTerms(2), nil)
	repo.On("HasPublishedInStockItems", mock.Anything, mock.Anything).Return(false, errors.New("conn reset"))
	svc := newTestService(repo, nil)

	_, err := svc.Listing(context.Background(), domain.KindBrands)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
	assert.Equal(t, 503, apperrors.HTTPStatus(err))
}

func TestListing_ListTermsErrorIsUnavailable(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, "product_brand").Return(true, nil)
	repo.On("ListTerms", mock.Anything, "product_brand").Return(nil, errors.New("db down"))
	svc := newTestService(repo, nil)

	_, err := svc.Listing(context.Background(), domain.KindBrands)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestPage_ElevenBrands(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, "product_brand").Return(true, nil)
	repo.On("ListTerms", mock.Anything, "product_brand").Return(brandTerms(11), nil)
	expectAllInStock(repo)
	svc := newTestService(repo, nil)

	first, err := svc.InitialPage(context.Background(), domain.KindBrands)
	require.NoError(t, err)
	assert.Len(t, first.Items, 9)
	assert.Equal(t, 11, first.Total)
	assert.True(t, first.HasMore)
	assert.Equal(t, 9, first.NextOffset)

	second, err := svc.Page(context.Background(), domain.KindBrands, first.NextOffset, 9)
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "Brand j", second.Items[0].Name)
	assert.Equal(t, "Brand k", second.Items[1].Name)
	assert.False(t, second.HasMore)
	assert.Equal(t, 11, second.NextOffset)

	beyond, err := svc.Page(context.Background(), domain.KindBrands, 50, 9)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.False(t, beyond.HasMore)
}

func TestLoadMore_OffsetNearMaxInt(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, "product_brand").Return(true, nil)
	repo.On("ListTerms", mock.Anything, "product_brand").Return(brandTerms(11), nil)
	expectAllInStock(repo)
	svc := newTestService(repo, nil)

	page, err := svc.LoadMore(context.Background(), domain.KindBrands, math.MaxInt-1, 9)
	require.NoError(t, err)
	require.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 11, page.Total)
	assert.False(t, page.HasMore)
}

func TestPage_RejectsBadBounds(t *testing.T) {
	svc := newTestService(new(mockCatalogRepository), nil)

	tests := []struct {
		name          string
		offset, limit int
	}{
		{"negative offset", -1, 9},
		{"zero limit", 0, 0},
		{"limit above max", 0, 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Page(context.Background(), domain.KindBrands, tt.offset, tt.limit)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestLoadMore_PublishesPageServed(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, "product_brand").Return(true, nil)
	repo.On("ListTerms", mock.Anything, "product_brand").Return(brandTerms(3), nil)
	expectAllInStock(repo)

	pub := new(mockPublisher)
	pub.On("PublishPageServed", mock.Anything, mock.MatchedBy(func(d event.PageServedData) bool {
		return d.Kind == domain.KindBrands &&
			d.Taxonomy == "product_brand" &&
			d.Offset == 1 && d.Items == 2 && d.Total == 3 &&
			d.SessionID == "sess-1" &&
			assert.ObjectsAreEqual([]string{"brand-b", "brand-c"}, d.ItemSlugs)
	})).Return(nil).Once()
	svc := newTestService(repo, pub)

	ctx := logger.WithSessionID(context.Background(), "sess-1")
	page, err := svc.LoadMore(ctx, domain.KindBrands, 1, 9)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	pub.AssertExpectations(t)
}

func TestLoadMore_PublishFailureDoesNotFailRequest(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, "product_brand").Return(true, nil)
	repo.On("ListTerms", mock.Anything, "product_brand").Return(brandTerms(1), nil)
	expectAllInStock(repo)

	pub := new(mockPublisher)
	pub.On("PublishPageServed", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	svc := newTestService(repo, pub)

	page, err := svc.LoadMore(context.Background(), domain.KindBrands, 0, 9)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestLoadMore_ErrorSkipsPublish(t *testing.T) {
	pub := new(mockPublisher)
	svc := newTestService(new(mockCatalogRepository), pub)

	_, err := svc.LoadMore(context.Background(), domain.KindBrands, -5, 9)
	require.Error(t, err)
	pub.AssertNotCalled(t, "PublishPageServed", mock.Anything, mock.Anything)
}

func TestWarmUp_LogsAndContinues(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("TaxonomyExists", mock.Anything, "product_brand").Return(false, errors.New("timeout"))
	repo.On("TaxonomyExists", mock.Anything, "product_cat").Return(true, nil)
	svc := newTestService(repo, nil)

	svc.WarmUp(context.Background())

	name, err := svc.Taxonomy(context.Background(), domain.KindTypes)
	require.NoError(t, err)
	assert.Equal(t, "product_cat", name)
	repo.AssertNumberOfCalls(t, "TaxonomyExists", 2)
}

func TestPing(t *testing.T) {
	repo := new(mockCatalogRepository)
	repo.On("Ping", mock.Anything).Return(nil)
	svc := newTestService(repo, nil)

	assert.NoError(t, svc.Ping(context.Background()))
}
