package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var sectionTemplate = template.Must(template.ParseFS(templateFS, "templates/categories.html.tmpl"))

// Labels are the user-visible strings of the categories section.
type Labels struct {
	Title      string
	BrandsTab  string
	TypesTab   string
	Button     string
	ReadMore   string
	ReadLess   string
	EmptyState string
	ErrorState string
	LoadMore   string
}

// SectionHandler renders the categories section fragment.
type SectionHandler struct {
	service ListingService
	tokens  TokenIssuer
	labels  Labels
	logger  *slog.Logger
}

// NewSectionHandler creates a new section HTTP handler.
func NewSectionHandler(service ListingService, tokens TokenIssuer, labels Labels, logger *slog.Logger) *SectionHandler {
	return &SectionHandler{
		service: service,
		tokens:  tokens,
		labels:  labels,
		logger:  logger,
	}
}

// sectionBootstrap is embedded as JSON for the client script.
type sectionBootstrap struct {
	Token       string                `json:"token"`
	ExpiresAt   time.Time             `json:"expires_at"`
	LoadMoreURL string                `json:"load_more_url"`
	InitialURL  string                `json:"initial_url"`
	PageSize    int                   `json:"page_size"`
	Brands      sectionBootstrapState `json:"brands"`
}

type sectionBootstrapState struct {
	NextOffset int  `json:"next_offset"`
	HasMore    bool `json:"has_more"`
	Total      int  `json:"total"`
}

type sectionView struct {
	Labels      Labels
	Brands      pagination.Page[domain.ListingEntry]
	Failed      bool
	LoadMoreURL string
	InitialURL  string
	Bootstrap   sectionBootstrap
}

// Categories handles GET /storefront/sections/categories
// Brands are rendered server side; the product types tab is loaded on demand.
// A failing catalog still renders the section, with the error state and a
// 503 status.
func (h *SectionHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK

	page, err := h.service.InitialPage(ctx, domain.KindBrands)
	if err != nil {
		if !errors.Is(err, apperrors.ErrServiceUnavail) {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		logger.FromContext(ctx).WarnContext(ctx, "rendering categories section without brands",
			slog.String("error", err.Error()),
		)
		status = http.StatusServiceUnavailable
		page = pagination.Window([]domain.ListingEntry{}, 0, h.service.PageSize())
	}

	token, expiresAt, err := h.tokens.Issue(logger.SessionIDFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view := sectionView{
		Labels:      h.labels,
		Brands:      page,
		Failed:      status != http.StatusOK,
		LoadMoreURL: loadMorePath,
		InitialURL:  initialPathTemplate,
		Bootstrap: sectionBootstrap{
			Token:       token,
			ExpiresAt:   expiresAt,
			LoadMoreURL: loadMorePath,
			InitialURL:  initialPathTemplate,
			PageSize:    h.service.PageSize(),
			Brands: sectionBootstrapState{
				NextOffset: page.NextOffset,
				HasMore:    page.HasMore,
				Total:      page.Total,
			},
		},
	}

	var buf bytes.Buffer
	if err := sectionTemplate.Execute(&buf, view); err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}

	httputil.WriteHTML(w, status, buf.Bytes())
}
