package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/security"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

// TokenHeader carries the anti-forgery token on load-more requests.
const TokenHeader = "X-Storefront-Token"

// ListingService is the listing behaviour the handlers need.
type ListingService interface {
	Page(ctx context.Context, kind domain.Kind, offset, limit int) (pagination.Page[domain.ListingEntry], error)
	InitialPage(ctx context.Context, kind domain.Kind) (pagination.Page[domain.ListingEntry], error)
	LoadMore(ctx context.Context, kind domain.Kind, offset, limit int) (pagination.Page[domain.ListingEntry], error)
	PageSize() int
	MaxLimit() int
}

// TokenIssuer issues and verifies anti-forgery tokens.
type TokenIssuer interface {
	Issue(sessionID string) (string, time.Time, error)
	Verify(token, sessionID string) (*security.Claims, error)
}

// ListingHandler handles HTTP requests for listing endpoints.
type ListingHandler struct {
	service ListingService
	tokens  TokenIssuer
	logger  *slog.Logger
}

// NewListingHandler creates a new listing HTTP handler.
func NewListingHandler(service ListingService, tokens TokenIssuer, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		tokens:  tokens,
		logger:  logger,
	}
}

// --- Request / Response DTOs ---

// LoadMoreRequest is the body of a load-more request. It is accepted as JSON
// or as a form post.
type LoadMoreRequest struct {
	Kind   string `json:"kind" validate:"required,oneof=brands types"`
	Offset *int   `json:"offset" validate:"required,gte=0"`
	Limit  int    `json:"limit" validate:"required,gt=0"`
	Nonce  string `json:"nonce"`
}

// TokenResponse carries a freshly issued anti-forgery token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InitialResponse is the first page of a listing plus the token needed to
// request the following pages.
type InitialResponse struct {
	pagination.Page[domain.ListingEntry]
	Kind      domain.Kind `json:"kind"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// --- Handlers ---

// Initial handles GET /api/v1/storefront/listings/{kind}/initial
func (h *ListingHandler) Initial(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		httputil.WriteValidationError(w, r, validator.NewFieldError("kind", "must be one of: brands types"))
		return
	}

	limit, err := pagination.LimitFromRequest(r, h.service.PageSize(), h.service.MaxLimit())
	if err != nil {
		var pe *pagination.ParamError
		if errors.As(err, &pe) {
			err = validator.NewFieldError(pe.Param, pe.Message)
		}
		httputil.WriteValidationError(w, r, err)
		return
	}

	page, err := h.service.Page(r.Context(), kind, 0, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	token, expiresAt, err := h.tokens.Issue(logger.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: InitialResponse{
		Page:      page,
		Kind:      kind,
		Token:     token,
		ExpiresAt: expiresAt,
	}})
}

// LoadMore handles POST /api/v1/storefront/listings/load-more
// The anti-forgery token is checked before the body is validated or any
// catalog data is read.
func (h *ListingHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	req, decodeErr := decodeLoadMore(r)

	token := r.Header.Get(TokenHeader)
	if token == "" {
		token = req.Nonce
	}
	if _, err := h.tokens.Verify(token, logger.SessionIDFromContext(r.Context())); err != nil {
		logger.FromContext(r.Context()).WarnContext(r.Context(), "load-more security check failed",
			slog.String("error", err.Error()),
		)
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if decodeErr != nil {
		httputil.WriteValidationError(w, r, decodeErr)
		return
	}
	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	if req.Limit > h.service.MaxLimit() {
		httputil.WriteValidationError(w, r,
			validator.NewFieldError("limit", fmt.Sprintf("must be at most %d", h.service.MaxLimit())))
		return
	}

	page, err := h.service.LoadMore(r.Context(), domain.Kind(req.Kind), *req.Offset, req.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// Token handles GET /api/v1/storefront/token
func (h *ListingHandler) Token(w http.ResponseWriter, r *http.Request) {
	token, expiresAt, err := h.tokens.Issue(logger.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}})
}

// decodeLoadMore reads a load-more body. The returned request is usable for
// its nonce even when decoding fails part way.
func decodeLoadMore(r *http.Request) (LoadMoreRequest, error) {
	var req LoadMoreRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("parse form: %w", err)
		}
		req.Kind = r.PostForm.Get("kind")
		req.Nonce = r.PostForm.Get("nonce")
		if raw := r.PostForm.Get("offset"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return req, validator.NewFieldError("offset", "must be an integer")
			}
			req.Offset = &v
		}
		if raw := r.PostForm.Get("limit"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return req, validator.NewFieldError("limit", "must be an integer")
			}
			req.Limit = v
		}
		return req, nil
	}

	err := validator.DecodeJSON(r, &req)
	return req, err
}
