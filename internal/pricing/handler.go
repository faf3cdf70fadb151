package pricing

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guriri-express/dispatch/internal/commission"
	"github.com/guriri-express/dispatch/internal/platform/httpx"
	"github.com/guriri-express/dispatch/internal/shared"
)

// Handler serves the pricing endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the pricing HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers pricing endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/api/pricing/allowed-values", h.handleAllowedValues)
	r.Post("/api/pricing/quote", h.handleQuote)
}

func (h *Handler) handleAllowedValues(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" && caller.Role == shared.RoleClient {
		clientID = caller.ID
	}
	if clientID == "" {
		httpx.RespondError(w, fmt.Errorf("%w: clientId is required", httpx.ErrValidation))
		return
	}
	tier, err := h.service.AllowedValues(r.Context(), clientID, caller)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, tier)
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req QuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", httpx.ErrValidation))
		return
	}
	if req.ClientID == "" && caller.Role == shared.RoleClient {
		req.ClientID = caller.ID
	}
	quote, err := h.service.Quote(r.Context(), req, caller)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, quote)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrInvalidRequest) || errors.Is(err, commission.ErrInvalidFeeTier) || errors.Is(err, commission.ErrInvalidAmount) {
		h.logger.Info("quote rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if !errors.Is(err, shared.ErrAccessDenied) && !errors.Is(err, shared.ErrNotFound) {
		h.logger.Error("pricing failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
