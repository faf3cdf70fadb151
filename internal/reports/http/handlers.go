package reporthttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/guriri-express/dispatch/internal/platform/httpx"
	"github.com/guriri-express/dispatch/internal/reports"
	"github.com/guriri-express/dispatch/internal/shared"
)

const requestTimeout = 10 * time.Second

// HeaderReportID echoes the id under which a report run was logged.
const HeaderReportID = "X-Report-Id"

// ReportService defines the report contract used by the handler.
type ReportService interface {
	CompanyReport(ctx context.Context, filters reports.Filters, caller shared.Caller) (reports.CompanyReport, error)
	ClientReport(ctx context.Context, clientID string, filters reports.Filters, caller shared.Caller) (reports.ClientReport, error)
	MotoboyReport(ctx context.Context, motoboyID string, filters reports.Filters, caller shared.Caller) (reports.MotoboyReport, error)
	OrdersReport(ctx context.Context, filters reports.Filters, caller shared.Caller) (reports.OrdersReport, error)
}

// Handler serves the financial report endpoints.
type Handler struct {
	logger  *slog.Logger
	service ReportService
}

// NewHandler constructs the report HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) handleCompany(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "company", func(ctx context.Context, f reports.Filters, c shared.Caller) (any, error) {
		return h.service.CompanyReport(ctx, f, c)
	})
}

func (h *Handler) handleClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	h.serve(w, r, "client", func(ctx context.Context, f reports.Filters, c shared.Caller) (any, error) {
		return h.service.ClientReport(ctx, clientID, f, c)
	})
}

func (h *Handler) handleMotoboy(w http.ResponseWriter, r *http.Request) {
	motoboyID := chi.URLParam(r, "motoboyID")
	h.serve(w, r, "motoboy", func(ctx context.Context, f reports.Filters, c shared.Caller) (any, error) {
		return h.service.MotoboyReport(ctx, motoboyID, f, c)
	})
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "orders", func(ctx context.Context, f reports.Filters, c shared.Caller) (any, error) {
		return h.service.OrdersReport(ctx, f, c)
	})
}

type reportFunc func(ctx context.Context, filters reports.Filters, caller shared.Caller) (any, error)

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, kind string, run reportFunc) {
	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	reportID := uuid.NewString()
	w.Header().Set(HeaderReportID, reportID)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filters := reports.ParseQuery(r.URL.Query())
	data, err := run(ctx, filters, caller)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, shared.ErrAccessDenied) || errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrMissingCallerID) {
			level = slog.LevelWarn
		}
		h.logger.Log(ctx, level, "report failed",
			slog.String("report", kind),
			slog.String("report_id", reportID),
			slog.String("role", string(caller.Role)),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Debug("report served",
		slog.String("report", kind),
		slog.String("report_id", reportID),
		slog.String("role", string(caller.Role)))
	httpx.OK(w, data)
}
