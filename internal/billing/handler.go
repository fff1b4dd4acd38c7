package billing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// Renderer turns an assembled report into a PDF document.
type Renderer interface {
	Render(ctx context.Context, report *Report) ([]byte, error)
}

// Handler wires HTTP endpoints for reports.
type Handler struct {
	logger   *slog.Logger
	cache    *ReportCache
	renderer Renderer
}

// NewHandler constructs a Handler instance. renderer may be nil; PDF
// endpoints then answer 503.
func NewHandler(logger *slog.Logger, cache *ReportCache, renderer Renderer) *Handler {
	return &Handler{logger: logger, cache: cache, renderer: renderer}
}

// MountRoutes registers report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/suppliers/{id}", h.supplierReport)
		r.Get("/suppliers/{id}/pdf", h.supplierReportPDF)
		r.Get("/factory/{id}", h.factoryReport)
		r.Get("/factory/{id}/pdf", h.factoryReportPDF)
	})
}

func (h *Handler) supplierReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.buildSupplier(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) supplierReportPDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.buildSupplier(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.renderPDF(w, r, report)
}

func (h *Handler) factoryReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.buildFactory(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) factoryReportPDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.buildFactory(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.renderPDF(w, r, report)
}

func (h *Handler) buildSupplier(r *http.Request) (*Report, error) {
	if _, ok := shared.ActorFromContext(r.Context()); !ok {
		return nil, httpx.ErrUnauthorized
	}
	id, period, err := reportParams(r)
	if err != nil {
		return nil, err
	}
	return h.cache.SupplierReport(r.Context(), id, period)
}

// buildFactory gates the factory-priced report behind the view
// capability; the payload exposes factory prices on every row.
func (h *Handler) buildFactory(r *http.Request) (*Report, error) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		return nil, httpx.ErrUnauthorized
	}
	if !actor.Role.CanViewFactoryPrice() {
		return nil, fmt.Errorf("%w: role %s may not view factory reports", httpx.ErrForbidden, actor.Role)
	}
	id, period, err := reportParams(r)
	if err != nil {
		return nil, err
	}
	return h.cache.FactoryReport(r.Context(), id, period)
}

func (h *Handler) renderPDF(w http.ResponseWriter, r *http.Request, report *Report) {
	if h.renderer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Rendering Unavailable", "PDF rendering is not configured")
		return
	}
	pdf, err := h.renderer.Render(r.Context(), report)
	if err != nil {
		h.logger.Error("render report", slog.String("number", report.Number), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Rendering Failed", "PDF renderer did not produce a document")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Number+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func reportParams(r *http.Request) (int64, shared.Period, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.Period{}, fmt.Errorf("%w: invalid scope id", httpx.ErrValidation)
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, shared.Period{}, fmt.Errorf("%w: year query parameter required", httpx.ErrValidation)
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return 0, shared.Period{}, fmt.Errorf("%w: month query parameter required", httpx.ErrValidation)
	}
	period, err := shared.NewPeriod(year, month)
	if err != nil {
		return 0, shared.Period{}, err
	}
	return id, period, nil
}
