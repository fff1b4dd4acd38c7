package timesheet

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// Handler wires HTTP endpoints for the grid.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers grid routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/timesheets", func(r chi.Router) {
		r.Post("/", h.getOrCreate)
		r.Get("/{id}", h.grid)
		r.Put("/{id}/entries", h.writeEntry)
		r.Post("/{id}/entries/bulk", h.writeEntriesBulk)
		r.Post("/{id}/range-fill", h.applyRangeFill)
	})
}

type getOrCreateRequest struct {
	ProjectID int64 `json:"project_id" validate:"required"`
	VehicleID int64 `json:"vehicle_id" validate:"required"`
	Year      int   `json:"year" validate:"required"`
	Month     int   `json:"month" validate:"required,min=1,max=12"`
}

func (h *Handler) getOrCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.ActorFromContext(r.Context()); !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req getOrCreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	period, err := shared.NewPeriod(req.Year, req.Month)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ts, err := h.service.GetOrCreate(r.Context(), req.ProjectID, req.VehicleID, period)
	if err != nil {
		h.logger.Error("get or create timesheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ts)
}

func (h *Handler) grid(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := timesheetID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ts, entries, err := h.service.Grid(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"timesheet": ts, "entries": redactEntries(actor, entries)})
}

type writeEntryRequest struct {
	Date      string `json:"date" validate:"required"`
	RouteID   int64  `json:"route_id" validate:"required"`
	TripCount int    `json:"trip_count" validate:"min=0"`
}

func (h *Handler) writeEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := timesheetID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req writeEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.WriteEntry(r.Context(), id, date, req.RouteID, req.TripCount)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if entry == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.JSON(w, http.StatusOK, redactEntry(actor, entry))
}

type bulkWriteRequest struct {
	Entries []writeEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

func (h *Handler) writeEntriesBulk(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.ActorFromContext(r.Context()); !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := timesheetID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req bulkWriteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	writes := make([]EntryWrite, 0, len(req.Entries))
	for _, item := range req.Entries {
		date, err := parseDate(item.Date)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		writes = append(writes, EntryWrite{Date: date, RouteID: item.RouteID, TripCount: item.TripCount})
	}
	result, err := h.service.WriteEntriesBulk(r.Context(), id, writes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

type rangeFillRequest struct {
	RouteID         int64 `json:"route_id" validate:"required"`
	StartDay        int   `json:"start_day" validate:"required,min=1,max=31"`
	EndDay          int   `json:"end_day" validate:"required,min=1,max=31"`
	TripCountPerDay int   `json:"trip_count_per_day" validate:"min=0"`
	IncludeWeekends bool  `json:"include_weekends"`
}

func (h *Handler) applyRangeFill(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.ActorFromContext(r.Context()); !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := timesheetID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req rangeFillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.ApplyRangeFill(r.Context(), id, req.RouteID, req.StartDay, req.EndDay, req.TripCountPerDay, req.IncludeWeekends)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// Factory prices leave the grid only for actors holding the view
// capability. The snapshot itself stays intact in storage.
func redactEntry(actor shared.Actor, entry *Entry) *Entry {
	if actor.Role.CanViewFactoryPrice() {
		return entry
	}
	clone := *entry
	clone.Snapshot.FactoryUnitPrice = nil
	return &clone
}

func redactEntries(actor shared.Actor, entries []Entry) []Entry {
	if actor.Role.CanViewFactoryPrice() {
		return entries
	}
	out := make([]Entry, len(entries))
	for i := range entries {
		out[i] = *redactEntry(actor, &entries[i])
	}
	return out
}

func timesheetID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid timesheet id", httpx.ErrValidation)
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", httpx.ErrValidation, s)
	}
	return date, nil
}
