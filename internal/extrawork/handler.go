package extrawork

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/platform/httpx"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// Handler wires HTTP endpoints for the ledger.
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

// MountRoutes registers ledger routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/extra-work", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
		r.Post("/{id}/approve", h.approve)
	})
}

type extraWorkRequest struct {
	WorkDate      string `json:"work_date" validate:"required"`
	Description   string `json:"description" validate:"required"`
	SupplierPrice string `json:"supplier_price" validate:"required"`
	FactoryPrice  string `json:"factory_price"`
	SupplierID    int64  `json:"supplier_id" validate:"required"`
	VehicleID     int64  `json:"vehicle_id" validate:"required"`
	ProjectID     int64  `json:"project_id" validate:"required"`
	Status        string `json:"status" validate:"omitempty,oneof=PENDING_APPROVAL APPROVED"`
}

func (h *Handler) decodeInput(r *http.Request) (Input, error) {
	var req extraWorkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return Input{}, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation)
	}
	if err := h.validator.Struct(req); err != nil {
		return Input{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	date, err := time.ParseInLocation("2006-01-02", req.WorkDate, time.UTC)
	if err != nil {
		return Input{}, fmt.Errorf("%w: work_date must be YYYY-MM-DD", httpx.ErrValidation)
	}
	supplierPrice, err := money.Parse(req.SupplierPrice)
	if err != nil {
		return Input{}, fmt.Errorf("%w: supplier_price: %s", httpx.ErrValidation, err.Error())
	}
	input := Input{
		WorkDate:      date,
		Description:   req.Description,
		SupplierPrice: supplierPrice,
		SupplierID:    req.SupplierID,
		VehicleID:     req.VehicleID,
		ProjectID:     req.ProjectID,
		Status:        Status(req.Status),
	}
	if req.FactoryPrice != "" {
		fp, err := money.Parse(req.FactoryPrice)
		if err != nil {
			return Input{}, fmt.Errorf("%w: factory_price: %s", httpx.ErrValidation, err.Error())
		}
		input.FactoryPrice = &fp
	}
	return input, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	input, err := h.decodeInput(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	record, err := h.service.Create(r.Context(), actor, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := recordID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	input, err := h.decodeInput(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	record, err := h.service.Update(r.Context(), actor, id, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := recordID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	record, err := h.service.Approve(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := recordID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := recordID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	record, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	q := r.URL.Query()
	filters := ListFilters{
		Page:       intQuery(q.Get("page")),
		PerPage:    intQuery(q.Get("per_page")),
		SupplierID: int64Query(q.Get("supplier_id")),
		ProjectID:  int64Query(q.Get("project_id")),
		Year:       intQuery(q.Get("year")),
		Month:      intQuery(q.Get("month")),
	}
	records, total, err := h.service.List(r.Context(), actor, filters)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": records, "total": total})
}

func recordID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid extra work id", httpx.ErrValidation)
	}
	return id, nil
}

func intQuery(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func int64Query(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
