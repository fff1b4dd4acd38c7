package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sefer-erp/sefer-erp/internal/billing"
	"github.com/sefer-erp/sefer-erp/internal/extrawork"
	"github.com/sefer-erp/sefer-erp/internal/masterdata"
	"github.com/sefer-erp/sefer-erp/internal/observability"
	"github.com/sefer-erp/sefer-erp/internal/shared"
	"github.com/sefer-erp/sefer-erp/internal/timesheet"
	"github.com/sefer-erp/sefer-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	MasterDataHandler *masterdata.Handler
	TimesheetHandler  *timesheet.Handler
	ExtraWorkHandler  *extrawork.Handler
	BillingHandler    *billing.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.MasterDataHandler != nil {
		params.MasterDataHandler.MountRoutes(r)
	}
	if params.TimesheetHandler != nil {
		params.TimesheetHandler.MountRoutes(r)
	}
	if params.ExtraWorkHandler != nil {
		params.ExtraWorkHandler.MountRoutes(r)
	}
	if params.BillingHandler != nil {
		params.BillingHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
