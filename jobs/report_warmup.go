package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sefer-erp/sefer-erp/internal/billing"
	jobmetrics "github.com/sefer-erp/sefer-erp/internal/jobs"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// ReportWarmer pre-builds the previous period's billing reports so the
// first month-end request serves from cache.
type ReportWarmer struct {
	pool    *pgxpool.Pool
	cache   *billing.ReportCache
	logger  *slog.Logger
	metrics *jobmetrics.Metrics

	// clock overrides time.Now in tests.
	clock func() time.Time
}

// NewReportWarmer constructs a ReportWarmer. metrics may be nil.
func NewReportWarmer(pool *pgxpool.Pool, cache *billing.ReportCache, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmer {
	return &ReportWarmer{pool: pool, cache: cache, logger: logger, metrics: metrics}
}

// Handle processes TaskReportWarmup tasks. Individual report failures
// are logged and skipped; the task itself only fails on bad payloads
// or scope listing errors.
func (w *ReportWarmer) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := w.metrics.Track("report_warmup")
	return tracker.End(w.handle(ctx, t))
}

func (w *ReportWarmer) handle(ctx context.Context, t *asynq.Task) error {
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	period := w.periodFor(payload)

	supplierIDs, err := w.listIDs(ctx, `SELECT id FROM suppliers ORDER BY id`)
	if err != nil {
		return err
	}
	for _, id := range supplierIDs {
		if _, err := w.cache.SupplierReport(ctx, id, period); err != nil {
			w.logger.Warn("warm supplier report",
				slog.Int64("supplier_id", id), slog.String("period", period.String()), slog.Any("error", err))
		}
	}

	projectIDs, err := w.listIDs(ctx, `SELECT id FROM projects WHERE active ORDER BY id`)
	if err != nil {
		return err
	}
	for _, id := range projectIDs {
		if _, err := w.cache.FactoryReport(ctx, id, period); err != nil {
			w.logger.Warn("warm factory report",
				slog.Int64("project_id", id), slog.String("period", period.String()), slog.Any("error", err))
		}
	}

	w.logger.Info("report warmup done",
		slog.String("period", period.String()),
		slog.Int("suppliers", len(supplierIDs)),
		slog.Int("projects", len(projectIDs)))
	return nil
}

// periodFor resolves the payload period. Zero values mean the month
// that just closed, since billing runs after month end.
func (w *ReportWarmer) periodFor(payload ReportWarmupPayload) shared.Period {
	if payload.Year != 0 && payload.Month != 0 {
		return shared.Period{Year: payload.Year, Month: time.Month(payload.Month)}
	}
	return previousPeriod(w.now())
}

func (w *ReportWarmer) now() time.Time {
	if w.clock != nil {
		return w.clock()
	}
	return time.Now().UTC()
}

// previousPeriod steps back through the first of the month. Subtracting
// a calendar month from a late day would normalize through short months
// (March 31 minus one month lands in March again).
func previousPeriod(now time.Time) shared.Period {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, 0, -1)
	return shared.Period{Year: prev.Year(), Month: prev.Month()}
}

func (w *ReportWarmer) listIDs(ctx context.Context, query string) ([]int64, error) {
	rows, err := w.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
