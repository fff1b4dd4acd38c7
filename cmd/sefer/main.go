package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/sefer-erp/sefer-erp/internal/app"
	"github.com/sefer-erp/sefer-erp/internal/billing"
	"github.com/sefer-erp/sefer-erp/internal/extrawork"
	"github.com/sefer-erp/sefer-erp/internal/masterdata"
	"github.com/sefer-erp/sefer-erp/internal/observability"
	"github.com/sefer-erp/sefer-erp/internal/plans"
	"github.com/sefer-erp/sefer-erp/internal/platform/cache"
	"github.com/sefer-erp/sefer-erp/internal/platform/db"
	"github.com/sefer-erp/sefer-erp/internal/shared"
	"github.com/sefer-erp/sefer-erp/internal/timesheet"
	"github.com/sefer-erp/sefer-erp/jobs"
	"github.com/sefer-erp/sefer-erp/migrations"
	"github.com/sefer-erp/sefer-erp/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.PGDSN, migrations.FS); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(dbpool)
	approvalRecorder := shared.NewApprovalRecorder(dbpool, logger)
	metrics := observability.NewMetrics()

	masterdataRepo := masterdata.NewRepository(dbpool)
	masterdataService := masterdata.NewService(masterdataRepo, auditLogger, plans.LimitsFor(plans.Plan(cfg.Plan)))
	masterdataHandler := masterdata.NewHandler(logger, masterdataService)

	timesheetRepo := timesheet.NewRepository(dbpool)
	timesheetService := timesheet.NewService(timesheetRepo, cfg.RefreshSnapshotOnUpdate)
	timesheetHandler := timesheet.NewHandler(logger, timesheetService)

	extraWorkRepo := extrawork.NewRepository(dbpool)
	extraWorkService := extrawork.NewService(extraWorkRepo, approvalRecorder)
	extraWorkHandler := extrawork.NewHandler(logger, extraWorkService)

	billingRepo := billing.NewRepository(dbpool)
	billingService := billing.NewService(billingRepo)
	assembler := billing.NewAssembler(billingService, billingRepo)
	reportCache := billing.NewReportCache(assembler, redisClient, logger, cfg.ReportCacheTTL)
	reportCache.OnBuild(metrics.ReportBuilt)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	renderer, err := report.NewRenderer(pdfClient)
	if err != nil {
		logger.Error("init report renderer", slog.Any("error", err))
		os.Exit(1)
	}
	billingHandler := billing.NewHandler(logger, reportCache, renderer)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		MasterDataHandler: masterdataHandler,
		TimesheetHandler:  timesheetHandler,
		ExtraWorkHandler:  extraWorkHandler,
		BillingHandler:    billingHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
