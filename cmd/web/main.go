package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

// buildDashboardPage runs the first pass with every filter option selected.
// A halt is not an error here; it is shown as the page warning.
func buildDashboardPage(ctx context.Context, analytics *services.Analytics) (templates.DashboardPage, error) {
	var page templates.DashboardPage

	sel, err := analytics.DefaultSelection(ctx)
	if err != nil {
		return page, err
	}
	opts, err := analytics.Options(ctx)
	if err != nil {
		return page, err
	}
	preview, err := analytics.Preview(ctx, 0)
	if err != nil {
		return page, err
	}

	page.Selection = sel
	page.Options = opts
	page.Preview = preview

	dash, err := analytics.Run(ctx, sel)
	switch {
	case err == nil:
		page.Dashboard = dash
	case errors.Is(err, services.ErrInvalidDateRange), errors.Is(err, services.ErrNoData):
		page.Warning = err.Error()
	default:
		return page, err
	}
	return page, nil
}

func newDashboardHandler(analytics *services.Analytics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		page, err := buildDashboardPage(ctx, analytics)
		if err != nil {
			logger.ErrorContext(ctx, "build dashboard page", "error", err)
			http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if err := templates.Dashboard(page).Render(ctx, w); err != nil {
			logger.Error("render dashboard", "error", err)
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	metrics := observability.NewMetrics()
	cache := services.NewDatasetCache(services.LoadDataset, cfg.Dataset.LoadTimeout, metrics, logger)
	analytics := services.NewAnalytics(cfg.Dataset.CSVFile, cfg.Dataset.PreviewRows, cache, metrics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Dataset.LoadTimeout)
	defer cancel()

	// A missing or malformed source file is fatal at startup.
	start := time.Now()
	ds, err := analytics.Dataset(ctx)
	if err != nil {
		logger.Error("failed to load CSV data", "path", cfg.Dataset.CSVFile, "error", err)
		os.Exit(1)
	}
	logger.Info("CSV data loaded successfully",
		"records", ds.Len(),
		"dropped_rows", ds.DroppedRows,
		"duration", time.Since(start),
	)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: newDashboardHandler(analytics, logger),
	}

	srv := server.NewServer(analytics, metrics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.Instrument(metrics),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "stats", analytics.Stats())
		cache.Clear()
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
