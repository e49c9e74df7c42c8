package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

const defaultPreviewRows = 5

type Analytics struct {
	csvPath     string
	previewRows int
	cache       *DatasetCache
	metrics     *observability.Metrics
	logger      *slog.Logger

	runs        atomic.Int64
	mu          sync.RWMutex
	lastOutcome string
	lastRunAt   time.Time
}

// NewAnalytics serves dashboards for the dataset at csvPath. metrics may be nil.
func NewAnalytics(csvPath string, previewRows int, cache *DatasetCache, metrics *observability.Metrics, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	if previewRows <= 0 {
		previewRows = defaultPreviewRows
	}
	return &Analytics{
		csvPath:     csvPath,
		previewRows: previewRows,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

func (a *Analytics) Dataset(ctx context.Context) (*models.Dataset, error) {
	return a.cache.Get(ctx, a.csvPath)
}

// Run executes one full pass: load, validate, filter, aggregate, present.
// It returns ErrInvalidDateRange or ErrNoData when the pass has to halt;
// no partial dashboard is returned in that case.
func (a *Analytics) Run(ctx context.Context, sel models.Selection) (*models.Dashboard, error) {
	ctx, span := observability.StartSpan(ctx, "dashboard.run")
	defer span.End(ctx, a.logger)
	start := time.Now()

	dash, records, err := a.run(ctx, sel)

	outcome := outcomeOf(err)
	span.Set("outcome", outcome)
	span.Set("records", records)
	if outcome == observability.OutcomeError {
		span.Fail(err)
	}
	a.record(outcome, time.Since(start))

	if err != nil {
		return nil, err
	}

	a.logger.DebugContext(ctx, "dashboard recomputed",
		"records", records,
		"start", dash.Range.Start.Format(dateLabelLayout),
		"end", dash.Range.End.Format(dateLabelLayout),
	)
	return dash, nil
}

func (a *Analytics) run(ctx context.Context, sel models.Selection) (*models.Dashboard, int, error) {
	ds, err := a.Dataset(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load dataset: %w", err)
	}

	rng, err := ValidateSelection(ds, sel)
	if err != nil {
		return nil, 0, err
	}

	subset := FilterTransactions(ds, sel, rng)
	if len(subset) == 0 {
		return nil, 0, ErrNoData
	}

	return Present(rng, Aggregate(subset)), len(subset), nil
}

func (a *Analytics) Options(ctx context.Context) (models.FilterOptions, error) {
	ds, err := a.Dataset(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return FilterOptions(ds), nil
}

func (a *Analytics) DefaultSelection(ctx context.Context) (models.Selection, error) {
	ds, err := a.Dataset(ctx)
	if err != nil {
		return models.Selection{}, err
	}
	return DefaultSelection(ds), nil
}

// Preview returns the first n raw rows of the unfiltered dataset. n <= 0
// uses the configured default.
func (a *Analytics) Preview(ctx context.Context, n int) (models.Preview, error) {
	ds, err := a.Dataset(ctx)
	if err != nil {
		return models.Preview{}, err
	}
	if n <= 0 {
		n = a.previewRows
	}
	return models.Preview{Header: ds.Header, Rows: ds.Head(n)}, nil
}

// Reload drops the cached dataset and parses the source file again.
func (a *Analytics) Reload(ctx context.Context) error {
	a.cache.Invalidate(a.csvPath)
	if _, err := a.Dataset(ctx); err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}
	return nil
}

// Stats is for monitoring.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	lastOutcome, lastRunAt := a.lastOutcome, a.lastRunAt
	a.mu.RUnlock()

	stats := map[string]any{
		"csv_path":     a.csvPath,
		"runs":         a.runs.Load(),
		"last_outcome": lastOutcome,
		"last_run_at":  lastRunAt,
		"cache":        a.cache.Stats(),
	}

	if ds, ok := a.cache.Peek(a.csvPath); ok {
		stats["record_count"] = ds.Len()
		stats["dropped_rows"] = ds.DroppedRows
		stats["min_date"] = ds.MinDate.Format(dateLabelLayout)
		stats["max_date"] = ds.MaxDate.Format(dateLabelLayout)
		stats["loaded_at"] = ds.LoadedAt
	}
	return stats
}

func (a *Analytics) record(outcome string, d time.Duration) {
	a.runs.Add(1)
	a.mu.Lock()
	a.lastOutcome = outcome
	a.lastRunAt = time.Now()
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.RecordRun(outcome, d)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, ErrInvalidDateRange):
		return observability.OutcomeInvalidDateRange
	case errors.Is(err, ErrNoData):
		return observability.OutcomeNoData
	default:
		return observability.OutcomeError
	}
}
