package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

func newTestAnalytics(t *testing.T, path string) (*Analytics, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	cache := NewDatasetCache(LoadDataset, time.Minute, metrics, quietLogger())
	return NewAnalytics(path, 2, cache, metrics, quietLogger()), metrics
}

func allSelection(a *Analytics, t *testing.T) models.Selection {
	t.Helper()
	sel, err := a.DefaultSelection(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return sel
}

func TestAnalytics_Run_Scenario(t *testing.T) {
	a, metrics := newTestAnalytics(t, writeCSV(t, scenarioCSV))
	sel := allSelection(a, t)
	sel.Dates = []time.Time{day(2024, 1, 1), day(2024, 1, 2)}

	dash, err := a.Run(context.Background(), sel)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if dash.Aggregates.Summary.TotalSales != 15 {
		t.Errorf("TotalSales = %v, want 15", dash.Aggregates.Summary.TotalSales)
	}
	if dash.Aggregates.Summary.Records != 2 {
		t.Errorf("Records = %d, want 2", dash.Aggregates.Summary.Records)
	}
	want := []models.GroupValue{{Key: "BranchA", Value: 10}, {Key: "BranchB", Value: 5}}
	if !reflect.DeepEqual(dash.Aggregates.SalesByBranch, want) {
		t.Errorf("SalesByBranch = %+v, want %+v", dash.Aggregates.SalesByBranch, want)
	}
	if len(dash.Metrics) != 4 || dash.Metrics[0].Value != "$15.0" {
		t.Errorf("unexpected metrics %+v", dash.Metrics)
	}
	if len(dash.Charts) != 7 {
		t.Errorf("expected 7 charts, got %d", len(dash.Charts))
	}

	if got := testutil.ToFloat64(metrics.RunCounter(observability.OutcomeOK)); got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}
}

func TestAnalytics_Run_LogsSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cache := NewDatasetCache(LoadDataset, time.Minute, nil, quietLogger())
	a := NewAnalytics(writeCSV(t, scenarioCSV), 2, cache, nil, logger)
	sel := allSelection(a, t)

	if _, err := a.Run(context.Background(), sel); err != nil {
		t.Fatal(err)
	}
	sel.Branches = nil
	if _, err := a.Run(context.Background(), sel); !errors.Is(err, ErrNoData) {
		t.Fatalf("error = %v, want ErrNoData", err)
	}

	type logLine struct {
		Msg     string `json:"msg"`
		TraceID string `json:"trace_id"`
		Span    struct {
			Operation string `json:"operation"`
			Outcome   string `json:"outcome"`
			Records   int    `json:"records"`
		} `json:"span"`
	}

	var spans []logLine
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var line logLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			t.Fatalf("invalid json log line %q: %v", raw, err)
		}
		switch line.Msg {
		case "span finished":
			spans = append(spans, line)
		case "dashboard recomputed":
			if line.TraceID != "" {
				t.Error("trace_id should come from the context handler, not the call site")
			}
		}
	}

	if len(spans) != 2 {
		t.Fatalf("expected one span per run, got %d", len(spans))
	}
	if spans[0].Span.Operation != "dashboard.run" || spans[0].Span.Outcome != observability.OutcomeOK || spans[0].Span.Records != 3 {
		t.Errorf("first span = %+v", spans[0].Span)
	}
	if spans[1].Span.Outcome != observability.OutcomeNoData {
		t.Errorf("second span outcome = %q, want %q", spans[1].Span.Outcome, observability.OutcomeNoData)
	}
}

func TestAnalytics_Run_Halts(t *testing.T) {
	a, metrics := newTestAnalytics(t, writeCSV(t, scenarioCSV))

	t.Run("incomplete date range", func(t *testing.T) {
		sel := allSelection(a, t)
		sel.Dates = sel.Dates[:1]

		dash, err := a.Run(context.Background(), sel)
		if !errors.Is(err, ErrInvalidDateRange) {
			t.Fatalf("error = %v, want ErrInvalidDateRange", err)
		}
		if dash != nil {
			t.Error("halted pass should not produce a dashboard")
		}
		if got := testutil.ToFloat64(metrics.RunCounter(observability.OutcomeInvalidDateRange)); got != 1 {
			t.Errorf("invalid_date_range runs = %v, want 1", got)
		}
	})

	t.Run("no matching records", func(t *testing.T) {
		sel := allSelection(a, t)
		sel.Branches = []string{"BranchB"}
		sel.ProductLines = []string{"Drinks"}

		dash, err := a.Run(context.Background(), sel)
		if !errors.Is(err, ErrNoData) {
			t.Fatalf("error = %v, want ErrNoData", err)
		}
		if dash != nil {
			t.Error("halted pass should not produce a dashboard")
		}
		if got := testutil.ToFloat64(metrics.RunCounter(observability.OutcomeNoData)); got != 1 {
			t.Errorf("no_data runs = %v, want 1", got)
		}
	})

	t.Run("range outside dataset span", func(t *testing.T) {
		sel := allSelection(a, t)
		sel.Dates = []time.Time{
			time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		}

		dash, err := a.Run(context.Background(), sel)
		if !errors.Is(err, ErrNoData) {
			t.Fatalf("error = %v, want ErrNoData", err)
		}
		if dash != nil {
			t.Error("halted pass should not produce a dashboard")
		}
	})

	if got := a.Stats()["last_outcome"]; got != observability.OutcomeNoData {
		t.Errorf("last_outcome = %v, want %q", got, observability.OutcomeNoData)
	}
}

func TestAnalytics_Run_Idempotent(t *testing.T) {
	a, _ := newTestAnalytics(t, writeCSV(t, scenarioCSV))
	sel := allSelection(a, t)

	first, err := a.Run(context.Background(), sel)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Run(context.Background(), sel)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs should produce identical dashboards")
	}
}

func TestAnalytics_Run_MissingFile(t *testing.T) {
	a, metrics := newTestAnalytics(t, filepath.Join(t.TempDir(), "missing.csv"))

	_, err := a.Run(context.Background(), models.Selection{})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error = %v, want fs.ErrNotExist", err)
	}
	if got := testutil.ToFloat64(metrics.RunCounter(observability.OutcomeError)); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
}

func TestAnalytics_Preview(t *testing.T) {
	a, _ := newTestAnalytics(t, writeCSV(t, scenarioCSV))

	preview, err := a.Preview(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(preview.Rows) != 2 {
		t.Errorf("default preview should have 2 rows, got %d", len(preview.Rows))
	}
	if preview.Header[0] != "Invoice ID" {
		t.Errorf("unexpected header %v", preview.Header)
	}

	preview, err = a.Preview(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(preview.Rows) != 3 {
		t.Errorf("preview should be capped at the dataset size, got %d", len(preview.Rows))
	}
}

func TestAnalytics_Reload(t *testing.T) {
	path := writeCSV(t, scenarioCSV)
	a, _ := newTestAnalytics(t, path)

	opts, err := a.Options(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %v", opts.Branches)
	}

	extra := scenarioCSV + "INV-4,BranchC,Food,Member,Cash,1/4/2024,1,1.00,0.10,9.0\n"
	if err := os.WriteFile(path, []byte(extra), 0o644); err != nil {
		t.Fatal(err)
	}

	// still served from the cache
	opts, _ = a.Options(context.Background())
	if len(opts.Branches) != 2 {
		t.Errorf("cached dataset should not change before Reload, got %v", opts.Branches)
	}

	if err := a.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	opts, _ = a.Options(context.Background())
	if len(opts.Branches) != 3 {
		t.Errorf("expected 3 branches after Reload, got %v", opts.Branches)
	}
}

func TestAnalytics_Stats(t *testing.T) {
	a, _ := newTestAnalytics(t, writeCSV(t, scenarioCSV))

	if _, ok := a.Stats()["record_count"]; ok {
		t.Error("record_count should be absent before the first load")
	}

	if _, err := a.Run(context.Background(), allSelection(a, t)); err != nil {
		t.Fatal(err)
	}

	stats := a.Stats()
	if stats["record_count"] != 3 {
		t.Errorf("record_count = %v, want 3", stats["record_count"])
	}
	if stats["runs"] != int64(1) {
		t.Errorf("runs = %v, want 1", stats["runs"])
	}
	if stats["min_date"] != "2024-01-01" || stats["max_date"] != "2024-01-03" {
		t.Errorf("unexpected date bounds %v..%v", stats["min_date"], stats["max_date"])
	}
}

func TestAnalytics_ConcurrentRuns(t *testing.T) {
	a, _ := newTestAnalytics(t, writeCSV(t, scenarioCSV))
	sel := allSelection(a, t)

	done := make(chan error, 10)
	for range 10 {
		go func() {
			_, err := a.Run(context.Background(), sel)
			done <- err
		}()
	}
	for range 10 {
		if err := <-done; err != nil {
			t.Error(err)
		}
	}
}
