package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	cache := services.NewDatasetCache(services.LoadDataset, cfg.Dataset.LoadTimeout, nil, logger)
	analytics := services.NewAnalytics(cfg.Dataset.CSVFile, cfg.Dataset.PreviewRows, cache, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Dataset.LoadTimeout)
	defer cancel()

	os.Exit(run(ctx, analytics, os.Stdout, os.Stderr))
}

// run prints one default-selection pass and returns the exit code.
func run(ctx context.Context, analytics *services.Analytics, stdout, stderr io.Writer) int {
	sel, err := analytics.DefaultSelection(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "load dataset: %v\n", err)
		return 1
	}

	dash, err := analytics.Run(ctx, sel)
	if errors.Is(err, services.ErrInvalidDateRange) || errors.Is(err, services.ErrNoData) {
		fmt.Fprintf(stderr, "⚠️ %s\n", err)
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "dashboard: %v\n", err)
		return 1
	}

	writeReport(stdout, dash)
	return 0
}

func writeReport(w io.Writer, dash *models.Dashboard) {
	fmt.Fprintf(w, "Supermarket sales %s to %s\n\n",
		dash.Range.Start.Format("2006-01-02"), dash.Range.End.Format("2006-01-02"))

	metrics := newTable(w, "Key Metrics")
	metrics.AppendHeader(table.Row{"Metric", "Value"})
	for _, m := range dash.Metrics {
		metrics.AppendRow(table.Row{m.Label, m.Value})
	}
	metrics.Render()

	agg := dash.Aggregates
	writeGroups(w, "Sales by Branch", "Branch", "Total", agg.SalesByBranch)
	writeGroups(w, "Sales by Product Line", "Product line", "Total", agg.SalesByProductLine)
	writeGroups(w, "Average Rating by Product Line", "Product line", "Rating", agg.RatingByProductLine)
	writeGroups(w, "Sales by Customer Type", "Customer type", "Total", agg.SalesByCustomerType)
	writeGroups(w, "Sales by Payment Method", "Payment", "Total", agg.SalesByPayment)

	trend := newTable(w, "Sales Trends over time")
	trend.AppendHeader(table.Row{"Date", "Total"})
	for _, d := range agg.SalesByDate {
		trend.AppendRow(table.Row{d.Date.Format("2006-01-02"), d.Total})
	}
	trend.AppendFooter(table.Row{"Days", len(agg.SalesByDate)})
	trend.Render()
}

func writeGroups(w io.Writer, title, keyHeader, valueHeader string, groups []models.GroupValue) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{keyHeader, valueHeader})
	for _, g := range groups {
		t.AppendRow(table.Row{g.Key, g.Value})
	}
	t.Render()
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, Transformer: text.NewNumberTransformer("%.2f")},
	})
	return t
}
