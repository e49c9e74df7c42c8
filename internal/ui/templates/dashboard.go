package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.943 generate

import (
	"time"

	"sales-dashboard/internal/models"
)

const (
	PageTitle  = "Sales Analysis DashBoard"
	HeaderText = "Supermarket Sales Dashboard"

	DateLayout = "2006-01-02"

	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"
	plotlyScript   = "https://cdn.jsdelivr.net/npm/plotly.js-dist-min@2.35.2/plotly.min.js"
)

// ChartsSignal is the client-only signal carrying chart specs. The leading
// underscore keeps it out of the requests the browser sends back.
const ChartsSignal = "_charts"

// DashboardPage is everything the first render needs. Dashboard is nil when
// the initial pass halted, in which case Warning holds the message.
type DashboardPage struct {
	Options   models.FilterOptions
	Selection models.Selection
	Preview   models.Preview
	Dashboard *models.Dashboard
	Warning   string
}

type section struct {
	heading string
	charts  []string
}

var sections = []section{
	{"Total Sales by Branch", []string{models.ChartBranchSales}},
	{"Sales and Rating by Product Line", []string{models.ChartProductSales, models.ChartProductRating}},
	{"Sales by Branch", []string{models.ChartBranchSalesDetail}},
	{"Sales by Customer Type", []string{models.ChartCustomerSales}},
	{"Sales by Payment Method", []string{models.ChartPaymentSales}},
	{"Sales Trends over time", []string{models.ChartSalesTrend}},
}

// Signals returns the initial datastar signal set for page.
func Signals(page DashboardPage) map[string]any {
	start, end := "", ""
	if len(page.Selection.Dates) == 2 {
		start = page.Selection.Dates[0].Format(DateLayout)
		end = page.Selection.Dates[1].Format(DateLayout)
	}
	charts := []models.ChartSpec{}
	if page.Dashboard != nil {
		charts = page.Dashboard.Charts
	}
	return map[string]any{
		"branches":      nonNil(page.Selection.Branches),
		"productLines":  nonNil(page.Selection.ProductLines),
		"customerTypes": nonNil(page.Selection.CustomerTypes),
		"startDate":     start,
		"endDate":       end,
		ChartsSignal:    charts,
	}
}

// pageMetrics is empty when the first pass halted.
func pageMetrics(page DashboardPage) []models.Metric {
	if page.Dashboard == nil {
		return nil
	}
	return page.Dashboard.Metrics
}

// formatDay leaves the zero time blank so an empty dataset renders
// unbounded date inputs.
func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

const pageStyle = `<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f7fa; color: #2C3E50; }
.header { background-color: #2C3E50; color: #FFFFFF; padding: 15px; border-radius: 10px; text-align: center; margin: 12px; }
.layout { display: flex; gap: 16px; padding: 0 12px 24px; }
.sidebar { width: 260px; flex-shrink: 0; display: flex; flex-direction: column; gap: 8px; }
.sidebar select { min-height: 96px; }
.date-range { display: flex; gap: 4px; }
.content { flex: 1; min-width: 0; }
.warning { background: #fff3cd; border: 1px solid #ffe08a; padding: 12px; border-radius: 8px; margin: 12px 0; }
.metrics-grid { display: grid; grid-template-columns: repeat(4, 1fr); gap: 12px; }
.metric-card { background: #fff; border-radius: 8px; padding: 12px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.metric-label { font-size: .85rem; opacity: .7; }
.metric-value { font-size: 1.6rem; font-weight: 600; }
.chart-row { display: flex; gap: 12px; }
.chart { flex: 1; min-height: 380px; background: #fff; border-radius: 8px; }
.table-wrapper { overflow-x: auto; }
.modern-table { border-collapse: collapse; width: 100%; background: #fff; font-size: .85rem; }
.modern-table th, .modern-table td { padding: 6px 8px; border-bottom: 1px solid #e5e9f0; text-align: left; white-space: nowrap; }
</style>`

const chartScript = `<script>
window.renderCharts = function (charts) {
  if (!window.Plotly) { return; }
  if (!charts || charts.length === 0) {
    document.querySelectorAll('.chart').forEach(function (el) { Plotly.purge(el); });
    return;
  }
  charts.forEach(function (c) {
    var el = document.getElementById('chart-' + c.id);
    if (!el) { return; }
    var labels = c.points.map(function (p) { return p.label; });
    var values = c.points.map(function (p) { return p.value; });
    var colors = labels.map(function (_, i) { return c.palette[i % c.palette.length]; });
    var trace;
    if (c.type === 'pie') {
      trace = { type: 'pie', labels: labels, values: values, marker: { colors: colors } };
    } else if (c.type === 'line') {
      trace = { type: 'scatter', mode: c.markers ? 'lines+markers' : 'lines', x: labels, y: values, line: { color: c.palette[0] } };
    } else {
      var horizontal = c.orientation === 'h';
      trace = { type: 'bar', orientation: c.orientation, x: horizontal ? values : labels, y: horizontal ? labels : values,
        text: values, textposition: 'auto', marker: { color: colors } };
    }
    Plotly.react(el, [trace], {
      title: { text: c.title },
      xaxis: { title: { text: c.x || '' } },
      yaxis: { title: { text: c.y || '' } },
      margin: { t: 48 }
    }, { responsive: true });
  });
};
</script>`
