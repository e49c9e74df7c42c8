package services

import (
	"slices"
	"testing"

	"sales-dashboard/internal/models"
)

func TestMetrics_Format(t *testing.T) {
	tests := []struct {
		name    string
		summary models.Summary
		want    []string
	}{
		{
			name:    "small values",
			summary: models.Summary{TotalSales: 15, GrossIncome: 3, TotalQuantity: 3, AverageRating: 7.5},
			want:    []string{"$15.0", "$3.0", "3.0", "7.50"},
		},
		{
			name:    "thousands grouping",
			summary: models.Summary{TotalSales: 322966.749, GrossIncome: 15379.369, TotalQuantity: 5510, AverageRating: 6.9727},
			want:    []string{"$322,966.7", "$15,379.4", "5,510.0", "6.97"},
		},
		{
			name:    "millions",
			summary: models.Summary{TotalSales: 1234567.89, GrossIncome: 0, TotalQuantity: 1000, AverageRating: 10},
			want:    []string{"$1,234,567.9", "$0.0", "1,000.0", "10.00"},
		},
	}

	labels := []string{"Total Sales", "Gross Income", "Total Quantity", "Average Rating"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := make([]models.Metric, len(labels))
			for i, label := range labels {
				want[i] = models.Metric{Label: label, Value: tt.want[i]}
			}

			if got := Metrics(tt.summary); !slices.Equal(got, want) {
				t.Errorf("Metrics() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestCharts_Layout(t *testing.T) {
	charts := Charts(Aggregate(scenarioDataset().Records))

	tests := []struct {
		id          string
		chartType   models.ChartType
		orientation models.Orientation
		x, y        string
		palette     []string
	}{
		{models.ChartBranchSales, models.ChartBar, models.OrientationVertical, models.ColBranch, models.ColTotal, PaletteTeal},
		{models.ChartProductSales, models.ChartBar, models.OrientationHorizontal, models.ColTotal, models.ColProductLine, PalettePlasma},
		{models.ChartProductRating, models.ChartBar, models.OrientationHorizontal, models.ColRating, models.ColProductLine, PaletteViridis},
		{models.ChartBranchSalesDetail, models.ChartBar, models.OrientationVertical, models.ColBranch, models.ColTotal, PaletteTeal},
		{models.ChartCustomerSales, models.ChartPie, "", "", "", PaletteTeal},
		{models.ChartPaymentSales, models.ChartPie, "", "", "", PalettePurples},
		{models.ChartSalesTrend, models.ChartLine, "", models.ColDate, models.ColTotal, PaletteTrend},
	}

	if len(charts) != len(tests) {
		t.Fatalf("expected %d charts, got %d", len(tests), len(charts))
	}

	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c := charts[i]
			if c.ID != tt.id {
				t.Fatalf("chart %d id = %q, want %q", i, c.ID, tt.id)
			}
			if c.Type != tt.chartType {
				t.Errorf("type = %q, want %q", c.Type, tt.chartType)
			}
			if c.Orientation != tt.orientation {
				t.Errorf("orientation = %q, want %q", c.Orientation, tt.orientation)
			}
			if c.X != tt.x || c.Y != tt.y {
				t.Errorf("axes = (%q, %q), want (%q, %q)", c.X, c.Y, tt.x, tt.y)
			}
			if !slices.Equal(c.Palette, tt.palette) {
				t.Errorf("palette = %v, want %v", c.Palette, tt.palette)
			}
			if c.Title == "" {
				t.Error("chart should have a title")
			}
			if len(c.Points) == 0 {
				t.Error("chart should have points")
			}
		})
	}
}

func TestCharts_PieEncoding(t *testing.T) {
	charts := Charts(Aggregate(scenarioDataset().Records))

	customer := charts[4]
	if customer.Names != models.ColCustomerType || customer.Values != models.ColTotal || customer.Color != models.ColCustomerType {
		t.Errorf("unexpected customer pie encoding %+v", customer)
	}

	payment := charts[5]
	if payment.Names != models.ColPayment || payment.Values != models.ColTotal {
		t.Errorf("unexpected payment pie encoding %+v", payment)
	}
	if len(payment.Points) != 3 {
		t.Errorf("expected 3 payment slices, got %d", len(payment.Points))
	}
}

func TestCharts_BranchChartsShareData(t *testing.T) {
	charts := Charts(Aggregate(scenarioDataset().Records))

	if !slices.Equal(charts[0].Points, charts[3].Points) {
		t.Error("both branch charts should plot the same totals")
	}
	want := []models.ChartPoint{{Label: "BranchA", Value: 25}, {Label: "BranchB", Value: 5}}
	if !slices.Equal(charts[0].Points, want) {
		t.Errorf("branch points = %+v, want %+v", charts[0].Points, want)
	}
}

func TestCharts_TrendUsesMarkersAndDateLabels(t *testing.T) {
	charts := Charts(Aggregate(scenarioDataset().Records))
	trend := charts[6]

	if !trend.Markers {
		t.Error("trend line should have markers")
	}
	labels := make([]string, len(trend.Points))
	for i, p := range trend.Points {
		labels[i] = p.Label
	}
	if !slices.Equal(labels, []string{"2024-01-01", "2024-01-02", "2024-01-03"}) {
		t.Errorf("trend labels = %v", labels)
	}
}
