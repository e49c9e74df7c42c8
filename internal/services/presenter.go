package services

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sales-dashboard/internal/models"
)

// Sequential colour scales matching the plotly palettes of the same name.
var (
	PaletteTeal = []string{
		"rgb(209, 238, 234)", "rgb(168, 219, 217)", "rgb(133, 196, 201)", "rgb(104, 171, 184)",
		"rgb(79, 144, 166)", "rgb(59, 115, 143)", "rgb(42, 86, 116)",
	}
	PalettePlasma = []string{
		"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
		"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921",
	}
	PaletteViridis = []string{
		"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
	}
	PalettePurples = []string{
		"rgb(252,251,253)", "rgb(239,237,245)", "rgb(218,218,235)", "rgb(188,189,220)",
		"rgb(158,154,200)", "rgb(128,125,186)", "rgb(106,81,163)", "rgb(84,39,143)", "rgb(63,0,125)",
	}
	PaletteTrend = []string{"#2C3E50"}
)

const dateLabelLayout = "2006-01-02"

// Metrics formats the four headline numbers.
func Metrics(s models.Summary) []models.Metric {
	printer := message.NewPrinter(language.English)
	return []models.Metric{
		{Label: "Total Sales", Value: printer.Sprintf("$%.1f", s.TotalSales)},
		{Label: "Gross Income", Value: printer.Sprintf("$%.1f", s.GrossIncome)},
		{Label: "Total Quantity", Value: printer.Sprintf("%.1f", s.TotalQuantity)},
		{Label: "Average Rating", Value: printer.Sprintf("%.2f", s.AverageRating)},
	}
}

// Charts maps the grouped views onto chart specifications. It does no
// arithmetic of its own.
func Charts(agg models.Aggregates) []models.ChartSpec {
	branchPoints := groupPoints(agg.SalesByBranch)

	return []models.ChartSpec{
		barChart(models.ChartBranchSales, "Total sales by branch", models.OrientationVertical,
			models.ColBranch, models.ColTotal, PaletteTeal, branchPoints),
		barChart(models.ChartProductSales, "Sales by Product Line", models.OrientationHorizontal,
			models.ColProductLine, models.ColTotal, PalettePlasma, groupPoints(agg.SalesByProductLine)),
		barChart(models.ChartProductRating, "Average Rating by Product Line", models.OrientationHorizontal,
			models.ColProductLine, models.ColRating, PaletteViridis, groupPoints(agg.RatingByProductLine)),
		barChart(models.ChartBranchSalesDetail, "Total sales by Branch", models.OrientationVertical,
			models.ColBranch, models.ColTotal, PaletteTeal, branchPoints),
		pieChart(models.ChartCustomerSales, "Sales Distribution by Customer Type",
			models.ColCustomerType, PaletteTeal, groupPoints(agg.SalesByCustomerType)),
		pieChart(models.ChartPaymentSales, "Sales by Payment Method",
			models.ColPayment, PalettePurples, groupPoints(agg.SalesByPayment)),
		{
			ID:      models.ChartSalesTrend,
			Type:    models.ChartLine,
			Title:   "Sales Trends over time",
			X:       models.ColDate,
			Y:       models.ColTotal,
			Markers: true,
			Palette: PaletteTrend,
			Points:  dailyPoints(agg.SalesByDate),
		},
	}
}

// barChart colours bars by the category column and labels them with the
// value. Horizontal bars put the category on the y axis.
func barChart(id, title string, o models.Orientation, category, value string, palette []string, points []models.ChartPoint) models.ChartSpec {
	x, y := category, value
	if o == models.OrientationHorizontal {
		x, y = value, category
	}
	return models.ChartSpec{
		ID:          id,
		Type:        models.ChartBar,
		Orientation: o,
		Title:       title,
		X:           x,
		Y:           y,
		Text:        value,
		Color:       category,
		Palette:     palette,
		Points:      points,
	}
}

func pieChart(id, title, names string, palette []string, points []models.ChartPoint) models.ChartSpec {
	return models.ChartSpec{
		ID:      id,
		Type:    models.ChartPie,
		Title:   title,
		Names:   names,
		Values:  models.ColTotal,
		Color:   names,
		Palette: palette,
		Points:  points,
	}
}

// Present assembles the metrics panel and chart specs for one pass.
func Present(rng models.DateRange, agg models.Aggregates) *models.Dashboard {
	return &models.Dashboard{
		Range:      rng,
		Aggregates: agg,
		Metrics:    Metrics(agg.Summary),
		Charts:     Charts(agg),
	}
}

func groupPoints(groups []models.GroupValue) []models.ChartPoint {
	points := make([]models.ChartPoint, len(groups))
	for i, g := range groups {
		points[i] = models.ChartPoint{Label: g.Key, Value: g.Value}
	}
	return points
}

func dailyPoints(days []models.DailyTotal) []models.ChartPoint {
	points := make([]models.ChartPoint, len(days))
	for i, d := range days {
		points[i] = models.ChartPoint{Label: d.Date.Format(dateLabelLayout), Value: d.Total}
	}
	return points
}
