package models

import "time"

// Selection is the current widget state. Dates must hold exactly two bounds
// to be usable; anything else is an incomplete date range.
type Selection struct {
	Branches      []string    `json:"branches"`
	ProductLines  []string    `json:"product_lines"`
	CustomerTypes []string    `json:"customer_types"`
	Dates         []time.Time `json:"dates"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type FilterOptions struct {
	Branches      []string  `json:"branches"`
	ProductLines  []string  `json:"product_lines"`
	CustomerTypes []string  `json:"customer_types"`
	MinDate       time.Time `json:"min_date"`
	MaxDate       time.Time `json:"max_date"`
}

type GroupValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

type DailyTotal struct {
	Date  time.Time `json:"date"`
	Total float64   `json:"total"`
}

type Summary struct {
	TotalSales    float64 `json:"total_sales"`
	GrossIncome   float64 `json:"gross_income"`
	AverageRating float64 `json:"average_rating"`
	TotalQuantity float64 `json:"total_quantity"`
	Records       int     `json:"records"`
}

type Aggregates struct {
	Summary             Summary      `json:"summary"`
	SalesByBranch       []GroupValue `json:"sales_by_branch"`
	SalesByProductLine  []GroupValue `json:"sales_by_product_line"`
	RatingByProductLine []GroupValue `json:"rating_by_product_line"`
	SalesByCustomerType []GroupValue `json:"sales_by_customer_type"`
	SalesByPayment      []GroupValue `json:"sales_by_payment"`
	SalesByDate         []DailyTotal `json:"sales_by_date"`
}

type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
	ChartLine ChartType = "line"
)

type Orientation string

const (
	OrientationVertical   Orientation = "v"
	OrientationHorizontal Orientation = "h"
)

// Chart IDs, in page order.
const (
	ChartBranchSales       = "branch-sales"
	ChartProductSales      = "product-sales"
	ChartProductRating     = "product-rating"
	ChartBranchSalesDetail = "branch-sales-detail"
	ChartCustomerSales     = "customer-sales"
	ChartPaymentSales      = "payment-sales"
	ChartSalesTrend        = "sales-trend"
)

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSpec carries everything the browser needs to draw one chart.
// X/Y are used by bar and line charts, Names/Values by pie charts.
type ChartSpec struct {
	ID          string       `json:"id"`
	Type        ChartType    `json:"type"`
	Orientation Orientation  `json:"orientation,omitempty"`
	Title       string       `json:"title"`
	X           string       `json:"x,omitempty"`
	Y           string       `json:"y,omitempty"`
	Names       string       `json:"names,omitempty"`
	Values      string       `json:"values,omitempty"`
	Text        string       `json:"text,omitempty"`
	Color       string       `json:"color,omitempty"`
	Palette     []string     `json:"palette"`
	Markers     bool         `json:"markers,omitempty"`
	Points      []ChartPoint `json:"points"`
}

type Dashboard struct {
	Range      DateRange   `json:"range"`
	Aggregates Aggregates  `json:"aggregates"`
	Metrics    []Metric    `json:"metrics"`
	Charts     []ChartSpec `json:"charts"`
}

// Preview is the head of the raw, unfiltered dataset.
type Preview struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}
