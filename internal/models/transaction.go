package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column names the loader requires in the source header.
const (
	ColBranch       = "Branch"
	ColProductLine  = "Product line"
	ColCustomerType = "Customer type"
	ColPayment      = "Payment"
	ColDate         = "Date"
	ColQuantity     = "Quantity"
	ColTotal        = "Total"
	ColGrossIncome  = "gross income"
	ColRating       = "Rating"
)

var RequiredColumns = []string{
	ColBranch,
	ColProductLine,
	ColCustomerType,
	ColPayment,
	ColDate,
	ColQuantity,
	ColTotal,
	ColGrossIncome,
	ColRating,
}

type Transaction struct {
	Branch       string
	ProductLine  string
	CustomerType string
	Payment      string
	Date         time.Time
	Quantity     float64
	Total        decimal.Decimal
	GrossIncome  decimal.Decimal
	Rating       float64
	// Raw holds the source row as read, in header order.
	Raw []string
}

// Dataset is the cleaned, in-memory table. Every record has a valid date.
type Dataset struct {
	Path        string
	Header      []string
	Records     []Transaction
	DroppedRows int
	MinDate     time.Time
	MaxDate     time.Time
	LoadedAt    time.Time
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Head returns up to n raw rows from the start of the dataset.
func (d *Dataset) Head(n int) [][]string {
	if d == nil || n <= 0 {
		return [][]string{}
	}
	if n > len(d.Records) {
		n = len(d.Records)
	}
	rows := make([][]string, 0, n)
	for _, tx := range d.Records[:n] {
		rows = append(rows, tx.Raw)
	}
	return rows
}
