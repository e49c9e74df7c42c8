package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

const (
	subsetPrecision = 2
	totalPrecision  = 1
	ratingPrecision = 2
)

// Aggregate computes the scalar summary and the grouped views of subset.
// The numeric columns are rounded on a copy first; subset is not modified.
// Currency sums are exact and only become floats in the returned views.
func Aggregate(subset []models.Transaction) models.Aggregates {
	rows := roundSubset(subset)

	var summary models.Summary
	sales, income := decimal.Zero, decimal.Zero
	for _, tx := range rows {
		sales = sales.Add(tx.Total)
		income = income.Add(tx.GrossIncome)
		summary.AverageRating += tx.Rating
		summary.TotalQuantity += tx.Quantity
	}
	summary.TotalSales = sales.InexactFloat64()
	summary.GrossIncome = income.InexactFloat64()
	summary.Records = len(rows)
	if len(rows) > 0 {
		summary.AverageRating /= float64(len(rows))
	}

	total := func(tx models.Transaction) decimal.Decimal { return tx.Total }
	rating := func(tx models.Transaction) decimal.Decimal { return decimal.NewFromFloat(tx.Rating) }

	return models.Aggregates{
		Summary:             summary,
		SalesByBranch:       groupSum(rows, func(tx models.Transaction) string { return tx.Branch }, total, totalPrecision),
		SalesByProductLine:  groupSum(rows, func(tx models.Transaction) string { return tx.ProductLine }, total, totalPrecision),
		RatingByProductLine: groupMean(rows, func(tx models.Transaction) string { return tx.ProductLine }, rating, ratingPrecision),
		SalesByCustomerType: groupSum(rows, func(tx models.Transaction) string { return tx.CustomerType }, total, totalPrecision),
		SalesByPayment:      groupSum(rows, func(tx models.Transaction) string { return tx.Payment }, total, totalPrecision),
		SalesByDate:         dailyTotals(rows),
	}
}

func roundSubset(subset []models.Transaction) []models.Transaction {
	rows := make([]models.Transaction, len(subset))
	for i, tx := range subset {
		tx.Total = tx.Total.RoundBank(subsetPrecision)
		tx.GrossIncome = tx.GrossIncome.RoundBank(subsetPrecision)
		tx.Rating = roundTo(tx.Rating, subsetPrecision)
		tx.Quantity = roundTo(tx.Quantity, subsetPrecision)
		rows[i] = tx
	}
	return rows
}

type groupAcc struct {
	sum   decimal.Decimal
	count int64
}

func groupBy(rows []models.Transaction, key func(models.Transaction) string, value func(models.Transaction) decimal.Decimal) map[string]*groupAcc {
	groups := make(map[string]*groupAcc)
	for _, tx := range rows {
		k := key(tx)
		acc, ok := groups[k]
		if !ok {
			acc = &groupAcc{sum: decimal.Zero}
			groups[k] = acc
		}
		acc.sum = acc.sum.Add(value(tx))
		acc.count++
	}
	return groups
}

func groupSum(rows []models.Transaction, key func(models.Transaction) string, value func(models.Transaction) decimal.Decimal, places int32) []models.GroupValue {
	groups := groupBy(rows, key, value)
	return sortedGroups(groups, func(acc *groupAcc) decimal.Decimal {
		return acc.sum.RoundBank(places)
	})
}

func groupMean(rows []models.Transaction, key func(models.Transaction) string, value func(models.Transaction) decimal.Decimal, places int32) []models.GroupValue {
	groups := groupBy(rows, key, value)
	return sortedGroups(groups, func(acc *groupAcc) decimal.Decimal {
		return acc.sum.Div(decimal.NewFromInt(acc.count)).RoundBank(places)
	})
}

func sortedGroups(groups map[string]*groupAcc, reduce func(*groupAcc) decimal.Decimal) []models.GroupValue {
	result := make([]models.GroupValue, 0, len(groups))
	for k, acc := range groups {
		result = append(result, models.GroupValue{Key: k, Value: reduce(acc).InexactFloat64()})
	}
	slices.SortFunc(result, func(a, b models.GroupValue) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return result
}

// dailyTotals sums Total per calendar day, oldest first. The series is not
// display-rounded.
func dailyTotals(rows []models.Transaction) []models.DailyTotal {
	byDay := make(map[time.Time]decimal.Decimal)
	for _, tx := range rows {
		byDay[tx.Date] = byDay[tx.Date].Add(tx.Total)
	}

	result := make([]models.DailyTotal, 0, len(byDay))
	for day, total := range byDay {
		result = append(result, models.DailyTotal{Date: day, Total: total.InexactFloat64()})
	}
	slices.SortFunc(result, func(a, b models.DailyTotal) int {
		return a.Date.Compare(b.Date)
	})
	return result
}

// roundTo rounds half to even at the given number of decimals, on the
// shortest decimal form of v.
func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).RoundBank(places).InexactFloat64()
}
