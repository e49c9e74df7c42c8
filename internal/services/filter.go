package services

import (
	"errors"
	"time"

	"sales-dashboard/internal/models"
)

// Pipeline halts. Their messages are shown to the user verbatim.
var (
	ErrInvalidDateRange = errors.New("Please select a valid date range")
	ErrNoData           = errors.New("No data for the given filtered range")
)

// FilterOptions lists the distinct values of each filterable column in
// first-seen order, plus the dataset's date bounds.
func FilterOptions(ds *models.Dataset) models.FilterOptions {
	opts := models.FilterOptions{
		Branches:      distinct(ds, func(tx models.Transaction) string { return tx.Branch }),
		ProductLines:  distinct(ds, func(tx models.Transaction) string { return tx.ProductLine }),
		CustomerTypes: distinct(ds, func(tx models.Transaction) string { return tx.CustomerType }),
	}
	if ds != nil {
		opts.MinDate = ds.MinDate
		opts.MaxDate = ds.MaxDate
	}
	return opts
}

// DefaultSelection selects every option and the full date range.
func DefaultSelection(ds *models.Dataset) models.Selection {
	opts := FilterOptions(ds)
	return models.Selection{
		Branches:      opts.Branches,
		ProductLines:  opts.ProductLines,
		CustomerTypes: opts.CustomerTypes,
		Dates:         []time.Time{opts.MinDate, opts.MaxDate},
	}
}

// ValidateSelection checks that the selection has exactly two date bounds
// and returns them ordered. A range overlapping the dataset's date span is
// clamped to it; a disjoint range is returned as is so that nothing matches.
func ValidateSelection(ds *models.Dataset, sel models.Selection) (models.DateRange, error) {
	if len(sel.Dates) != 2 || sel.Dates[0].IsZero() || sel.Dates[1].IsZero() {
		return models.DateRange{}, ErrInvalidDateRange
	}

	start, end := truncateDay(sel.Dates[0]), truncateDay(sel.Dates[1])
	if end.Before(start) {
		start, end = end, start
	}
	if ds != nil && ds.Len() > 0 && !end.Before(ds.MinDate) && !start.After(ds.MaxDate) {
		start = clampDay(start, ds.MinDate, ds.MaxDate)
		end = clampDay(end, ds.MinDate, ds.MaxDate)
	}
	return models.DateRange{Start: start, End: end}, nil
}

// FilterTransactions keeps the records whose branch, product line and
// customer type are all selected and whose date lies in rng, inclusive.
func FilterTransactions(ds *models.Dataset, sel models.Selection, rng models.DateRange) []models.Transaction {
	if ds == nil {
		return nil
	}

	branches := toSet(sel.Branches)
	lines := toSet(sel.ProductLines)
	types := toSet(sel.CustomerTypes)

	out := make([]models.Transaction, 0, len(ds.Records))
	for _, tx := range ds.Records {
		if _, ok := branches[tx.Branch]; !ok {
			continue
		}
		if _, ok := lines[tx.ProductLine]; !ok {
			continue
		}
		if _, ok := types[tx.CustomerType]; !ok {
			continue
		}
		if tx.Date.Before(rng.Start) || tx.Date.After(rng.End) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func distinct(ds *models.Dataset, key func(models.Transaction) string) []string {
	if ds == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, tx := range ds.Records {
		k := key(tx)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		values = append(values, k)
	}
	return values
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func clampDay(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}
