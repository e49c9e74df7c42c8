package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"sales-dashboard/internal/models"
)

const (
	batchSize  = 2000
	maxWorkers = 8

	// UTF-8 byte order mark as it reads after a latin1 decode.
	latin1BOM = "ï»¿"
)

var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadDataset reads a latin1-encoded CSV file and returns the cleaned
// dataset. Rows with an unparseable date are dropped; a missing required
// column or a malformed numeric value fails the whole load.
func LoadDataset(ctx context.Context, path string) (*models.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	ds, err := parseDataset(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	ds.Path = path
	return ds, nil
}

func parseDataset(ctx context.Context, r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], latin1BOM)

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	type slot struct {
		tx    models.Transaction
		valid bool
	}
	parsed := make([]slot, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				tx, ok, err := parseRow(rows[i], idx)
				if err != nil {
					// +2: one for the header, one for 1-based line numbers
					return fmt.Errorf("line %d: %w", i+2, err)
				}
				parsed[i] = slot{tx: tx, valid: ok}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &models.Dataset{
		Header:   header,
		Records:  make([]models.Transaction, 0, len(rows)),
		LoadedAt: time.Now(),
	}
	for _, p := range parsed {
		if !p.valid {
			ds.DroppedRows++
			continue
		}
		ds.Records = append(ds.Records, p.tx)
		if ds.MinDate.IsZero() || p.tx.Date.Before(ds.MinDate) {
			ds.MinDate = p.tx.Date
		}
		if p.tx.Date.After(ds.MaxDate) {
			ds.MaxDate = p.tx.Date
		}
	}

	return ds, nil
}

type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// parseRow reports ok=false for a row whose date cannot be parsed.
func parseRow(record []string, idx columnIndex) (models.Transaction, bool, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[idx[col]])
	}

	date, ok := parseDate(field(models.ColDate))
	if !ok {
		return models.Transaction{}, false, nil
	}

	numbers := make(map[string]float64, 2)
	for _, col := range []string{models.ColQuantity, models.ColRating} {
		v, err := strconv.ParseFloat(field(col), 64)
		if err != nil {
			return models.Transaction{}, false, fmt.Errorf("column %q: %w", col, err)
		}
		numbers[col] = v
	}

	amounts := make(map[string]decimal.Decimal, 2)
	for _, col := range []string{models.ColTotal, models.ColGrossIncome} {
		v, err := decimal.NewFromString(field(col))
		if err != nil {
			return models.Transaction{}, false, fmt.Errorf("column %q: %w", col, err)
		}
		amounts[col] = v
	}

	return models.Transaction{
		Branch:       field(models.ColBranch),
		ProductLine:  field(models.ColProductLine),
		CustomerType: field(models.ColCustomerType),
		Payment:      field(models.ColPayment),
		Date:         date,
		Quantity:     numbers[models.ColQuantity],
		Total:        amounts[models.ColTotal],
		GrossIncome:  amounts[models.ColGrossIncome],
		Rating:       numbers[models.ColRating],
		Raw:          record,
	}, true, nil
}

// parseDate returns the calendar day (UTC midnight) of s.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
