package services

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const scenarioCSV = `Invoice ID,Branch,Product line,Customer type,Payment,Date,Quantity,Total,gross income,Rating
INV-1,BranchA,Food,Member,Cash,1/1/2024,2,10.00,2.00,7.0
INV-2,BranchB,Food,Normal,Ewallet,1/2/2024,1,5.00,1.00,8.0
INV-3,BranchA,Drinks,Member,Credit card,1/3/2024,3,15.00,3.00,6.0
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadDataset_ValidData(t *testing.T) {
	path := writeCSV(t, scenarioCSV)

	ds, err := LoadDataset(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	if ds.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", ds.Len())
	}
	if ds.Path != path {
		t.Errorf("Path = %q, want %q", ds.Path, path)
	}
	if ds.Header[0] != "Invoice ID" {
		t.Errorf("Header[0] = %q, want %q", ds.Header[0], "Invoice ID")
	}
	if !ds.MinDate.Equal(day(2024, 1, 1)) || !ds.MaxDate.Equal(day(2024, 1, 3)) {
		t.Errorf("date bounds = [%v, %v]", ds.MinDate, ds.MaxDate)
	}

	first := ds.Records[0]
	if first.Branch != "BranchA" || first.ProductLine != "Food" || first.CustomerType != "Member" || first.Payment != "Cash" {
		t.Errorf("unexpected categorical fields: %+v", first)
	}
	if first.Quantity != 2 || !first.Total.Equal(decimal.NewFromInt(10)) || !first.GrossIncome.Equal(decimal.NewFromInt(2)) || first.Rating != 7 {
		t.Errorf("unexpected numeric fields: %+v", first)
	}
	if first.Raw[0] != "INV-1" {
		t.Errorf("raw row should be kept, got %v", first.Raw)
	}

	// Source order is preserved
	if ds.Records[2].ProductLine != "Drinks" {
		t.Errorf("expected third record to be Drinks, got %q", ds.Records[2].ProductLine)
	}
}

func TestLoadDataset_AmountsKeepSourceDigits(t *testing.T) {
	content := `Invoice ID,Branch,Product line,Customer type,Payment,Date,Quantity,Total,gross income,Rating
INV-1,A,Food,Member,Cash,1/5/2019,7,548.9715,26.1415,9.1
`
	ds, err := LoadDataset(context.Background(), writeCSV(t, content))
	if err != nil {
		t.Fatal(err)
	}

	tx := ds.Records[0]
	if got := tx.Total.String(); got != "548.9715" {
		t.Errorf("Total = %s, want 548.9715", got)
	}
	if got := tx.GrossIncome.String(); got != "26.1415" {
		t.Errorf("GrossIncome = %s, want 26.1415", got)
	}
}

func TestLoadDataset_DropsUnparseableDates(t *testing.T) {
	csv := `Branch,Product line,Customer type,Payment,Date,Quantity,Total,gross income,Rating
A,Food,Member,Cash,2024-03-01,1,1.0,0.1,5
A,Food,Member,Cash,not-a-date,1,1.0,0.1,5
A,Food,Member,Cash,,1,1.0,0.1,5
A,Food,Member,Cash,03/02/2024,1,1.0,0.1,5
`
	ds, err := LoadDataset(context.Background(), writeCSV(t, csv))
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	if ds.Len() != 2 {
		t.Errorf("expected 2 retained records, got %d", ds.Len())
	}
	if ds.DroppedRows != 2 {
		t.Errorf("expected 2 dropped rows, got %d", ds.DroppedRows)
	}
	for _, tx := range ds.Records {
		if tx.Date.IsZero() {
			t.Error("retained record has a zero date")
		}
	}
}

func TestLoadDataset_Latin1(t *testing.T) {
	content := "Branch,Product line,Customer type,Payment,Date,Quantity,Total,gross income,Rating\n" +
		"Caf\xe9,Food,Member,Cash,1/1/2024,1,1.0,0.1,5\n"

	ds, err := LoadDataset(context.Background(), writeCSV(t, content))
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if got := ds.Records[0].Branch; got != "Café" {
		t.Errorf("Branch = %q, want %q", got, "Café")
	}
}

func TestLoadDataset_MissingFile(t *testing.T) {
	_, err := LoadDataset(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadDataset_InvalidData(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{
			name:    "empty file",
			csv:     "",
			wantErr: "empty file",
		},
		{
			name:    "missing columns",
			csv:     "Branch,Product line,Date,Total\nA,Food,1/1/2024,1.0\n",
			wantErr: "missing required columns",
		},
		{
			name:    "invalid total",
			csv:     "Branch,Product line,Customer type,Payment,Date,Quantity,Total,gross income,Rating\nA,Food,Member,Cash,1/1/2024,1,abc,0.1,5\n",
			wantErr: `column "Total"`,
		},
		{
			name:    "invalid rating",
			csv:     "Branch,Product line,Customer type,Payment,Date,Quantity,Total,gross income,Rating\nA,Food,Member,Cash,1/1/2024,1,1.0,0.1,high\n",
			wantErr: "line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDataset(context.Background(), writeCSV(t, tt.csv))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDataset_HeaderOnly(t *testing.T) {
	csv := "Branch,Product line,Customer type,Payment,Date,Quantity,Total,gross income,Rating\n"
	ds, err := LoadDataset(context.Background(), writeCSV(t, csv))
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if ds.Len() != 0 {
		t.Errorf("expected no records, got %d", ds.Len())
	}
}

func TestLoadDataset_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadDataset(ctx, writeCSV(t, scenarioCSV))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"1/5/2019", day(2019, 1, 5), true},
		{"03/08/2019", day(2019, 3, 8), true},
		{"2019-02-27", day(2019, 2, 27), true},
		{"2019/02/27", day(2019, 2, 27), true},
		{"2019-02-27 13:08:00", day(2019, 2, 27), true},
		{"13/45/2019", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
