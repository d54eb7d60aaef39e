package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `Customer ID,Age,Gender,Item Purchased,Category,Purchase Amount (USD),Location,Size,Season,Payment Method
1,55,Male,Blouse,Clothing,53,Kentucky,L,Winter,Venmo
2,19,Male,Sweater,Clothing,64,Maine,L,Winter,Cash
3,50,Male,Jeans,Clothing,73,Massachusetts,S,Spring,Credit Card
4,21,Male,Sandals,Footwear,90.5,Rhode Island,M,Spring,PayPal
5,45,Male,Blouse,Clothing,49,Oregon,M,Spring,PayPal
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shopping_trends.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadColumnar(t *testing.T) {
	store, err := LoadColumnar(writeTemp(t, sampleCSV))
	if err != nil {
		t.Fatalf("LoadColumnar: %v", err)
	}

	if store.Len() != 5 {
		t.Fatalf("Expected 5 rows, got %d", store.Len())
	}

	// Row 3 Check
	r := store.Record(3)
	if r.CustomerID != "4" || r.Age != 21 || r.Category != "Footwear" {
		t.Errorf("Row 3: unexpected record %+v", r)
	}
	if r.PurchaseAmount != 90.5 {
		t.Errorf("Row 3 Amount: Expected 90.5, got %f", r.PurchaseAmount)
	}
	if r.PaymentMethod != "PayPal" || r.Season != "Spring" || r.Location != "Rhode Island" {
		t.Errorf("Row 3: unexpected categorical fields %+v", r)
	}

	// Dictionary Checks
	if len(store.CategoryDict) != 2 || store.CategoryDict[0] != "Clothing" {
		t.Errorf("Expected categories [Clothing Footwear], got %v", store.CategoryDict)
	}
	if len(store.PaymentDict) != 4 {
		t.Errorf("Expected 4 unique payment methods, got %d", len(store.PaymentDict))
	}

	lo, hi, ok := store.AgeRange()
	if !ok || lo != 19 || hi != 55 {
		t.Errorf("AgeRange: got (%d, %d, %v)", lo, hi, ok)
	}
}

func TestLoadColumnarCRLFAndHeaderOnly(t *testing.T) {
	crlf := "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\r\n" +
		"7,30,Outerwear,Cash,Fall,20,Texas\r\n"
	store, err := LoadColumnar(writeTemp(t, crlf))
	if err != nil {
		t.Fatalf("LoadColumnar: %v", err)
	}
	if store.Len() != 1 || store.Record(0).Location != "Texas" {
		t.Errorf("CRLF file parsed wrong: %+v", store.Record(0))
	}

	empty, err := LoadColumnar(writeTemp(t, "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\n"))
	if err != nil {
		t.Fatalf("header-only file: %v", err)
	}
	if empty.Len() != 0 {
		t.Errorf("Expected empty store, got %d rows", empty.Len())
	}
}

func TestLoadColumnarErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			name:    "missing column",
			content: "Customer ID,Age,Category,Season,Purchase Amount (USD),Location\n1,20,Clothing,Fall,10,Texas\n",
			want:    ErrMissingColumns,
		},
		{
			name:    "non numeric age",
			content: "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\n1,abc,Clothing,Cash,Fall,10,Texas\n",
			want:    ErrMalformedRow,
		},
		{
			name:    "zero age",
			content: "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\n1,0,Clothing,Cash,Fall,10,Texas\n",
			want:    ErrMalformedRow,
		},
		{
			name:    "negative amount",
			content: "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\n1,30,Clothing,Cash,Fall,-1,Texas\n",
			want:    ErrMalformedRow,
		},
		{
			name:    "wrong field count",
			content: "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\n1,30,Clothing,Cash\n",
			want:    ErrMalformedRow,
		},
		{
			name:    "short first row",
			content: "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\n1,30,Clothing\n2,40,Footwear,Cash,Fall,10,Texas\n",
			want:    ErrMalformedRow,
		},
		{
			name:    "short row after a good one",
			content: "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\n2,40,Footwear,Cash,Fall,10,Texas\n1,30,Clothing\n",
			want:    ErrMalformedRow,
		},
		{
			name:    "empty text fields",
			content: "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\n,30,,Cash,Fall,10,\n",
			want:    ErrMalformedRow,
		},
		{
			name:    "blank location",
			content: "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\n1,30,Clothing,Cash,Fall,10,  \n",
			want:    ErrMalformedRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadColumnar(writeTemp(t, tt.content))
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Expected *LoadError, got %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadColumnar(filepath.Join(t.TempDir(), "nope.csv"))
		var le *LoadError
		if !errors.As(err, &le) || !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("Expected LoadError wrapping ErrNotExist, got %v", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := LoadColumnar(writeTemp(t, ""))
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("Expected *LoadError, got %v", err)
		}
	})
}

func TestLoaderMemoizes(t *testing.T) {
	calls := 0
	l := NewLoader("data.csv")
	l.load = func(path string) (*ColumnStore, error) {
		calls++
		return &ColumnStore{}, nil
	}

	a, _ := l.Load()
	b, _ := l.Load()
	if calls != 1 {
		t.Fatalf("Expected 1 load, got %d", calls)
	}
	if a != b {
		t.Error("Expected the same store from repeated loads")
	}

	l.Invalidate()
	if _, err := l.Load(); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("Expected reload after Invalidate, got %d loads", calls)
	}
}

func TestLoaderMemoizesFailure(t *testing.T) {
	calls := 0
	l := NewLoader("broken.csv")
	l.load = func(path string) (*ColumnStore, error) {
		calls++
		return nil, &LoadError{Path: path, Err: ErrMissingColumns}
	}

	for i := 0; i < 3; i++ {
		if _, err := l.Load(); !errors.Is(err, ErrMissingColumns) {
			t.Fatalf("Expected memoized LoadError, got %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("Expected no retry, got %d loads", calls)
	}
}

func TestLoadColumnarReportsLine(t *testing.T) {
	content := "Customer ID,Age,Category,Payment Method,Season,Purchase Amount (USD),Location\n" +
		"1,30,Clothing,Cash,Fall,10,Texas\n" +
		"2,31,Clothing,Cash,Fall,12,Ohio\n" +
		",32,Clothing,Cash,Fall,14,Maine\n"
	_, err := LoadColumnar(writeTemp(t, content))
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("Expected ErrMalformedRow, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 4") || !strings.Contains(err.Error(), ColCustomerID) {
		t.Errorf("Expected the error to name line 4 and %s, got %v", ColCustomerID, err)
	}
}
