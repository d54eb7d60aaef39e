package engine

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	arrowcsv "github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// Source columns the dashboard needs. Any other column in the file is ignored.
const (
	ColCustomerID = "Customer ID"
	ColAge        = "Age"
	ColCategory   = "Category"
	ColPayment    = "Payment Method"
	ColSeason     = "Season"
	ColAmount     = "Purchase Amount (USD)"
	ColLocation   = "Location"
)

var RequiredColumns = []string{
	ColCustomerID, ColAge, ColCategory, ColPayment, ColSeason, ColAmount, ColLocation,
}

const chunkRows = 4096

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrMalformedRow   = errors.New("malformed row")
)

// LoadError reports why the dataset could not be loaded. It is not transient:
// the same file produces the same error until it is fixed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadColumnar reads the purchase CSV at path into a ColumnStore.
func LoadColumnar(path string) (*ColumnStore, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	// Split off the header row; arrow only sees the body.
	header, body := content, []byte(nil)
	if idx := bytes.IndexByte(content, '\n'); idx != -1 {
		header, body = content[:idx], content[idx+1:]
	}
	header = bytes.TrimRight(header, "\r")

	names, err := csv.NewReader(bytes.NewReader(header)).Read()
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	cols, err := indexColumns(names)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	b := newStoreBuilder()
	if err := b.readBody(body, names, cols); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return b.store(), nil
}

// readBody streams the CSV body through arrow into the builder. arrow panics
// when the first row of a chunk has the wrong field count; that is reported
// as a malformed row like any other.
func (b *storeBuilder) readBody(body []byte, names []string, cols columnIndex) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: line %d: %v", ErrMalformedRow, b.cs.Len()+2, p)
		}
	}()

	r := arrowcsv.NewReader(bytes.NewReader(body), buildSchema(names),
		arrowcsv.WithHeader(false),
		arrowcsv.WithChunk(chunkRows),
		arrowcsv.WithAllocator(memory.DefaultAllocator),
	)
	defer r.Release()

	for r.Next() {
		if err := b.append(r.Record(), cols); err != nil {
			return err
		}
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return nil
}

type columnIndex map[string]int

func indexColumns(names []string) (columnIndex, error) {
	cols := make(columnIndex, len(RequiredColumns))
	for i, n := range names {
		n = strings.TrimSpace(n)
		if _, dup := cols[n]; !dup {
			cols[n] = i
		}
	}
	var missing []string
	for _, req := range RequiredColumns {
		if _, ok := cols[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

// buildSchema types Age and Purchase Amount; everything else stays a string.
func buildSchema(names []string) *arrow.Schema {
	fields := make([]arrow.Field, len(names))
	for i, n := range names {
		var typ arrow.DataType = arrow.BinaryTypes.String
		switch strings.TrimSpace(n) {
		case ColAge:
			typ = arrow.PrimitiveTypes.Int64
		case ColAmount:
			typ = arrow.PrimitiveTypes.Float64
		}
		// Field names must be unique for arrow; position is what matters here.
		fields[i] = arrow.Field{Name: fmt.Sprintf("c%d", i), Type: typ, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

type storeBuilder struct {
	cs       *ColumnStore
	category *dictionary
	payment  *dictionary
	season   *dictionary
	loc      *dictionary
}

func newStoreBuilder() *storeBuilder {
	return &storeBuilder{
		cs:       &ColumnStore{},
		category: newDictionary(),
		payment:  newDictionary(),
		season:   newDictionary(),
		loc:      newDictionary(),
	}
}

func (b *storeBuilder) append(rec arrow.Record, cols columnIndex) error {
	ages := rec.Column(cols[ColAge]).(*array.Int64)
	amounts := rec.Column(cols[ColAmount]).(*array.Float64)
	// Required text columns, in the order they are stored below.
	text := [...]struct {
		name string
		arr  *array.String
	}{
		{ColCustomerID, rec.Column(cols[ColCustomerID]).(*array.String)},
		{ColCategory, rec.Column(cols[ColCategory]).(*array.String)},
		{ColPayment, rec.Column(cols[ColPayment]).(*array.String)},
		{ColSeason, rec.Column(cols[ColSeason]).(*array.String)},
		{ColLocation, rec.Column(cols[ColLocation]).(*array.String)},
	}

	cs := b.cs
	for i := 0; i < int(rec.NumRows()); i++ {
		line := cs.Len() + 2 // 1-based, after the header

		if ages.IsNull(i) || amounts.IsNull(i) {
			return fmt.Errorf("%w: line %d: empty %s or %s", ErrMalformedRow, line, ColAge, ColAmount)
		}
		age, amount := ages.Value(i), amounts.Value(i)
		if age <= 0 || age > math.MaxInt32 {
			return fmt.Errorf("%w: line %d: %s must be a positive integer, got %d", ErrMalformedRow, line, ColAge, age)
		}
		if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return fmt.Errorf("%w: line %d: %s must be non-negative, got %v", ErrMalformedRow, line, ColAmount, amount)
		}

		var fields [len(text)]string
		for j, col := range text {
			if fields[j] = cloneField(col.arr, i); fields[j] == "" {
				return fmt.Errorf("%w: line %d: empty %s", ErrMalformedRow, line, col.name)
			}
		}

		cs.CustomerIDs = append(cs.CustomerIDs, fields[0])
		cs.Ages = append(cs.Ages, int32(age))
		cs.Amounts = append(cs.Amounts, amount)
		cs.CategoryIDs = append(cs.CategoryIDs, b.category.encode(fields[1]))
		cs.PaymentIDs = append(cs.PaymentIDs, b.payment.encode(fields[2]))
		cs.SeasonIDs = append(cs.SeasonIDs, b.season.encode(fields[3]))
		cs.LocationIDs = append(cs.LocationIDs, b.loc.encode(fields[4]))
	}
	return nil
}

func (b *storeBuilder) store() *ColumnStore {
	b.cs.CategoryDict = b.category.list
	b.cs.PaymentDict = b.payment.list
	b.cs.SeasonDict = b.season.list
	b.cs.LocationDict = b.loc.list
	return b.cs
}

// cloneField copies the value out of arrow's buffer so the store does not pin it.
func cloneField(col *array.String, i int) string {
	if col.IsNull(i) {
		return ""
	}
	return strings.Clone(strings.TrimSpace(col.Value(i)))
}

// Loader loads the dataset once and hands the same store to every caller.
// A failed load is memoized too; only Invalidate triggers another attempt.
type Loader struct {
	path string
	load func(string) (*ColumnStore, error)

	mu    sync.Mutex
	done  bool
	store *ColumnStore
	err   error
}

func NewLoader(path string) *Loader {
	return &Loader{path: path, load: LoadColumnar}
}

func (l *Loader) Path() string { return l.path }

func (l *Loader) Load() (*ColumnStore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.store, l.err = l.load(l.path)
		l.done = true
	}
	return l.store, l.err
}

// Invalidate drops the memoized result so the next Load reads the file again.
// The server calls it on SIGHUP.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done, l.store, l.err = false, nil, nil
}
