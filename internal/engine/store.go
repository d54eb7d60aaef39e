package engine

import "github.com/LukaszPCyber/Zadanie/internal/models"

// ColumnStore holds the purchase table in Struct-of-Arrays format.
// It is immutable once LoadColumnar returns.
type ColumnStore struct {
	// Data Columns (Flat Arrays)
	CustomerIDs []string
	Ages        []int32
	Amounts     []float64

	// Dictionary Encoded IDs (0..N)
	CategoryIDs []int32
	PaymentIDs  []int32
	SeasonIDs   []int32
	LocationIDs []int32

	// Dictionaries (ID -> String), in first-seen order
	CategoryDict []string
	PaymentDict  []string
	SeasonDict   []string
	LocationDict []string
}

func (cs *ColumnStore) Len() int { return len(cs.Ages) }

// AgeRange returns the observed min and max age. ok is false for an empty store.
func (cs *ColumnStore) AgeRange() (lo, hi int, ok bool) {
	if len(cs.Ages) == 0 {
		return 0, 0, false
	}
	lo, hi = int(cs.Ages[0]), int(cs.Ages[0])
	for _, a := range cs.Ages[1:] {
		if int(a) < lo {
			lo = int(a)
		}
		if int(a) > hi {
			hi = int(a)
		}
	}
	return lo, hi, true
}

// Categories returns the distinct categories in the order they first appear.
func (cs *ColumnStore) Categories() []string {
	out := make([]string, len(cs.CategoryDict))
	copy(out, cs.CategoryDict)
	return out
}

// Record materializes a single row.
func (cs *ColumnStore) Record(row int32) models.Record {
	return models.Record{
		CustomerID:     cs.CustomerIDs[row],
		Age:            int(cs.Ages[row]),
		Category:       cs.CategoryDict[cs.CategoryIDs[row]],
		PaymentMethod:  cs.PaymentDict[cs.PaymentIDs[row]],
		Season:         cs.SeasonDict[cs.SeasonIDs[row]],
		PurchaseAmount: cs.Amounts[row],
		Location:       cs.LocationDict[cs.LocationIDs[row]],
	}
}

// All returns a view over every row.
func (cs *ColumnStore) All() View {
	rows := make([]int32, cs.Len())
	for i := range rows {
		rows[i] = int32(i)
	}
	return View{store: cs, rows: rows}
}

// dictionary assigns dense IDs to strings in first-seen order.
type dictionary struct {
	ids  map[string]int32
	list []string
}

func newDictionary() *dictionary {
	return &dictionary{ids: make(map[string]int32)}
}

func (d *dictionary) encode(s string) int32 {
	if id, ok := d.ids[s]; ok {
		return id
	}
	id := int32(len(d.list))
	d.list = append(d.list, s)
	d.ids[s] = id
	return id
}
