package engine

import (
	"testing"

	"github.com/LukaszPCyber/Zadanie/internal/models"
)

// newColumnStore builds a store from already-parsed records, in order.
func newColumnStore(records []models.Record) *ColumnStore {
	b := newStoreBuilder()
	cs := b.cs
	for _, r := range records {
		cs.CustomerIDs = append(cs.CustomerIDs, r.CustomerID)
		cs.Ages = append(cs.Ages, int32(r.Age))
		cs.Amounts = append(cs.Amounts, r.PurchaseAmount)
		cs.CategoryIDs = append(cs.CategoryIDs, b.category.encode(r.Category))
		cs.PaymentIDs = append(cs.PaymentIDs, b.payment.encode(r.PaymentMethod))
		cs.SeasonIDs = append(cs.SeasonIDs, b.season.encode(r.Season))
		cs.LocationIDs = append(cs.LocationIDs, b.loc.encode(r.Location))
	}
	return b.store()
}

func TestColumnStoreDictionaries(t *testing.T) {
	cs := newColumnStore(purchases())

	if cs.Len() != 7 {
		t.Fatalf("Expected 7 rows, got %d", cs.Len())
	}
	// First-seen order, one entry per distinct value.
	if len(cs.LocationDict) != 6 || cs.LocationDict[3] != "Atlantis" {
		t.Errorf("Unexpected location dictionary %v", cs.LocationDict)
	}
	if cs.LocationIDs[0] != cs.LocationIDs[6] {
		t.Errorf("Expected rows 0 and 6 to share the Kentucky ID")
	}
	if got := cs.Record(6); got != purchases()[6] {
		t.Errorf("Record(6): got %+v", got)
	}

	cats := cs.Categories()
	cats[0] = "changed"
	if cs.CategoryDict[0] != "Clothing" {
		t.Error("Categories must return a copy")
	}
}
