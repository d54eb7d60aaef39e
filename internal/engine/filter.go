package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/LukaszPCyber/Zadanie/internal/models"
)

var ErrInvalidFilter = errors.New("invalid filter")

// FilterSpec narrows the dataset: ages in [AgeMin, AgeMax] (inclusive) and a
// category in Categories. An empty Categories set selects nothing.
type FilterSpec struct {
	AgeMin     int
	AgeMax     int
	Categories []string
}

func (f FilterSpec) Validate() error {
	if f.AgeMin > f.AgeMax {
		return fmt.Errorf("%w: age_min %d > age_max %d", ErrInvalidFilter, f.AgeMin, f.AgeMax)
	}
	return nil
}

// View is an ordered subset of a ColumnStore, held as row indices (zero-copy).
type View struct {
	store *ColumnStore
	rows  []int32
}

func (v View) Len() int      { return len(v.rows) }
func (v View) Empty() bool   { return len(v.rows) == 0 }
func (v View) Rows() []int32 { return v.rows }

func (v View) Record(i int) models.Record { return v.store.Record(v.rows[i]) }

// Records materializes rows [offset, offset+limit). limit <= 0 means all.
func (v View) Records(offset, limit int) []models.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(v.rows) {
		return []models.Record{}
	}
	end := len(v.rows)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	out := make([]models.Record, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, v.Record(i))
	}
	return out
}

// Apply returns the rows of cs matching spec in their original order.
// Single pass over the age and category columns.
func Apply(cs *ColumnStore, spec FilterSpec) View {
	view := View{store: cs, rows: []int32{}}
	if len(spec.Categories) == 0 || spec.AgeMin > spec.AgeMax {
		return view
	}

	// Category mask indexed by dictionary ID; unknown names match nothing.
	allowed := make([]bool, len(cs.CategoryDict))
	lookup := make(map[string]int32, len(cs.CategoryDict))
	for id, name := range cs.CategoryDict {
		lookup[name] = int32(id)
	}
	matched := false
	for _, c := range spec.Categories {
		if id, ok := lookup[c]; ok {
			allowed[id] = true
			matched = true
		}
	}
	if !matched {
		return view
	}

	lo, hi := clamp32(spec.AgeMin), clamp32(spec.AgeMax)
	ages, cats := cs.Ages, cs.CategoryIDs
	for i := range ages {
		if a := ages[i]; a >= lo && a <= hi && allowed[cats[i]] {
			view.rows = append(view.rows, int32(i))
		}
	}
	return view
}

// ClampAges fits [lo, hi] into the dataset's observed age range. An inverted
// result is left inverted; Apply turns it into an empty view.
func ClampAges(cs *ColumnStore, lo, hi int) (int, int) {
	first, last, ok := cs.AgeRange()
	if !ok {
		return lo, hi
	}
	if lo < first {
		lo = first
	}
	if hi > last {
		hi = last
	}
	return lo, hi
}

func clamp32(n int) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int32(n)
}
