package engine

import (
	"sort"

	"github.com/LukaszPCyber/Zadanie/internal/models"
	"github.com/shopspring/decimal"
)

const DefaultHistogramBins = 20

// Every function below checks for an empty view first and returns the empty
// value instead of computing over zero rows.

// Aggregate bundles every statistic for the view.
func Aggregate(v View, bins int) models.AggregateResult {
	res := models.AggregateResult{
		Rows:           v.Len(),
		CategoryCounts: CategoryCounts(v),
		PaymentCounts:  PaymentCounts(v),
		SeasonalMeans:  SeasonalMeans(v),
		AgeHistogram:   AgeHistogram(v, bins),
		Summary:        Summarize(v),
	}
	if v.Empty() {
		res.Empty = true
		res.Placeholder = models.NoDataPlaceholder
	}
	return res
}

// CategoryCounts counts rows per category, most frequent first.
// Equal counts keep the order in which the categories first occur in the view.
func CategoryCounts(v View) []models.CountItem {
	out := make([]models.CountItem, 0)
	if v.Empty() {
		return out
	}
	cs := v.store
	counts, first := countByID(v, cs.CategoryIDs, len(cs.CategoryDict))
	for _, id := range rankByFrequency(counts, first) {
		out = append(out, models.CountItem{Name: cs.CategoryDict[id], Count: counts[id]})
	}
	return out
}

// PaymentCounts counts rows per payment method with each method's share of
// the view in percent. Ordered like CategoryCounts.
func PaymentCounts(v View) []models.ShareItem {
	out := make([]models.ShareItem, 0)
	if v.Empty() {
		return out
	}
	cs := v.store
	total := float64(v.Len())
	counts, first := countByID(v, cs.PaymentIDs, len(cs.PaymentDict))
	for _, id := range rankByFrequency(counts, first) {
		out = append(out, models.ShareItem{
			Name:    cs.PaymentDict[id],
			Count:   counts[id],
			Percent: float64(counts[id]) * 100 / total,
		})
	}
	return out
}

// SeasonalMeans is the mean purchase amount per season present in the view,
// ordered by season name. Sums are exact decimals.
func SeasonalMeans(v View) []models.MeanItem {
	out := make([]models.MeanItem, 0)
	if v.Empty() {
		return out
	}
	cs := v.store
	sums := make([]decimal.Decimal, len(cs.SeasonDict))
	counts := make([]int, len(cs.SeasonDict))
	for _, row := range v.rows {
		id := cs.SeasonIDs[row]
		sums[id] = sums[id].Add(decimal.NewFromFloat(cs.Amounts[row]))
		counts[id]++
	}
	for id, n := range counts {
		if n == 0 {
			continue
		}
		mean := sums[id].Div(decimal.NewFromInt(int64(n)))
		out = append(out, models.MeanItem{
			Name:  cs.SeasonDict[id],
			Mean:  mean.InexactFloat64(),
			Count: n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AgeHistogram splits the view's own age range into bins equal-width buckets.
// The last bucket includes its upper edge. A single distinct age is spread
// over [age-0.5, age+0.5].
func AgeHistogram(v View, bins int) *models.Histogram {
	if v.Empty() || bins <= 0 {
		return nil
	}
	ages := v.store.Ages
	lo, hi := ages[v.rows[0]], ages[v.rows[0]]
	for _, row := range v.rows[1:] {
		if a := ages[row]; a < lo {
			lo = a
		} else if a > hi {
			hi = a
		}
	}

	start, end := float64(lo), float64(hi)
	if start == end {
		start, end = start-0.5, end+0.5
	}
	width := (end - start) / float64(bins)

	h := &models.Histogram{Min: start, Max: end, Bins: make([]models.HistogramBin, bins)}
	for i := range h.Bins {
		h.Bins[i].Lower = start + float64(i)*width
		h.Bins[i].Upper = start + float64(i+1)*width
	}
	h.Bins[bins-1].Upper = end

	for _, row := range v.rows {
		idx := int((float64(ages[row]) - start) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		h.Bins[idx].Count++
	}
	return h
}

// Summarize computes mean age, distinct customers and the modal payment method.
// When several methods tie for most frequent, the one seen first in the view wins.
func Summarize(v View) models.Summary {
	if v.Empty() {
		return models.Summary{}
	}
	cs := v.store

	var ageSum int64
	customers := make(map[string]struct{}, v.Len())
	for _, row := range v.rows {
		ageSum += int64(cs.Ages[row])
		customers[cs.CustomerIDs[row]] = struct{}{}
	}
	meanAge := float64(ageSum) / float64(v.Len())
	distinct := len(customers)

	counts, first := countByID(v, cs.PaymentIDs, len(cs.PaymentDict))
	mode := cs.PaymentDict[rankByFrequency(counts, first)[0]]

	return models.Summary{
		MeanAge:            &meanAge,
		DistinctCustomers:  &distinct,
		ModalPaymentMethod: &mode,
	}
}

// countByID tallies dictionary IDs over the view. first holds the view
// position where each ID first occurs, or -1.
func countByID(v View, ids []int32, dictLen int) (counts, first []int) {
	counts = make([]int, dictLen)
	first = make([]int, dictLen)
	for i := range first {
		first[i] = -1
	}
	for pos, row := range v.rows {
		id := ids[row]
		if counts[id] == 0 {
			first[id] = pos
		}
		counts[id]++
	}
	return counts, first
}

// rankByFrequency orders the present IDs by count desc, then first occurrence.
func rankByFrequency(counts, first []int) []int32 {
	ids := make([]int32, 0, len(counts))
	for id, c := range counts {
		if c > 0 {
			ids = append(ids, int32(id))
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return first[a] < first[b]
	})
	return ids
}
