package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/LukaszPCyber/Zadanie/internal/models"
)

// BuildCharts turns an AggregateResult into render-ready chart configs and
// the summary table. An empty result gives charts without series, each
// carrying the placeholder text.
func BuildCharts(res models.AggregateResult) models.Charts {
	charts := []models.ChartConfig{
		categoryChart(res.CategoryCounts),
		paymentChart(res.PaymentCounts),
		seasonChart(res.SeasonalMeans),
		ageChart(res.AgeHistogram),
	}
	if res.Empty {
		for i := range charts {
			charts[i].Series = []models.ChartSeries{}
			charts[i].Placeholder = models.NoDataPlaceholder
		}
	}
	return models.Charts{Charts: charts, Summary: summaryTable(res.Summary)}
}

func categoryChart(items []models.CountItem) models.ChartConfig {
	points := make([]models.ChartPoint, 0, len(items))
	for _, it := range items {
		points = append(points, models.ChartPoint{Label: it.Name, Value: float64(it.Count)})
	}
	return models.ChartConfig{
		ID:        "category_counts",
		ChartType: "bar",
		Title:     "Purchases by category",
		XAxis:     "Category",
		YAxis:     "Purchases",
		Series:    []models.ChartSeries{{Name: "Purchases", Data: points}},
	}
}

func paymentChart(items []models.ShareItem) models.ChartConfig {
	points := make([]models.ChartPoint, 0, len(items))
	for _, it := range items {
		points = append(points, models.ChartPoint{
			Label: fmt.Sprintf("%s (%.1f%%)", it.Name, it.Percent),
			Value: roundTo(it.Percent, 1),
		})
	}
	return models.ChartConfig{
		ID:        "payment_methods",
		ChartType: "pie",
		Title:     "Payment method share",
		Series:    []models.ChartSeries{{Name: "Share (%)", Data: points}},
	}
}

func seasonChart(items []models.MeanItem) models.ChartConfig {
	points := make([]models.ChartPoint, 0, len(items))
	for _, it := range items {
		points = append(points, models.ChartPoint{Label: it.Name, Value: roundTo(it.Mean, 2)})
	}
	return models.ChartConfig{
		ID:        "seasonal_means",
		ChartType: "bar",
		Title:     "Mean purchase amount by season",
		XAxis:     "Season",
		YAxis:     "Mean purchase amount (USD)",
		Series:    []models.ChartSeries{{Name: "Mean amount", Data: points}},
	}
}

func ageChart(h *models.Histogram) models.ChartConfig {
	cfg := models.ChartConfig{
		ID:        "age_histogram",
		ChartType: "histogram",
		Title:     "Customers by age",
		XAxis:     "Age",
		YAxis:     "Customers",
		Series:    []models.ChartSeries{},
	}
	if h == nil {
		return cfg
	}
	points := make([]models.ChartPoint, 0, len(h.Bins))
	for _, b := range h.Bins {
		points = append(points, models.ChartPoint{
			Label: fmt.Sprintf("%.1f-%.1f", b.Lower, b.Upper),
			Value: float64(b.Count),
		})
	}
	cfg.Series = []models.ChartSeries{{Name: "Customers", Data: points}}
	return cfg
}

func summaryTable(s models.Summary) models.TableData {
	meanAge, distinct, mode := models.NoDataPlaceholder, models.NoDataPlaceholder, models.NoDataPlaceholder
	if s.MeanAge != nil {
		meanAge = strconv.FormatFloat(roundTo(*s.MeanAge, 2), 'f', -1, 64)
	}
	if s.DistinctCustomers != nil {
		distinct = strconv.Itoa(*s.DistinctCustomers)
	}
	if s.ModalPaymentMethod != nil {
		mode = *s.ModalPaymentMethod
	}
	return models.TableData{
		Title:   "Summary",
		Columns: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Mean age", meanAge},
			{"Distinct customers", distinct},
			{"Most common payment method", mode},
		},
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
