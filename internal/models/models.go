package models

// NoDataPlaceholder is shown in place of any chart or statistic computed over
// an empty selection.
const NoDataPlaceholder = "no data for this selection"

// Record is one purchase transaction row.
type Record struct {
	CustomerID     string  `json:"customer_id"`
	Age            int     `json:"age"`
	Category       string  `json:"category"`
	PaymentMethod  string  `json:"payment_method"`
	Season         string  `json:"season"`
	PurchaseAmount float64 `json:"purchase_amount"`
	Location       string  `json:"location"`
}

// FilterOptions are the bounds a client uses to draw its filter controls.
type FilterOptions struct {
	AgeMin        int      `json:"age_min"`
	AgeMax        int      `json:"age_max"`
	DefaultAgeMin int      `json:"default_age_min"`
	DefaultAgeMax int      `json:"default_age_max"`
	Categories    []string `json:"categories"`
}

// AppliedFilter echoes the filter a response was computed for.
type AppliedFilter struct {
	AgeMin     int      `json:"age_min"`
	AgeMax     int      `json:"age_max"`
	Categories []string `json:"categories"`
}

type CountItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ShareItem is a CountItem with its percentage of the view, for pie charts.
type ShareItem struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type MeanItem struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Histogram struct {
	Min  float64        `json:"min"`
	Max  float64        `json:"max"`
	Bins []HistogramBin `json:"bins"`
}

// Summary fields are nil when the view is empty.
type Summary struct {
	MeanAge            *float64 `json:"mean_age"`
	DistinctCustomers  *int     `json:"distinct_customer_count"`
	ModalPaymentMethod *string  `json:"modal_payment_method"`
}

type AggregateResult struct {
	Rows           int         `json:"rows"`
	Empty          bool        `json:"empty"`
	Placeholder    string      `json:"placeholder,omitempty"`
	CategoryCounts []CountItem `json:"category_counts"`
	PaymentCounts  []ShareItem `json:"payment_counts"`
	SeasonalMeans  []MeanItem  `json:"seasonal_means"`
	AgeHistogram   *Histogram  `json:"age_histogram"`
	Summary        Summary     `json:"summary"`
}

// MapPoint is one plotted purchase location.
type MapPoint struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Weight   float64 `json:"weight"`
	Amount   float64 `json:"amount"`
	Location string  `json:"location"`
	Tooltip  string  `json:"tooltip"`
}

type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
}

type MapLayer struct {
	Points      []MapPoint `json:"points"`
	Unresolved  int        `json:"unresolved"`
	Weighted    bool       `json:"weighted"`
	Radius      float64    `json:"radius"`
	Color       [4]int     `json:"color"`
	ViewState   ViewState  `json:"view_state"`
	Placeholder string     `json:"placeholder,omitempty"`
}

// --- Render-ready chart shapes ---

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

type ChartConfig struct {
	ID          string        `json:"id"`
	ChartType   string        `json:"chart_type"` // bar, pie, histogram
	Title       string        `json:"title"`
	XAxis       string        `json:"x_axis,omitempty"`
	YAxis       string        `json:"y_axis,omitempty"`
	Series      []ChartSeries `json:"series"`
	Placeholder string        `json:"placeholder,omitempty"`
}

type TableData struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type Charts struct {
	Charts  []ChartConfig `json:"charts"`
	Summary TableData     `json:"summary"`
}

// Dashboard bundles every view for one filter selection.
type Dashboard struct {
	Filter     AppliedFilter   `json:"filter"`
	Records    []Record        `json:"records"`
	Aggregates AggregateResult `json:"aggregates"`
	Charts     Charts          `json:"charts"`
	Map        MapLayer        `json:"map"`
}
