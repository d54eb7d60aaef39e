package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/LukaszPCyber/Zadanie/internal/engine"
	"github.com/LukaszPCyber/Zadanie/internal/geo"
	"github.com/LukaszPCyber/Zadanie/internal/models"
	"github.com/labstack/echo/v4"
)

const (
	ErrDatasetLoading     = "dataset_loading"
	ErrDatasetUnavailable = "dataset_unavailable"
	ErrInvalidFilter      = "invalid_filter"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

type Options struct {
	DefaultAgeMin int
	DefaultAgeMax int
	HistogramBins int
	Map           engine.MapOptions
}

// dataset is swapped in by SetData or SetError; a reload swaps it again.
type dataset struct {
	store *engine.ColumnStore
	err   error
}

type Handler struct {
	data     atomic.Pointer[dataset] // nil while loading
	resolver engine.LocationResolver
	opts     Options
}

func NewHandler(resolver engine.LocationResolver, opts Options) *Handler {
	if opts.HistogramBins <= 0 {
		opts.HistogramBins = engine.DefaultHistogramBins
	}
	return &Handler{resolver: resolver, opts: opts}
}

// SetData publishes the loaded dataset.
func (h *Handler) SetData(cs *engine.ColumnStore) {
	h.data.Store(&dataset{store: cs})
}

// SetError publishes a load failure; every data endpoint reports it until
// the next SetData.
func (h *Handler) SetError(err error) {
	h.data.Store(&dataset{err: err})
}

// Ready reports whether a dataset is being served.
func (h *Handler) Ready() bool {
	d := h.data.Load()
	return d != nil && d.store != nil
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	api := e.Group("/api")
	api.GET("/options", h.GetOptions)
	api.GET("/records", h.GetRecords)
	api.GET("/aggregates", h.GetAggregates)
	api.GET("/charts", h.GetCharts)
	api.GET("/map", h.GetMap)
	api.GET("/dashboard", h.GetDashboard)
}

// --- HANDLERS ---

func (h *Handler) Health(c echo.Context) error {
	body := map[string]interface{}{"status": "ok"}
	switch d := h.data.Load(); {
	case d == nil:
		body["dataset"] = "loading"
	case d.err != nil:
		body["dataset"] = "failed"
		body["error"] = d.err.Error()
	default:
		body["dataset"] = "ready"
		body["rows"] = d.store.Len()
	}
	if s, ok := h.resolver.(interface{ Stats() geo.Stats }); ok {
		body["locations"] = s.Stats()
	}
	return c.JSON(http.StatusOK, body)
}

func (h *Handler) GetOptions(c echo.Context) error {
	cs, err := h.store()
	if err != nil {
		return err
	}
	lo, hi, _ := cs.AgeRange()
	defLo, defHi := engine.ClampAges(cs, h.opts.DefaultAgeMin, h.opts.DefaultAgeMax)
	return c.JSON(http.StatusOK, models.FilterOptions{
		AgeMin:        lo,
		AgeMax:        hi,
		DefaultAgeMin: defLo,
		DefaultAgeMax: defHi,
		Categories:    cs.Categories(),
	})
}

func (h *Handler) GetRecords(c echo.Context) error {
	view, applied, err := h.selection(c)
	if err != nil {
		return err
	}
	total := view.Len()
	limit, offset := getPaginationParams(c, total)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"filter": applied,
		"data":   view.Records(offset, limit),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetAggregates(c echo.Context) error {
	view, applied, err := h.selection(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"filter":     applied,
		"aggregates": engine.Aggregate(view, h.opts.HistogramBins),
	})
}

func (h *Handler) GetCharts(c echo.Context) error {
	view, _, err := h.selection(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.BuildCharts(engine.Aggregate(view, h.opts.HistogramBins)))
}

func (h *Handler) GetMap(c echo.Context) error {
	view, _, err := h.selection(c)
	if err != nil {
		return err
	}
	opts, err := h.mapOptions(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.BuildMapLayer(c.Request().Context(), view, h.resolver, opts))
}

func (h *Handler) GetDashboard(c echo.Context) error {
	view, applied, err := h.selection(c)
	if err != nil {
		return err
	}
	opts, err := h.mapOptions(c)
	if err != nil {
		return err
	}
	limit, offset := getPaginationParams(c, view.Len())
	agg := engine.Aggregate(view, h.opts.HistogramBins)

	return c.JSON(http.StatusOK, models.Dashboard{
		Filter:     applied,
		Records:    view.Records(offset, limit),
		Aggregates: agg,
		Charts:     engine.BuildCharts(agg),
		Map:        engine.BuildMapLayer(c.Request().Context(), view, h.resolver, opts),
	})
}

// --- REQUEST HELPERS ---

func (h *Handler) store() (*engine.ColumnStore, error) {
	d := h.data.Load()
	if d == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, ErrorResponse{
			ErrorType: ErrDatasetLoading,
			Message:   "dataset is still loading",
		})
	}
	if d.err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{
			ErrorType: ErrDatasetUnavailable,
			Message:   d.err.Error(),
		}).SetInternal(d.err)
	}
	return d.store, nil
}

// selection parses the filter parameters and applies them.
//
//	age_min, age_max  inclusive bounds; default to the configured range
//	category          repeatable or comma separated; absent means all categories,
//	                  present but blank means none
func (h *Handler) selection(c echo.Context) (engine.View, models.AppliedFilter, error) {
	cs, err := h.store()
	if err != nil {
		return engine.View{}, models.AppliedFilter{}, err
	}
	spec, err := parseFilter(c, cs, h.opts.DefaultAgeMin, h.opts.DefaultAgeMax)
	if err != nil {
		return engine.View{}, models.AppliedFilter{}, invalidFilter(err)
	}
	return engine.Apply(cs, spec), models.AppliedFilter{
		AgeMin:     spec.AgeMin,
		AgeMax:     spec.AgeMax,
		Categories: spec.Categories,
	}, nil
}

func parseFilter(c echo.Context, cs *engine.ColumnStore, defMin, defMax int) (engine.FilterSpec, error) {
	lo, err := intParam(c, "age_min", defMin)
	if err != nil {
		return engine.FilterSpec{}, err
	}
	hi, err := intParam(c, "age_max", defMax)
	if err != nil {
		return engine.FilterSpec{}, err
	}
	spec := engine.FilterSpec{AgeMin: lo, AgeMax: hi}
	if err := spec.Validate(); err != nil {
		return engine.FilterSpec{}, err
	}
	spec.AgeMin, spec.AgeMax = engine.ClampAges(cs, lo, hi)

	raw, present := c.QueryParams()["category"]
	if !present {
		spec.Categories = cs.Categories()
		return spec, nil
	}
	spec.Categories = []string{}
	for _, v := range raw {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				spec.Categories = append(spec.Categories, name)
			}
		}
	}
	return spec, nil
}

func intParam(c echo.Context, name string, def int) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", engine.ErrInvalidFilter, name, s)
	}
	return n, nil
}

func (h *Handler) mapOptions(c echo.Context) (engine.MapOptions, error) {
	opts := h.opts.Map
	if s := c.QueryParam("weighted"); s != "" {
		w, err := strconv.ParseBool(s)
		if err != nil {
			return opts, invalidFilter(fmt.Errorf("%w: weighted must be true or false, got %q", engine.ErrInvalidFilter, s))
		}
		opts.Weighted = w
	}
	return opts, nil
}

func invalidFilter(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
		ErrorType: ErrInvalidFilter,
		Message:   err.Error(),
	}).SetInternal(err)
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
