package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LukaszPCyber/Zadanie/internal/api"
	"github.com/LukaszPCyber/Zadanie/internal/config"
	"github.com/LukaszPCyber/Zadanie/internal/engine"
	"github.com/LukaszPCyber/Zadanie/internal/geo"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	flag.Parse()

	logger := log.New("shopdash")
	logger.SetHeader("${time_rfc3339} ${level} ${prefix} ${short_file}:${line}")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.SetLevel(parseLevel(cfg.Log.Level))

	resolver, err := newResolver(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to set up location resolver: %v", err)
	}

	// 1. Initialize Echo (Starts Instantly)
	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.JSONSerializer = api.JSONSerializer{}
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// 2. Handler starts without data; data endpoints answer 503 until the load finishes.
	h := api.NewHandler(resolver, api.Options{
		DefaultAgeMin: cfg.Filter.DefaultAgeMin,
		DefaultAgeMax: cfg.Filter.DefaultAgeMax,
		HistogramBins: cfg.Aggregation.HistogramBins,
		Map: engine.MapOptions{
			Weighted:      cfg.Map.Weighted,
			DefaultWeight: cfg.Map.DefaultWeight,
			Radius:        cfg.Map.Radius,
			Zoom:          cfg.Map.Zoom,
			Pitch:         cfg.Map.Pitch,
		},
	})
	h.RegisterRoutes(e)

	// 3. Load the dataset in the background. A failure is reported on every
	// data endpoint until SIGHUP asks for another attempt; a failed reload
	// keeps serving the previous dataset.
	loader := engine.NewLoader(cfg.Dataset.Path)
	publish := func(reload bool) {
		logger.Infof("loading dataset %s", loader.Path())
		t0 := time.Now()

		store, err := loader.Load()
		if err != nil {
			logger.Errorf("dataset unavailable: %v", err)
			if !reload || !h.Ready() {
				h.SetError(err)
			}
			return
		}
		h.SetData(store)
		logger.Infof("dataset loaded: %d rows, %d categories in %v", store.Len(), len(store.CategoryDict), time.Since(t0))
	}
	go publish(false)

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			logger.Info("SIGHUP received, reloading dataset")
			loader.Invalidate()
			publish(true)
		}
	}()

	// 4. Start Server
	go func() {
		logger.Infof("server listening on %s (dataset loading in background)", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("signal received, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Errorf("forced shutdown: %v", err)
	}
}

func newResolver(cfg *config.Config, logger *log.Logger) (*geo.Resolver, error) {
	strategy, err := geo.ParseStrategy(cfg.Locations.Strategy)
	if err != nil {
		return nil, err
	}
	var source geo.Geocoder
	switch strategy {
	case geo.StrategyGeocode:
		g := cfg.Locations.Geocode
		source = geo.NewNominatim(g.Endpoint, g.UserAgent, g.TimeoutDuration(), g.RateLimit)
		logger.Infof("locations resolved by geocoding via %s (timeout %s, %.2f req/s)", g.Endpoint, g.TimeoutDuration(), g.RateLimit)
	default:
		table := geo.NewStaticTable(geo.USStates())
		source = table
		logger.Infof("locations resolved from static table (%d entries)", table.Len())
	}
	return geo.NewResolver(source, logger), nil
}

func parseLevel(s string) log.Lvl {
	switch s {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}
