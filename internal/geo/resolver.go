package geo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Failure kinds returned by Geocoder.Lookup. Resolver.Resolve folds all of
// them into "unresolved".
var (
	ErrNoMatch = errors.New("location not found")
	ErrTimeout = errors.New("geocoding timed out")
	ErrNetwork = errors.New("geocoding request failed")
)

// Strategy selects how location strings become coordinates.
type Strategy string

const (
	StrategyStatic  Strategy = "static"
	StrategyGeocode Strategy = "geocode"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyStatic, StrategyGeocode:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown location strategy %q (want %s or %s)", s, StrategyStatic, StrategyGeocode)
}

// Geocoder turns one location string into a coordinate.
type Geocoder interface {
	Lookup(ctx context.Context, location string) (Coordinate, error)
}

// Logger is the subset of gommon/log used by the resolver.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type outcome struct {
	coord Coordinate
	err   error
}

// Resolver caches the outcome of every distinct location string for the life
// of the process, failures included, so a location is looked up at most once.
// Concurrent first lookups of the same string share one underlying call.
type Resolver struct {
	source Geocoder
	logger Logger

	mu    sync.RWMutex
	cache map[string]outcome
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

func NewResolver(source Geocoder, logger Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: logger,
		cache:  make(map[string]outcome),
	}
}

// Resolve returns the coordinate for location, or ok == false if it cannot be
// resolved for any reason.
func (r *Resolver) Resolve(ctx context.Context, location string) (Coordinate, bool) {
	c, err := r.Lookup(ctx, location)
	return c, err == nil
}

// Lookup is Resolve with the failure kind kept.
func (r *Resolver) Lookup(ctx context.Context, location string) (Coordinate, error) {
	if o, ok := r.cached(location); ok {
		r.hits.Add(1)
		return o.coord, o.err
	}

	v, _, _ := r.group.Do(location, func() (interface{}, error) {
		if o, ok := r.cached(location); ok {
			return o, nil
		}
		r.misses.Add(1)
		// The result is shared and cached; one caller going away must not fail it.
		c, err := r.source.Lookup(context.WithoutCancel(ctx), location)
		o := outcome{coord: c, err: err}

		r.mu.Lock()
		r.cache[location] = o
		r.mu.Unlock()

		r.logFailure(location, err)
		return o, nil
	})
	o := v.(outcome)
	return o.coord, o.err
}

func (r *Resolver) cached(location string) (outcome, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.cache[location]
	return o, ok
}

func (r *Resolver) logFailure(location string, err error) {
	if err == nil || r.logger == nil {
		return
	}
	if errors.Is(err, ErrNoMatch) {
		r.logger.Debugf("location %q unresolved: %v", location, err)
		return
	}
	r.logger.Warnf("location %q unresolved: %v", location, err)
}

type Stats struct {
	Hits    int64 `json:"hits"`
	Lookups int64 `json:"lookups"`
	Cached  int   `json:"cached"`
}

// Stats reports cache hits and the number of underlying lookups performed.
func (r *Resolver) Stats() Stats {
	r.mu.RLock()
	n := len(r.cache)
	r.mu.RUnlock()
	return Stats{Hits: r.hits.Load(), Lookups: r.misses.Load(), Cached: n}
}
