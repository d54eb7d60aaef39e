package engine

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/LukaszPCyber/Zadanie/internal/geo"
	"github.com/LukaszPCyber/Zadanie/internal/models"
)

// LocationResolver maps a location string to a coordinate; ok is false when
// the location cannot be resolved.
type LocationResolver interface {
	Resolve(ctx context.Context, location string) (geo.Coordinate, bool)
}

type MapOptions struct {
	Weighted      bool    // weight each point by its purchase amount
	DefaultWeight float64 // weight when not Weighted
	Radius        float64
	Zoom          float64
	Pitch         float64
}

var pointColor = [4]int{200, 30, 0, 160}

// MapPoints yields one point per row whose location resolves. Rows that do
// not resolve are skipped; they still count everywhere else.
func MapPoints(ctx context.Context, v View, r LocationResolver, opts MapOptions) iter.Seq[models.MapPoint] {
	return func(yield func(models.MapPoint) bool) {
		cs := v.store
		if cs == nil {
			return
		}
		// Per-pass memo by location ID: 0 unknown, 1 resolved, -1 unresolved.
		state := make([]int8, len(cs.LocationDict))
		coords := make([]geo.Coordinate, len(cs.LocationDict))

		for _, row := range v.rows {
			id := cs.LocationIDs[row]
			loc := cs.LocationDict[id]
			if state[id] == 0 {
				if c, ok := r.Resolve(ctx, loc); ok {
					state[id], coords[id] = 1, c
				} else {
					state[id] = -1
				}
			}
			if state[id] < 0 {
				continue
			}

			amount := cs.Amounts[row]
			weight := opts.DefaultWeight
			if opts.Weighted {
				weight = amount
			}
			p := models.MapPoint{
				Lat:      coords[id].Lat,
				Lon:      coords[id].Lon,
				Weight:   weight,
				Amount:   amount,
				Location: loc,
				Tooltip:  fmt.Sprintf("%s: $%.2f", loc, amount),
			}
			if !yield(p) {
				return
			}
		}
	}
}

// BuildMapLayer collects the points for the view and frames them.
func BuildMapLayer(ctx context.Context, v View, r LocationResolver, opts MapOptions) models.MapLayer {
	layer := models.MapLayer{
		Points:   []models.MapPoint{},
		Weighted: opts.Weighted,
		Radius:   opts.Radius,
		Color:    pointColor,
		ViewState: models.ViewState{
			Latitude:  geo.USCenter.Lat,
			Longitude: geo.USCenter.Lon,
			Zoom:      opts.Zoom,
			Pitch:     opts.Pitch,
		},
	}
	if v.Empty() {
		layer.Placeholder = models.NoDataPlaceholder
		return layer
	}

	layer.Points = slices.Collect(MapPoints(ctx, v, r, opts))
	if layer.Points == nil {
		layer.Points = []models.MapPoint{}
	}
	layer.Unresolved = v.Len() - len(layer.Points)

	coords := make([]geo.Coordinate, len(layer.Points))
	for i, p := range layer.Points {
		coords[i] = geo.Coordinate{Lat: p.Lat, Lon: p.Lon}
	}
	if c, ok := geo.Centroid(coords); ok {
		layer.ViewState.Latitude, layer.ViewState.Longitude = c.Lat, c.Lon
	}
	if len(layer.Points) == 0 {
		layer.Placeholder = "no resolvable locations for this selection"
	}
	return layer
}
