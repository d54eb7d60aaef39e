package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 1 << 20

// Nominatim geocodes free-form location strings against an OpenStreetMap
// Nominatim search endpoint. Each call is bounded by Timeout, including the
// time spent waiting on Limiter.
type Nominatim struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
	Client    *http.Client
	Limiter   *rate.Limiter // nil means unlimited
}

// NewNominatim allows perSecond requests per second (the public service asks
// for at most 1); perSecond <= 0 disables the limit.
func NewNominatim(endpoint, userAgent string, timeout time.Duration, perSecond float64) *Nominatim {
	n := &Nominatim{
		Endpoint:  endpoint,
		UserAgent: userAgent,
		Timeout:   timeout,
		Client:    &http.Client{},
	}
	if perSecond > 0 {
		n.Limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return n
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *Nominatim) Lookup(ctx context.Context, location string) (Coordinate, error) {
	if strings.TrimSpace(location) == "" {
		return Coordinate{}, fmt.Errorf("%w: empty location", ErrNoMatch)
	}
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	if n.Limiter != nil {
		if err := n.Limiter.Wait(ctx); err != nil {
			return Coordinate{}, fmt.Errorf("%w: rate limit: %v", ErrTimeout, err)
		}
	}

	u, err := url.Parse(n.Endpoint)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: bad endpoint: %v", ErrNetwork, err)
	}
	q := u.Query()
	q.Set("q", location)
	q.Set("format", "json")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Accept", "application/json")

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Coordinate{}, classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinate{}, fmt.Errorf("%w: %s returned %d", ErrNetwork, u.Host, resp.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&places); err != nil {
		return Coordinate{}, classify(ctx, err)
	}
	if len(places) == 0 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrNoMatch, location)
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	c := Coordinate{Lat: lat, Lon: lon}
	if errLat != nil || errLon != nil || !c.Valid() {
		return Coordinate{}, fmt.Errorf("%w: %q: unusable coordinates %q,%q", ErrNoMatch, location, places[0].Lat, places[0].Lon)
	}
	return c, nil
}

func classify(ctx context.Context, err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &nerr) && nerr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
