// Package v1 is the portal's JSON API: filter parameters in, the two derived
// views (per-day summary, per-ad history) out. Each request is one fetch plus
// one in-memory aggregation pass; nothing is shared between requests.
package v1

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bruktdata-lab/listing-portal/internal/core/aggregate"
	"github.com/bruktdata-lab/listing-portal/internal/core/filter"
	"github.com/bruktdata-lab/listing-portal/internal/source"
	"github.com/bruktdata-lab/listing-portal/internal/source/s3meta"
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid portal query")

	// ErrUpstream marks fetch failures against the data backend (HTTP 502).
	// Fetches are not retried; the request fails whole.
	ErrUpstream = errors.New("upstream fetch failed")
)

// Metadata carries the filter options served to the dashboard. Either dataset
// may be nil when its metadata object was unavailable at startup.
type Metadata struct {
	Cars   *s3meta.CarOptions
	Houses *s3meta.HouseOptions
}

// Service executes portal queries against the configured observation source.
type Service struct {
	cars   source.CarSource
	houses source.HouseSource
	meta   Metadata

	defaultStart time.Time
	nowFn        func() time.Time
}

func NewService(cars source.CarSource, houses source.HouseSource, meta Metadata, defaultStart time.Time) *Service {
	return &Service{
		cars:         cars,
		houses:       houses,
		meta:         meta,
		defaultStart: defaultStart,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// CarRequest is a validated car query: the pushdown part plus the residual
// filter applied after the fetch.
type CarRequest struct {
	Produsent string
	Modell    string
	ModellSok string
	SelgerSok string
	RangeMin  string
	RangeMax  string
	Start     time.Time // zero means the configured default start date

	Residual filter.CarFilter
}

// CarQueryResponse carries both derived views as plain tabular data.
type CarQueryResponse struct {
	Antall    int                      `json:"antall"`
	Daily     []aggregate.DailySummary `json:"daily"`
	Historikk []aggregate.CarHistory   `json:"historikk"`
}

// QueryCars fetches, filters and aggregates the car dataset.
func (s *Service) QueryCars(ctx context.Context, req CarRequest) (*CarQueryResponse, error) {
	// Unconstrained scans of the whole car table are rejected - same rule the
	// dashboard enforces before enabling its load button.
	if req.Produsent == "" && strings.TrimSpace(req.ModellSok) == "" && strings.TrimSpace(req.SelgerSok) == "" {
		return nil, invalidQueryf("one of produsent, modell_sok or selger_sok is required")
	}
	if err := validateIntParam("rekkevidde_fra", req.RangeMin); err != nil {
		return nil, err
	}
	if err := validateIntParam("rekkevidde_til", req.RangeMax); err != nil {
		return nil, err
	}

	start := req.Start
	if start.IsZero() {
		start = s.defaultStart
	}

	rows, err := s.cars.FetchCars(ctx, source.CarQuery{
		Produsent: req.Produsent,
		Modell:    req.Modell,
		ModellSok: req.ModellSok,
		SelgerSok: req.SelgerSok,
		RangeMin:  req.RangeMin,
		RangeMax:  req.RangeMax,
		StartDate: start,
		EndDate:   s.nowFn(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	filtered := req.Residual.Apply(rows)
	historikk := aggregate.BuildCarHistories(filtered)

	slog.Info("Car query served",
		"fetched", len(rows),
		"filtered", len(filtered),
		"ads", len(historikk))

	return &CarQueryResponse{
		Antall:    len(historikk),
		Daily:     aggregate.BuildDaily(filtered),
		Historikk: historikk,
	}, nil
}

// HouseRequest is a validated house query.
type HouseRequest struct {
	Fylke         string
	MeglerSok     string
	PublishedFrom time.Time // zero means the configured default start date

	Residual filter.HouseFilter
}

// HouseQueryResponse carries both derived views for the house dataset.
type HouseQueryResponse struct {
	Antall    int                      `json:"antall"`
	Daily     []aggregate.DailySummary `json:"daily"`
	Historikk []aggregate.HouseHistory `json:"historikk"`
}

// QueryHouses fetches, filters and aggregates the real-estate dataset.
func (s *Service) QueryHouses(ctx context.Context, req HouseRequest) (*HouseQueryResponse, error) {
	from := req.PublishedFrom
	if from.IsZero() {
		from = s.defaultStart
	}

	q := source.HouseQuery{
		Fylke:         req.Fylke,
		MeglerSok:     req.MeglerSok,
		PublishedFrom: from,
		PublishedTo:   s.nowFn(),
	}
	// A single requested boligtype can be narrowed upstream; larger sets stay
	// in the residual filter.
	if len(req.Residual.Boligtype) == 1 {
		q.Boligtype = req.Residual.Boligtype[0]
	}

	rows, err := s.houses.FetchHouses(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	filtered := req.Residual.Apply(rows)
	historikk := aggregate.BuildHouseHistories(filtered)

	slog.Info("House query served",
		"fetched", len(rows),
		"filtered", len(filtered),
		"ads", len(historikk))

	return &HouseQueryResponse{
		Antall:    len(historikk),
		Daily:     aggregate.BuildDaily(filtered),
		Historikk: historikk,
	}, nil
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}

// validateIntParam rejects numeric filter values that do not parse as
// integers, so malformed input fails the request before any query is built.
func validateIntParam(name, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := strconv.Atoi(raw); err != nil {
		return invalidQueryf("%s must be an integer, got %q", name, raw)
	}
	return nil
}
