// Package source defines the boundary the portal fetches observations
// through. The query types below carry the pushdown filters — the subset the
// upstream can narrow on cheaply; everything else is applied in memory by
// internal/core/filter after the fetch.
package source

import (
	"context"
	"time"

	"github.com/bruktdata-lab/listing-portal/internal/core/listing"
)

// CarQuery is the pushdown filter set for the used-car dataset. RangeMin and
// RangeMax are carried as raw strings so the boundary can enforce the
// integer-validation rule itself.
type CarQuery struct {
	Produsent string
	Modell    string
	ModellSok string
	SelgerSok string
	RangeMin  string
	RangeMax  string
	StartDate time.Time
	EndDate   time.Time
}

// HouseQuery is the pushdown filter set for the real-estate dataset.
type HouseQuery struct {
	Fylke         string
	Boligtype     string
	MeglerSok     string
	PublishedFrom time.Time
	PublishedTo   time.Time
}

// CarSource fetches raw car observations already narrowed by the pushdown
// query. Fetch failures are returned as-is; callers do not retry.
type CarSource interface {
	FetchCars(ctx context.Context, q CarQuery) ([]listing.CarObservation, error)
}

// HouseSource fetches raw house observations.
type HouseSource interface {
	FetchHouses(ctx context.Context, q HouseQuery) ([]listing.HouseObservation, error)
}

// Source is a backend serving both datasets. Ping backs the health endpoint.
type Source interface {
	CarSource
	HouseSource
	Ping(ctx context.Context) error
}
