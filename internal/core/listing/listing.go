// Package listing holds the observation records the portal aggregates over.
// An observation is one dated snapshot of a marketplace ad: the same finnkode
// shows up once per scrape day until the ad disappears.
package listing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for all date fields (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// CarObservation is one dated row from the used-car dataset.
// Fields mirror the upstream Athena table; columns that may be absent in a
// given row decode to their zero value.
type CarObservation struct {
	// Finnkode is the stable ad identifier. All observations of one ad
	// share it across days.
	Finnkode string

	// Dato is the scrape date (date-valued, midnight UTC).
	Dato time.Time

	Produsent   string
	Modell      string
	Overskrift  string
	Arstall     int // model year
	Kjorelengde int // odometer, km
	Drivstoff   string
	Hjuldrift   string
	Rekkevidde  int // declared range, km (EVs; 0 when not stated)
	Selger      string

	// Pris is the asking price in NOK. Zero means sold/delisted.
	Pris decimal.Decimal
}

// HouseObservation is one dated row from the real-estate dataset.
type HouseObservation struct {
	Finnkode string
	Dato     time.Time

	Fylke     string
	Boligtype string
	Megler    string
	Pakke     string

	// Totalpris is the total asking price in NOK. Zero means sold/delisted.
	Totalpris decimal.Decimal
	// Kvmpris is the price per square meter.
	Kvmpris decimal.Decimal

	// Publisert is the date the ad was first published.
	Publisert time.Time
}

// ObservedAt and Price satisfy aggregate.PricedRow.

func (o CarObservation) ObservedAt() time.Time     { return o.Dato }
func (o CarObservation) Price() decimal.Decimal    { return o.Pris }
func (o HouseObservation) ObservedAt() time.Time   { return o.Dato }
func (o HouseObservation) Price() decimal.Decimal { return o.Totalpris }
