// Package filter applies the residual (in-memory) filters to fetched
// observations. The source already narrowed rows with its own query; these
// predicates cover the dimensions that are cheaper to apply after the fetch.
//
// All constraints are conjunctive. A zero-value constraint — empty string,
// nil slice, nil bound — is a no-op, not "match nothing".
package filter

import (
	"strings"

	"github.com/bruktdata-lab/listing-portal/internal/core/listing"
	"github.com/shopspring/decimal"
)

// CarFilter is the residual filter set for the used-car dataset.
// Range bounds are inclusive on both ends.
type CarFilter struct {
	Produsent string
	Modell    string

	// ModellSok / SelgerSok are case-insensitive substring matches against
	// the ad headline and the seller name.
	ModellSok string
	SelgerSok string

	Drivstoff []string
	Hjuldrift []string

	YearMin  *int
	YearMax  *int
	KmMin    *int
	KmMax    *int
	RangeMin *int
	RangeMax *int
}

// Apply returns the observations satisfying every set constraint.
// The result is never nil, so an empty selection aggregates (and serializes)
// as an empty collection.
func (f CarFilter) Apply(rows []listing.CarObservation) []listing.CarObservation {
	out := make([]listing.CarObservation, 0, len(rows))
	for _, o := range rows {
		if !f.matches(o) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (f CarFilter) matches(o listing.CarObservation) bool {
	if f.Produsent != "" && o.Produsent != f.Produsent {
		return false
	}
	if f.Modell != "" && o.Modell != f.Modell {
		return false
	}
	if !containsFold(o.Overskrift, f.ModellSok) {
		return false
	}
	if !containsFold(o.Selger, f.SelgerSok) {
		return false
	}
	if !inSet(o.Drivstoff, f.Drivstoff) {
		return false
	}
	if !inSet(o.Hjuldrift, f.Hjuldrift) {
		return false
	}
	if !inIntRange(o.Arstall, f.YearMin, f.YearMax) {
		return false
	}
	if !inIntRange(o.Kjorelengde, f.KmMin, f.KmMax) {
		return false
	}
	if !inIntRange(o.Rekkevidde, f.RangeMin, f.RangeMax) {
		return false
	}
	return true
}

// HouseFilter is the residual filter set for the real-estate dataset.
type HouseFilter struct {
	Fylke     string
	Boligtype []string

	// MeglerSok is a case-insensitive substring match on the broker name.
	MeglerSok string

	PrisMin    *int
	PrisMax    *int
	KvmprisMin *int
	KvmprisMax *int
}

// Apply returns the observations satisfying every set constraint.
func (f HouseFilter) Apply(rows []listing.HouseObservation) []listing.HouseObservation {
	out := make([]listing.HouseObservation, 0, len(rows))
	for _, o := range rows {
		if !f.matches(o) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (f HouseFilter) matches(o listing.HouseObservation) bool {
	if f.Fylke != "" && o.Fylke != f.Fylke {
		return false
	}
	if !inSet(o.Boligtype, f.Boligtype) {
		return false
	}
	if !containsFold(o.Megler, f.MeglerSok) {
		return false
	}
	if !inDecimalRange(o.Totalpris, f.PrisMin, f.PrisMax) {
		return false
	}
	if !inDecimalRange(o.Kvmpris, f.KvmprisMin, f.KvmprisMax) {
		return false
	}
	return true
}

// containsFold reports whether s contains sub, case-insensitively.
// An empty or blank sub matches everything.
func containsFold(s, sub string) bool {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// inSet reports whether v is in set. An empty set means "no restriction".
func inSet(v string, set []string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

func inIntRange(v int, min, max *int) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

func inDecimalRange(v decimal.Decimal, min, max *int) bool {
	if min != nil && v.LessThan(decimal.NewFromInt(int64(*min))) {
		return false
	}
	if max != nil && v.GreaterThan(decimal.NewFromInt(int64(*max))) {
		return false
	}
	return true
}
