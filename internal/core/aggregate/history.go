package aggregate

import (
	"sort"

	"github.com/bruktdata-lab/listing-portal/internal/core/listing"
)

// CarHistory is one row of the per-ad view: latest descriptive attributes
// plus the first/last price span across the ad's observed lifetime.
type CarHistory struct {
	Finnkode    string `json:"finnkode"`
	Produsent   string `json:"produsent"`
	Modell      string `json:"modell"`
	Overskrift  string `json:"overskrift"`
	Arstall     int    `json:"årstall"`
	Kjorelengde int    `json:"kjørelengde"`
	Drivstoff   string `json:"drivstoff"`
	Hjuldrift   string `json:"hjuldrift"`
	Rekkevidde  int    `json:"rekkevidde"`
	Selger      string `json:"selger"`

	DatoStart string            `json:"dato_start"`
	DatoEnd   string            `json:"dato_end"`
	PrisStart listing.NullMoney `json:"pris_start"`
	// PrisLast is the last positive price the ad carried. Null when the ad
	// never had a positive price — zero is never reported here.
	PrisLast listing.NullMoney `json:"pris_last"`
	// Dager is the whole-day span between first and last observation.
	Dager int `json:"dager"`
	// Prisfall is PrisLast - PrisStart; null when PrisLast is null.
	Prisfall listing.NullMoney `json:"prisfall"`
}

// HouseHistory is the real-estate counterpart of CarHistory.
type HouseHistory struct {
	Finnkode  string            `json:"finnkode"`
	Fylke     string            `json:"fylke"`
	Boligtype string            `json:"boligtype"`
	Megler    string            `json:"megler"`
	Pakke     string            `json:"pakke"`
	Kvmpris   listing.NullMoney `json:"kvmpris"`
	Publisert string            `json:"publisert"`

	DatoStart string            `json:"dato_start"`
	DatoEnd   string            `json:"dato_end"`
	PrisStart listing.NullMoney `json:"pris_start"`
	PrisLast  listing.NullMoney `json:"pris_last"`
	Dager     int               `json:"dager"`
	Prisfall  listing.NullMoney `json:"prisfall"`
}

// span captures the date/price trajectory of one ad's ordered observations.
type span struct {
	datoStart string
	datoEnd   string
	prisStart listing.NullMoney
	prisLast  listing.NullMoney
	dager     int
	prisfall  listing.NullMoney
}

// priceSpan summarizes rows, which must be ordered by date ascending and
// non-empty. prisLast is found by scanning backward for the last positive
// price; a single-row group uses that row for both ends.
func priceSpan[R PricedRow](rows []R) span {
	first := rows[0]
	last := rows[len(rows)-1]

	s := span{
		datoStart: first.ObservedAt().Format(listing.DateLayout),
		datoEnd:   last.ObservedAt().Format(listing.DateLayout),
		prisStart: listing.Money(first.Price()),
		dager:     int(last.ObservedAt().Sub(first.ObservedAt()).Hours() / 24),
	}

	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Price().IsPositive() {
			s.prisLast = listing.Money(rows[i].Price())
			break
		}
	}
	s.prisfall = s.prisLast.Sub(s.prisStart)
	return s
}

// BuildCarHistories groups rows by finnkode and emits one history row per ad.
// The emitted ids are exactly the distinct finnkoder present in rows.
// Output is sorted by finnkode; an empty input yields an empty slice.
func BuildCarHistories(rows []listing.CarObservation) []CarHistory {
	groups := groupByFinnkode(rows, func(o listing.CarObservation) string { return o.Finnkode })

	out := make([]CarHistory, 0, len(groups))
	for _, group := range groups {
		last := group[len(group)-1]
		s := priceSpan(group)
		out = append(out, CarHistory{
			Finnkode:    last.Finnkode,
			Produsent:   last.Produsent,
			Modell:      last.Modell,
			Overskrift:  last.Overskrift,
			Arstall:     last.Arstall,
			Kjorelengde: last.Kjorelengde,
			Drivstoff:   last.Drivstoff,
			Hjuldrift:   last.Hjuldrift,
			Rekkevidde:  last.Rekkevidde,
			Selger:      last.Selger,
			DatoStart:   s.datoStart,
			DatoEnd:     s.datoEnd,
			PrisStart:   s.prisStart,
			PrisLast:    s.prisLast,
			Dager:       s.dager,
			Prisfall:    s.prisfall,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Finnkode < out[j].Finnkode })
	return out
}

// BuildHouseHistories is the real-estate counterpart of BuildCarHistories.
func BuildHouseHistories(rows []listing.HouseObservation) []HouseHistory {
	groups := groupByFinnkode(rows, func(o listing.HouseObservation) string { return o.Finnkode })

	out := make([]HouseHistory, 0, len(groups))
	for _, group := range groups {
		last := group[len(group)-1]
		s := priceSpan(group)

		publisert := ""
		if !last.Publisert.IsZero() {
			publisert = last.Publisert.Format(listing.DateLayout)
		}

		out = append(out, HouseHistory{
			Finnkode:  last.Finnkode,
			Fylke:     last.Fylke,
			Boligtype: last.Boligtype,
			Megler:    last.Megler,
			Pakke:     last.Pakke,
			Kvmpris:   listing.Money(last.Kvmpris),
			Publisert: publisert,
			DatoStart: s.datoStart,
			DatoEnd:   s.datoEnd,
			PrisStart: s.prisStart,
			PrisLast:  s.prisLast,
			Dager:     s.dager,
			Prisfall:  s.prisfall,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Finnkode < out[j].Finnkode })
	return out
}

// groupByFinnkode buckets rows by id and orders each bucket by date ascending.
// The sort is stable so same-day observations keep fetch order.
func groupByFinnkode[R PricedRow](rows []R, key func(R) string) map[string][]R {
	groups := make(map[string][]R)
	for _, r := range rows {
		groups[key(r)] = append(groups[key(r)], r)
	}
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ObservedAt().Before(group[j].ObservedAt())
		})
	}
	return groups
}
