// Package aggregate turns filtered observations into the portal's two derived
// views: per-day market summaries and per-ad price histories. Both are
// recomputed from scratch on every request; nothing here caches.
package aggregate

import (
	"sort"
	"time"

	"github.com/bruktdata-lab/listing-portal/internal/core/listing"
	"github.com/shopspring/decimal"
)

// PricedRow is the minimal shape the daily rollup needs from an observation.
// Both dataset variants satisfy it.
type PricedRow interface {
	ObservedAt() time.Time
	Price() decimal.Decimal
}

// DailySummary is one row of the per-day view. Field names on the wire match
// the dashboard's existing contract.
type DailySummary struct {
	// Dato is the observation date, YYYY-MM-DD.
	Dato string `json:"Dato"`

	// AntallTotalt is the number of observations that day.
	AntallTotalt int `json:"Antall_Totalt"`

	// AntallSolgt counts observations carrying the sold sentinel (price 0).
	AntallSolgt int `json:"Antall_Solgt"`

	// MedianPrisUsolgt is the median asking price among positive-price
	// observations that day; null when the day has none.
	MedianPrisUsolgt listing.NullMoney `json:"Median_Pris_Usolgt"`
}

// BuildDaily groups rows by observation date and summarizes each date.
// The emitted dates are exactly the distinct dates present in rows.
// Output is sorted by date ascending; an empty input yields an empty slice.
func BuildDaily[R PricedRow](rows []R) []DailySummary {
	byDay := make(map[string][]R)
	for _, r := range rows {
		key := r.ObservedAt().Format(listing.DateLayout)
		byDay[key] = append(byDay[key], r)
	}

	out := make([]DailySummary, 0, len(byDay))
	for date, group := range byDay {
		sold := 0
		positives := make([]decimal.Decimal, 0, len(group))
		for _, r := range group {
			p := r.Price()
			switch {
			case p.IsZero():
				sold++
			case p.IsPositive():
				positives = append(positives, p)
			}
		}
		out = append(out, DailySummary{
			Dato:             date,
			AntallTotalt:     len(group),
			AntallSolgt:      sold,
			MedianPrisUsolgt: median(positives),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Dato < out[j].Dato })
	return out
}

// median returns the middle value of vals (mean of the two middle values for
// an even count), or an absent NullMoney when vals is empty.
func median(vals []decimal.Decimal) listing.NullMoney {
	if len(vals) == 0 {
		return listing.NullMoney{}
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i].LessThan(vals[j]) })

	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return listing.Money(vals[mid])
	}
	return listing.Money(decimal.Avg(vals[mid-1], vals[mid]))
}
