package filter

import (
	"testing"
	"time"

	"github.com/bruktdata-lab/listing-portal/internal/core/listing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(listing.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func intp(n int) *int { return &n }

func carRows() []listing.CarObservation {
	return []listing.CarObservation{
		{Finnkode: "A1", Dato: day("2025-05-01"), Produsent: "Tesla", Modell: "Model 3", Overskrift: "Tesla Model 3 med hengerfeste", Arstall: 2021, Kjorelengde: 45000, Drivstoff: "Elektrisitet", Hjuldrift: "Bakhjulsdrift", Rekkevidde: 510, Selger: "Møller Bil Oslo", Pris: decimal.NewFromInt(289000)},
		{Finnkode: "A2", Dato: day("2025-05-01"), Produsent: "Volvo", Modell: "XC60", Overskrift: "Volvo XC60 D4 AWD", Arstall: 2018, Kjorelengde: 120000, Drivstoff: "Diesel", Hjuldrift: "Firehjulsdrift", Selger: "Privat", Pris: decimal.NewFromInt(349000)},
		{Finnkode: "A3", Dato: day("2025-05-02"), Produsent: "Tesla", Modell: "Model Y", Overskrift: "Model Y Long Range", Arstall: 2023, Kjorelengde: 15000, Drivstoff: "Elektrisitet", Hjuldrift: "Firehjulsdrift", Rekkevidde: 533, Selger: "Tesla Norge", Pris: decimal.Zero},
	}
}

func TestCarFilter_ZeroValueIsIdentity(t *testing.T) {
	rows := carRows()
	got := CarFilter{}.Apply(rows)
	require.Equal(t, rows, got)
}

func TestCarFilter_Conjunctive(t *testing.T) {
	rows := carRows()

	tests := []struct {
		name string
		f    CarFilter
		want []string // finnkoder
	}{
		{name: "produsent equality", f: CarFilter{Produsent: "Tesla"}, want: []string{"A1", "A3"}},
		{name: "modell equality", f: CarFilter{Modell: "XC60"}, want: []string{"A2"}},
		{name: "headline substring is case-insensitive", f: CarFilter{ModellSok: "HENGERFESTE"}, want: []string{"A1"}},
		{name: "seller substring", f: CarFilter{SelgerSok: "møller"}, want: []string{"A1"}},
		{name: "empty set means no restriction", f: CarFilter{Drivstoff: nil}, want: []string{"A1", "A2", "A3"}},
		{name: "set membership", f: CarFilter{Drivstoff: []string{"Diesel", "Bensin"}}, want: []string{"A2"}},
		{name: "year range is inclusive", f: CarFilter{YearMin: intp(2018), YearMax: intp(2021)}, want: []string{"A1", "A2"}},
		{name: "km upper bound inclusive", f: CarFilter{KmMax: intp(45000)}, want: []string{"A1", "A3"}},
		{name: "range bound", f: CarFilter{RangeMin: intp(520)}, want: []string{"A3"}},
		{name: "conjunction of constraints", f: CarFilter{Produsent: "Tesla", Hjuldrift: []string{"Firehjulsdrift"}}, want: []string{"A3"}},
		{name: "no match yields empty, not nil", f: CarFilter{Produsent: "Lada"}, want: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.f.Apply(rows)
			require.NotNil(t, got)
			keys := make([]string, 0, len(got))
			for _, o := range got {
				keys = append(keys, o.Finnkode)
			}
			require.Equal(t, tc.want, keys)
		})
	}
}

func TestHouseFilter_RegionEquality(t *testing.T) {
	rows := []listing.HouseObservation{
		{Finnkode: "H1", Dato: day("2025-05-01"), Fylke: "Oslo", Boligtype: "Leilighet", Megler: "DNB Eiendom", Totalpris: decimal.NewFromInt(4500000), Kvmpris: decimal.NewFromInt(91000)},
		{Finnkode: "H2", Dato: day("2025-05-01"), Fylke: "Oslo", Boligtype: "Enebolig", Megler: "Krogsveen", Totalpris: decimal.NewFromInt(8900000), Kvmpris: decimal.NewFromInt(62000)},
		{Finnkode: "H3", Dato: day("2025-05-02"), Fylke: "Oslo", Boligtype: "Leilighet", Megler: "PrivatMegleren", Totalpris: decimal.NewFromInt(5200000), Kvmpris: decimal.NewFromInt(99000)},
		{Finnkode: "H4", Dato: day("2025-05-02"), Fylke: "Rogaland", Boligtype: "Rekkehus", Megler: "EiendomsMegler 1", Totalpris: decimal.NewFromInt(3900000), Kvmpris: decimal.NewFromInt(41000)},
		{Finnkode: "H5", Dato: day("2025-05-03"), Fylke: "Trøndelag", Boligtype: "Leilighet", Megler: "Heimdal Eiendomsmegling", Totalpris: decimal.NewFromInt(3100000), Kvmpris: decimal.NewFromInt(55000)},
	}

	got := HouseFilter{Fylke: "Oslo"}.Apply(rows)
	require.Len(t, got, 3)
	for _, o := range got {
		require.Equal(t, "Oslo", o.Fylke)
	}

	got = HouseFilter{Boligtype: []string{"Leilighet"}, KvmprisMin: intp(95000)}.Apply(rows)
	require.Len(t, got, 1)
	require.Equal(t, "H3", got[0].Finnkode)

	got = HouseFilter{MeglerSok: "dnb"}.Apply(rows)
	require.Len(t, got, 1)
	require.Equal(t, "H1", got[0].Finnkode)

	got = HouseFilter{PrisMin: intp(3900000), PrisMax: intp(5200000)}.Apply(rows)
	require.Len(t, got, 3)
}
