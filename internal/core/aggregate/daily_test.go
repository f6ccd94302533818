package aggregate

import (
	"encoding/json"
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

func car(finnkode, date string, pris int64) listing.CarObservation {
	return listing.CarObservation{Finnkode: finnkode, Dato: day(date), Pris: decimal.NewFromInt(pris)}
}

func TestBuildDaily_CountsAndMedian(t *testing.T) {
	rows := []listing.CarObservation{
		car("A", "2025-05-01", 300000),
		car("B", "2025-05-01", 200000),
		car("C", "2025-05-01", 0),
		car("A", "2025-05-02", 300000),
		car("B", "2025-05-02", 0),
		car("D", "2025-05-02", 250000),
		car("E", "2025-05-02", 400000),
	}

	got := BuildDaily(rows)
	require.Len(t, got, 2)

	require.Equal(t, "2025-05-01", got[0].Dato)
	require.Equal(t, 3, got[0].AntallTotalt)
	require.Equal(t, 1, got[0].AntallSolgt)
	require.True(t, got[0].MedianPrisUsolgt.Valid)
	// even count: mean of the two middle values
	require.True(t, got[0].MedianPrisUsolgt.Decimal.Equal(decimal.NewFromInt(250000)))

	require.Equal(t, "2025-05-02", got[1].Dato)
	require.Equal(t, 4, got[1].AntallTotalt)
	require.Equal(t, 1, got[1].AntallSolgt)
	// odd count: middle value of {250000, 300000, 400000}
	require.True(t, got[1].MedianPrisUsolgt.Decimal.Equal(decimal.NewFromInt(300000)))
}

func TestBuildDaily_AllSoldDayHasNullMedian(t *testing.T) {
	rows := []listing.CarObservation{
		car("A", "2025-05-03", 0),
		car("B", "2025-05-03", 0),
	}

	got := BuildDaily(rows)
	require.Len(t, got, 1)
	require.Equal(t, 2, got[0].AntallSolgt)
	require.False(t, got[0].MedianPrisUsolgt.Valid)

	raw, err := json.Marshal(got[0])
	require.NoError(t, err)
	require.Contains(t, string(raw), `"Median_Pris_Usolgt":null`)
}

func TestBuildDaily_EmptyInput(t *testing.T) {
	got := BuildDaily([]listing.CarObservation{})
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestBuildDaily_DatesAreExactlyThoseObserved(t *testing.T) {
	rows := []listing.CarObservation{
		car("A", "2025-05-01", 100),
		car("A", "2025-05-07", 100), // gap days must not be filled in
	}

	got := BuildDaily(rows)
	require.Len(t, got, 2)
	require.Equal(t, "2025-05-01", got[0].Dato)
	require.Equal(t, "2025-05-07", got[1].Dato)
}

func TestDailySummary_JSONRoundTrip(t *testing.T) {
	in := DailySummary{Dato: "2025-05-01", AntallTotalt: 5, AntallSolgt: 2, MedianPrisUsolgt: listing.NullMoney{}}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out DailySummary
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, in.Dato, out.Dato)
	require.Equal(t, in.AntallSolgt, out.AntallSolgt)
	require.False(t, out.MedianPrisUsolgt.Valid)
}

func TestMedian(t *testing.T) {
	d := func(vals ...int64) []decimal.Decimal {
		out := make([]decimal.Decimal, len(vals))
		for i, v := range vals {
			out[i] = decimal.NewFromInt(v)
		}
		return out
	}

	tests := []struct {
		name  string
		vals  []decimal.Decimal
		want  string
		valid bool
	}{
		{name: "empty is absent", vals: nil, valid: false},
		{name: "single", vals: d(100), want: "100", valid: true},
		{name: "odd", vals: d(300, 100, 200), want: "200", valid: true},
		{name: "even averages middles", vals: d(100, 200, 300, 400), want: "250", valid: true},
		{name: "even with odd sum halves", vals: d(100, 101), want: "100.5", valid: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := median(tc.vals)
			require.Equal(t, tc.valid, got.Valid)
			if tc.valid {
				require.Equal(t, tc.want, got.Decimal.String())
			}
		})
	}
}
