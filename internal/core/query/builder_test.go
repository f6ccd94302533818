package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuilder_JoinsClausesWithAnd(t *testing.T) {
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	b := New("database_biler_parquet").
		DateBetween("dato", from, to).
		Eq("produsent", "Tesla")
	require.NoError(t, b.IntMin("rekkevidde_str", "400"))

	want := "SELECT * FROM database_biler_parquet WHERE " +
		"date(dato) >= DATE('2025-05-01') AND date(dato) <= DATE('2025-05-31') " +
		"AND produsent = 'Tesla' AND rekkevidde_str >= 400"
	require.Equal(t, want, b.Build())
}

func TestBuilder_EscapesSingleQuotes(t *testing.T) {
	b := New("t").Eq("modell", "e'tron")
	require.Equal(t, "SELECT * FROM t WHERE modell = 'e''tron'", b.Build())

	b = New("t").ContainsFold("selger", "O'Brien's Biler")
	require.Equal(t, "SELECT * FROM t WHERE LOWER(selger) LIKE '%o''brien''s biler%'", b.Build())
}

func TestBuilder_ContainsFoldLowercases(t *testing.T) {
	b := New("t").ContainsFold("overskrift", "  Hengerfeste ")
	require.Equal(t, "SELECT * FROM t WHERE LOWER(overskrift) LIKE '%hengerfeste%'", b.Build())
}

func TestBuilder_SkipsUnsetConstraints(t *testing.T) {
	b := New("t").Eq("produsent", "").ContainsFold("selger", "   ")
	require.NoError(t, b.IntMin("km", ""))
	require.NoError(t, b.IntMax("km", " "))
	b.DateBetween("dato", time.Time{}, time.Time{})

	require.Equal(t, "SELECT * FROM t", b.Build())
}

func TestBuilder_RejectsNonIntegerBounds(t *testing.T) {
	b := New("t")
	err := b.IntMin("rekkevidde_str", "4oo")
	require.ErrorIs(t, err, ErrNotInteger)

	err = b.IntMax("rekkevidde_str", "500; DROP TABLE t")
	require.ErrorIs(t, err, ErrNotInteger)

	// nothing leaked into the statement
	require.Equal(t, "SELECT * FROM t", b.Build())
}
