package athena

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDecodeCars_MapsColumnsByName(t *testing.T) {
	header := []string{"finnkode", "dato", "produsent", "modell", "overskrift", "årstall", "kjørelengde", "drivstoff", "hjuldrift", "rekkevidde_str", "selger", "pris_num"}
	rows := [][]string{
		{"123456", "2025-05-01", "Tesla", "Model 3", "Tesla Model 3 LR", "2021", "45000", "Elektrisitet", "Bakhjulsdrift", "510", "Møller", "289000"},
		{"123456", "2025-05-10 00:00:00.000", "Tesla", "Model 3", "Tesla Model 3 LR", "2021.0", "45000", "Elektrisitet", "Bakhjulsdrift", "510", "Møller", "0"},
	}

	got, err := decodeCars(header, rows)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, "123456", first.Finnkode)
	require.Equal(t, "2025-05-01", first.Dato.Format("2006-01-02"))
	require.Equal(t, 2021, first.Arstall)
	require.Equal(t, 510, first.Rekkevidde)
	require.True(t, first.Pris.Equal(decimal.NewFromInt(289000)))

	// timestamp-shaped dato and float-shaped year still decode
	second := got[1]
	require.Equal(t, "2025-05-10", second.Dato.Format("2006-01-02"))
	require.Equal(t, 2021, second.Arstall)
	require.True(t, second.Pris.IsZero())
}

func TestDecodeCars_ToleratesMissingColumns(t *testing.T) {
	header := []string{"finnkode", "dato", "pris_num"}
	rows := [][]string{{"987", "2025-06-01", "150000"}}

	got, err := decodeCars(header, rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "", got[0].Produsent)
	require.Equal(t, 0, got[0].Rekkevidde)
}

func TestDecodeCars_BadDateFailsTheFetch(t *testing.T) {
	header := []string{"finnkode", "dato"}
	rows := [][]string{{"987", "not-a-date"}}

	_, err := decodeCars(header, rows)
	require.Error(t, err)
}

func TestDecodeHouses(t *testing.T) {
	header := []string{"finnkode", "dato", "fylke", "boligtype", "megler", "pakke", "totalpris", "kvmpris", "publisert"}
	rows := [][]string{
		{"H42", "2025-05-02", "Oslo", "Leilighet", "DNB Eiendom", "Premium", "4500000", "91000.5", "2025-04-28"},
	}

	got, err := decodeHouses(header, rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Oslo", got[0].Fylke)
	require.True(t, got[0].Kvmpris.Equal(decimal.NewFromFloat(91000.5)))
	require.Equal(t, "2025-04-28", got[0].Publisert.Format("2006-01-02"))
}

func TestDecodeCars_EmptyResult(t *testing.T) {
	got, err := decodeCars([]string{"finnkode"}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}
