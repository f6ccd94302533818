package athena

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bruktdata-lab/listing-portal/internal/core/listing"
)

// rowReader resolves cells by column name, tolerating columns that are absent
// from the result set or empty in a given row. Header names are matched
// case-insensitively, the way the upstream pipeline lowercases them.
type rowReader struct {
	index map[string]int
}

func newRowReader(header []string) rowReader {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return rowReader{index: idx}
}

func (r rowReader) str(row []string, col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (r rowReader) intval(row []string, col string) int {
	s := strings.TrimSpace(r.str(row, col))
	if s == "" {
		return 0
	}
	// Athena renders bigints written from floats as "2021.0".
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func (r rowReader) money(row []string, col string) decimal.Decimal {
	s := strings.TrimSpace(r.str(row, col))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (r rowReader) date(row []string, col string) (time.Time, error) {
	s := strings.TrimSpace(r.str(row, col))
	if s == "" {
		return time.Time{}, nil
	}
	// The dato column is sometimes a timestamp; keep the date part.
	if len(s) > len(listing.DateLayout) {
		s = s[:len(listing.DateLayout)]
	}
	t, err := time.Parse(listing.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", col, err)
	}
	return t, nil
}

func decodeCars(header []string, rows [][]string) ([]listing.CarObservation, error) {
	r := newRowReader(header)
	out := make([]listing.CarObservation, 0, len(rows))
	for _, row := range rows {
		dato, err := r.date(row, "dato")
		if err != nil {
			return nil, fmt.Errorf("decode car row: %w", err)
		}
		out = append(out, listing.CarObservation{
			Finnkode:    r.str(row, "finnkode"),
			Dato:        dato,
			Produsent:   r.str(row, "produsent"),
			Modell:      r.str(row, "modell"),
			Overskrift:  r.str(row, "overskrift"),
			Arstall:     r.intval(row, "årstall"),
			Kjorelengde: r.intval(row, "kjørelengde"),
			Drivstoff:   r.str(row, "drivstoff"),
			Hjuldrift:   r.str(row, "hjuldrift"),
			Rekkevidde:  r.intval(row, "rekkevidde_str"),
			Selger:      r.str(row, "selger"),
			Pris:        r.money(row, "pris_num"),
		})
	}
	return out, nil
}

func decodeHouses(header []string, rows [][]string) ([]listing.HouseObservation, error) {
	r := newRowReader(header)
	out := make([]listing.HouseObservation, 0, len(rows))
	for _, row := range rows {
		dato, err := r.date(row, "dato")
		if err != nil {
			return nil, fmt.Errorf("decode house row: %w", err)
		}
		publisert, err := r.date(row, "publisert")
		if err != nil {
			return nil, fmt.Errorf("decode house row: %w", err)
		}
		out = append(out, listing.HouseObservation{
			Finnkode:  r.str(row, "finnkode"),
			Dato:      dato,
			Fylke:     r.str(row, "fylke"),
			Boligtype: r.str(row, "boligtype"),
			Megler:    r.str(row, "megler"),
			Pakke:     r.str(row, "pakke"),
			Totalpris: r.money(row, "totalpris"),
			Kvmpris:   r.money(row, "kvmpris"),
			Publisert: publisert,
		})
	}
	return out, nil
}
