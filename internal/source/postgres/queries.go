package postgres

import (
	"fmt"
	"strings"
)

// Column lists match the observation tables created by internal/migrations.

const queryCarsBase = `
	SELECT finnkode, dato, produsent, modell, overskrift, arstall,
	       kjorelengde, drivstoff, hjuldrift, rekkevidde, selger, pris
	FROM car_observations`

const queryHousesBase = `
	SELECT finnkode, dato, fylke, boligtype, megler, pakke,
	       totalpris, kvmpris, publisert
	FROM house_observations`

// whereBuilder assembles a parameterized WHERE clause. Values never touch
// the SQL text; everything goes through $n placeholders.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(expr string, arg interface{}) {
	w.clauses = append(w.clauses, fmt.Sprintf(expr, len(w.args)+1))
	w.args = append(w.args, arg)
}

func (w *whereBuilder) eq(col, val string) {
	if val == "" {
		return
	}
	w.add(col+" = $%d", val)
}

func (w *whereBuilder) containsFold(col, val string) {
	val = strings.TrimSpace(val)
	if val == "" {
		return
	}
	w.add(col+" ILIKE $%d", "%"+val+"%")
}

func (w *whereBuilder) gte(col string, arg interface{}) { w.add(col+" >= $%d", arg) }
func (w *whereBuilder) lte(col string, arg interface{}) { w.add(col+" <= $%d", arg) }

func (w *whereBuilder) render(base, orderBy string) string {
	q := base
	if len(w.clauses) > 0 {
		q += "\n\tWHERE " + strings.Join(w.clauses, " AND ")
	}
	return q + "\n\tORDER BY " + orderBy
}
