package listing

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

var jsonNull = []byte("null")

// NullMoney is a price that may be absent. It marshals to a bare JSON number
// or to null — never NaN, never a quoted string, never an omitted key.
// Consumers (the dashboard table, the charts) rely on null to mean
// "no positive price observed".
type NullMoney struct {
	Decimal decimal.Decimal
	Valid   bool
}

// Money wraps a known price value.
func Money(d decimal.Decimal) NullMoney {
	return NullMoney{Decimal: d, Valid: true}
}

// MoneyFromInt is a convenience for literals in tests and defaults.
func MoneyFromInt(n int64) NullMoney {
	return Money(decimal.NewFromInt(n))
}

func (m NullMoney) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return jsonNull, nil
	}
	// decimal.Decimal.String never produces exponent notation for the
	// magnitudes we deal in, so the raw text is a valid JSON number.
	return []byte(m.Decimal.String()), nil
}

func (m *NullMoney) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		m.Decimal = decimal.Zero
		m.Valid = false
		return nil
	}
	d, err := decimal.NewFromString(string(bytes.Trim(bytes.TrimSpace(data), `"`)))
	if err != nil {
		return fmt.Errorf("invalid money value %q: %w", data, err)
	}
	m.Decimal = d
	m.Valid = true
	return nil
}

// Sub returns m - other, propagating absence: if either side is absent the
// result is absent.
func (m NullMoney) Sub(other NullMoney) NullMoney {
	if !m.Valid || !other.Valid {
		return NullMoney{}
	}
	return Money(m.Decimal.Sub(other.Decimal))
}
