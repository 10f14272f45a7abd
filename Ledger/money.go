package Ledger

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrAmountOutOfRange is returned when an amount does not fit the storage columns.
var ErrAmountOutOfRange = errors.New("amount out of range")

// MaxAmount bounds every stored amount; decimal(20,2) columns hold up to 18 integer digits.
var MaxAmount = decimal.New(1, 15)

// maxScale is the most fractional digits kept when parsing; finer input reads as zero.
const maxScale = 20

// Money is a currency amount that never fails to decode.
// Numbers, numeric strings and null are accepted; anything else reads as zero.
type Money struct {
	decimal.Decimal
}

// NewMoney builds a Money from anything ParseAmount understands.
func NewMoney(v interface{}) Money {
	return Money{Decimal: ParseAmount(v)}
}

// ParseAmount coerces v to a decimal. Unparsable input, NaN and infinities become zero.
// Parsing is locale-agnostic: "1,500" is not a number.
func ParseAmount(v interface{}) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case Money:
		return x.Decimal
	case *Money:
		if x == nil {
			return decimal.Zero
		}
		return x.Decimal
	case string:
		return parseString(x)
	case json.Number:
		return parseString(x.String())
	case []byte:
		return parseString(string(x))
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case uint:
		return decimal.NewFromInt(int64(x))
	case uint32:
		return decimal.NewFromInt(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return decimal.Zero
		}
		return decimal.NewFromInt(int64(x))
	default:
		return decimal.Zero
	}
}

func parseString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.Exponent() < -maxScale {
		return decimal.Zero
	}
	return d
}

// InRange reports whether |m| <= MaxAmount. It looks at digit counts before comparing,
// so an exponent like 1e2000000000 is rejected without being expanded.
func (m Money) InRange() bool {
	d := m.Decimal
	if d.IsZero() {
		return true
	}
	if d.Exponent() < -maxScale || d.NumDigits()+int(d.Exponent()) > 16 {
		return false
	}
	return d.Abs().LessThanOrEqual(MaxAmount)
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// UnmarshalJSON never returns an error.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		m.Decimal = decimal.Zero
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			m.Decimal = decimal.Zero
			return nil
		}
		m.Decimal = parseString(s)
		return nil
	}
	m.Decimal = parseString(string(data))
	return nil
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalText lets form and query decoders share the JSON rule.
func (m *Money) UnmarshalText(text []byte) error {
	m.Decimal = parseString(string(text))
	return nil
}

// Scan implements sql.Scanner. Bad column values read as zero.
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.Decimal = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		m.Decimal = decimal.Zero
		return nil
	}
	m.Decimal = d
	return nil
}

// Value implements driver.Valuer. Out of range amounts are refused.
func (m Money) Value() (driver.Value, error) {
	if !m.InRange() {
		return nil, ErrAmountOutOfRange
	}
	return m.Decimal.String(), nil
}

// Fixed formats with two decimals, the way amounts are shown to users.
func (m Money) Fixed() string {
	return m.Decimal.StringFixed(2)
}
