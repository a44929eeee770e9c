package common

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrNotInt is returned by ParseInt for values that are not integers.
var ErrNotInt = errors.New("not an integer")

// ErrIntRange is returned by ParseInt for JSON integers outside int64. The
// accompanying value is clamped to math.MinInt64 or math.MaxInt64 so callers
// can still tell the sign.
var ErrIntRange = errors.New("integer out of range")

// ParseInt returns the integer held by v. JSON numbers with a fractional part
// or exponent, strings and booleans yield ErrNotInt.
func ParseInt(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseInt(string(n), 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return parsed, ErrIntRange
		}
		if err != nil {
			return 0, ErrNotInt
		}
		return parsed, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, ErrNotInt
	}
}

// AsInt reports whether v holds an integer that fits in int64 and returns it.
func AsInt(v any) (int64, bool) {
	n, err := ParseInt(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AsDecimal reports whether v holds a number (integer or decimal) and returns it.
func AsDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(string(n))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case decimal.Decimal:
		return n, true
	default:
		if i, ok := AsInt(v); ok {
			return decimal.NewFromInt(i), true
		}
		return decimal.Zero, false
	}
}

// Number renders d as a JSON number literal rather than the quoted string
// decimal.Decimal produces by default.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
