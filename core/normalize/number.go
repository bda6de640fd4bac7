package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var decimalText = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Number coerces v the way a spreadsheet formula would: numeric types pass
// through, text is parsed after trimming (blank text is zero) and booleans
// map to 0 or 1. Text accepts decimal notation, "Infinity" with an optional
// sign and 0x, 0o or 0b integers; other spellings such as "inf" are not
// numbers. ok is false when the result is not a number, including
// for absent values.
func Number(v any) (f float64, ok bool) {
	switch n := v.(type) {
	case nil:
		return math.NaN(), false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		p, err := n.Float64()
		if err != nil {
			return math.NaN(), false
		}
		f = p
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		p, ok := parseText(s)
		if !ok {
			return math.NaN(), false
		}
		f = p
	default:
		return math.NaN(), false
	}
	if math.IsNaN(f) {
		return f, false
	}
	return f, true
}

func parseText(s string) (float64, bool) {
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN(), false
			}
			return float64(u), true
		}
	}
	if !decimalText.MatchString(s) {
		return math.NaN(), false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN(), false
	}
	// Out of range text overflows to ±Inf or underflows to zero.
	return f, true
}
