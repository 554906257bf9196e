package aggregation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Coerced values must fit the sales columns: amounts are NUMERIC(14,2) and
// counts are INTEGER. Anything outside is treated as non-numeric.
const (
	maxAmountDigits = 12 // |amount| < 10^12
	maxScale        = 18 // fraction digits kept before rounding
	minExponent     = -1000
)

var maxAmount = decimal.New(1, maxAmountDigits)

// ParseDecimal coerces a raw row value to a decimal.
// Strings are read up to the first character that cannot continue a number,
// so "12.5kg" is 12.5. Missing, empty, non-numeric or out-of-range values
// are decimal.Zero.
func ParseDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return boundAmount(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero
		}
		return boundAmount(decimal.NewFromFloat(val))
	case float32:
		return ParseDecimal(float64(val))
	case int:
		return boundAmount(decimal.NewFromInt(int64(val)))
	case int64:
		return boundAmount(decimal.NewFromInt(val))
	case int32:
		return boundAmount(decimal.NewFromInt(int64(val)))
	case json.Number:
		return ParseDecimal(string(val))
	case string:
		prefix := numericPrefix(val, true)
		if prefix == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(prefix)
		if err == nil {
			return boundAmount(d)
		}
	}
	return decimal.Zero
}

// boundAmount returns d when it fits an amount column, otherwise zero.
// Magnitude is judged from digit count and exponent first so extreme
// exponents are rejected without rescaling.
func boundAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	exp := int64(d.Exponent())
	if exp < minExponent {
		return decimal.Zero
	}
	if int64(d.NumDigits())+exp > maxAmountDigits+1 {
		return decimal.Zero
	}
	if exp < -maxScale {
		d = d.Round(maxScale)
	}
	if d.Round(2).Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero
	}
	return d
}

// ParseInt coerces a raw row value to an integer, truncating any fraction.
// Non-numeric values and values outside the int32 range are 0.
func ParseInt(v interface{}) int {
	switch val := v.(type) {
	case nil:
		return 0
	case int:
		return boundInt(int64(val))
	case int64:
		return boundInt(val)
	case int32:
		return int(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) ||
			val >= math.MaxInt32+1 || val <= math.MinInt32-1 {
			return 0
		}
		return int(val)
	case float32:
		return ParseInt(float64(val))
	case decimal.Decimal:
		if int64(val.NumDigits())+int64(val.Exponent()) > 10 {
			return 0
		}
		return boundInt(val.IntPart())
	case json.Number:
		return ParseInt(string(val))
	case string:
		prefix := numericPrefix(val, false)
		digits := strings.TrimLeft(prefix, "+-")
		if digits == "" || len(strings.TrimLeft(digits, "0")) > 10 {
			return 0
		}
		n, err := strconv.ParseInt(prefix, 10, 64)
		if err == nil {
			return boundInt(n)
		}
	}
	return 0
}

func boundInt(n int64) int {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0
	}
	return int(n)
}

// numericPrefix returns the longest leading run of s that forms a number:
// optional sign, digits, and when fractional is set a '.' fraction and exponent.
// Returns "" when s does not start with a digit (after trimming and sign).
func numericPrefix(s string, fractional bool) string {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intDigits := i - start

	if !fractional {
		if intDigits == 0 {
			return ""
		}
		return s[:i]
	}

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		fracDigits = j - i - 1
		if fracDigits > 0 || intDigits > 0 {
			i = j
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}

	out := strings.TrimSuffix(s[:i], ".")
	if intDigits == 0 {
		// ".5" and "-.5" need a leading zero for decimal parsing.
		out = out[:start] + "0" + out[start:]
	}
	return out
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
