package cvar

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	errUnsupported = errors.New("unsupported type")
	errNotFinite   = errors.New("not a finite number")
	errOutOfRange  = errors.New("out of integer range")
)

// toInt converts v to an integer, truncating fractional parts toward zero.
func toInt(v any) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return uintToInt(uint64(val))
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return uintToInt(val)
	case float32:
		return truncate(float64(val))
	case float64:
		return truncate(val)
	case string:
		return parseInt(val)
	case fmt.Stringer:
		return parseInt(val.String())
	default:
		return 0, errUnsupported
	}
}

// toFloat converts v to a finite float.
func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case float32:
		return finite(widen(val))
	case float64:
		return finite(val)
	case string:
		return parseFloat(val)
	case fmt.Stringer:
		return parseFloat(val.String())
	default:
		return 0, errUnsupported
	}
}

// toText converts v to its canonical string form.
// Strings are returned verbatim.
func toText(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int, int8, int16, int32, int64:
		i, _ := toInt(val)
		return strconv.FormatInt(i, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		f, err := finite(widen(val))
		if err != nil {
			return "", err
		}
		return FormatFloat(f), nil
	case float64:
		f, err := finite(val)
		if err != nil {
			return "", err
		}
		return FormatFloat(f), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return "", errUnsupported
	}
}

// FormatFloat returns the canonical string form of f: the shortest decimal
// that round-trips, without trailing fractional zeros or an exponent.
// Negative zero keeps its sign.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return truncate(f)
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return finite(f)
}

// truncate drops the fractional part of f, rounding toward zero.
func truncate(f float64) (int64, error) {
	if _, err := finite(f); err != nil {
		return 0, err
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, errOutOfRange
	}
	return int64(t), nil
}

func finite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

// widen converts f to float64 keeping its shortest decimal form,
// so float32(0.55) becomes 0.55 rather than 0.550000011920929.
func widen(f float32) float64 {
	w, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return w
}

func uintToInt(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, errOutOfRange
	}
	return int64(u), nil
}
