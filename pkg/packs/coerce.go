package packs

import (
	"fmt"
	"strconv"

	"github.com/patchbay/patchbay/internal/core/catalog"
)

// AsNumber coerces a port value to a float64. Unparseable or unknown
// values coerce to 0.
func AsNumber(v catalog.Value) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// AsBool coerces a port value to a bool. Numbers are true when nonzero;
// strings parse via strconv.ParseBool and fall back to non-emptiness;
// lists are true when non-empty.
func AsBool(v catalog.Value) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
		return b != ""
	case []catalog.Value:
		return len(b) > 0
	default:
		if isNumber(v) {
			return AsNumber(v) != 0
		}
		return false
	}
}

// AsString coerces a port value to a string; nil coerces to "".
func AsString(v catalog.Value) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

// AsList returns the value as a list, or nil when it is not one.
func AsList(v catalog.Value) []catalog.Value {
	if l, ok := v.([]catalog.Value); ok {
		return l
	}
	return nil
}

func isNumber(v catalog.Value) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}
