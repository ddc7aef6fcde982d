package record

import (
	"math"

	gojson "github.com/goccy/go-json"
)

// Validate decides whether a raw catalog entry carries all required fields
// with usable values, and if so produces the canonical record. It never
// panics and has no side effects; malformed entries simply return ok=false
// and are counted by the caller.
//
// Coercion policy: coordinates convert via IEEE-754 round-to-nearest, so
// arbitrary-precision source decimals are accepted with reduced precision
// rather than rejected. Integer fields (id64, population) are read exactly
// when the source value is integral; fractional population values are
// truncated toward zero; negative populations are rejected.
func Validate(raw Raw) (Canonical, bool) {
	var rec Canonical

	id64, ok := asUint64(raw["id64"])
	if !ok {
		return rec, false
	}

	name, ok := raw["name"].(string)
	if !ok {
		return rec, false
	}

	coords, ok := raw["coords"].(map[string]interface{})
	if !ok {
		return rec, false
	}

	x, okX := asFloat64(coords["x"])
	y, okY := asFloat64(coords["y"])
	z, okZ := asFloat64(coords["z"])
	if !okX || !okY || !okZ {
		return rec, false
	}

	population, ok := asUint64(raw["population"])
	if !ok {
		return rec, false
	}

	rec.ID64 = id64
	rec.Name = name
	rec.Coords = Coords{X: x, Y: y, Z: z}
	rec.Population = population
	return rec, true
}

// asFloat64 coerces a decoded JSON value to float64
func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case gojson.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// asUint64 coerces a decoded JSON value to a non-negative integer.
// Integral values are read exactly; fractional values truncate toward zero.
func asUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case gojson.Number:
		if i, err := n.Int64(); err == nil {
			if i < 0 {
				return 0, false
			}
			return uint64(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToUint64(f)
	case float64:
		return floatToUint64(n)
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return n, true
	default:
		return 0, false
	}
}

func floatToUint64(f float64) (uint64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	if f >= math.MaxUint64 {
		return math.MaxUint64, true
	}
	return uint64(f), true
}
