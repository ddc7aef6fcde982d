// Package record defines the canonical star-system record and the validation
// rules that turn raw catalog entries into canonical ones.
package record

// Raw is a single undecoded catalog entry as it appears in the source dump:
// an arbitrary key/value mapping. Raw values exist only during extraction;
// numeric values are json.Number so coercion is explicit.
type Raw map[string]interface{}

// Coords holds a system's galactic position in light years.
type Coords struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Canonical is the validated, minimal-field representation of a star system
// used throughout the pipeline. Immutable once created; the JSON field order
// of the struct is the field order of the compact dataset file.
type Canonical struct {
	ID64       uint64 `json:"id64"`
	Name       string `json:"name"`
	Coords     Coords `json:"coords"`
	Population uint64 `json:"population"`
}
