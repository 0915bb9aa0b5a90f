package sensor

import "golang.org/x/exp/constraints"

// Sentinel codes used on the wire for readings that have not been received.
// Existing log consumers depend on these exact values.
const (
	NoTemperature int16  = 255
	NoHumidity    uint8  = 255
	NoPressure    int16  = 2000
	NoSwitch      uint8  = 255
	NoLowBattery  uint8  = 255
	NoVcc         uint8  = 255
	NoRuntime     uint16 = 1023
	NoPCI         uint8  = 255
)

// Reading is an integer measurement that may be absent.
// The zero value is absent.
type Reading[T constraints.Integer] struct {
	value T
	valid bool
}

// Some returns a present reading holding v.
func Some[T constraints.Integer](v T) Reading[T] {
	return Reading[T]{value: v, valid: true}
}

// FromCode decodes a wire code, treating the sentinel as absent.
func FromCode[T constraints.Integer](code, sentinel T) Reading[T] {
	if code == sentinel {
		return Reading[T]{}
	}
	return Some(code)
}

// Get returns the value and whether it is present.
func (r Reading[T]) Get() (T, bool) {
	return r.value, r.valid
}

// Valid reports whether the reading is present.
func (r Reading[T]) Valid() bool {
	return r.valid
}

// Or returns the value, or fallback if the reading is absent.
func (r Reading[T]) Or(fallback T) T {
	if !r.valid {
		return fallback
	}
	return r.value
}

// Code returns the wire encoding of the reading.
func (r Reading[T]) Code(sentinel T) T {
	return r.Or(sentinel)
}
