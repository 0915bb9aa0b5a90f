//go:build ringdebug

package ring

import "fmt"

// assertSlot panics on an out-of-range physical index. Only compiled with
// the ringdebug build tag.
func assertSlot(idx, size int) {
	if idx < 0 || idx >= size {
		panic(fmt.Sprintf("ring: physical index %d out of range [0,%d)", idx, size))
	}
}
