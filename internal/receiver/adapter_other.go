//go:build !linux || baremetal

package receiver

import "tinygo.org/x/bluetooth"

// adapterFor returns the default adapter. Only BlueZ can pick one by name.
func adapterFor(id string) *bluetooth.Adapter {
	return bluetooth.DefaultAdapter
}
