//go:build linux && !baremetal

package receiver

import "tinygo.org/x/bluetooth"

// adapterFor returns the BlueZ adapter named id, such as "hci1".
func adapterFor(id string) *bluetooth.Adapter {
	if id == "" {
		return bluetooth.DefaultAdapter
	}
	return bluetooth.NewAdapter(id)
}
