// Package env provides facts about the machine the program runs on.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "multisensor"

// MachineID retrieves the unique ID identifying the machine.
func MachineID() (string, error) {
	return machineid.ID()
}

// DeviceID derives a stable, application-specific device name from the
// machine ID. It falls back to the hostname when no machine ID exists.
func DeviceID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil && len(id) >= 12 {
		return id[:12]
	}
	glog.Warningf("machine id unavailable (%v), using hostname", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return appID
}
