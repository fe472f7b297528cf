package telemetry

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "serialproto"

// DeviceID derives a stable id from the machine id. The raw machine id is
// never exposed.
func DeviceID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		if host, err := os.Hostname(); err == nil && host != "" {
			return host
		}
		return appID
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
