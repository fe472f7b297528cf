package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/serialproto/pkg/framework"
	"github.com/robotalks/serialproto/pkg/device"
	"github.com/robotalks/serialproto/pkg/telemetry"
	tmsgs "github.com/robotalks/serialproto/pkg/telemetry/msgs"
)

func init() {
	device.SetupFlags()
	telemetry.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := device.NewConfig()
	dev := conf.NewDevice(&device.LogActuator{})
	runners := []fx.Runnable{
		fx.NamedRun("device", dev),
		fx.NamedRun("link", conf.MustNewLinkServer(dev)),
	}

	if tconf := telemetry.Default(); tconf.Enabled() {
		pub, err := tconf.NewPublisher(dev, tmsgs.Meta{
			Description: "Emulated serial protocol device",
			Link:        conf.Link,
			Recover:     conf.Recover,
			StartedAt:   time.Now().Unix(),
		})
		if err != nil {
			glog.Exitf("telemetry: %v", err)
		}
		dev.Observer = pub
		runners = append(runners, fx.NamedRun("telemetry", pub))
		glog.Infof("telemetry enabled as %s", pub.DeviceID)
	}

	glog.Infof("device serving on %s", conf.Link)
	fx.NewRunner().HandleSignals().RunOrFail(runners...)
}
