package main

import (
	"flag"
	"log"

	"github.com/robotalks/serialproto/pkg/telemetry"
)

func init() {
	telemetry.SetupFlags()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := telemetry.Default()
	if !conf.Enabled() {
		log.Fatalln("MQTT broker URL required, use -mqtt or SERIALPROTO_MQTT_URL")
	}
	q, err := conf.NewQueue()
	if err != nil {
		log.Fatalln(err)
	}
	// an empty -device-id watches all devices
	telemetry.Watch(q, conf.DeviceID, func(rec telemetry.Record, err error) {
		switch {
		case err != nil:
			log.Printf("%s/%s: bad message: %v", rec.DeviceID, rec.Kind, err)
		case rec.Message != nil:
			log.Printf("%s/%s: %s", rec.DeviceID, rec.Kind, rec.Message.String())
		case rec.Meta != nil:
			log.Printf("%s: online %+v", rec.DeviceID, *rec.Meta)
		default:
			log.Printf("%s: offline", rec.DeviceID)
		}
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
