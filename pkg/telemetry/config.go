package telemetry

import (
	"flag"
	"os"
	"time"

	"github.com/robotalks/serialproto/pkg/device"
	tmsgs "github.com/robotalks/serialproto/pkg/telemetry/msgs"
)

// Config provides telemetry options.
type Config struct {
	// BrokerURL is mqtt://host:port/prefix. Telemetry is disabled if empty.
	BrokerURL      string
	DeviceID       string
	StatusInterval time.Duration
}

var defaultConfig = Config{
	StatusInterval: DefaultStatusInterval,
}

func init() {
	if val := os.Getenv("SERIALPROTO_MQTT_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
	defaultConfig.DeviceID = os.Getenv("SERIALPROTO_DEVICE_ID")
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL for telemetry, mqtt://host:port/prefix.")
	flag.StringVar(&defaultConfig.DeviceID, "device-id", defaultConfig.DeviceID, "Device id in telemetry topics, derived from machine id if empty.")
	flag.DurationVar(&defaultConfig.StatusInterval, "status-interval", defaultConfig.StatusInterval, "Interval of periodic status updates.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// Enabled tells whether telemetry is configured.
func (c *Config) Enabled() bool {
	return c.BrokerURL != ""
}

// ID returns the configured device id or the derived one.
func (c *Config) ID() string {
	if c.DeviceID != "" {
		return c.DeviceID
	}
	return DeviceID()
}

// NewPublisher creates a Publisher for dev.
func (c *Config) NewPublisher(dev *device.Device, meta tmsgs.Meta) (*Publisher, error) {
	p, err := NewPublisher(c.BrokerURL, c.ID(), dev, meta)
	if err != nil {
		return nil, err
	}
	p.Interval = c.StatusInterval
	return p, nil
}

// NewQueue creates a Queue for monitoring.
func (c *Config) NewQueue() (*Queue, error) {
	return NewQueueFromURL(c.BrokerURL)
}
