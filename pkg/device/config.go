package device

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	fx "github.com/robotalks/serialproto/pkg/framework"
	"github.com/robotalks/serialproto/pkg/link/serial"
	"github.com/robotalks/serialproto/pkg/link/websocket"
)

// Config provides options of the emulated device.
type Config struct {
	// Link is a serial port path, or ws://[host]:port/path to serve the
	// link over websocket.
	Link string
	// Recover answers frames with extra trailing bytes with OkRecovered
	// instead of rejecting them.
	Recover          bool
	QueueLen         int
	ScheduleCapacity int
	TickInterval     time.Duration
	Brightness       uint
}

// SerialPollInterval bounds how long a serial read blocks so the session
// notices cancellation.
const SerialPollInterval = 100 * time.Millisecond

var defaultConfig = Config{
	Link:             "ws://:8080" + websocket.DefaultPath,
	QueueLen:         DefaultQueueLen,
	ScheduleCapacity: DefaultScheduleCapacity,
	TickInterval:     DefaultTickInterval,
	Brightness:       DefaultBrightness,
}

func init() {
	if val := os.Getenv("COM_PATH"); val != "" {
		defaultConfig.Link = val
	}
	if val := os.Getenv("SERIALPROTO_LINK"); val != "" {
		defaultConfig.Link = val
	}
	if val := os.Getenv("SERIALPROTO_RECOVER"); val != "" {
		defaultConfig.Recover, _ = strconv.ParseBool(val)
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Link, "link", defaultConfig.Link, "Serial port path or ws://[host]:port/path to listen on.")
	flag.BoolVar(&defaultConfig.Recover, "recover", defaultConfig.Recover, "Execute commands recovered from frames with trailing bytes.")
	flag.IntVar(&defaultConfig.QueueLen, "queue", defaultConfig.QueueLen, "Capacity of command and response queues.")
	flag.IntVar(&defaultConfig.ScheduleCapacity, "schedule-cap", defaultConfig.ScheduleCapacity, "Capacity of the schedule queue.")
	flag.DurationVar(&defaultConfig.TickInterval, "tick", defaultConfig.TickInterval, "Scheduler tick interval.")
	flag.UintVar(&defaultConfig.Brightness, "brightness", defaultConfig.Brightness, "RGB led brightness (0-255).")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// IsWebsocket tells whether the link is served over websocket.
func (c *Config) IsWebsocket() bool {
	return strings.HasPrefix(c.Link, "ws://")
}

// NewDevice creates the device and applies the config.
func (c *Config) NewDevice(actuator Actuator) *Device {
	d := New(c, actuator)
	if c.Brightness > 0 && c.Brightness < 256 {
		d.Brightness = uint8(c.Brightness)
	}
	return d
}

// NewLinkServer creates the Runnable serving d over the configured link.
func (c *Config) NewLinkServer(d *Device) (fx.Runnable, error) {
	if c.Link == "" {
		return nil, fmt.Errorf("link not specified")
	}
	if c.IsWebsocket() {
		u, err := url.Parse(c.Link)
		if err != nil {
			return nil, fmt.Errorf("invalid link URL: %w", err)
		}
		return &websocket.Server{
			Addr:    u.Host,
			Path:    u.Path,
			Session: func(ctx context.Context, conn *websocket.Conn) error { return d.Serve(ctx, conn) },
		}, nil
	}
	path := c.Link
	return fx.RunFunc(func(ctx context.Context) error {
		port, err := serial.Config{Path: path, ReadTimeout: SerialPollInterval}.Open()
		if err != nil {
			return err
		}
		return d.Serve(ctx, port)
	}), nil
}

// MustNewLinkServer creates the link server and fails on error.
func (c *Config) MustNewLinkServer(d *Device) fx.Runnable {
	r, err := c.NewLinkServer(d)
	if err != nil {
		log.Fatalln(err)
	}
	return r
}
