package host

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robotalks/serialproto/pkg/link"
	"github.com/robotalks/serialproto/pkg/link/serial"
	"github.com/robotalks/serialproto/pkg/link/websocket"
)

// Config provides options to reach a device.
type Config struct {
	// Link is a serial port path or ws://host:port/path of an emulated device.
	Link    string
	Timeout time.Duration
}

var defaultConfig = Config{
	Link:    "ws://localhost:8080" + websocket.DefaultPath,
	Timeout: DefaultTimeout,
}

func init() {
	if val := os.Getenv("COM_PATH"); val != "" {
		defaultConfig.Link = val
	}
	if val := os.Getenv("SERIALPROTO_LINK"); val != "" {
		defaultConfig.Link = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Link, "link", defaultConfig.Link, "Serial port path or ws:// URL of the device.")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Response timeout.")
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

// PortCloser is a link.Port which must be closed after use.
type PortCloser interface {
	link.Port
	io.Closer
}

// Open opens the configured link.
func (c *Config) Open() (PortCloser, error) {
	if c.Link == "" {
		return nil, fmt.Errorf("link not specified, set COM_PATH")
	}
	if strings.HasPrefix(c.Link, "ws://") || strings.HasPrefix(c.Link, "wss://") {
		conn, err := websocket.Dial(c.Link)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return serial.Open(c.Link)
}

// Dial opens the link and creates a Client on it.
func (c *Config) Dial() (*Client, io.Closer, error) {
	port, err := c.Open()
	if err != nil {
		return nil, nil, err
	}
	client := NewClient(port)
	if c.Timeout > 0 {
		client.Timeout = c.Timeout
	}
	return client, port, nil
}

// MustDial dials and fails on error.
func (c *Config) MustDial() (*Client, io.Closer) {
	client, closer, err := c.Dial()
	if err != nil {
		log.Fatalln(err)
	}
	return client, closer
}
