// Package serial opens serial ports as links.
package serial

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// DefaultBaudRate is the link speed both ends agree on.
const DefaultBaudRate = 115200

// Config specifies how to open a serial port.
type Config struct {
	Path        string
	BaudRate    int
	ReadTimeout time.Duration
}

// Open opens the port at path with the default settings.
func Open(path string) (serial.Port, error) {
	return Config{Path: path}.Open()
}

// Open opens the serial port, 8N1, and drops stale input.
func (c Config) Open() (serial.Port, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("serial port path not specified")
	}
	baudRate := c.BaudRate
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(c.Path, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Path, err)
	}
	if c.ReadTimeout > 0 {
		if err := port.SetReadTimeout(c.ReadTimeout); err != nil {
			port.Close()
			return nil, err
		}
	}
	if err := port.ResetInputBuffer(); err != nil {
		glog.Warningf("%s: reset input buffer: %v", c.Path, err)
	}
	glog.V(2).Infof("%s: opened at %d baud", c.Path, baudRate)
	return port, nil
}

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
