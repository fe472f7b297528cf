package device

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
)

// Color is an RGB led color.
type Color struct {
	R, G, B uint8
}

// Off is the color of an unlit led.
var Off = Color{}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Scale applies brightness in the range 0-255 to the color.
func (c Color) Scale(brightness uint8) Color {
	scale := func(v uint8) uint8 {
		return uint8(uint16(v) * (uint16(brightness) + 1) / 256)
	}
	return Color{R: scale(c.R), G: scale(c.G), B: scale(c.B)}
}

// Actuator drives the device outputs.
type Actuator interface {
	SetLED(on bool)
	SetRGB(Color)
}

// LogActuator is an Actuator which logs output transitions.
type LogActuator struct {
	lock   sync.Mutex
	led    bool
	rgb    Color
	inited bool
}

// SetLED implements Actuator.
func (a *LogActuator) SetLED(on bool) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.inited && a.led == on {
		return
	}
	a.led, a.inited = on, true
	if glog.V(1) {
		glog.Infof("LED %v", onOff(on))
	}
}

// SetRGB implements Actuator.
func (a *LogActuator) SetRGB(c Color) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.rgb == c {
		return
	}
	a.rgb = c
	glog.V(1).Infof("RGB %s", c)
}

// Outputs returns the current led state and RGB color.
func (a *LogActuator) Outputs() (bool, Color) {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.led, a.rgb
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
