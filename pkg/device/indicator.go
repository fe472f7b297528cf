package device

import (
	fx "github.com/robotalks/serialproto/pkg/framework"
	"github.com/robotalks/serialproto/pkg/msgs"
)

// DefaultBrightness is the RGB brightness, the led is hard to look at
// beyond that.
const DefaultBrightness = 20

// Unsynced is shown by the RGB led while the reference time is unset.
var Unsynced = Color{R: 80, G: 180, B: 255}

// Indicator drives the RGB led to show the time of day.
type Indicator struct {
	State      *SharedState
	Actuator   Actuator
	Brightness uint8
}

// AddToLoop implements LoopAdder.
func (i *Indicator) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvActuate, i)
}

// Control implements Controller.
func (i *Indicator) Control(ctx fx.ControlContext) error {
	snapshot := i.State.Snapshot(ctx.Time())
	color := Off
	if snapshot.RGBEnabled {
		color = Unsynced
		if ref := snapshot.ReferenceTime; ref != nil {
			color = TimeOfDayColor(*ref)
		}
		brightness := i.Brightness
		if brightness == 0 {
			brightness = DefaultBrightness
		}
		color = color.Scale(brightness)
	}
	i.Actuator.SetRGB(color)
	return nil
}

// TimeOfDayColor maps hour, minute and second to red, green and blue.
func TimeOfDayColor(t msgs.DateTime) Color {
	return Color{
		R: uint8(t.Hour % 24 * 255 / 23),
		G: uint8(t.Minute % 60 * 255 / 59),
		B: uint8(t.Second % 60 * 255 / 59),
	}
}
