package device

import (
	"context"
	"math"
	"time"
)

// BlinkIdlePoll is how often a disabled blinker checks for a new interval.
const BlinkIdlePoll = 200 * time.Millisecond

// Blinker toggles the led with the period set by EnableBlink. A change of
// the period takes effect immediately.
type Blinker struct {
	State    *SharedState
	Actuator Actuator
}

// Run implements Runnable.
func (b *Blinker) Run(ctx context.Context) error {
	var on bool
	b.Actuator.SetLED(false)
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			b.Actuator.SetLED(false)
			return ctx.Err()
		case <-timer.C:
		case <-b.State.BlinkChanged():
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		interval := b.State.BlinkIntervalMs()
		if interval == 0 {
			if on {
				on = false
				b.Actuator.SetLED(false)
			}
			timer.Reset(BlinkIdlePoll)
			continue
		}
		on = !on
		b.Actuator.SetLED(on)
		timer.Reset(blinkPeriod(interval))
	}
}

func blinkPeriod(ms uint64) time.Duration {
	if ms > uint64(math.MaxInt64/int64(time.Millisecond)) {
		return math.MaxInt64
	}
	return time.Duration(ms) * time.Millisecond
}
