package msgs

import "fmt"

// CommandTag is the wire tag of a Command variant.
type CommandTag uint32

// Command tags. The values are part of the ABI.
const (
	TagReset CommandTag = iota
	TagCounterQuery
	TagSetDateTime
	TagImmediate
	TagSchedule
)

// Command is a request sent by the host. Exactly one of
// Reset, CounterQuery, SetDateTime, Immediate, Schedule.
type Command interface {
	CommandTag() CommandTag
}

// Reset resets application and hardware to the initial state.
type Reset struct{}

// CommandTag implements Command.
func (Reset) CommandTag() CommandTag { return TagReset }

func (Reset) String() string { return "Reset" }

// CounterQuery returns the device-internal counter.
type CounterQuery struct{}

// CommandTag implements Command.
func (CounterQuery) CommandTag() CommandTag { return TagCounterQuery }

func (CounterQuery) String() string { return "Counter" }

// SetDateTime sets or clears (DateTime == nil) the reference time of the device.
type SetDateTime struct {
	DateTime *DateTime
}

// CommandTag implements Command.
func (SetDateTime) CommandTag() CommandTag { return TagSetDateTime }

func (c SetDateTime) String() string {
	if c.DateTime == nil {
		return "SetDateTime(None)"
	}
	return fmt.Sprintf("SetDateTime(%s)", c.DateTime)
}

// Immediate actuates a Function now.
type Immediate struct {
	Function Function
}

// CommandTag implements Command.
func (Immediate) CommandTag() CommandTag { return TagImmediate }

func (c Immediate) String() string { return fmt.Sprintf("Immediate(%v)", c.Function) }

// Schedule actuates a Function once the reference time reaches At.
// Once accepted, a scheduled Function cannot be removed.
type Schedule struct {
	Function Function
	At       DateTime
}

// CommandTag implements Command.
func (Schedule) CommandTag() CommandTag { return TagSchedule }

func (c Schedule) String() string { return fmt.Sprintf("Schedule(%v, %s)", c.Function, c.At) }

// FunctionTag is the wire tag of a Function variant.
type FunctionTag uint32

// Function tags. The values are part of the ABI.
const (
	TagIncrement FunctionTag = iota
	TagEnableBlink
	TagDisableBlink
	TagEnableRGB
	TagDisableRGB
)

// Function is the functionality triggered by Immediate and Schedule.
type Function interface {
	FunctionTag() FunctionTag
}

// Increment increments the device-internal counter.
type Increment struct{}

// FunctionTag implements Function.
func (Increment) FunctionTag() FunctionTag { return TagIncrement }

func (Increment) String() string { return "Increment" }

// EnableBlink starts blinking the led, switching state every PeriodMs.
type EnableBlink struct {
	PeriodMs uint64
}

// FunctionTag implements Function.
func (EnableBlink) FunctionTag() FunctionTag { return TagEnableBlink }

func (f EnableBlink) String() string { return fmt.Sprintf("EnableBlink{period_ms: %d}", f.PeriodMs) }

// DisableBlink stops blinking and turns the led off.
type DisableBlink struct{}

// FunctionTag implements Function.
func (DisableBlink) FunctionTag() FunctionTag { return TagDisableBlink }

func (DisableBlink) String() string { return "DisableBlink" }

// EnableRGB turns on the RGB led which shows the time of day in UTC.
type EnableRGB struct{}

// FunctionTag implements Function.
func (EnableRGB) FunctionTag() FunctionTag { return TagEnableRGB }

func (EnableRGB) String() string { return "EnableRgb" }

// DisableRGB turns off the RGB led.
type DisableRGB struct{}

// FunctionTag implements Function.
func (DisableRGB) FunctionTag() FunctionTag { return TagDisableRGB }

func (DisableRGB) String() string { return "DisableRgb" }
