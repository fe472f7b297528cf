package protocol

import (
	"fmt"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/serialproto/pkg/cli/sh"
	"github.com/robotalks/serialproto/pkg/msgs"
)

func immediate(fn msgs.Function) func(c *ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		sh.DoCommand(c, msgs.Immediate{Function: fn})
	})
}

var (
	// ResetCmd exposes Reset command.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, msgs.Reset{})
		}),
	}

	// CounterCmd queries the counter.
	CounterCmd = ishell.Cmd{
		Name:    "counter",
		Aliases: []string{"cnt"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, msgs.CounterQuery{})
		}),
	}

	// IncCmd increments the counter.
	IncCmd = ishell.Cmd{
		Name: "inc",
		Help: "",
		Func: immediate(msgs.Increment{}),
	}

	// BlinkCmd enables blinking.
	BlinkCmd = ishell.Cmd{
		Name: "blink",
		Help: "PERIOD_MS",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			fn, _, err := sh.ParseFunction(append([]string{"blink"}, c.Args...))
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msgs.Immediate{Function: fn})
		}),
	}

	// NoBlinkCmd disables blinking.
	NoBlinkCmd = ishell.Cmd{
		Name: "noblink",
		Help: "",
		Func: immediate(msgs.DisableBlink{}),
	}

	// RGBCmd enables the RGB indicator.
	RGBCmd = ishell.Cmd{
		Name: "rgb",
		Help: "",
		Func: immediate(msgs.EnableRGB{}),
	}

	// NoRGBCmd disables the RGB indicator.
	NoRGBCmd = ishell.Cmd{
		Name: "norgb",
		Help: "",
		Func: immediate(msgs.DisableRGB{}),
	}

	// TimeCmd sets or clears the reference time.
	TimeCmd = ishell.Cmd{
		Name: "time",
		Help: "[now|clear|RFC3339]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			var arg string
			if len(c.Args) > 0 {
				arg = c.Args[0]
			}
			dt, err := sh.ParseDateTime(arg, time.Now())
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msgs.SetDateTime{DateTime: dt})
		}),
	}

	// ScheduleCmd schedules a function.
	ScheduleCmd = ishell.Cmd{
		Name:    "schedule",
		Aliases: []string{"at"},
		Help:    "FUNC [ARGS] IN_DURATION|AT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sched, err := sh.ParseSchedule(c.Args, time.Now())
			if err != nil {
				c.Err(fmt.Errorf("%w (FUNC: inc, blink PERIOD_MS, noblink, rgb, norgb)", err))
				return
			}
			sh.DoCommand(c, sched)
		}),
	}
)

func init() {
	sh.AddCmds(
		&ResetCmd,
		&CounterCmd,
		&IncCmd,
		&BlinkCmd,
		&NoBlinkCmd,
		&RGBCmd,
		&NoRGBCmd,
		&TimeCmd,
		&ScheduleCmd,
	)
}
