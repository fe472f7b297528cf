package sh

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/serialproto/pkg/msgs"
)

// ParseFunction parses a function name and its arguments from the head of
// args, returning the remaining args.
func ParseFunction(args []string) (msgs.Function, []string, error) {
	if len(args) == 0 {
		return nil, args, fmt.Errorf("FUNC required")
	}
	switch name, rest := strings.ToLower(args[0]), args[1:]; name {
	case "inc", "increment":
		return msgs.Increment{}, rest, nil
	case "blink":
		if len(rest) == 0 {
			return nil, rest, fmt.Errorf("PERIOD_MS required")
		}
		period, err := strconv.ParseUint(rest[0], 10, 64)
		if err != nil {
			return nil, rest, fmt.Errorf("invalid PERIOD_MS: %w", err)
		}
		return msgs.EnableBlink{PeriodMs: period}, rest[1:], nil
	case "noblink":
		return msgs.DisableBlink{}, rest, nil
	case "rgb":
		return msgs.EnableRGB{}, rest, nil
	case "norgb":
		return msgs.DisableRGB{}, rest, nil
	default:
		return nil, rest, fmt.Errorf("unknown function %q", args[0])
	}
}

// ParseDateTime parses now, clear or an RFC3339 time. It returns nil for
// clear.
func ParseDateTime(arg string, now time.Time) (*msgs.DateTime, error) {
	switch arg {
	case "", "now":
		dt := msgs.DateTimeFrom(now)
		return &dt, nil
	case "clear", "none":
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, arg)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", arg, err)
	}
	dt := msgs.DateTimeFrom(t)
	return &dt, nil
}

// ParseAt parses a target time, either a duration from now or an
// RFC3339 time.
func ParseAt(arg string, now time.Time) (msgs.DateTime, error) {
	if dur, err := time.ParseDuration(arg); err == nil {
		return msgs.DateTimeFrom(now.Add(dur)), nil
	}
	t, err := time.Parse(time.RFC3339Nano, arg)
	if err != nil {
		return msgs.DateTime{}, fmt.Errorf("invalid IN_DURATION|AT %q", arg)
	}
	return msgs.DateTimeFrom(t), nil
}

// ParseSchedule parses FUNC [ARGS] IN_DURATION|AT.
func ParseSchedule(args []string, now time.Time) (msgs.Schedule, error) {
	fn, rest, err := ParseFunction(args)
	if err != nil {
		return msgs.Schedule{}, err
	}
	if len(rest) != 1 {
		return msgs.Schedule{}, fmt.Errorf("IN_DURATION|AT required")
	}
	at, err := ParseAt(rest[0], now)
	if err != nil {
		return msgs.Schedule{}, err
	}
	return msgs.Schedule{Function: fn, At: at}, nil
}
