package host

import (
	"fmt"
	"reflect"
	"time"

	"github.com/robotalks/serialproto/pkg/msgs"
)

// Step is one exchange of a scenario with the response expected.
type Step struct {
	Command msgs.Command
	Expect  msgs.Response
}

// ScenarioError reports a step whose response differs from the expectation.
type ScenarioError struct {
	Index int
	Step  Step
	Got   msgs.Response
}

// Error implements error.
func (e *ScenarioError) Error() string {
	return fmt.Sprintf("step %d %v: expect %v, got %v", e.Index, e.Step.Command, e.Step.Expect, e.Got)
}

// BasicScenario is the acceptance sequence for a freshly reset device:
// counter query and increment, scheduling refused without a reference
// time, accepted after setting one.
func BasicScenario(now msgs.DateTime) []Step {
	schedule := msgs.Schedule{Function: msgs.EnableBlink{PeriodMs: 500}, At: now.Add(10 * time.Second)}
	return []Step{
		{msgs.Reset{}, msgs.OK{}},
		{msgs.CounterQuery{}, msgs.OK{Payload: msgs.CounterValue{Value: 0}}},
		{msgs.Immediate{Function: msgs.Increment{}}, msgs.OK{}},
		{msgs.CounterQuery{}, msgs.OK{Payload: msgs.CounterValue{Value: 1}}},
		{schedule, msgs.Rejected{Reason: msgs.IllegalCommand}},
		{msgs.SetDateTime{DateTime: &now}, msgs.OK{}},
		{schedule, msgs.OK{}},
	}
}

// RunScenario exchanges every step in order and stops at the first error
// or unexpected response. observe, if not nil, sees every response.
func (c *Client) RunScenario(steps []Step, timeout time.Duration, observe func(Step, msgs.Response)) error {
	for n, step := range steps {
		resp, err := c.Exchange(step.Command, timeout)
		if err != nil {
			return fmt.Errorf("step %d %v: %w", n, step.Command, err)
		}
		if observe != nil {
			observe(step, resp)
		}
		if !reflect.DeepEqual(step.Expect, resp) {
			return &ScenarioError{Index: n, Step: step, Got: resp}
		}
	}
	return nil
}
