package device

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/serialproto/pkg/framework"
	"github.com/robotalks/serialproto/pkg/msgs"
)

// DefaultTickInterval is the period the scheduler checks for due entries.
const DefaultTickInterval = 10 * time.Millisecond

// Scheduler fires scheduled functions once the reference time reaches
// their target. It runs on every loop iteration.
type Scheduler struct {
	State *SharedState
	// OnFired is called with the functions fired in one iteration.
	OnFired func([]msgs.Function)
}

// AddToLoop implements LoopAdder.
func (s *Scheduler) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, s)
}

// Control implements Controller.
func (s *Scheduler) Control(ctx fx.ControlContext) error {
	fired := s.State.FireDue(ctx.Time())
	if len(fired) == 0 {
		return nil
	}
	for _, fn := range fired {
		glog.V(1).Infof("scheduled %v fired", fn)
	}
	if s.OnFired != nil {
		s.OnFired(fired)
	}
	return nil
}
