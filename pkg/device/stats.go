package device

import "sync/atomic"

// Stats counts pipeline events. Counters are updated without locking
// so the receiver can bump them.
type Stats struct {
	CommandsReceived atomic.Uint64
	FramesRejected   atomic.Uint64
	CommandsDropped  atomic.Uint64
	RejectsDropped   atomic.Uint64
	ResponsesSent    atomic.Uint64
	TxErrors         atomic.Uint64
}

// StatsSnapshot is a copy of Stats.
type StatsSnapshot struct {
	CommandsReceived uint64
	FramesRejected   uint64
	CommandsDropped  uint64
	RejectsDropped   uint64
	ResponsesSent    uint64
	TxErrors         uint64
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		CommandsReceived: s.CommandsReceived.Load(),
		FramesRejected:   s.FramesRejected.Load(),
		CommandsDropped:  s.CommandsDropped.Load(),
		RejectsDropped:   s.RejectsDropped.Load(),
		ResponsesSent:    s.ResponsesSent.Load(),
		TxErrors:         s.TxErrors.Load(),
	}
}
