// statistics.go defines the per-instance processing counters.

package types

import (
	"sync/atomic"
	"time"

	uatomic "go.uber.org/atomic"
)

// Statistics is an immutable snapshot of Counters.
type Statistics struct {
	UnitsProcessed uint64        `json:",omitempty"`
	HeadersParsed  uint64        `json:",omitempty"`
	BytesProduced  uint64        `json:",omitempty"`
	Faults         uint64        `json:",omitempty"`
	Timeouts       uint64        `json:",omitempty"`
	Aborts         uint64        `json:",omitempty"`
	ProcessingTime time.Duration `json:",omitempty"`
}

// Add accumulates another snapshot into `s`; used for device-wide
// aggregates.
func (s *Statistics) Add(other Statistics) {
	s.UnitsProcessed += other.UnitsProcessed
	s.HeadersParsed += other.HeadersParsed
	s.BytesProduced += other.BytesProduced
	s.Faults += other.Faults
	s.Timeouts += other.Timeouts
	s.Aborts += other.Aborts
	s.ProcessingTime += other.ProcessingTime
}

// Counters accumulates per-instance processing statistics. Mutation is
// append-only; there is no consistency constraint across fields beyond
// monotonic increase.
type Counters struct {
	UnitsProcessed atomic.Uint64
	HeadersParsed  atomic.Uint64
	BytesProduced  atomic.Uint64
	Faults         atomic.Uint64
	Timeouts       atomic.Uint64
	Aborts         atomic.Uint64
	ProcessingTime uatomic.Duration
}

// ObserveUnit accounts one completed unit of work.
func (c *Counters) ObserveUnit(bytesProduced uint64, dur time.Duration) {
	c.UnitsProcessed.Add(1)
	c.BytesProduced.Add(bytesProduced)
	c.ProcessingTime.Add(dur)
}

func (c *Counters) ToStats() Statistics {
	return Statistics{
		UnitsProcessed: c.UnitsProcessed.Load(),
		HeadersParsed:  c.HeadersParsed.Load(),
		BytesProduced:  c.BytesProduced.Load(),
		Faults:         c.Faults.Load(),
		Timeouts:       c.Timeouts.Load(),
		Aborts:         c.Aborts.Load(),
		ProcessingTime: c.ProcessingTime.Load(),
	}
}
