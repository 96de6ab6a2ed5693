// option.go defines the Dispatcher construction options.

package dispatcher

import "time"

type Option interface {
	apply(*Dispatcher)
}

// OptionWaitTimeout overrides the per-operation interrupt wait bound.
type OptionWaitTimeout time.Duration

func (o OptionWaitTimeout) apply(d *Dispatcher) {
	d.WaitTimeout = time.Duration(o)
}
