// option.go defines the Device construction options.

package device

import (
	"time"

	"github.com/xaionaro-go/vcodecmux/dispatcher"
)

type config struct {
	waitTimeout time.Duration
}

type Option interface {
	apply(*config)
}

type options []Option

func (s options) config() config {
	cfg := config{
		waitTimeout: dispatcher.DefaultWaitTimeout,
	}
	for _, opt := range s {
		opt.apply(&cfg)
	}
	return cfg
}

// OptionWaitTimeout bounds the wait for one hardware operation.
type OptionWaitTimeout time.Duration

func (o OptionWaitTimeout) apply(cfg *config) {
	cfg.waitTimeout = time.Duration(o)
}
