package media

import (
	"github.com/user/unbundle/pkg/adapters/logger"
	"github.com/user/unbundle/pkg/ports"
)

type options struct {
	logger ports.Logger
}

func defaultOptions() options {
	return options{
		logger: logger.NewNoop(),
	}
}

// Option configures Open.
type Option func(*options)

// WithLogger routes the handle's diagnostics to l. Without it the handle
// stays silent.
func WithLogger(l ports.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
