package notify

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/model"
)

// Sink delivers a stored notification somewhere outside the app.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n model.Notification) error
}

// FuncSink adapts a function to a Sink.
type FuncSink struct {
	Label string
	Fn    func(ctx context.Context, n model.Notification) error
}

func (f FuncSink) Name() string { return f.Label }

func (f FuncSink) Deliver(ctx context.Context, n model.Notification) error {
	return f.Fn(ctx, n)
}

// ConfiguredSinks builds the sinks enabled in cfg. Sinks that fail to
// connect are logged and skipped. The returned closer releases broker
// connections.
func ConfiguredSinks(cfg config.Config) ([]Sink, func()) {
	var sinks []Sink
	closer := func() {}

	if ms := NewMailSink(cfg.Email, config.MailgunKey()); ms != nil {
		sinks = append(sinks, ms)
	}
	if cfg.AMQP.Enabled {
		url := config.AMQPURL()
		if url == "" {
			log.Warn("amqp enabled but no broker url set", "env", config.EnvAMQPURL)
		} else if as, err := DialAMQP(url, cfg.AMQP); err != nil {
			log.Warn("amqp unavailable", "err", err)
		} else {
			sinks = append(sinks, as)
			closer = func() { _ = as.Close() }
		}
	}
	return sinks, closer
}
