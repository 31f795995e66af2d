package dispatch

import (
	"log/slog"

	"github.com/mattjoyce/gpop/internal/command"
	"github.com/mattjoyce/gpop/internal/log"
)

// Dispatcher routes queued commands through an optional trigger and a
// mandatory launch.
type Dispatcher struct {
	trigger TriggerSink
	exec    ExecutionSink
	logger  *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Dispatcher. Nil sinks are replaced with no-ops.
func New(trigger TriggerSink, exec ExecutionSink, opts ...Option) *Dispatcher {
	if trigger == nil {
		trigger = nopSink{}
	}
	if exec == nil {
		exec = nopSink{}
	}
	d := &Dispatcher{
		trigger: trigger,
		exec:    exec,
		logger:  log.WithComponent("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Process drains q in FIFO order. On return q is empty. An empty or nil queue
// is a no-op.
func (d *Dispatcher) Process(q *command.Queue) {
	if q == nil {
		return
	}
	for {
		c, ok := q.Pop()
		if !ok {
			return
		}
		d.dispatch(c)
	}
}

// dispatch runs one command: Pending -> (Triggered) -> Dispatched.
func (d *Dispatcher) dispatch(c command.Command) {
	if c.HighPower {
		d.trigger.Assert(c.Opcode)
	}
	d.exec.Launch(c.Opcode)

	d.logger.Debug("command dispatched",
		"opcode", c.Opcode,
		"high_power", c.HighPower,
		"timestamp", c.Timestamp,
	)
}
