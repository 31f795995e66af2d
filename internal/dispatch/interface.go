package dispatch

//go:generate mockgen -destination=mocks/mock_sinks.go -package=mocks github.com/mattjoyce/gpop/internal/dispatch TriggerSink,ExecutionSink

// TriggerSink receives the sideband trigger for a high-power command.
// Implementations must not report failures back to the dispatcher.
type TriggerSink interface {
	Assert(opcode uint32)
}

// ExecutionSink receives every dispatched command for kernel launch.
type ExecutionSink interface {
	Launch(opcode uint32)
}

// TriggerFunc adapts a function to TriggerSink.
type TriggerFunc func(opcode uint32)

func (f TriggerFunc) Assert(opcode uint32) { f(opcode) }

// ExecutionFunc adapts a function to ExecutionSink.
type ExecutionFunc func(opcode uint32)

func (f ExecutionFunc) Launch(opcode uint32) { f(opcode) }

type nopSink struct{}

func (nopSink) Assert(uint32) {}
func (nopSink) Launch(uint32) {}
