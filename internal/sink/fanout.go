package sink

import "github.com/mattjoyce/gpop/internal/dispatch"

// Triggers returns a TriggerSink that calls each member in order. Untyped nil
// members are skipped; a typed nil pointer is kept and its method is called.
func Triggers(members ...dispatch.TriggerSink) dispatch.TriggerSink {
	var live []dispatch.TriggerSink
	for _, m := range members {
		if m != nil {
			live = append(live, m)
		}
	}
	return dispatch.TriggerFunc(func(opcode uint32) {
		for _, m := range live {
			m.Assert(opcode)
		}
	})
}

// Executions returns an ExecutionSink that calls each member in order, with
// the same nil handling as Triggers.
func Executions(members ...dispatch.ExecutionSink) dispatch.ExecutionSink {
	var live []dispatch.ExecutionSink
	for _, m := range members {
		if m != nil {
			live = append(live, m)
		}
	}
	return dispatch.ExecutionFunc(func(opcode uint32) {
		for _, m := range live {
			m.Launch(opcode)
		}
	})
}
