// Package workload seeds command queues for the dispatcher.
package workload

import (
	"github.com/mattjoyce/gpop/internal/command"
	"github.com/mattjoyce/gpop/internal/config"
)

// Default is the stock seed: one high-power GEMM command.
func Default() *command.Queue {
	return command.NewQueue(command.Command{
		Opcode:    command.OpGEMMHeavy,
		HighPower: true,
		Timestamp: 1000,
	})
}

// FromConfig pushes entries in declaration order, each Repeat times
// (zero means once).
func FromConfig(entries []config.WorkloadEntry) *command.Queue {
	q := command.NewQueue()
	for _, e := range entries {
		n := e.Repeat
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			q.Push(command.Command{
				Opcode:    e.Opcode,
				HighPower: e.HighPower,
				Timestamp: e.Timestamp,
			})
		}
	}
	return q
}

// Alternating builds n commands with opcodes base, base+1, ... whose
// high-power flag alternates starting with true. Timestamps count up from 0.
func Alternating(n int, base uint32) *command.Queue {
	q := command.NewQueue()
	for i := 0; i < n; i++ {
		q.Push(command.Command{
			Opcode:    base + uint32(i),
			HighPower: i%2 == 0,
			Timestamp: uint64(i),
		})
	}
	return q
}
