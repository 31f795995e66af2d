// Package dispatch drains a command queue through the trigger and execution
// sinks.
//
// The dispatcher pops commands from the head of a command.Queue until it is
// empty. For each command:
//   - High-power commands assert the trigger sink with the opcode first.
//   - Every command is then launched on the execution sink.
//
// Ordering guarantees:
//   - Commands are dispatched in FIFO order, each exactly once.
//   - A trigger for a command happens before the launch of that same command.
//
// Process is synchronous and keeps no state between calls. Callers that share
// a dispatcher across goroutines must serialize Process themselves.
package dispatch
