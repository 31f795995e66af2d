package sink

import "github.com/mattjoyce/gpop/internal/journal"

// Call is one recorded sink invocation. Seq starts at 1.
type Call struct {
	Seq    int          `json:"seq"`
	Kind   journal.Kind `json:"kind"`
	Opcode uint32       `json:"opcode"`
}

// Recorder keeps the ordered list of calls it receives. It is not safe for
// concurrent use.
type Recorder struct {
	calls []Call
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Assert(opcode uint32) { r.add(journal.KindTrigger, opcode) }

func (r *Recorder) Launch(opcode uint32) { r.add(journal.KindLaunch, opcode) }

func (r *Recorder) add(kind journal.Kind, opcode uint32) {
	r.calls = append(r.calls, Call{Seq: len(r.calls) + 1, Kind: kind, Opcode: opcode})
}

// Calls returns a copy of every recorded call in order.
func (r *Recorder) Calls() []Call {
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Triggers returns the asserted opcodes in order.
func (r *Recorder) Triggers() []uint32 { return r.opcodes(journal.KindTrigger) }

// Launches returns the launched opcodes in order.
func (r *Recorder) Launches() []uint32 { return r.opcodes(journal.KindLaunch) }

func (r *Recorder) opcodes(kind journal.Kind) []uint32 {
	out := []uint32{}
	for _, c := range r.calls {
		if c.Kind == kind {
			out = append(out, c.Opcode)
		}
	}
	return out
}
