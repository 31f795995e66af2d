package journal

import (
	"errors"
	"time"
)

// Kind identifies which sink a call went to.
type Kind string

const (
	KindTrigger Kind = "trigger"
	KindLaunch  Kind = "launch"
)

// Run is one drain of a command queue.
type Run struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Commands    int        `json:"commands"`
	Triggers    int        `json:"triggers"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Calls       []Call     `json:"calls,omitempty"`
}

// Call is one sink invocation within a run. Seq starts at 1.
type Call struct {
	Seq        int       `json:"seq"`
	Kind       Kind      `json:"kind"`
	Opcode     uint32    `json:"opcode"`
	RecordedAt time.Time `json:"recorded_at"`
}

var ErrRunNotFound = errors.New("run not found")
