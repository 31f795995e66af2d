package sink

import (
	"github.com/mattjoyce/gpop/internal/command"
	"github.com/mattjoyce/gpop/internal/events"
)

// CallEvent is the payload published for each sink call.
type CallEvent struct {
	RunID      string `json:"run_id,omitempty"`
	Opcode     uint32 `json:"opcode"`
	OpcodeName string `json:"opcode_name"`
}

// Hub publishes each call to an events.Hub.
type Hub struct {
	hub   *events.Hub
	runID string
}

func NewHub(hub *events.Hub, runID string) *Hub {
	return &Hub{hub: hub, runID: runID}
}

func (s *Hub) Assert(opcode uint32) { s.publish(events.TypeTriggerAsserted, opcode) }

func (s *Hub) Launch(opcode uint32) { s.publish(events.TypeKernelLaunched, opcode) }

func (s *Hub) publish(eventType string, opcode uint32) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(eventType, CallEvent{
		RunID:      s.runID,
		Opcode:     opcode,
		OpcodeName: command.OpcodeName(opcode),
	})
}
