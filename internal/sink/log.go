package sink

import (
	"log/slog"

	"github.com/mattjoyce/gpop/internal/command"
	"github.com/mattjoyce/gpop/internal/log"
)

// Log reports trigger and launch events through a structured logger.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Log sink. A nil logger uses the "sink" component logger.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = log.WithComponent("sink")
	}
	return &Log{logger: logger}
}

func (s *Log) Assert(opcode uint32) {
	s.logger.Info("sideband trigger asserted",
		"opcode", opcode,
		"opcode_name", command.OpcodeName(opcode),
	)
}

func (s *Log) Launch(opcode uint32) {
	s.logger.Info("kernel launched",
		"opcode", opcode,
		"opcode_name", command.OpcodeName(opcode),
	)
}
