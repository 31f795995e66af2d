package api

import "github.com/mattjoyce/gpop/internal/session"

// CommandRequest is one command in a dispatch request.
type CommandRequest struct {
	Opcode    uint32 `json:"opcode"`
	HighPower bool   `json:"high_power"`
	Timestamp uint64 `json:"timestamp"`
}

// DispatchRequest is the JSON body for POST /dispatch.
type DispatchRequest struct {
	Commands []CommandRequest `json:"commands"`
}

// DispatchResponse is returned by POST /dispatch.
type DispatchResponse struct {
	*session.Result
	Warning string `json:"warning,omitempty"`
}

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status         string `json:"status"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	JournalEnabled bool   `json:"journal_enabled"`
}
