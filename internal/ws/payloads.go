package ws

import "task_api/internal/domain"

// client → server
type InboundMessage struct {
	Type string `json:"type"`
}

// server → client. Type is one of MsgReady, MsgPong or a task event kind
// (task.created, task.updated, task.deleted).
type Event struct {
	Type string       `json:"type"`
	Task *domain.Task `json:"task,omitempty"`
}
