package websocket

import "github.com/mocktestapp/mocktest-backend/internal/session"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect   Action = "select"
	ActionSaveNext Action = "save_next"
	ActionMarkNext Action = "mark_next"
	ActionClear    Action = "clear"
	ActionJump     Action = "jump"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionPing     Action = "ping"
)

// RequestPayload is the single client message shape. Option and Question
// are only read for the actions that need them.
type RequestPayload struct {
	Action   Action `json:"action"`
	Option   int    `json:"option,omitempty"`
	Question int    `json:"question,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState Event = "state"
	EventEnded Event = "ended"
	EventError Event = "error"
	EventPong  Event = "pong"
)

// StateResponse carries the full session view. It is pushed once per
// second and after every accepted command.
type StateResponse struct {
	Event   Event        `json:"event"`
	Attempt session.View `json:"attempt"`
}

// EndedResponse tells the client the session no longer exists, usually
// because the countdown expired and the attempt was force-submitted.
type EndedResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
