package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload carries one client message. QID and Answer are set for
// answer actions only.
type RequestPayload struct {
	Action Action `json:"action"`
	QID    string `json:"q_id,omitempty"`
	Answer any    `json:"ans,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSaved    Event = "saved"
	EventDecision Event = "decision"
	EventScored   Event = "scored"
	EventPong     Event = "pong"
)

// SavedResponse acknowledges an answer with no branching decision.
type SavedResponse struct {
	Event Event `json:"event"`
}

// DecisionResponse carries the branching decision for an answered question.
type DecisionResponse struct {
	Event            Event  `json:"event"`
	Action           string `json:"action"`
	TargetQuestionID string `json:"target_question_id,omitempty"`
}

// ScoredResponse carries the final scored result after submit.
type ScoredResponse struct {
	Event  Event `json:"event"`
	Result any   `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
